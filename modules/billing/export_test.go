package billing

import dto "github.com/prometheus/client_model/go"

func DeliveryCount(m *Metrics, eventType, outcome string) float64 {
	var out dto.Metric
	if err := m.deliveries.WithLabelValues(eventType, outcome).Write(&out); err != nil {
		return -1
	}
	return out.GetCounter().GetValue()
}
