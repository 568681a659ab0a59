package logger

import "log/slog"

// Error records err under "error". A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

func CustomerID(id string) slog.Attr {
	return slog.String("customer_id", id)
}

func SubscriptionID(id string) slog.Attr {
	return slog.String("subscription_id", id)
}

func PriceID(id string) slog.Attr {
	return slog.String("price_id", id)
}

// EventType records the normalized billing event kind.
func EventType(t string) slog.Attr {
	return slog.String("event_type", t)
}

// ProviderEvent records the provider's raw event name and ID together.
func ProviderEvent(name, id string) slog.Attr {
	return slog.Group("provider_event", slog.String("name", name), slog.String("id", id))
}

func Tier(t string) slog.Attr {
	return slog.String("tier", t)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}
