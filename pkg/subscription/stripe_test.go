package subscription_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/dmitrymomot/resumekit/pkg/subscription"
)

const testWebhookSecret = "whsec_test_secret"

func newTestStripe(t *testing.T, apiURL string) *subscription.StripeProvider {
	t.Helper()
	p, err := subscription.NewStripeProvider(subscription.StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
		Timeout:       2 * time.Second,
		APIURL:        apiURL,
	})
	require.NoError(t, err)
	return p
}

func sign(payload string) (body []byte, header string) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return signed.Payload, signed.Header
}

func TestNewStripeProvider_RequiresSecrets(t *testing.T) {
	t.Parallel()

	_, err := subscription.NewStripeProvider(subscription.StripeConfig{WebhookSecret: "whsec"})
	assert.ErrorIs(t, err, subscription.ErrMissingSecretKey)

	_, err = subscription.NewStripeProvider(subscription.StripeConfig{SecretKey: "sk"})
	assert.ErrorIs(t, err, subscription.ErrMissingWebhookSecret)
}

func TestStripeProvider_ParseWebhook(t *testing.T) {
	t.Parallel()

	p := newTestStripe(t, "")

	t.Run("checkout completed", func(t *testing.T) {
		t.Parallel()
		body, header := sign(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","object":"checkout.session","customer":"cus_1","subscription":"sub_1","metadata":{"userId":"user_1"}}}}`)

		event, err := p.ParseWebhook(body, header)
		require.NoError(t, err)
		assert.Equal(t, subscription.EventCheckoutCompleted, event.Type)
		assert.Equal(t, "evt_1", event.ID)
		assert.Equal(t, "user_1", event.UserID)
		assert.Equal(t, "cus_1", event.CustomerID)
		assert.Equal(t, "sub_1", event.SubscriptionID)
	})

	t.Run("checkout falls back to client reference", func(t *testing.T) {
		t.Parallel()
		body, header := sign(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","customer":"cus_1","client_reference_id":"user_7"}}}`)

		event, err := p.ParseWebhook(body, header)
		require.NoError(t, err)
		assert.Equal(t, "user_7", event.UserID)
	})

	t.Run("subscription kinds", func(t *testing.T) {
		t.Parallel()
		cases := map[string]subscription.EventType{
			"customer.subscription.created": subscription.EventSubscriptionCreatedOrUpdated,
			"customer.subscription.updated": subscription.EventSubscriptionCreatedOrUpdated,
			"customer.subscription.deleted": subscription.EventSubscriptionDeleted,
		}
		for kind, want := range cases {
			body, header := sign(`{"id":"evt_2","object":"event","type":"` + kind + `","data":{"object":{"id":"sub_1","object":"subscription","customer":"cus_1","status":"active"}}}`)

			event, err := p.ParseWebhook(body, header)
			require.NoError(t, err, kind)
			assert.Equal(t, want, event.Type, kind)
			assert.Equal(t, kind, event.ProviderEvent)
			assert.Equal(t, "sub_1", event.SubscriptionID)
			assert.Equal(t, "cus_1", event.CustomerID)
		}
	})

	t.Run("unhandled kind is ignored", func(t *testing.T) {
		t.Parallel()
		body, header := sign(`{"id":"evt_3","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1"}}}`)

		event, err := p.ParseWebhook(body, header)
		require.NoError(t, err)
		assert.Equal(t, subscription.EventIgnored, event.Type)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()
		_, header := sign(`{"id":"evt_1","object":"event","type":"invoice.paid","data":{"object":{}}}`)

		_, err := p.ParseWebhook([]byte(`{"id":"evt_forged","object":"event","type":"invoice.paid","data":{"object":{}}}`), header)
		assert.ErrorIs(t, err, subscription.ErrSignatureVerification)
	})

	t.Run("missing signature", func(t *testing.T) {
		t.Parallel()
		_, err := p.ParseWebhook([]byte(`{}`), "")
		assert.ErrorIs(t, err, subscription.ErrSignatureVerification)
	})
}

func TestStripeProvider_GetSubscription(t *testing.T) {
	t.Parallel()

	periodEnd := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/subscriptions/sub_1", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "sub_1",
			"object": "subscription",
			"customer": "cus_1",
			"status": "active",
			"cancel_at_period_end": true,
			"metadata": {"userId": "user_1"},
			"items": {"object": "list", "data": [
				{"id": "si_1", "object": "subscription_item", "current_period_end": 1893456000, "price": {"id": "price_pro_monthly", "object": "price"}}
			]}
		}`))
	}))
	t.Cleanup(srv.Close)

	p := newTestStripe(t, srv.URL)

	sub, err := p.GetSubscription(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_1", sub.ID)
	assert.Equal(t, "cus_1", sub.CustomerID)
	assert.Equal(t, priceProMonthly, sub.PriceID)
	assert.Equal(t, subscription.StatusActive, sub.Status)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.True(t, periodEnd.Equal(sub.CurrentPeriodEnd))
	assert.Equal(t, "user_1", sub.UserID())
}
