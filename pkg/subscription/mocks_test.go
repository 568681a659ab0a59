package subscription_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/resumekit/pkg/subscription"
)

// MockProvider is a mock implementation of subscription.BillingProvider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) ParseWebhook(payload []byte, signature string) (*subscription.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.WebhookEvent), args.Error(1)
}

func (m *MockProvider) GetSubscription(ctx context.Context, subscriptionID string) (*subscription.ProviderSubscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.ProviderSubscription), args.Error(1)
}

func (m *MockProvider) ListActiveSubscriptions(ctx context.Context, customerID string, limit int) ([]subscription.ProviderSubscription, error) {
	args := m.Called(ctx, customerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.ProviderSubscription), args.Error(1)
}

func (m *MockProvider) CreateCheckoutLink(ctx context.Context, req subscription.CheckoutRequest) (*subscription.CheckoutLink, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.CheckoutLink), args.Error(1)
}

// countingLinker wraps the memory linker and counts new links.
type countingLinker struct {
	subscription.CustomerLinker
	links int
}

func (l *countingLinker) LinkCustomer(ctx context.Context, userID, customerID string) (bool, error) {
	linked, err := l.CustomerLinker.LinkCustomer(ctx, userID, customerID)
	if linked {
		l.links++
	}
	return linked, err
}

const (
	priceProMonthly     = "price_pro_monthly"
	priceProPlusMonthly = "price_pro_plus_monthly"
)

func testPrices() subscription.PriceSet {
	return subscription.NewPriceSet(priceProMonthly, priceProPlusMonthly)
}
