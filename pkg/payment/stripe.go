package payment

import (
	"context"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Intent is the authorization handle handed back to the web client for
// card confirmation.
type Intent struct {
	ID           string
	ClientSecret string
}

// IntentCreator is the external payment provider collaborator. The settlement
// engine only consumes the client secret it returns; card rails stay on the
// provider side.
type IntentCreator interface {
	CreateIntent(ctx context.Context, price decimal.Decimal, currency string) (*Intent, error)
}

// StripeClient creates payment intents through the Stripe API using a single
// shared handle configured at process start.
type StripeClient struct {
	api *client.API
}

// NewStripeClient builds the shared Stripe client.
func NewStripeClient(secretKey string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api}
}

// CreateIntent converts the decimal price to integer minor units and requests
// a card payment intent. The minor-unit conversion happens only here; amounts
// are stored in decimal currency units everywhere else.
func (c *StripeClient) CreateIntent(ctx context.Context, price decimal.Decimal, currency string) (*Intent, error) {
	amount := price.Shift(2).IntPart()

	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
