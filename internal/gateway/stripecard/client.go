// Package stripecard wraps the Stripe PaymentIntent flow used by the card
// payment path. The intent is created and confirmed in a single server-side
// call with the payment method supplied by the frontend.
package stripecard

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

const StatusSucceeded = string(stripe.PaymentIntentStatusSucceeded)

type Client struct {
	api *client.API
}

func NewClient(secretKey string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &Client{
		api: api,
	}
}

type CreateChargeInput struct {
	Amount          int64
	Description     string
	PaymentMethodID string
	BuyerEmail      string
	ExternalID      string
}

type Charge struct {
	ID     string
	Status string
}

func (c *Client) CreateCharge(ctx context.Context, input CreateChargeInput) (Charge, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:        stripe.Int64(input.Amount),
		Currency:      stripe.String(string(stripe.CurrencyBRL)),
		Description:   stripe.String(input.Description),
		PaymentMethod: stripe.String(input.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		ReceiptEmail:  stripe.String(input.BuyerEmail),
	}
	params.AddMetadata("externalId", input.ExternalID)

	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return Charge{}, fmt.Errorf("c.api.PaymentIntents.New -> %w", err)
	}

	return Charge{
		ID:     intent.ID,
		Status: string(intent.Status),
	}, nil
}
