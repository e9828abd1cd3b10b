package billing

import (
	"encoding/json"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeProvider implements Provider on top of the Stripe API.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeProvider{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

func (p *StripeProvider) CreateCustomer(email, name string, metadata map[string]string) (*Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	cust, err := p.api.Customers.New(params)
	if err != nil {
		return nil, providerErr(err)
	}

	return &Customer{ID: cust.ID}, nil
}

func (p *StripeProvider) CreateCheckoutSession(cp CheckoutParams) (*CheckoutSession, error) {
	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name:        stripe.String(cp.ProductName),
		Description: stripe.String(cp.ProductDescription),
	}
	if cp.ProductImage != "" {
		productData.Images = stripe.StringSlice([]string{cp.ProductImage})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(cp.Currency),
					ProductData: productData,
					UnitAmount:  stripe.Int64(cp.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:               stripe.String(cp.SuccessURL),
		CancelURL:                stripe.String(cp.CancelURL),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		SubmitType:               stripe.String(string(stripe.CheckoutSessionSubmitTypePay)),
	}

	// Attach the known customer when there is one, otherwise prefill email.
	if cp.CustomerID != "" {
		params.Customer = stripe.String(cp.CustomerID)
	} else if cp.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(cp.CustomerEmail)
	}

	for k, v := range cp.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, providerErr(err)
	}

	out := &CheckoutSession{
		ID:  sess.ID,
		URL: sess.URL,
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}

	return out, nil
}

func (p *StripeProvider) RetrieveSession(sessionID string) (*SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("payment_intent")
	params.AddExpand("customer")

	sess, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, providerErr(err)
	}

	status := &SessionStatus{
		SessionID:     sess.ID,
		PaymentStatus: string(sess.PaymentStatus),
		CustomerEmail: sessionEmail(sess),
		AmountTotal:   sess.AmountTotal,
		Currency:      string(sess.Currency),
	}

	if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid && sess.PaymentIntent != nil {
		conf, err := p.ConfirmationForIntent(sess.PaymentIntent.ID)
		if err != nil {
			return nil, err
		}
		conf.CustomerEmail = status.CustomerEmail
		status.Confirmation = conf
	}

	return status, nil
}

func (p *StripeProvider) ConfirmationForIntent(paymentIntentID string) (*Confirmation, error) {
	params := &stripe.PaymentIntentParams{}
	params.AddExpand("payment_method")

	pi, err := p.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return nil, providerErr(err)
	}

	conf := &Confirmation{
		PaymentIntentID: pi.ID,
		AmountTotal:     pi.Amount,
		Currency:        string(pi.Currency),
	}

	// Latest charge, for the receipt fields.
	listParams := &stripe.ChargeListParams{
		PaymentIntent: stripe.String(pi.ID),
	}
	listParams.Limit = stripe.Int64(1)

	iter := p.api.Charges.List(listParams)
	if iter.Next() {
		ch := iter.Charge()
		conf.ChargeID = ch.ID
		conf.ReceiptURL = ch.ReceiptURL
		conf.ReceiptNumber = ch.ReceiptNumber
	}
	if err := iter.Err(); err != nil {
		return nil, providerErr(err)
	}

	if pi.PaymentMethod != nil {
		pm := pi.PaymentMethod
		if pm.Card == nil && pm.BillingDetails == nil {
			// Expansion did not happen; fetch the full object.
			pm, err = p.api.PaymentMethods.Get(pm.ID, nil)
			if err != nil {
				return nil, providerErr(err)
			}
		}
		fillPaymentMethod(conf, pm)
	}

	return conf, nil
}

func (p *StripeProvider) ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	ev := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	switch ev.Type {
	case EventCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		ev.SessionID = sess.ID
		if sess.PaymentIntent != nil {
			ev.PaymentIntentID = sess.PaymentIntent.ID
		}

	case EventPaymentIntentSucceeded, EventPaymentIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		ev.PaymentIntentID = pi.ID
		if pi.LastPaymentError != nil {
			ev.FailureCode = string(pi.LastPaymentError.Code)
			ev.FailureMessage = pi.LastPaymentError.Msg
			ev.FailureType = string(pi.LastPaymentError.Type)
		}

	case EventChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("decode charge: %w", err)
		}
		ev.ChargeID = ch.ID
		ev.AmountRefunded = ch.AmountRefunded
		if ch.PaymentIntent != nil {
			ev.PaymentIntentID = ch.PaymentIntent.ID
		}
	}

	return ev, nil
}

func fillPaymentMethod(conf *Confirmation, pm *stripe.PaymentMethod) {
	conf.PaymentMethodID = pm.ID
	conf.PaymentMethodType = string(pm.Type)
	if conf.PaymentMethodType == "" {
		conf.PaymentMethodType = "card"
	}

	if pm.Card != nil {
		conf.Card = &CardDetails{
			Brand:    string(pm.Card.Brand),
			Last4:    pm.Card.Last4,
			ExpMonth: pm.Card.ExpMonth,
			ExpYear:  pm.Card.ExpYear,
		}
	}

	if pm.BillingDetails != nil {
		details := &BillingDetails{
			Name:  pm.BillingDetails.Name,
			Email: pm.BillingDetails.Email,
			Phone: pm.BillingDetails.Phone,
		}
		if addr := pm.BillingDetails.Address; addr != nil {
			details.Address = &Address{
				Line1:      addr.Line1,
				Line2:      addr.Line2,
				City:       addr.City,
				State:      addr.State,
				PostalCode: addr.PostalCode,
				Country:    addr.Country,
			}
		}
		conf.Billing = details
	}
}

func sessionEmail(sess *stripe.CheckoutSession) string {
	if sess.CustomerEmail != "" {
		return sess.CustomerEmail
	}
	if sess.CustomerDetails != nil {
		return sess.CustomerDetails.Email
	}
	return ""
}

func providerErr(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &ProviderError{
			StatusCode: stripeErr.HTTPStatusCode,
			Code:       string(stripeErr.Code),
			Message:    stripeErr.Msg,
			Err:        err,
		}
	}
	return err
}
