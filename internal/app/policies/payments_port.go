package policies

import "context"

// CheckoutSession is the gateway's answer to a token request: an opaque
// hosted-checkout URL plus the order id the session is keyed by.
type CheckoutSession struct {
	RedirectURL string
	OrderID     string
}

// TransactionRequest carries what the gateway needs to open a session.
type TransactionRequest struct {
	OrderID     string
	GrossAmount int64
	CustomerID  string
	ItemName    string
}

// PaymentGateway opens hosted-checkout sessions with the payment provider.
type PaymentGateway interface {
	CreateTransaction(ctx context.Context, req TransactionRequest) (CheckoutSession, error)
}
