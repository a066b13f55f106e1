package midtrans

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"rentmob/internal/app/policies"
)

// Client talks to the Snap-style hosted checkout API. One POST opens a
// session; the customer finishes payment on the returned redirect URL.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	ServerKey string
	Logger    *slog.Logger
}

type snapItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type snapTransactionRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	CustomerDetails struct {
		CustomerID string `json:"customer_id"`
	} `json:"customer_details"`
	Items []snapItem `json:"item_details"`
}

type snapTransactionResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

func (c *Client) CreateTransaction(ctx context.Context, req policies.TransactionRequest) (policies.CheckoutSession, error) {
	var zero policies.CheckoutSession
	if c == nil || c.HTTP == nil {
		return zero, errors.New("midtrans: http client not configured")
	}
	if c.BaseURL == "" {
		return zero, errors.New("midtrans: base url not configured")
	}

	var payload snapTransactionRequest
	payload.TransactionDetails.OrderID = req.OrderID
	payload.TransactionDetails.GrossAmount = req.GrossAmount
	payload.CustomerDetails.CustomerID = req.CustomerID
	payload.Items = []snapItem{{
		ID:       req.OrderID,
		Name:     req.ItemName,
		Price:    req.GrossAmount,
		Quantity: 1,
	}}

	body, err := json.Marshal(payload)
	if err != nil {
		return zero, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return zero, err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	if c.ServerKey != "" {
		request.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.ServerKey+":")))
	}

	resp, err := c.HTTP.Do(request)
	if err != nil {
		c.logError("snap request failed", req.OrderID, err)
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("midtrans returned status %d: %s", resp.StatusCode, string(snippet))
		c.logError("snap returned error", req.OrderID, err)
		return zero, err
	}

	var snapResp snapTransactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&snapResp); err != nil {
		c.logError("snap decode failed", req.OrderID, err)
		return zero, err
	}
	if snapResp.RedirectURL == "" {
		return zero, errors.New("midtrans: response missing redirect_url")
	}

	if c.Logger != nil {
		c.Logger.Info("snap session opened", "order_id", req.OrderID, "gross_amount", req.GrossAmount)
	}
	return policies.CheckoutSession{
		RedirectURL: snapResp.RedirectURL,
		OrderID:     req.OrderID,
	}, nil
}

func (c *Client) logError(msg, orderID string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "order_id", orderID, "error", err)
}

var _ policies.PaymentGateway = (*Client)(nil)
