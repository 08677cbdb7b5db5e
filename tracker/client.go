package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/fadhlanhapp/paytracker-backend/models"
)

// LedgerClient is the tracker's view of the backend
type LedgerClient interface {
	ListPayments(ctx context.Context) ([]models.Payment, error)
	CreatePayment(ctx context.Context, req *models.PaymentRequest) (*models.Payment, error)
}

// HTTPClient talks to the backend's /payments endpoints
type HTTPClient struct {
	baseURL string
	client  *fasthttp.Client
}

// NewHTTPClient creates a client for the backend at baseURL, e.g. "http://localhost:8080"
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &fasthttp.Client{Name: "paytracker"},
	}
}

// ListPayments fetches the full ledger, newest first
func (c *HTTPClient) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	if err := c.do(ctx, fasthttp.MethodGet, "/payments", nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// CreatePayment posts a payment and returns the stored record
func (c *HTTPClient) CreatePayment(ctx context.Context, req *models.PaymentRequest) (*models.Payment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var payment models.Payment
	if err := c.do(ctx, fasthttp.MethodPost, "/payments", body, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: status %d: %s", method, path, status, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, status)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
