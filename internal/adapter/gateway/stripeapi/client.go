// Package stripeapi is a thin client for a Stripe-compatible charge API.
// It speaks the form-encoded REST dialect: customers, charges, and the
// balance transactions a charge settles into. All amounts are minor
// currency units, matching the wire format.
package stripeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/iho/duesledger/internal/domain"
	"github.com/iho/duesledger/internal/usecase"
)

const defaultTimeout = 15 * time.Second

// Client implements usecase.PaymentGateway.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client

	maxRetries      uint64
	initialInterval time.Duration
}

// NewClient creates a new Client. baseURL has no trailing slash, e.g.
// "https://api.stripe.com".
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		secretKey:       secretKey,
		httpClient:      &http.Client{Timeout: defaultTimeout},
		maxRetries:      3,
		initialInterval: 200 * time.Millisecond,
	}
}

type customerResponse struct {
	ID string `json:"id"`
}

type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type balanceTransaction struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Fee    int64  `json:"fee"`
	Net    int64  `json:"net"`
}

type balanceTransactionList struct {
	Data    []balanceTransaction `json:"data"`
	HasMore bool                 `json:"has_more"`
}

// CreateCustomer creates a gateway customer and returns its id.
func (c *Client) CreateCustomer(ctx context.Context, description, email string) (string, error) {
	form := url.Values{}
	form.Set("description", description)
	form.Set("email", email)

	var resp customerResponse
	if err := c.do(ctx, http.MethodPost, "/v1/customers", form, &resp); err != nil {
		return "", err
	}

	return resp.ID, nil
}

// CreateCharge submits a charge against a customer.
func (c *Client) CreateCharge(ctx context.Context, req usecase.GatewayChargeRequest) (*usecase.GatewayCharge, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountMinor, 10))
	form.Set("currency", req.Currency)
	form.Set("customer", req.CustomerID)
	form.Set("description", req.Description)

	var resp chargeResponse
	if err := c.do(ctx, http.MethodPost, "/v1/charges", form, &resp); err != nil {
		return nil, err
	}

	return &usecase.GatewayCharge{ID: resp.ID, Status: resp.Status}, nil
}

// RetrieveCharge fetches the gateway's current view of a charge.
func (c *Client) RetrieveCharge(ctx context.Context, externalID string) (*usecase.GatewayCharge, error) {
	var resp chargeResponse
	if err := c.do(ctx, http.MethodGet, "/v1/charges/"+url.PathEscape(externalID), nil, &resp); err != nil {
		return nil, err
	}

	return &usecase.GatewayCharge{ID: resp.ID, Status: resp.Status}, nil
}

// ListSettlements lists the balance transactions a charge settled into,
// following has_more pagination to the end.
func (c *Client) ListSettlements(ctx context.Context, externalID string) ([]usecase.GatewaySettlement, error) {
	var settlements []usecase.GatewaySettlement

	startingAfter := ""
	for {
		params := url.Values{}
		params.Set("source", externalID)
		params.Set("limit", "100")
		if startingAfter != "" {
			params.Set("starting_after", startingAfter)
		}

		var page balanceTransactionList
		path := "/v1/balance_transactions?" + params.Encode()
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}

		for _, txn := range page.Data {
			settlements = append(settlements, usecase.GatewaySettlement{
				GrossMinor: txn.Amount,
				FeeMinor:   txn.Fee,
				NetMinor:   txn.Net,
			})
		}

		if !page.HasMore || len(page.Data) == 0 {
			break
		}
		startingAfter = page.Data[len(page.Data)-1].ID
	}

	return settlements, nil
}

// do performs one API call with retries. Transient failures (network
// errors, 429, 5xx) surface as ErrGatewayUnavailable after the retry
// budget; any other non-2xx status is ErrGatewayRejected and never
// retried.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	operation := func() error {
		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: reading response: %v", domain.ErrGatewayUnavailable, err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return backoff.Permanent(fmt.Errorf("decoding gateway response: %w", err))
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("%w: status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("%w: status %d: %s", domain.ErrGatewayRejected, resp.StatusCode, truncate(data)))
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	policy := backoff.WithMaxRetries(backoff.WithContext(b, ctx), c.maxRetries)

	return backoff.Retry(operation, policy)
}

func truncate(data []byte) string {
	const max = 200
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
