package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/pkg/apperrors"
)

// Gateway is the payment provider client. Charges are created when a
// client accepts a proposal and reconciled by the payment worker.
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	GetCharge(ctx context.Context, chargeID string) (*Charge, error)
	RefundCharge(ctx context.Context, chargeID string) (*Charge, error)
}

type ChargeRequest struct {
	// IdempotencyKey makes a replayed accept return the original charge
	// instead of billing twice.
	IdempotencyKey string
	CustomerID     string
	Amount         float64
	Description    string
	ExternalRef    string // proposal id, echoed back by the gateway
	// Split routes a percentage of the charge to the provider's wallet.
	Split []SplitEntry
}

type SplitEntry struct {
	WalletID   string  `json:"walletId"`
	Percentage float64 `json:"percentualValue"`
}

type Charge struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"` // PENDING, CONFIRMED, RECEIVED, REFUNDED, OVERDUE
	Amount      float64 `json:"value"`
	InvoiceURL  string  `json:"invoiceUrl"`
	DueDate     string  `json:"dueDate"`
	ExternalRef string  `json:"externalReference"`
}

// Paid reports whether the gateway settled the charge.
func (c *Charge) Paid() bool {
	return c.Status == "CONFIRMED" || c.Status == "RECEIVED"
}

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

type HTTPGateway struct {
	cfg    Config
	client *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewHTTPGateway(cfg Config) *HTTPGateway {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &HTTPGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a cached OAuth access token, fetching a new one via the
// client-credentials grant when the cached one is near expiry.
func (g *HTTPGateway) token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.accessToken != "" && time.Now().Before(g.tokenExpiry.Add(-30*time.Second)) {
		return g.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", g.cfg.ClientID)
	form.Set("client_secret", g.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.cfg.BaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	started := time.Now()
	resp, err := g.client.Do(req)
	logger.GatewayLog(http.MethodPost, "/oauth/token", statusOf(resp), time.Since(started), err)
	if err != nil {
		return "", apperrors.ErrGateway(err, "token request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", gatewayError(resp)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", apperrors.ErrGateway(err, "malformed token response")
	}
	if tok.AccessToken == "" {
		return "", apperrors.ErrGateway(nil, "empty access token")
	}

	g.accessToken = tok.AccessToken
	g.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return g.accessToken, nil
}

type chargePayload struct {
	Customer          string       `json:"customer"`
	BillingType       string       `json:"billingType"`
	Value             float64      `json:"value"`
	DueDate           string       `json:"dueDate"`
	Description       string       `json:"description"`
	ExternalReference string       `json:"externalReference"`
	Split             []SplitEntry `json:"split,omitempty"`
}

func (g *HTTPGateway) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	payload := chargePayload{
		Customer:          req.CustomerID,
		BillingType:       "UNDEFINED", // client picks pix/boleto/card on the invoice page
		Value:             req.Amount,
		DueDate:           time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
		Description:       req.Description,
		ExternalReference: req.ExternalRef,
		Split:             req.Split,
	}

	headers := map[string]string{}
	if req.IdempotencyKey != "" {
		headers["Idempotency-Key"] = req.IdempotencyKey
	}

	var charge Charge
	if err := g.do(ctx, http.MethodPost, "/v3/payments", payload, headers, &charge); err != nil {
		return nil, err
	}
	return &charge, nil
}

func (g *HTTPGateway) GetCharge(ctx context.Context, chargeID string) (*Charge, error) {
	var charge Charge
	if err := g.do(ctx, http.MethodGet, "/v3/payments/"+chargeID, nil, nil, &charge); err != nil {
		return nil, err
	}
	return &charge, nil
}

func (g *HTTPGateway) RefundCharge(ctx context.Context, chargeID string) (*Charge, error) {
	var charge Charge
	if err := g.do(ctx, http.MethodPost, "/v3/payments/"+chargeID+"/refund", struct{}{}, nil, &charge); err != nil {
		return nil, err
	}
	return &charge, nil
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, body interface{}, headers map[string]string, out interface{}) error {
	token, err := g.token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := g.client.Do(req)
	logger.GatewayLog(method, path, statusOf(resp), time.Since(started), err)
	if err != nil {
		return apperrors.ErrGateway(err, "gateway unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gatewayError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.ErrGateway(err, "malformed gateway response")
		}
	}
	return nil
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func gatewayError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := fmt.Sprintf("gateway returned %d", resp.StatusCode)
	err := apperrors.ErrGateway(nil, msg)
	if len(body) > 0 {
		err = err.WithDetails(map[string]interface{}{"body": string(body)})
	}
	return err
}
