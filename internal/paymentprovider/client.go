// Package paymentprovider реализует клиент REST API PayPal для подписок:
// получение и отмену подписки и проверку подписи webhook.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/magabrotheeeer/contrarian-report/internal/config"
)

var (
	// ErrDisabled возвращается, когда интеграция с PayPal выключена в конфиге.
	ErrDisabled = errors.New("payment provider is disabled")
	// ErrNotFound подписка не найдена у провайдера.
	ErrNotFound = errors.New("subscription not found at payment provider")
	// ErrVerificationFailed подпись webhook не прошла проверку.
	ErrVerificationFailed = errors.New("webhook signature verification failed")
)

// APIError ответ PayPal с неожиданным статусом.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client клиент PayPal с кэшированием OAuth токена.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	webhookID    string
	httpClient   *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	now         func() time.Time
}

// NewClient создает клиент PayPal по настройкам из конфига.
func NewClient(cfg config.PayPal) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		webhookID:    cfg.WebhookID,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		now:          time.Now,
	}
}

// accessToken возвращает действующий токен, запрашивая новый за минуту до истечения старого.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	const op = "paymentprovider.accessToken"

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var tr tokenResponse
	if err := c.do(req, http.StatusOK, &tr); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%s: empty access token", op)
	}
	c.token = tr.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetSubscription возвращает подписку PayPal по ее ID.
func (c *Client) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	const op = "paymentprovider.GetSubscription"
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/billing/subscriptions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sub Subscription
	if err := c.do(req, http.StatusOK, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// CancelSubscription отменяет подписку PayPal. Успешный ответ провайдера 204.
func (c *Client) CancelSubscription(ctx context.Context, id, reason string) error {
	const op = "paymentprovider.CancelSubscription"
	req, err := c.newRequest(ctx, http.MethodPost, "/v1/billing/subscriptions/"+url.PathEscape(id)+"/cancel",
		map[string]string{"reason": reason})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.do(req, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// VerifyWebhookSignature проверяет подпись события через API PayPal.
func (c *Client) VerifyWebhookSignature(ctx context.Context, headers WebhookHeaders, body []byte) error {
	const op = "paymentprovider.VerifyWebhookSignature"
	req, err := c.newRequest(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", verifyRequest{
		WebhookHeaders: headers,
		WebhookID:      c.webhookID,
		WebhookEvent:   json.RawMessage(body),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	var vr verifyResponse
	if err := c.do(req, http.StatusOK, &vr); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if vr.VerificationStatus != "SUCCESS" {
		return fmt.Errorf("%s: %w: %s", op, ErrVerificationFailed, vr.VerificationStatus)
	}
	return nil
}

// HeadersFrom извлекает из запроса заголовки подписи PayPal.
func HeadersFrom(h http.Header) WebhookHeaders {
	return WebhookHeaders{
		AuthAlgo:         h.Get("PAYPAL-AUTH-ALGO"),
		CertURL:          h.Get("PAYPAL-CERT-URL"),
		TransmissionID:   h.Get("PAYPAL-TRANSMISSION-ID"),
		TransmissionSig:  h.Get("PAYPAL-TRANSMISSION-SIG"),
		TransmissionTime: h.Get("PAYPAL-TRANSMISSION-TIME"),
	}
}

// Disabled заменяет клиент, когда интеграция выключена: отмена проходит без
// обращения к провайдеру, проверки возвращают ErrDisabled.
type Disabled struct{}

// GetSubscription всегда возвращает ErrDisabled.
func (Disabled) GetSubscription(context.Context, string) (*Subscription, error) {
	return nil, ErrDisabled
}

// CancelSubscription ничего не делает.
func (Disabled) CancelSubscription(context.Context, string, string) error {
	return nil
}

// VerifyWebhookSignature всегда возвращает ErrDisabled.
func (Disabled) VerifyWebhookSignature(context.Context, WebhookHeaders, []byte) error {
	return ErrDisabled
}
