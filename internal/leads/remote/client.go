// Package remote is the HTTP client for the lead collection service, the
// external source of record. The service is an opaque collaborator: this
// package only knows its four operations and its error envelope.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/platform/apperr"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/phone"

	"golang.org/x/time/rate"
)

// API is the collaborator contract the store and coordinator depend on.
// UpdateOne is a total replace, not a patch: callers must submit the full
// merged record or fields silently vanish server-side.
type API interface {
	FetchAll(ctx context.Context) ([]domain.Lead, error)
	DeleteOne(ctx context.Context, id string) error
	UpdateOne(ctx context.Context, id string, full domain.Lead) (domain.Lead, error)
	SetFlag(ctx context.Context, id string, archived bool) error
}

// Client implements API over HTTP with request pacing.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// Config carries the collaborator connection settings.
type Config struct {
	BaseURL string
	Token   string
	RPS     float64
	Burst   int
	Timeout time.Duration
}

// NewClient creates a remote collection client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = int(rps)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     log,
	}
}

// FetchAll retrieves the full lead collection.
func (c *Client) FetchAll(ctx context.Context) ([]domain.Lead, error) {
	var leads []domain.Lead
	if err := c.do(ctx, http.MethodGet, "/leads", nil, &leads); err != nil {
		return nil, err
	}
	for i := range leads {
		leads[i].ID = domain.NormalizeLeadID(leads[i].ID)
		leads[i].Phone = phone.NormalizeE164(leads[i].Phone)
	}
	return leads, nil
}

// DeleteOne removes a lead from the remote collection.
func (c *Client) DeleteOne(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/leads/"+domain.NormalizeLeadID(id), nil, nil)
}

// UpdateOne replaces the full lead record and returns the stored result.
func (c *Client) UpdateOne(ctx context.Context, id string, full domain.Lead) (domain.Lead, error) {
	var updated domain.Lead
	if err := c.do(ctx, http.MethodPut, "/leads/"+domain.NormalizeLeadID(id), full, &updated); err != nil {
		return domain.Lead{}, err
	}
	updated.ID = domain.NormalizeLeadID(updated.ID)
	return updated, nil
}

// SetFlag flips the archived flag on the remote record.
func (c *Client) SetFlag(ctx context.Context, id string, archived bool) error {
	payload := map[string]bool{"archived": archived}
	return c.do(ctx, http.MethodPatch, "/leads/"+domain.NormalizeLeadID(id)+"/flag", payload, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s payload: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "lead service unreachable", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "lead service returned an unreadable response", err)
	}
	return nil
}

// errorEnvelope is the collaborator's documented error shape. Responses that
// do not match it degrade to a generic message instead of surfacing garbage.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := genericRemoteError
	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil {
		if envelope.Error != "" {
			message = envelope.Error
		} else if envelope.Message != "" {
			message = envelope.Message
		}
	}

	kind := apperr.KindUnavailable
	if resp.StatusCode == http.StatusNotFound {
		kind = apperr.KindNotFound
	}

	return apperr.New(kind, message).
		WithOp(fmt.Sprintf("remote %d", resp.StatusCode))
}

const genericRemoteError = "the lead service rejected the request"
