// Package regos implements the RegosClient port against the REGOS ERP
// integration gateway. Auth works differently from the documents
// provider: a static integration token is a path segment of every URL
// and there is no per-user credential. REGOS layers its own ok/result
// envelope on top of HTTP status; an ok=false envelope inside a 200 is a
// logical rejection, not a transport success.
package regos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/docvision/docvision/internal/domain/model"
	"github.com/docvision/docvision/internal/domain/port/driven"
)

// DefaultTimeout bounds each outbound call when the config carries none.
const DefaultTimeout = 30 * time.Second

const maxLoggedBody = 500

// Compile-time interface satisfaction check.
var _ driven.RegosClient = (*Client)(nil)

// Config carries the per-deployment settings for the REGOS client.
type Config struct {
	BaseURL          string // gateway root, e.g. https://integration.regos.uz/gateway/out
	IntegrationToken string
	Timeout          time.Duration
}

// Client implements the driven.RegosClient port.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a REGOS client. A zero Timeout falls back to
// DefaultTimeout.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// envelope is the uniform REGOS response wrapper.
type envelope struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

// rejection is the result payload REGOS sends when ok is false.
type rejection struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

// Call posts the payload to the named operation and returns the full
// envelope body on success. Operation names are REGOS endpoint paths such
// as "Item/Match" or "DocPurchase/Add"; payload may be an object or, for
// PurchaseOperation/Add, an array.
func (c *Client) Call(ctx context.Context, operation string, payload any) (json.RawMessage, error) {
	fullURL := fmt.Sprintf("%s/%s/v1/%s",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		c.cfg.IntegrationToken,
		strings.TrimLeft(operation, "/"),
	)
	// The integration token is a credential; keep it out of logs and
	// error payloads.
	loggedURL := fmt.Sprintf("%s/<token>/v1/%s", strings.TrimRight(c.cfg.BaseURL, "/"), strings.TrimLeft(operation, "/"))

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", operation, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, fullURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json;charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, normalizeTransportErr(loggedURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, normalizeTransportErr(loggedURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("regos call failed", "operation", operation, "status", resp.StatusCode, "body", truncate(body))
		return nil, &model.ProviderError{
			Kind:   model.ProviderBadStatus,
			URL:    loggedURL,
			Status: resp.StatusCode,
			Body:   truncate(body),
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		slog.Error("regos returned malformed json", "operation", operation, "body", truncate(body))
		return nil, &model.ProviderError{
			Kind: model.ProviderTransport,
			URL:  loggedURL,
			Err:  errors.New("malformed JSON body"),
		}
	}

	if !env.OK {
		var rej rejection
		_ = json.Unmarshal(env.Result, &rej)
		if rej.Error == "" {
			rej.Error = "Unknown"
		}
		if rej.Description == "" {
			rej.Description = "Unknown error"
		}
		slog.Error("regos rejected request", "operation", operation, "code", rej.Error, "description", rej.Description)
		return nil, &model.ProviderError{
			Kind:        model.ProviderRejected,
			URL:         loggedURL,
			Status:      resp.StatusCode,
			Code:        rej.Error,
			Description: rej.Description,
		}
	}

	// ok=true must carry an object or array result; anything else means
	// the gateway answered with something other than the operation result.
	trimmed := bytes.TrimSpace(env.Result)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		slog.Error("regos envelope carries no usable result", "operation", operation, "body", truncate(body))
		return nil, &model.ProviderError{
			Kind: model.ProviderTransport,
			URL:  loggedURL,
			Err:  errors.New("envelope result is not an object or array"),
		}
	}

	slog.Debug("regos call succeeded", "operation", operation)
	return json.RawMessage(body), nil
}

func normalizeTransportErr(loggedURL string, err error) error {
	kind := model.ProviderTransport
	var netErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = model.ProviderTimeout
	}
	slog.Error("regos call failed", "url", loggedURL, "kind", string(kind), "error", err)
	return &model.ProviderError{Kind: kind, URL: loggedURL, Err: err}
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody])
	}
	return string(b)
}
