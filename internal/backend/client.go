package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/contact"
	"github.com/frahmantamala/crm-assistant/internal/dashboard"
	"github.com/frahmantamala/crm-assistant/internal/user"
)

const maxBodyBytes = 8 << 20

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client reads contacts, users and dashboard statistics from the external CRM
// REST API. It is read-only; the assistant never writes back.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) ListContacts(ctx context.Context) ([]contact.Summary, error) {
	body, err := c.get(ctx, "/contacts")
	if err != nil {
		return nil, err
	}
	contacts, err := contact.NormalizeAll(body)
	if err != nil {
		return nil, internal.NewExternalError("backend returned an unreadable contact list", internal.ErrCodeBackendUnavailable, err)
	}
	c.logger.DebugContext(ctx, "backend: contacts fetched", "count", len(contacts))
	return contacts, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]user.Summary, error) {
	body, err := c.get(ctx, "/users")
	if err != nil {
		return nil, err
	}
	users, err := user.NormalizeAll(body)
	if err != nil {
		return nil, internal.NewExternalError("backend returned an unreadable user list", internal.ErrCodeBackendUnavailable, err)
	}
	return users, nil
}

func (c *Client) GetDashboard(ctx context.Context) (dashboard.Stats, error) {
	body, err := c.get(ctx, "/dashboard")
	if err != nil {
		return nil, err
	}
	stats, err := dashboard.Decode(body)
	if err != nil {
		return nil, internal.NewExternalError("backend returned unreadable dashboard statistics", internal.ErrCodeBackendUnavailable, err)
	}
	return stats, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "backend: request failed", "path", path, "error", err)
		return nil, internal.NewExternalError("backend is unreachable", internal.ErrCodeBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, internal.NewExternalError("failed to read backend response", internal.ErrCodeBackendUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "backend: unexpected status",
			"path", path,
			"status_code", resp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds())
		return nil, internal.NewExternalError(
			fmt.Sprintf("backend returned status %d", resp.StatusCode),
			internal.ErrCodeBackendUnavailable,
			fmt.Errorf("GET %s: %s", path, resp.Status))
	}

	return body, nil
}
