package api

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
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// TokenSource yields the current session token, or "" when no operator
// is logged in. Requests without a token go out unauthenticated and the
// backend decides rejection.
type TokenSource interface {
	Token() string
}

// Client is the single outbound gateway to the backend. It attaches the
// bearer token to every request and classifies failures into *Error.
// It performs no retries; refresh policy belongs to the sync layer.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a client against the given backend origin.
func New(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	c.logger.Debug("request complete",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// checkInput validates a request struct before it hits the wire, so a
// typo surfaces as a validation failure instead of a backend round trip.
func (c *Client) checkInput(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return &Error{Kind: KindValidation, Message: inputMessage(err), Err: err}
	}
	return nil
}

func inputMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields = append(fields, strings.ToLower(fe.Field())+" is required")
		case "email":
			fields = append(fields, strings.ToLower(fe.Field())+" must be a valid email address")
		case "min":
			fields = append(fields, fmt.Sprintf("%s must be at least %s characters", strings.ToLower(fe.Field()), fe.Param()))
		default:
			fields = append(fields, strings.ToLower(fe.Field())+" is invalid")
		}
	}
	return strings.Join(fields, "; ")
}

// Login exchanges operator credentials for a session token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := c.checkInput(req); err != nil {
		return nil, err
	}
	var resp AuthResponse
	if err := c.post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup creates a company account and returns a live session.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if err := c.checkInput(req); err != nil {
		return nil, err
	}
	var resp AuthResponse
	if err := c.post(ctx, "/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PendingApprovals lists AI actions awaiting a human decision.
func (c *Client) PendingApprovals(ctx context.Context) ([]ApprovalItem, error) {
	var items []ApprovalItem
	if err := c.get(ctx, "/approvals/pending", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateApproval submits an approve/reject decision for one item. The
// backend arbitrates concurrent decisions; an already-decided item
// comes back as a conflict error.
func (c *Client) UpdateApproval(ctx context.Context, id string, status ApprovalStatus) (*ApprovalItem, error) {
	if status != ApprovalApproved && status != ApprovalRejected {
		return nil, &Error{Kind: KindValidation, Message: fmt.Sprintf("invalid approval status %q", status)}
	}
	var item ApprovalItem
	body := map[string]ApprovalStatus{"status": status}
	if err := c.patch(ctx, "/approvals/"+url.PathEscape(id)+"/status", body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DashboardStats fetches the current metrics snapshot.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.get(ctx, "/dashboard/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DashboardEngagement fetches the engagement feed, newest first as
// delivered by the backend. The client does not re-sort.
func (c *Client) DashboardEngagement(ctx context.Context) ([]EngagementEvent, error) {
	var events []EngagementEvent
	if err := c.get(ctx, "/dashboard/engagement", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// SearchDashboard filters engagement entries by free-text query.
func (c *Client) SearchDashboard(ctx context.Context, query string) ([]EngagementEvent, error) {
	var events []EngagementEvent
	if err := c.get(ctx, "/dashboard/search?q="+url.QueryEscape(query), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ExportLogs streams the CSV engagement log into w and returns the
// number of bytes written.
func (c *Client) ExportLogs(ctx context.Context, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/dashboard/export", nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, responseError(resp.StatusCode, data)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, transportError(err)
	}
	return n, nil
}

// BusinessProfile fetches the AI knowledge document.
func (c *Client) BusinessProfile(ctx context.Context) (*BusinessProfile, error) {
	var profile BusinessProfile
	if err := c.get(ctx, "/businesses/profile", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateBusinessProfile applies a partial profile update and returns
// the backend's confirmed copy.
func (c *Client) UpdateBusinessProfile(ctx context.Context, update ProfileUpdate) (*BusinessProfile, error) {
	var profile BusinessProfile
	if err := c.patch(ctx, "/businesses/profile", update, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SimulateMessage feeds a synthetic inbound message through the agent
// and returns its intent analysis.
func (c *Client) SimulateMessage(ctx context.Context, req SimulateRequest) (*SimulationResult, error) {
	if err := c.checkInput(req); err != nil {
		return nil, err
	}
	var result SimulationResult
	if err := c.post(ctx, "/whatsapp/simulate", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
