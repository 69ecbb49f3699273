package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/titan"
	"golang.org/x/time/rate"
)

// Interface compliance checks.
var (
	_ titan.ChatClient         = (*Client)(nil)
	_ titan.SessionStarter     = (*Client)(nil)
	_ titan.RequestCanceler    = (*Client)(nil)
	_ titan.ThinkingModeSetter = (*Client)(nil)
	_ titan.HistoryClearer     = (*Client)(nil)
	_ titan.ReportSubmitter    = (*Client)(nil)
	_ titan.VoteSubmitter      = (*Client)(nil)
	_ titan.StatusChecker      = (*Client)(nil)
)

// DefaultBaseURL is where the service listens in a local deployment.
const DefaultBaseURL = "http://localhost:5000"

// The service accepts 50 votes per minute per session.
const (
	defaultVoteRate  = rate.Limit(50.0 / 60.0)
	defaultVoteBurst = 10
)

// Client implements [titan.ChatClient] and the service's auxiliary
// endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
	votes      *rate.Limiter
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. The client should carry a cookie
// jar; the service identifies sessions by cookie.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request and parser diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithVoteLimit sets the client-side vote throttle.
func WithVoteLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.votes = rate.NewLimiter(r, burst) }
}

// New creates a [Client] for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	jar, _ := cookiejar.New(nil) // only fails with a non-nil options argument
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar},
		logger:     log.New(io.Discard),
		votes:      rate.NewLimiter(defaultVoteRate, defaultVoteBurst),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream posts a message to the chat endpoint and returns a [titan.Stream]
// over the reply records.
func (c *Client) Stream(ctx context.Context, req titan.ChatRequest) (titan.Stream, error) {
	body, err := json.Marshal(chatRequest{Message: req.Message, ThinkingMode: req.ReasoningEnabled})
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	c.logger.Debug("chat request", "reasoning", req.ReasoningEnabled, "length", len(req.Message))
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http: chat: %w", err)
	}
	c.logger.Debug("chat response", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	if resp.Body == nil || resp.Body == http.NoBody || resp.StatusCode == http.StatusNoContent {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("http: chat: %w", titan.ErrNoResponseBody)
	}

	return newStream(ctx, resp.Body, c.logger), nil
}

// NewSession opens an anonymous server session and returns its ID. The
// session cookie is kept in the client's jar.
func (c *Client) NewSession(ctx context.Context) (string, error) {
	var out sessionResponse
	if err := c.do(ctx, http.MethodPost, initSessionPath, struct{}{}, &out); err != nil {
		return "", fmt.Errorf("http: new session: %w", err)
	}
	c.logger.Debug("session started", "anonymous", out.Anonymous)
	return out.SessionID, nil
}

// UserStatus reports the caller's plan and quota.
func (c *Client) UserStatus(ctx context.Context) (titan.UserStatus, error) {
	var out statusResponse
	if err := c.do(ctx, http.MethodGet, userStatusPath, nil, &out); err != nil {
		return titan.UserStatus{}, fmt.Errorf("http: user status: %w", err)
	}
	st := titan.UserStatus{
		LoggedIn:     out.LoggedIn,
		Anonymous:    out.Anonymous,
		NeedsSession: out.NeedsSession,
		SessionID:    out.SessionID,
	}
	if out.Plan != nil {
		st.Plan = out.Plan.Name
		st.Features = out.Plan.Features
	}
	if out.AnonymousLimits != nil {
		st.Usage = titan.Usage{
			Used:      out.AnonymousLimits.Used,
			Limit:     out.AnonymousLimits.Limit,
			Remaining: out.AnonymousLimits.Remaining,
		}
	}
	return st, nil
}

// SetThinkingMode persists the reasoning toggle for the session.
func (c *Client) SetThinkingMode(ctx context.Context, enabled bool) error {
	if err := c.do(ctx, http.MethodPost, thinkingModePath, thinkingModeRequest{Enabled: enabled}, nil); err != nil {
		return fmt.Errorf("http: thinking mode: %w", err)
	}
	return nil
}

// CancelRequest asks the server to stop generating for the session.
func (c *Client) CancelRequest(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, cancelPath, cancelRequest{Action: "cancel"}, nil); err != nil {
		return fmt.Errorf("http: cancel: %w", err)
	}
	return nil
}

// ClearHistory drops the server-side conversation history.
func (c *Client) ClearHistory(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, clearHistoryPath, struct{}{}, nil); err != nil {
		return fmt.Errorf("http: clear history: %w", err)
	}
	return nil
}

// SubmitReport validates and sends a feedback report.
func (c *Client) SubmitReport(ctx context.Context, r titan.Report) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("http: report: %w", err)
	}
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	body := reportRequest{
		Kind:         reportKinds[r.Kind],
		Title:        strings.TrimSpace(r.Title),
		Description:  strings.TrimSpace(r.Description),
		Steps:        strings.TrimSpace(r.Steps),
		Category:     "geral",
		Priority:     "media",
		ThinkingMode: r.ReasoningEnabled,
		Timestamp:    ts.UTC().Format(time.RFC3339),
	}
	if err := c.do(ctx, http.MethodPost, reportPath, body, nil); err != nil {
		return fmt.Errorf("http: report: %w", err)
	}
	return nil
}

// reportKinds maps report kinds to the service's vocabulary.
var reportKinds = map[titan.ReportKind]string{
	titan.ReportBug:         "bug",
	titan.ReportImprovement: "melhoria",
	titan.ReportProblem:     "problema",
	titan.ReportAnswer:      "resposta",
	titan.ReportGeneral:     "geral",
}

// SubmitVote sends an answer rating. Votes over the client-side budget fail
// with [titan.ErrRateLimited] without contacting the server.
func (c *Client) SubmitVote(ctx context.Context, v titan.Vote) error {
	if v.Rating != titan.RatingLike && v.Rating != titan.RatingDislike {
		return fmt.Errorf("http: vote: unknown rating %q: %w", v.Rating, titan.ErrValidation)
	}
	if !c.votes.Allow() {
		return fmt.Errorf("http: vote: %w", titan.ErrRateLimited)
	}
	ts := v.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	body := voteRequest{
		Type:      string(v.Rating),
		Content:   v.Content,
		SessionID: v.SessionID,
		Timestamp: ts.UTC().Format(time.RFC3339),
	}
	if err := c.do(ctx, http.MethodPost, votePath, body, nil); err != nil {
		return fmt.Errorf("http: vote: %w", err)
	}
	return nil
}

// do sends a JSON request and decodes a JSON response into out when out is
// non-nil. Non-success statuses become *titan.APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseHTTPError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return titan.ErrNoResponseBody
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseHTTPError turns a non-success response into a *titan.APIError. A body
// that is not the service's JSON error shape becomes the message verbatim.
func parseHTTPError(resp *http.Response) error {
	apiErr := &titan.APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr.Message = fmt.Sprintf("failed to read body: %v", err)
		return apiErr
	}
	var payload apiErrorResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	apiErr.Message = payload.message()
	apiErr.Type = payload.Type
	apiErr.ActionRequired = payload.ActionRequired
	apiErr.MessagesUsed = payload.MessagesUsed
	apiErr.Limit = payload.Limit
	apiErr.Remaining = payload.Remaining
	apiErr.CurrentPlan = payload.CurrentPlan
	return apiErr
}
