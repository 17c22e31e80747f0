package issuetracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Issue is one open item assigned to a developer in the external tracker.
type Issue struct {
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Status   string `json:"status"`
	Assignee string `json:"assignee"`
	URL      string `json:"url"`
}

// IssuePage is a window of the assignee's open issues.
type IssuePage struct {
	Issues   []Issue `json:"issues"`
	Offset   int     `json:"offset"`
	PageSize int     `json:"page_size"`
	Total    int     `json:"total"`
}

// ClientAPI is the tracker surface the handlers consume.
type ClientAPI interface {
	ListOpenIssues(ctx context.Context, email string, offset, pageSize int) (*IssuePage, error)
	UserExists(ctx context.Context, email string) (bool, error)
}

// Client is a thin read-only client for the issue tracker REST API. Results
// are never cached and failures are not retried; a broken tracker degrades
// to an internal error for the caller.
type Client struct {
	baseURL    string
	apiToken   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

type Config struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiToken:   cfg.APIToken,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create tracker request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tracker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tracker returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode tracker response: %w", err)
	}
	return nil
}

// ListOpenIssues pages through the open issues assigned to an email.
func (c *Client) ListOpenIssues(ctx context.Context, email string, offset, pageSize int) (*IssuePage, error) {
	if offset < 0 {
		offset = 0
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	query := url.Values{}
	query.Set("assignee", email)
	query.Set("status", "open")
	query.Set("offset", strconv.Itoa(offset))
	query.Set("page_size", strconv.Itoa(pageSize))

	var page IssuePage
	if err := c.get(ctx, "/api/issues", query, &page); err != nil {
		c.logger.Error("failed to list tracker issues", "error", err, "assignee", email)
		return nil, internal.NewExternalError("issue tracker unavailable", internal.ErrCodeIssueTrackerFailed, err)
	}
	page.Offset = offset
	page.PageSize = pageSize

	return &page, nil
}

// UserExists checks whether the tracker knows the email as a user.
func (c *Client) UserExists(ctx context.Context, email string) (bool, error) {
	query := url.Values{}
	query.Set("email", email)

	var result struct {
		Exists bool `json:"exists"`
	}
	if err := c.get(ctx, "/api/users/exists", query, &result); err != nil {
		c.logger.Error("failed to check tracker user", "error", err, "email", email)
		return false, internal.NewExternalError("issue tracker unavailable", internal.ErrCodeIssueTrackerFailed, err)
	}

	return result.Exists, nil
}
