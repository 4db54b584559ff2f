// Package toggl talks to the Toggl Track HTTP API: workspace listing,
// project listing and the weekly report used for recorded times.
package toggl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/sadopc/togoal/internal/period"
)

const (
	defaultBaseURL    = "https://www.toggl.com"
	defaultReportsURL = "https://api.track.toggl.com"
	userAgent         = "togoal"
)

// Failure stages for a remote call. The UI surfaces these differently, so
// the client keeps them distinguishable instead of flattening everything
// into one error string.
type ErrorKind int

const (
	// KindTransport covers network-level failures before any response.
	KindTransport ErrorKind = iota
	// KindStatus means the server answered with a non-success status.
	KindStatus
	// KindParse means the response body could not be decoded.
	KindParse
)

// RequestError is the error type for all failed remote calls.
type RequestError struct {
	Op     string
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: server responded with status %d", e.Op, e.Status)
	case KindParse:
		return fmt.Sprintf("%s: parse response: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// Workspace is a remote workspace.
type Workspace struct {
	ID   string
	Name string
}

// Client is a Toggl Track API client for one credential. The zero base URLs
// mean production; tests point them at an httptest server.
type Client struct {
	token      string
	baseURL    string
	reportsURL string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides both API hosts, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
		c.reportsURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func New(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		reportsURL: defaultReportsURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Workspaces lists the workspaces the credential can see.
func (c *Client) Workspaces(ctx context.Context) ([]Workspace, error) {
	const op = "retrieve workspaces"

	body, err := c.get(ctx, op, c.baseURL+"/api/v8/workspaces")
	if err != nil {
		return nil, err
	}

	var raw []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &RequestError{Op: op, Kind: KindParse, Err: err}
	}

	workspaces := make([]Workspace, len(raw))
	for i, w := range raw {
		workspaces[i] = Workspace{ID: strconv.FormatInt(w.ID, 10), Name: w.Name}
	}
	return workspaces, nil
}

// ProjectNames lists the project names in a workspace.
func (c *Client) ProjectNames(ctx context.Context, workspaceID string) ([]string, error) {
	const op = "retrieve projects"

	body, err := c.get(ctx, op, c.baseURL+"/api/v8/workspaces/"+url.PathEscape(workspaceID)+"/projects")
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &RequestError{Op: op, Kind: KindParse, Err: err}
	}

	names := make([]string, len(raw))
	for i, p := range raw {
		names[i] = p.Name
	}
	return names, nil
}

// RecordedTimes returns recorded hours per project name for the date range,
// formatted with two decimals. Time recordings without a project are
// skipped.
func (c *Client) RecordedTimes(ctx context.Context, workspaceID string, r period.Range) (map[string]string, error) {
	const op = "retrieve recorded times"

	q := url.Values{}
	q.Set("user_agent", userAgent)
	q.Set("workspace_id", workspaceID)
	q.Set("since", r.Start.Format(period.DateFormat))
	q.Set("until", r.End.Format(period.DateFormat))

	body, err := c.get(ctx, op, c.reportsURL+"/reports/api/v2/weekly?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var raw struct {
		Data []struct {
			Title struct {
				Project string `json:"project"`
			} `json:"title"`
			// Totals may contain nulls for days without recordings; the
			// last element is the range total in milliseconds.
			Totals []*float64 `json:"totals"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &RequestError{Op: op, Kind: KindParse, Err: err}
	}

	times := make(map[string]string)
	for _, entry := range raw.Data {
		if entry.Title.Project == "" || len(entry.Totals) == 0 {
			continue
		}
		total := entry.Totals[len(entry.Totals)-1]
		if total == nil {
			continue
		}
		times[entry.Title.Project] = fmt.Sprintf("%.2f", *total/3600000.0)
	}
	return times, nil
}

func (c *Client) get(ctx context.Context, op, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &RequestError{Op: op, Kind: KindTransport, Err: err}
	}
	req.SetBasicAuth(c.token, "api_token")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{Op: op, Kind: KindStatus, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Op: op, Kind: KindTransport, Err: err}
	}
	return body, nil
}
