// Package tiktok talks to the TikTok web comment-listing endpoint.
package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultBaseURL = "https://www.tiktok.com"

	commentListPath = "/api/comment/list/"

	// webAID identifies the desktop web app to the API.
	webAID = "1988"

	// MaxPageSize is the largest count the endpoint is asked for per call.
	MaxPageSize = 50

	maxBodyBytes = 8 << 20
)

// ErrDecode wraps responses whose body is not a JSON object.
var ErrDecode = errors.New("tiktok: non-JSON response")

// StatusError is returned when the endpoint answers with anything but 200.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tiktok: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("tiktok: unexpected status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL string
	session *Session
}

func NewClient(baseURL string, session *Session) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if session == nil {
		session = NewSession(SessionOptions{})
	}

	return &Client{
		baseURL: baseURL,
		session: session,
	}
}

// Session returns the session backing c.
func (c *Client) Session() *Session {
	return c.session
}

// FetchPage requests one page of comments for awemeID starting at cursor.
// count is clamped to [1, MaxPageSize]. No retries are attempted.
func (c *Client) FetchPage(ctx context.Context, awemeID string, cursor int64, count int) (*Page, error) {
	awemeID = strings.TrimSpace(awemeID)
	if awemeID == "" {
		return nil, fmt.Errorf("tiktok: aweme id is required")
	}
	count = min(max(count, 1), MaxPageSize)

	httpClient, err := c.session.HTTPClient()
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL + commentListPath)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("aid", webAID)
	q.Set("aweme_id", awemeID)
	q.Set("cursor", strconv.FormatInt(cursor, 10))
	q.Set("count", strconv.Itoa(count))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w for aweme %s: %v", ErrDecode, awemeID, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w for aweme %s: null body", ErrDecode, awemeID)
	}

	return ParsePage(payload), nil
}
