// ABOUTME: HTTP client for the markdown conversion service's POST /api/convert endpoint.
// ABOUTME: Sends a ULID X-Request-ID per call, enforces a timeout and decodes typed error payloads.
package client

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

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/2389-research/mdpreview/logging"
)

const (
	convertPath     = "/api/convert"
	requestIDHeader = "X-Request-ID"
	maxResponseSize = 32 << 20
)

// Client calls the conversion service.
type Client struct {
	endpoint  string
	http      *http.Client
	timeout   time.Duration
	logger    logrus.FieldLogger
	userAgent string
}

type convertRequest struct {
	Markdown string `json:"markdown"`
}

type convertResponse struct {
	HTML  string `json:"html"`
	Error string `json:"error"`
}

// New returns a Client for the service rooted at baseURL (e.g. "http://localhost:3001").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host", baseURL)
	}

	c := &Client{
		endpoint:  strings.TrimSuffix(u.String(), "/") + convertPath,
		http:      &http.Client{},
		timeout:   DefaultTimeout,
		userAgent: "mdpreview",
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = logging.OrDiscard(c.logger)
	return c, nil
}

// Endpoint returns the full conversion URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Convert sends markdown to the service and returns the rendered HTML.
// Blank input returns ErrEmptyMarkdown without a request. Non-2xx responses
// return *APIError; transport failures and timeouts are wrapped.
func (c *Client) Convert(ctx context.Context, markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", ErrEmptyMarkdown
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(convertRequest{Markdown: markdown})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	requestID := ulid.Make().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)

	log := c.logger.WithField("request_id", requestID)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Debug("conversion request failed")
		return "", fmt.Errorf("calling conversion service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var payload convertResponse
	decodeErr := json.Unmarshal(raw, &payload)

	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Microsecond).String(),
	}).Debug("conversion response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    payload.Error,
			RequestID:  requestID,
		}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decoding response: %w", decodeErr)
	}
	return payload.HTML, nil
}

// IsTimeout reports whether err came from the request deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
