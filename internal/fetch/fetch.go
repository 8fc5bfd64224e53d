// Package fetch downloads listing pages and report documents from state
// regulator sites and discovers report links on listing pages.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pfrederiksen/gaming-revenue/internal/logger"
)

const (
	DefaultTimeout = 60 * time.Second
	DefaultUA      = "gaming-revenue/1.0 (github.com/pfrederiksen/gaming-revenue)"
	BrowserUA      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/99.0.4844.83 Safari/537.36"
)

// StatusError is returned for any non-200 response that was not recovered
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.Code, e.URL)
}

// Options configures a Client
type Options struct {
	Timeout          time.Duration
	UserAgent        string
	BrowserUserAgent string
	// Transport replaces the default HTTP transport, e.g. to route requests
	// to fixtures
	Transport http.RoundTripper
}

// Client fetches pages and documents over HTTP
type Client struct {
	http      *resty.Client
	userAgent string
	browserUA string
}

// New creates a Client. Zero options fall back to the package defaults.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUA
	}
	if opts.BrowserUserAgent == "" {
		opts.BrowserUserAgent = BrowserUA
	}

	r := resty.New().SetTimeout(opts.Timeout)
	if opts.Transport != nil {
		r.SetTransport(opts.Transport)
	}
	return &Client{
		http:      r,
		userAgent: opts.UserAgent,
		browserUA: opts.BrowserUserAgent,
	}
}

// Get fetches url. A 403 is retried once with a desktop browser User-Agent;
// any other non-200 status is a *StatusError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, code, err := c.get(ctx, url, c.userAgent)
	if err != nil {
		return nil, err
	}
	if code == http.StatusForbidden {
		logger.Debug("Retrying with browser user agent", logger.Fields{"url": url})
		body, code, err = c.get(ctx, url, c.browserUA)
		if err != nil {
			return nil, err
		}
	}
	if code != http.StatusOK {
		return nil, &StatusError{URL: url, Code: code}
	}
	return body, nil
}

// GetAsBrowser fetches url with the browser User-Agent from the first request
func (c *Client) GetAsBrowser(ctx context.Context, url string) ([]byte, error) {
	body, code, err := c.get(ctx, url, c.browserUA)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, &StatusError{URL: url, Code: code}
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url, userAgent string) ([]byte, int, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", userAgent).
		Get(url)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching %s: %w", url, err)
	}
	return resp.Body(), resp.StatusCode(), nil
}

// Document is a downloaded file in its own scratch directory. Close removes it.
type Document struct {
	URL  string
	Path string
	dir  string
}

// Close deletes the document's scratch directory. It is safe to call more than once.
func (d *Document) Close() error {
	if d == nil || d.dir == "" {
		return nil
	}
	err := os.RemoveAll(d.dir)
	d.dir = ""
	return err
}

// Download fetches url into a fresh scratch file named name. The caller must
// Close the returned document.
func (c *Client) Download(ctx context.Context, url, name string) (*Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return WriteDocument(url, name, body)
}

// DownloadAsBrowser is Download with the browser User-Agent from the first request
func (c *Client) DownloadAsBrowser(ctx context.Context, url, name string) (*Document, error) {
	body, err := c.GetAsBrowser(ctx, url)
	if err != nil {
		return nil, err
	}
	return WriteDocument(url, name, body)
}

// WriteDocument stores body in a new scratch directory
func WriteDocument(url, name string, body []byte) (*Document, error) {
	dir, err := os.MkdirTemp("", "gaming-revenue-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}

	doc := &Document{URL: url, Path: filepath.Join(dir, filepath.Base(name)), dir: dir}
	if err := os.WriteFile(doc.Path, body, 0644); err != nil {
		doc.Close() // nolint:errcheck
		return nil, fmt.Errorf("writing %s: %w", doc.Path, err)
	}
	return doc, nil
}
