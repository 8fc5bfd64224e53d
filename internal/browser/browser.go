// Package browser drives a headless Chrome session for reports that are only
// produced by submitting an interactive web form.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/pfrederiksen/gaming-revenue/internal/logger"
)

// Options configures a Session
type Options struct {
	Headless  bool
	ExecPath  string
	UserAgent string
	// Settle is the fixed wait after an action that triggers rendering or a download
	Settle time.Duration
}

// Session is one browser tab with its own download directory. Each report
// downloads into a fresh subdirectory of dir.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	dir         string
	current     string
	settle      time.Duration
}

// Start launches Chrome. Downloads land in a private scratch directory that
// Close removes.
func Start(ctx context.Context, opts Options) (*Session, error) {
	dir, err := os.MkdirTemp("", "gaming-revenue-browser-*")
	if err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         tabCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		dir:         dir,
		settle:      opts.Settle,
	}
	if s.settle <= 0 {
		s.settle = 3 * time.Second
	}

	if err := s.ResetDownloads(); err != nil {
		s.Close() // nolint:errcheck
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	logger.Debug("Browser started", logger.Fields{"download_dir": dir})
	return s, nil
}

// Navigate loads url and waits for the page to settle
func (s *Session) Navigate(url string) error {
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url), chromedp.Sleep(s.settle)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

const selectScript = `(function(container, index, text) {
	const boxes = document.querySelectorAll(container);
	if (index >= boxes.length) { return false; }
	const sel = boxes[index].querySelector('select');
	if (!sel) { return false; }
	for (const o of sel.options) {
		if (o.text.trim() === text) {
			sel.value = o.value;
			sel.dispatchEvent(new Event('change', {bubbles: true}));
			return true;
		}
	}
	return false;
})(%q, %d, %q)`

// SelectOption picks the option labeled text in the select inside the
// index-th element matching container
func (s *Session) SelectOption(container string, index int, text string) error {
	var ok bool
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(fmt.Sprintf(selectScript, container, index, text), &ok)); err != nil {
		return fmt.Errorf("selecting %q: %w", text, err)
	}
	if !ok {
		return fmt.Errorf("no option %q in %s[%d]", text, container, index)
	}
	return nil
}

// Click clicks the first element matching selector
func (s *Session) Click(selector string) error {
	if err := chromedp.Run(s.ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("clicking %s: %w", selector, err)
	}
	return nil
}

// ErrNoDownload is returned when the expected file never appeared
var ErrNoDownload = errors.New("download not found")

// ResetDownloads points the browser at a new empty download directory and
// removes the previous one. A download that finishes late from an earlier
// report can then never be read as the next report's file.
func (s *Session) ResetDownloads() error {
	next, err := os.MkdirTemp(s.dir, "report-*")
	if err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}
	err = chromedp.Run(s.ctx, cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).
		WithDownloadPath(next).
		WithEventsEnabled(true))
	if err != nil {
		os.RemoveAll(next) // nolint:errcheck
		return fmt.Errorf("setting download directory: %w", err)
	}
	if s.current != "" {
		if err := os.RemoveAll(s.current); err != nil {
			logger.Warn("Failed to remove download directory", logger.Fields{"dir": s.current, "error": err.Error()})
		}
	}
	s.current = next
	return nil
}

// Download waits for the settle delay, then reads the file from the current
// download directory and empties it
func (s *Session) Download(name string) ([]byte, error) {
	if err := chromedp.Run(s.ctx, chromedp.Sleep(s.settle)); err != nil {
		return nil, err
	}
	return takeDownload(s.current, name)
}

// takeDownload reads name from dir, or the only finished file when the
// browser renamed it, and removes everything in dir on every path
func takeDownload(dir, name string) ([]byte, error) {
	defer clearDir(dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading download directory: %w", err)
	}
	var finished []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".crdownload") {
			continue
		}
		if e.Name() == name {
			finished = []string{name}
			break
		}
		finished = append(finished, e.Name())
	}

	switch len(finished) {
	case 0:
		return nil, fmt.Errorf("%s: %w", name, ErrNoDownload)
	case 1:
		data, err := os.ReadFile(filepath.Join(dir, finished[0]))
		if err != nil {
			return nil, fmt.Errorf("reading download: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%s: %d files downloaded: %s", name, len(finished), strings.Join(finished, ", "))
	}
}

func clearDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		os.RemoveAll(filepath.Join(dir, e.Name())) // nolint:errcheck
	}
}

// Close shuts the browser down and removes the download directory
func (s *Session) Close() error {
	s.cancel()
	s.allocCancel()
	return os.RemoveAll(s.dir)
}
