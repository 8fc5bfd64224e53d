package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
)

// FindLinks fetches a listing page and returns the absolute URL of every anchor
// whose href contains all hrefKeys and whose text contains all textKeys.
// Results are in document order and may repeat.
func (c *Client) FindLinks(ctx context.Context, listingURL string, hrefKeys, textKeys []string) ([]string, error) {
	body, err := c.Get(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	return ParseLinks(bytes.NewReader(body), listingURL, hrefKeys, textKeys)
}

// FindLinksAsBrowser is FindLinks sending the browser User-Agent up front
func (c *Client) FindLinksAsBrowser(ctx context.Context, listingURL string, hrefKeys, textKeys []string) ([]string, error) {
	body, err := c.GetAsBrowser(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	return ParseLinks(bytes.NewReader(body), listingURL, hrefKeys, textKeys)
}

// ParseLinks extracts matching anchors from HTML. Anchors without an href are
// skipped, spaces are percent-encoded and relative hrefs resolve against pageURL.
func ParseLinks(r io.Reader, pageURL string, hrefKeys, textKeys []string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	links := make([]string, 0)
	doc.Find("a").Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if !containsAll(href, hrefKeys) || !containsAll(sel.Text(), textKeys) {
			return
		}

		ref, err := url.Parse(strings.ReplaceAll(href, " ", "%20"))
		if err != nil {
			return
		}
		links = append(links, base.ResolveReference(ref).String())
	})

	return links, nil
}

// containsAll matches keys against s and against its unescaped form, since
// publishers mix literal and percent-encoded spaces in hrefs
func containsAll(s string, keys []string) bool {
	unescaped := s
	if u, err := url.PathUnescape(s); err == nil {
		unescaped = u
	}
	for _, k := range keys {
		if !strings.Contains(s, k) && !strings.Contains(unescaped, k) {
			return false
		}
	}
	return true
}

// FileName returns the unescaped last path segment of a URL
func FileName(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	seg := u.Path[strings.LastIndex(u.Path, "/")+1:]
	if s, err := url.PathUnescape(seg); err == nil {
		return s
	}
	return seg
}

// DateFromURL finds pattern in the unescaped link and parses the match with
// layout into the first of its month
func DateFromURL(link string, pattern *regexp.Regexp, layout string) (time.Time, error) {
	text := link
	if u, err := url.PathUnescape(link); err == nil {
		text = u
	}
	m := pattern.FindString(text)
	if m == "" {
		return time.Time{}, record.Invalid(link, fmt.Sprintf("a date matching %s", pattern))
	}
	return record.ParseMonth(m, layout)
}
