package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"
)

const listingHTML = `<html><body>
<a href="/media/jan-2023.pdf">January 2023 Revenue Report</a>
<a href="/media/feb-2023.pdf">February 2023 Summary</a>
<a href="/docs/mar-2023.pdf">March 2023 Revenue Report</a>
<a>Revenue without href</a>
<a href="/media/fy.pdf">FY Report</a>
<a href="media/apr 2023.pdf">April 2023 Revenue Report</a>
<a href="/about">About</a>
<a href="/contact">Contact</a>
<a href="https://other.example.com/revenue">External revenue</a>
<a href="/media/">Media</a>
</body></html>`

func TestParseLinks(t *testing.T) {
	tests := []struct {
		name     string
		hrefKeys []string
		textKeys []string
		want     []string
	}{
		{
			name:     "href and text keys",
			hrefKeys: []string{"media"},
			textKeys: []string{"Revenue"},
			want: []string{
				"https://state.example.gov/media/jan-2023.pdf",
				"https://state.example.gov/reports/media/apr%202023.pdf",
			},
		},
		{
			name:     "href only",
			hrefKeys: []string{"mar-2023"},
			want:     []string{"https://state.example.gov/docs/mar-2023.pdf"},
		},
		{
			name:     "no keys returns every anchor with an href",
			hrefKeys: nil,
			textKeys: nil,
			want: []string{
				"https://state.example.gov/media/jan-2023.pdf",
				"https://state.example.gov/media/feb-2023.pdf",
				"https://state.example.gov/docs/mar-2023.pdf",
				"https://state.example.gov/media/fy.pdf",
				"https://state.example.gov/reports/media/apr%202023.pdf",
				"https://state.example.gov/about",
				"https://state.example.gov/contact",
				"https://other.example.com/revenue",
				"https://state.example.gov/media/",
			},
		},
		{
			name:     "unescaped key matches literal space",
			hrefKeys: []string{"apr 2023"},
			want:     []string{"https://state.example.gov/reports/media/apr%202023.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLinks(strings.NewReader(listingHTML), "https://state.example.gov/reports/index.html", tt.hrefKeys, tt.textKeys)
			if err != nil {
				t.Fatalf("ParseLinks() error = %v", err)
			}
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Errorf("ParseLinks() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(tt.want, "\n"))
			}
		})
	}
}

func TestParseLinks_KeepsDuplicates(t *testing.T) {
	html := `<a href="/a.pdf">Report</a><a href="/a.pdf">Report</a>`
	got, err := ParseLinks(strings.NewReader(html), "https://x.example/", nil, []string{"Report"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d links, want 2", len(got))
	}
}

func TestClient_FindLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingHTML)
	}))
	defer srv.Close()

	c := New(Options{Timeout: 5 * time.Second})
	links, err := c.FindLinks(context.Background(), srv.URL+"/reports/", []string{"media"}, []string{"Revenue"})
	if err != nil {
		t.Fatalf("FindLinks() error = %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("FindLinks() = %v, want 2 links", links)
	}
	if links[0] != srv.URL+"/media/jan-2023.pdf" {
		t.Errorf("links[0] = %s", links[0])
	}
}

func TestClient_Get_RetriesForbidden(t *testing.T) {
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.UserAgent())
		if r.UserAgent() != BrowserUA {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	c := New(Options{})
	body, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
	if len(agents) != 2 || agents[0] != DefaultUA || agents[1] != BrowserUA {
		t.Errorf("user agents = %v", agents)
	}
}

func TestClient_Get_StatusError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		requests int
	}{
		{"not found is not retried", http.StatusNotFound, 1},
		{"forbidden is retried once", http.StatusForbidden, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := New(Options{}).Get(context.Background(), srv.URL)
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("Get() error = %v, want *StatusError", err)
			}
			if se.Code != tt.status {
				t.Errorf("Code = %d, want %d", se.Code, tt.status)
			}
			if requests != tt.requests {
				t.Errorf("requests = %d, want %d", requests, tt.requests)
			}
		})
	}
}

func TestClient_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "%PDF-1.4")
	}))
	defer srv.Close()

	doc, err := New(Options{}).Download(context.Background(), srv.URL+"/x.pdf", "report.pdf")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	data, err := os.ReadFile(doc.Path)
	if err != nil || string(data) != "%PDF-1.4" {
		t.Fatalf("ReadFile() = %q, %v", data, err)
	}

	if err := doc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(doc.Path); !os.IsNotExist(err) {
		t.Errorf("scratch file still present: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestFileName(t *testing.T) {
	got := FileName("https://www.gaming.ny.gov/pdf/Monthly%20Mobile%20Sports%20Wagering%20Report%20FanDuel.xlsx")
	if got != "Monthly Mobile Sports Wagering Report FanDuel.xlsx" {
		t.Errorf("FileName() = %q", got)
	}
}

func TestDateFromURL(t *testing.T) {
	d, err := DateFromURL("https://x/media/Sports%20Wagering%202022-07.pdf", regexp.MustCompile(`\d{4}-\d{2}`), "2006-01")
	if err != nil {
		t.Fatalf("DateFromURL() error = %v", err)
	}
	if d.Year() != 2022 || d.Month() != time.July || d.Day() != 1 {
		t.Errorf("DateFromURL() = %v", d)
	}

	if _, err := DateFromURL("https://x/media/report.pdf", regexp.MustCompile(`\d{4}-\d{2}`), "2006-01"); err == nil {
		t.Error("expected error for URL without a date")
	}
}
