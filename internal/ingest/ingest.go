// Package ingest fetches a job-posting URL and pulls out the fields needed
// to pre-fill a job opportunity.
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; JobTrack/1.0)"

// Posting holds the fields extracted from a job-posting page
type Posting struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

// Fetcher retrieves and parses job postings
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a Fetcher with the default timeout
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
	}
}

// Fetch downloads the posting page and extracts its title and company
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (*Posting, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid posting URL %q", urlStr)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed for %s: %w", urlStr, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed for %s: HTTP status %d", urlStr, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	posting := ParsePosting(doc)
	posting.URL = urlStr
	if posting.Title == "" {
		return nil, fmt.Errorf("no job title found at %s", urlStr)
	}
	return posting, nil
}

// ParsePosting extracts the job title and company from a parsed page. It
// prefers Open Graph metadata and falls back to common job-board markup.
func ParsePosting(doc *goquery.Document) *Posting {
	p := &Posting{}

	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		p.Title = strings.TrimSpace(v)
	}
	if p.Title == "" {
		for _, sel := range []string{"h1.job-title", "h1[data-testid='job-title']", ".posting-headline h2", "h1"} {
			if s := doc.Find(sel).First(); s.Length() > 0 {
				p.Title = strings.TrimSpace(s.Text())
				break
			}
		}
	}
	if p.Title == "" {
		p.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if v, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		p.Company = strings.TrimSpace(v)
	}
	if p.Company == "" {
		for _, sel := range []string{".company-name", "[data-testid='company-name']", ".posting-categories .company", ".topcard__org-name-link"} {
			if s := doc.Find(sel).First(); s.Length() > 0 {
				p.Company = strings.TrimSpace(s.Text())
				break
			}
		}
	}

	// "Senior Gopher - Initech" style titles carry the company after the
	// separator when nothing else did.
	if p.Company == "" {
		for _, sep := range []string{" - ", " | ", " at "} {
			if i := strings.LastIndex(p.Title, sep); i > 0 {
				p.Company = strings.TrimSpace(p.Title[i+len(sep):])
				p.Title = strings.TrimSpace(p.Title[:i])
				break
			}
		}
	}
	return p
}
