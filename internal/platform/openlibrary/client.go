// Package openlibrary is a small client for the Open Library books API,
// used to pre-fill catalog records from an ISBN.
package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var ErrNotFound = errors.New("openlibrary: no record for isbn")

type Client struct {
	httpClient  *http.Client
	userAgent   string
	baseURL     string
	limiter     *rate.Limiter
	maxRetries  int
	backoffUnit time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the first retry delay; later retries double it.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoffUnit = d }
}

func NewClient(userAgent string, rps float64, maxRetries int, opts ...Option) *Client {
	if rps <= 0 {
		rps = 1
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:   userAgent,
		baseURL:     "https://openlibrary.org",
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries:  maxRetries,
		backoffUnit: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type publisher struct {
	Name string `json:"name"`
}

// bookDetails matches api/books?jscmd=data
type bookDetails struct {
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Publishers  []publisher `json:"publishers"`
	PublishDate string      `json:"publish_date"`
	Cover       struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
	} `json:"cover"`
	Authors []struct {
		URL  string `json:"url"`
		Name string `json:"name"`
	} `json:"authors"`
	Subjects []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"subjects"`
	NumberOfPages int             `json:"number_of_pages"`
	Notes         json.RawMessage `json:"notes"`
	Excerpts      []struct {
		Text string `json:"text"`
	} `json:"excerpts"`
}

// Edition is the normalized metadata of one ISBN.
type Edition struct {
	ISBN          string
	Title         string
	Authors       []string
	Publisher     string
	PublishedYear *int
	PageCount     *int
	Subjects      []string
	CoverURL      string
	Description   string
}

var yearRe = regexp.MustCompile(`\b(1\d{3}|20\d{2})\b`)

// LookupISBN fetches one edition. ErrNotFound means Open Library answered
// but has no record.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (*Edition, error) {
	key := "ISBN:" + isbn
	u := fmt.Sprintf("%s/api/books?bibkeys=%s&jscmd=data&format=json", c.baseURL, url.QueryEscape(key))

	var res map[string]bookDetails
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	d, ok := res[key]
	if !ok {
		return nil, ErrNotFound
	}
	return d.toEdition(isbn), nil
}

func (d bookDetails) toEdition(isbn string) *Edition {
	e := &Edition{
		ISBN:     isbn,
		Title:    strings.TrimSpace(d.Title),
		CoverURL: d.Cover.Large,
	}
	if d.Subtitle != "" {
		e.Title = e.Title + ": " + strings.TrimSpace(d.Subtitle)
	}
	if e.CoverURL == "" {
		e.CoverURL = d.Cover.Medium
	}
	for _, a := range d.Authors {
		if a.Name != "" {
			e.Authors = append(e.Authors, a.Name)
		}
	}
	if len(d.Publishers) > 0 {
		e.Publisher = d.Publishers[0].Name
	}
	if m := yearRe.FindString(d.PublishDate); m != "" {
		if y, err := strconv.Atoi(m); err == nil {
			e.PublishedYear = &y
		}
	}
	if d.NumberOfPages > 0 {
		n := d.NumberOfPages
		e.PageCount = &n
	}
	for _, s := range d.Subjects {
		e.Subjects = append(e.Subjects, s.Name)
	}
	e.Description = noteText(d.Notes)
	if e.Description == "" && len(d.Excerpts) > 0 {
		e.Description = d.Excerpts[0].Text
	}
	return e
}

// noteText accepts notes as either a string or {type, value}.
func noteText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var typed struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &typed); err == nil {
		return typed.Value
	}
	return ""
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := c.backoffUnit * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		retry, err := c.do(ctx, url, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("openlibrary: after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, url string, target any) (retry bool, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("openlibrary: unexpected status code: %d", resp.StatusCode)
		return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, err
	}

	return false, json.NewDecoder(resp.Body).Decode(target)
}
