// Package openalex wraps the OpenAlex works API used to discover candidate
// articles for the corpus.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"curator/internal/records"
)

const (
	defaultBaseURL   = "https://api.openalex.org"
	defaultPageSize  = 200
	defaultPageLimit = 400
	defaultTimeout   = 30 * time.Second

	// firstCursor starts cursor pagination from the beginning.
	firstCursor = "*"
)

// Sort selects the result ordering for a search.
type Sort string

const (
	SortRelevance Sort = "relevance"
	SortNewest    Sort = "newest"
	SortCited     Sort = "cited"
)

func (s Sort) param() string {
	switch s {
	case SortNewest:
		return "publication_year:desc"
	case SortCited:
		return "cited_by_count:desc"
	default:
		return "relevance_score:desc"
	}
}

// Config captures the runtime settings for the search client.
type Config struct {
	BaseURL      string
	ContactEmail string
	// PageLimit caps the total number of works fetched across cursor pages.
	PageLimit int
}

// Client queries the OpenAlex works endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a search client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			BaseURL:      strings.TrimSpace(cfg.BaseURL),
			ContactEmail: strings.TrimSpace(cfg.ContactEmail),
			PageLimit:    cfg.PageLimit,
		},
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.PageLimit <= 0 {
		client.cfg.PageLimit = defaultPageLimit
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Work is one search result, flattened to the fields the pipeline records.
type Work struct {
	ID           string
	Title        string
	Authors      string
	Year         string
	CitedByCount int
	Abstract     string
	Type         string
	DOI          string
	Source       string
	PDFURL       string
}

// Query describes a works search.
type Query struct {
	Expression string
	StartYear  int
	EndYear    int
	Sort       Sort
}

type worksResponse struct {
	Meta struct {
		NextCursor string `json:"next_cursor"`
	} `json:"meta"`
	Results []workPayload `json:"results"`
}

type workPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Authorships []struct {
		Author struct {
			DisplayName string `json:"display_name"`
		} `json:"author"`
	} `json:"authorships"`
	PublicationYear       int              `json:"publication_year"`
	CitedByCount          int              `json:"cited_by_count"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	Type                  string           `json:"type"`
	DOI                   string           `json:"doi"`
	BestOALocation        *struct {
		PDFURL string `json:"pdf_url"`
	} `json:"best_oa_location"`
	PrimaryLocation *struct {
		Source *struct {
			DisplayName string `json:"display_name"`
		} `json:"source"`
	} `json:"primary_location"`
}

// Search pages through works matching the query until the result cap or the
// final cursor is reached.
func (c *Client) Search(ctx context.Context, query Query) ([]Work, error) {
	expression := strings.TrimSpace(query.Expression)
	if expression == "" {
		return nil, fmt.Errorf("openalex search: expression required")
	}

	filter := "title_and_abstract.search:" + expression
	if query.StartYear > 0 && query.EndYear > 0 {
		filter += fmt.Sprintf(",publication_year:%d-%d", query.StartYear, query.EndYear)
	}

	works := make([]Work, 0, defaultPageSize)
	cursor := firstCursor
	for {
		page, err := c.fetchPage(ctx, filter, query.Sort.param(), cursor)
		if err != nil {
			return nil, err
		}
		if len(page.Results) == 0 {
			break
		}
		for _, payload := range page.Results {
			works = append(works, flattenWork(payload))
		}
		if page.Meta.NextCursor == "" || len(works) >= c.cfg.PageLimit {
			break
		}
		cursor = page.Meta.NextCursor
	}
	if len(works) > c.cfg.PageLimit {
		works = works[:c.cfg.PageLimit]
	}
	return works, nil
}

func (c *Client) fetchPage(ctx context.Context, filter, sortParam, cursor string) (*worksResponse, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "works")
	if err != nil {
		return nil, fmt.Errorf("openalex search: build url: %w", err)
	}
	params := url.Values{}
	params.Set("filter", filter)
	params.Set("sort", sortParam)
	params.Set("per-page", strconv.Itoa(defaultPageSize))
	params.Set("cursor", cursor)
	if c.cfg.ContactEmail != "" {
		params.Set("mailto", c.cfg.ContactEmail)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("openalex search: new request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openalex search: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openalex search: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openalex search: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var page worksResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("openalex search: decode response: %w", err)
	}
	return &page, nil
}

func flattenWork(payload workPayload) Work {
	authors := make([]string, 0, len(payload.Authorships))
	for _, authorship := range payload.Authorships {
		if name := strings.TrimSpace(authorship.Author.DisplayName); name != "" {
			authors = append(authors, name)
		}
	}
	work := Work{
		ID:           payload.ID,
		Title:        payload.Title,
		Authors:      strings.Join(authors, ", "),
		CitedByCount: payload.CitedByCount,
		Abstract:     ReconstructAbstract(payload.AbstractInvertedIndex),
		Type:         payload.Type,
		DOI:          records.NormalizeDOI(payload.DOI),
	}
	if payload.PublicationYear > 0 {
		work.Year = strconv.Itoa(payload.PublicationYear)
	}
	if payload.BestOALocation != nil {
		work.PDFURL = payload.BestOALocation.PDFURL
	}
	if payload.PrimaryLocation != nil && payload.PrimaryLocation.Source != nil {
		work.Source = payload.PrimaryLocation.Source.DisplayName
	}
	return work
}

// ReconstructAbstract rebuilds abstract text from OpenAlex's inverted index,
// which maps each word to the positions it occupies.
func ReconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}
	type placed struct {
		position int
		word     string
	}
	ordered := make([]placed, 0, len(invertedIndex))
	for word, positions := range invertedIndex {
		for _, position := range positions {
			ordered = append(ordered, placed{position: position, word: word})
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].position < ordered[j].position })
	words := make([]string, len(ordered))
	for i, entry := range ordered {
		words[i] = entry.word
	}
	return strings.Join(words, " ")
}
