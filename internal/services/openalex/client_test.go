package openalex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReconstructAbstract(t *testing.T) {
	index := map[string][]int{
		"nitrogen": {1},
		"soil":     {0, 3},
		"in":       {2},
	}
	got := ReconstructAbstract(index)
	want := "soil nitrogen in soil"
	if got != want {
		t.Fatalf("abstract = %q, want %q", got, want)
	}
}

func TestReconstructAbstractEmpty(t *testing.T) {
	if got := ReconstructAbstract(nil); got != "" {
		t.Fatalf("abstract = %q, want empty", got)
	}
}

func TestSearchPagesUntilCap(t *testing.T) {
	page := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/works" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("mailto"); got != "curator@example.org" {
			t.Fatalf("mailto = %q", got)
		}
		page++
		results := make([]map[string]any, 0, 2)
		for i := 0; i < 2; i++ {
			results = append(results, map[string]any{
				"id":               "W" + r.URL.Query().Get("cursor"),
				"title":            "Work",
				"publication_year": 2020,
				"doi":              "https://doi.org/10.1/abc",
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"meta":    map[string]any{"next_cursor": "next"},
			"results": results,
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, ContactEmail: "curator@example.org", PageLimit: 4})
	works, err := client.Search(context.Background(), Query{Expression: "soil nitrogen"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(works) != 4 {
		t.Fatalf("works = %d, want capped at 4", len(works))
	}
	if page != 2 {
		t.Fatalf("pages fetched = %d, want 2", page)
	}
	if works[0].DOI != "10.1/abc" {
		t.Fatalf("doi = %q, want resolver prefix stripped", works[0].DOI)
	}
	if works[0].Year != "2020" {
		t.Fatalf("year = %q", works[0].Year)
	}
}

func TestSearchStopsOnEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"meta":    map[string]any{"next_cursor": "next"},
			"results": []any{},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	works, err := client.Search(context.Background(), Query{Expression: "anything"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(works) != 0 {
		t.Fatalf("works = %d, want 0", len(works))
	}
}

func TestSearchRequiresExpression(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.Search(context.Background(), Query{Expression: "  "}); err == nil {
		t.Fatal("expected error for empty expression")
	}
}

func TestSortParam(t *testing.T) {
	cases := map[Sort]string{
		SortRelevance: "relevance_score:desc",
		SortNewest:    "publication_year:desc",
		SortCited:     "cited_by_count:desc",
		Sort("other"): "relevance_score:desc",
	}
	for input, want := range cases {
		if got := input.param(); got != want {
			t.Errorf("param(%q) = %q, want %q", input, got, want)
		}
	}
}
