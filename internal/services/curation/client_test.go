package curation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientCategorize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/categorize" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload struct {
			EncodedContent string   `json:"encoded_content"`
			ContentType    string   `json:"content_type"`
			Headers        []string `json:"headers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.ContentType != "pdf" {
			t.Fatalf("content_type = %q", payload.ContentType)
		}
		if payload.Headers == nil {
			t.Fatal("headers must be present even when empty")
		}
		decoded, err := base64.StdEncoding.DecodeString(payload.EncodedContent)
		if err != nil {
			t.Fatalf("decode content: %v", err)
		}
		if string(decoded) != "%PDF-1.4 test" {
			t.Fatalf("content = %q", decoded)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"category": "SOIL_SCIENCE"})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	category, err := client.Categorize(context.Background(), []byte("%PDF-1.4 test"))
	if err != nil {
		t.Fatalf("Categorize returned error: %v", err)
	}
	if category != "SOIL_SCIENCE" {
		t.Fatalf("category = %q", category)
	}
}

func TestClientCategorizeEmptyCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"category": "  "})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	if _, err := client.Categorize(context.Background(), []byte("%PDF")); err == nil {
		t.Fatal("expected error for empty category")
	}
}

func TestClientExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/curadoria" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload struct {
			Headers  []string `json:"headers"`
			Category string   `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(payload.Headers) != 3 {
			t.Fatalf("headers = %v", payload.Headers)
		}
		if payload.Category != "SOIL_SCIENCE" {
			t.Fatalf("category = %q", payload.Category)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"title":    "Soil nitrogen dynamics",
			"year":     2021,
			"approval": true,
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	metadata, err := client.Extract(context.Background(), []byte("%PDF"), []string{"title", "year", "approval"}, "SOIL_SCIENCE")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if metadata["title"] != "Soil nitrogen dynamics" {
		t.Fatalf("title = %q", metadata["title"])
	}
	if metadata["year"] != "2021" {
		t.Fatalf("year = %q, want numeric rendered as text", metadata["year"])
	}
	if metadata["approval"] != "true" {
		t.Fatalf("approval = %q", metadata["approval"])
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"category": "AGRONOMY"})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL},
		WithRetryBackoff(time.Millisecond, time.Millisecond),
		WithSleeper(func(time.Duration) {}))
	category, err := client.Categorize(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("Categorize returned error: %v", err)
	}
	if category != "AGRONOMY" {
		t.Fatalf("category = %q", category)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, WithSleeper(func(time.Duration) {}))
	if _, err := client.Categorize(context.Background(), []byte("%PDF")); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}
