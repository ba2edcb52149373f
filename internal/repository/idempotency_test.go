package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonnyWalker81/moodlens/backend/pkg/supabase"
)

func TestIdempotencyRepository_Get(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantNil    bool
		wantStatus int
	}{
		{name: "unseen key", body: `[]`, wantNil: true},
		{name: "stored response", body: `[{"status_code":201,"response_body":{"id":"e1"},"created_at":"2024-04-01T08:00:00Z"}]`, wantStatus: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			repo := NewIdempotencyRepository(supabase.NewClient(server.URL, "service-key"))
			resp, err := repo.Get(context.Background(), "key-1", "POST /api/v1/entries", "user-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if resp != nil {
					t.Fatalf("expected nil response, got %+v", resp)
				}
				return
			}
			if resp == nil || resp.StatusCode != tt.wantStatus {
				t.Fatalf("unexpected response: %+v", resp)
			}
			if !strings.Contains(string(resp.ResponseBody), `"e1"`) {
				t.Errorf("response body = %s", resp.ResponseBody)
			}
			if !strings.Contains(gotQuery, "key=eq.key-1") || !strings.Contains(gotQuery, "user_id=eq.user-1") {
				t.Errorf("query %q missing filters", gotQuery)
			}
		})
	}
}

func TestIdempotencyRepository_Store(t *testing.T) {
	t.Run("inserts the response", func(t *testing.T) {
		var body map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		repo := NewIdempotencyRepository(supabase.NewClient(server.URL, "service-key"))
		if err := repo.Store(context.Background(), "key-1", "POST /api/v1/entries", "user-1", []byte(`{"id":"e1"}`), http.StatusCreated); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if body["key"] != "key-1" || body["status_code"] != float64(http.StatusCreated) {
			t.Errorf("unexpected insert body: %v", body)
		}
	})

	t.Run("existing key is kept", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"duplicate key"}`))
		}))
		defer server.Close()

		repo := NewIdempotencyRepository(supabase.NewClient(server.URL, "service-key"))
		if err := repo.Store(context.Background(), "key-1", "r", "user-1", nil, http.StatusCreated); err != nil {
			t.Errorf("conflict should not be an error, got %v", err)
		}
	})
}
