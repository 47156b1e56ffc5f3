//go:build !integration

package pocketbase

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"telegram-registration-bot/internal/config"
)

type recordedRequest struct {
	Method string
	Path   string
	Filter string
	Auth   string
}

// fakeStore is an in-memory PocketBase good enough for equality filters.
type fakeStore struct {
	mu          sync.Mutex
	token       string
	logins      int
	nextID      int
	collections map[string][]map[string]any
	failures    map[string]int
	requests    []recordedRequest
}

func newFakeStore() *fakeStore {
	return &fakeStore{collections: map[string][]map[string]any{}, failures: map[string]int{}}
}

func (f *fakeStore) seed(coll string, recs ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range recs {
		if _, ok := r["id"]; !ok {
			f.nextID++
			r["id"] = fmt.Sprintf("rec%d", f.nextID)
		}
		f.collections[coll] = append(f.collections[coll], r)
	}
}

func (f *fakeStore) records(coll string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collections[coll]
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, recordedRequest{
		Method: r.Method, Path: r.URL.Path, Filter: r.URL.Query().Get("filter"), Auth: r.Header.Get("Authorization"),
	})

	if r.URL.Path == "/api/admins/auth-with-password" {
		var req authRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Identity != "admin@example.com" || req.Password != "secret" {
			http.Error(w, `{"message":"bad credentials"}`, http.StatusBadRequest)
			return
		}
		f.logins++
		f.token = fmt.Sprintf("tok-%d", f.logins)
		_ = json.NewEncoder(w).Encode(authResponse{Token: f.token})
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/api/collections/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(rest, "/")
	coll := parts[0]
	if status, ok := f.failures[coll]; ok {
		http.Error(w, `{"message":"boom"}`, status)
		return
	}

	if r.Method != http.MethodGet && r.Header.Get("Authorization") != "AdminAuth "+f.token {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		items := []map[string]any{}
		for _, rec := range f.collections[coll] {
			if matches(rec, r.URL.Query().Get("filter")) {
				items = append(items, rec)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"page": 1, "perPage": PerPage, "items": items})
	case http.MethodPost:
		var rec map[string]any
		_ = json.NewDecoder(r.Body).Decode(&rec)
		f.nextID++
		rec["id"] = fmt.Sprintf("rec%d", f.nextID)
		f.collections[coll] = append(f.collections[coll], rec)
		_ = json.NewEncoder(w).Encode(rec)
	case http.MethodPatch:
		body, _ := io.ReadAll(r.Body)
		var patch map[string]any
		_ = json.Unmarshal(body, &patch)
		for _, rec := range f.collections[coll] {
			if len(parts) == 3 && rec["id"] == parts[2] {
				for k, v := range patch {
					rec[k] = v
				}
				_ = json.NewEncoder(w).Encode(rec)
				return
			}
		}
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// matches evaluates a conjunction of field="value" / field=true terms.
func matches(rec map[string]any, filter string) bool {
	if filter == "" {
		return true
	}
	for _, term := range strings.Split(filter, " && ") {
		field, want, ok := strings.Cut(term, "=")
		if !ok {
			return false
		}
		got := fmt.Sprint(rec[field])
		if strings.HasPrefix(want, `"`) {
			want = strings.ReplaceAll(strings.Trim(want, `"`), `\"`, `"`)
		}
		if got != want {
			return false
		}
	}
	return true
}

func newTestClient(t *testing.T, store *fakeStore) *Client {
	t.Helper()
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)
	logger := zerolog.Nop()
	return NewClient(config.RecordStoreConfig{
		URL:           srv.URL,
		AdminEmail:    "admin@example.com",
		AdminPassword: "secret",
	}, &logger)
}
