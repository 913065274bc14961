package runs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kilianp07/socketsched/core/runlog"
)

type memStore struct{ recs []runlog.LogRecord }

func (m *memStore) Append(_ context.Context, r runlog.LogRecord) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(_ context.Context, q runlog.LogQuery) ([]runlog.LogRecord, error) {
	var res []runlog.LogRecord
	for _, r := range m.recs {
		if q.Matches(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestHandler_AuthAndFilters(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &memStore{}
	for i, alg := range []string{"heuristic", "heuristic-clamped", "heuristic"} {
		if err := store.Append(context.Background(), runlog.LogRecord{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			RunID:     string(rune('a' + i)),
			Algorithm: alg,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	h := NewHandler(store, "tok")

	req := httptest.NewRequest(http.MethodGet, "/api/runs?algorithm=heuristic&start="+base.Add(30*time.Minute).Format(time.RFC3339), nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var recs []runlog.LogRecord
	if err := json.NewDecoder(rr.Body).Decode(&recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 1 || recs[0].RunID != "c" {
		t.Fatalf("unexpected records %+v", recs)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", rr.Code)
	}
}

func TestHandler_BadRequests(t *testing.T) {
	h := NewHandler(&memStore{}, "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/runs?end=yesterday", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/runs", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected method not allowed, got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty list, got %d %q", rr.Code, rr.Body.String())
	}
}
