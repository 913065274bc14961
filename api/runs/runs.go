package runs

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/socketsched/core/runlog"
)

// NewHandler returns an HTTP handler exposing the run log via GET /api/runs.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewHandler(store runlog.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		params := r.URL.Query()
		q := runlog.LogQuery{Algorithm: params.Get("algorithm"), RunID: params.Get("run_id")}
		for key, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
			s := params.Get(key)
			if s == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, "invalid "+key, http.StatusBadRequest)
				return
			}
			*dst = t
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []runlog.LogRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
