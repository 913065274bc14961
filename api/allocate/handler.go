package allocate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/socketsched/core/model"
)

// Allocator is the part of the service the handler needs.
type Allocator interface {
	Allocate(ctx context.Context, inst model.Instance) (*model.RunResult, error)
}

// maxBody bounds the accepted instance size.
const maxBody = 4 << 20

// NewHandler returns an HTTP handler that schedules the instance posted to
// POST /api/allocate and answers with the run result.
func NewHandler(alloc Allocator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		inst, err := model.DecodeInstance(http.MaxBytesReader(w, r.Body, maxBody), "json")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := alloc.Allocate(r.Context(), inst)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, model.ErrInvalidInstance) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
