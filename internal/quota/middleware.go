package quota

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// UserIDHeader carries the caller identity for quota accounting. The
// server trusts this header; authentication sits in front of it.
const UserIDHeader = "X-User-ID"

// DefaultUserID is charged when the header is absent.
const DefaultUserID = "anonymous"

// UserID extracts the quota identity from a request.
func UserID(r *http.Request) string {
	if id := r.Header.Get(UserIDHeader); id != "" {
		return id
	}
	return DefaultUserID
}

// Middleware wraps a handler with per-user budget enforcement. Each
// admitted request consumes one unit; rejected requests get a 429 with
// a Retry-After header pointing at the window rollover.
func Middleware(store Store, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID := UserID(r)

			status, err := store.Increment(r.Context(), userID)
			if err != nil {
				if errors.Is(err, ErrExceeded) {
					logger.Info("quota exceeded", "user", userID, "limit", status.Limit, "reset_at", status.ResetAt)
					writeExceeded(w, status)
					return
				}
				logger.Error("quota store error", "user", userID, "error", err)
				http.Error(w, "quota check failed", http.StatusInternalServerError)
				return
			}

			next(w, r)
		}
	}
}

func writeExceeded(w http.ResponseWriter, status Status) {
	retryAfter := int(time.Until(status.ResetAt).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]any{
		"error": "generation quota exceeded",
		"quota": status,
	})
}
