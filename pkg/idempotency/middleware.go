package idempotency

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const Header = "Idempotency-Key"

// KeyStore reports whether an idempotency key was already used, claiming it
// for the caller when it was not.
type KeyStore interface {
	Seen(ctx context.Context, key string) (bool, error)
}

// Store remembers idempotency keys in redis for a bounded window. SetNX gives
// the first request the slot; replays within the TTL observe the key as seen.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, "idem:"+key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Middleware rejects a request whose Idempotency-Key header was already used.
// Requests without the header pass through untouched.
func Middleware(store KeyStore, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(Header)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			seen, err := store.Seen(r.Context(), key)
			if err != nil {
				// Redis trouble must not take order intake down.
				log.Warn("idempotency check unavailable", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"message":"duplicate request"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
