package cache

import (
	"bytes"
	"fmt"
	"net/http"
	"time"
)

// Middleware returns a read-through caching interceptor for GET routes.
//
// On a hit the cached payload is served with its weak ETag; a matching
// If-None-Match short-circuits to 304 with no body. On a miss the downstream
// handler runs against a buffering response writer, successful JSON output is
// written through to the store, and the same conditional check applies to the
// fresh payload. Store failures on this path are logged and degrade to a
// miss: caching here is a performance optimization, never a correctness
// dependency.
func Middleware(store *Store, ttl time.Duration) func(http.Handler) http.Handler {
	cacheControl := fmt.Sprintf("private, max-age=%d", int(ttl.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := Key(r.URL.RequestURI())

			payload, ok, err := store.GetRaw(r.Context(), key)
			if err != nil {
				Errors.WithLabelValues("get").Inc()
				store.log.Warn().Err(err).Str("key", key).Msg("cache lookup failed, treating as miss")
				ok = false
			}

			if ok {
				Hits.Inc()
				serve(w, r, http.StatusOK, payload, cacheControl)
				return
			}
			Misses.Inc()

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.Status()
			body := rec.buf.Bytes()

			// Only successful bodies populate the cache; error responses are
			// never worth a TTL window.
			if status == http.StatusOK && len(body) > 0 {
				if err := store.SetRaw(r.Context(), key, body, ttl); err != nil {
					Errors.WithLabelValues("set").Inc()
					store.log.Warn().Err(err).Str("key", key).Msg("cache write-through failed")
				}
			}

			if status != http.StatusOK {
				w.Header().Set("Cache-Control", cacheControl)
				w.WriteHeader(status)
				if len(body) > 0 {
					_, _ = w.Write(body)
				}
				return
			}
			serve(w, r, status, body, cacheControl)
		})
	}
}

// serve emits payload with validation headers, answering a matching
// If-None-Match with 304 and no body.
func serve(w http.ResponseWriter, r *http.Request, status int, payload []byte, cacheControl string) {
	token := ETag(payload)
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("ETag", token)

	if etagMatch(r.Header.Get("If-None-Match"), token) {
		NotModified.Inc()
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// CacheControl sets a Cache-Control header without consulting any store,
// for routes that intermediaries may cache but that are not worth caching
// server-side.
func CacheControl(maxAge time.Duration) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}

// recorder buffers the downstream handler's output so the middleware can
// decide how to emit it. It wraps the handler's write primitive as a plain
// function boundary; handlers stay unaware they are being cached. Header
// mutations pass through to the real writer, but status and body are held
// back until the middleware decides.
type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.buf.Write(b)
}

// Status returns the recorded status, defaulting to 200 like net/http.
func (r *recorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
