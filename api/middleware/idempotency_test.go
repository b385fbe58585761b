package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/organictrace/organictrace-backend/pkg/logger"
)

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string]string{}}
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		return false, nil
	}
	m.entries[key] = value.(string)
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "test:idem:" + scope + ":" + id
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func idemLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func countingHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := Idempotency(store, idemLogger())(countingHandler(&calls))

	body := []byte(`{"walletAddress":"0xfarm","toWallet":"0xdest"}`)
	path := "/api/v1/products/abc/transfer"

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201 got %d", i, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("attempt %d: content type lost: %q", i, ct)
		}
	}

	if calls != 1 {
		t.Fatalf("handler should run once, ran %d times", calls)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := Idempotency(store, idemLogger())(countingHandler(&calls))
	path := "/api/v1/products/abc/transfer"

	first := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(`{"toWallet":"0xdest"}`)))
	first.Header.Set("Idempotency-Key", "key-1")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(`{"toWallet":"0xother"}`)))
	second.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, second)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key with new body, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("second request must not reach the handler")
	}
}

func TestIdempotencyRequiresHeaderOnGuardedRoute(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := Idempotency(store, idemLogger())(countingHandler(&calls))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d", rec.Code)
	}
	if calls != 0 {
		t.Fatalf("handler must not run without the key")
	}
}

func TestIdempotencySkipsUnguardedRoutes(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := Idempotency(store, idemLogger())(countingHandler(&calls))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unguarded route should pass through, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler should run")
	}
}

func TestIdempotencyScopesByWallet(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := Idempotency(store, idemLogger())(countingHandler(&calls))
	body := []byte(`{"productName":"Tomatoes"}`)

	for _, wallet := range []string{"0xalice", "0xbob"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(body))
		req.Header.Set("Idempotency-Key", "shared-key")
		req = req.WithContext(WithWallet(req.Context(), wallet))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("wallet %s: expected 201 got %d", wallet, rec.Code)
		}
	}

	if calls != 2 {
		t.Fatalf("different wallets must not share idempotency records, calls=%d", calls)
	}
}
