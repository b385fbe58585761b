package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/organictrace/organictrace-backend/pkg/logger"
)

type contextKey string

const ctxWallet contextKey = "wallet_address"

// WalletFromContext returns the wallet address a controller attached after
// parsing the request, or empty when none was set.
func WalletFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxWallet).(string); ok {
		return v
	}
	return ""
}

// WithWallet injects the asserted wallet address into the context. The
// idempotency scope includes it so different wallets never collide on the
// same key.
func WithWallet(ctx context.Context, wallet string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxWallet, wallet)
}

// WalletContext promotes the caller's asserted wallet address, from the
// X-Wallet-Address header or the wallet query parameter, into the request
// context and the request-scoped logger.
func WalletContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wallet := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Wallet-Address")))
			if wallet == "" {
				wallet = strings.ToLower(strings.TrimSpace(r.URL.Query().Get("wallet")))
			}
			if wallet == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithWallet(r.Context(), wallet)
			if logg != nil {
				ctx = logg.WithWallet(ctx, wallet)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
