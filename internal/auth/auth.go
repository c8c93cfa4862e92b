package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Mrxforte/tooler/internal/apierror"
)

// Mode represents the authentication strategy to apply for incoming requests.
type Mode string

const (
	// ModeFirebase enables Firebase ID token verification against the securetoken JWKS endpoint.
	ModeFirebase Mode = "firebase"
	// ModeNoop disables signature verification and treats the bearer token as the user ID (useful for local development and tests).
	ModeNoop Mode = "noop"
)

// Config captures the inputs required to initialize a verifier.
type Config struct {
	Mode      Mode
	ProjectID string
	JWKSURL   string
}

// Caller represents the currently authenticated subject extracted from the bearer token.
type Caller struct {
	UID   string
	Email string
	Token string
}

// Verifier verifies a bearer token and returns the associated caller identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Caller, error)
}

var (
	errMissingAuthHeader = errors.New("authorization header missing")
	errInvalidAuthHeader = errors.New("authorization header is malformed")
)

type ctxKey string

const callerCtxKey ctxKey = "tooler:caller"

// Middleware enforces authentication for the wrapped handler using the provided verifier.
// Rejected requests receive the unauthenticated error envelope before any handler runs.
func Middleware(verifier Verifier, writeError func(w http.ResponseWriter, err *apierror.Error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := tokenFromRequest(r)
			if err != nil {
				writeError(w, apierror.Unauthenticated("Request must be authenticated"))
				return
			}

			caller, err := verifier.Verify(r.Context(), token)
			if err != nil {
				writeError(w, apierror.Unauthenticated("Request must be authenticated"))
				return
			}

			ctx := context.WithValue(r.Context(), callerCtxKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingAuthHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errInvalidAuthHeader
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errInvalidAuthHeader
	}

	return token, nil
}

// CallerFromContext extracts the authenticated caller from the request context.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	value, ok := ctx.Value(callerCtxKey).(Caller)
	return value, ok
}

// WithCaller returns a context carrying the given caller. Intended for tests.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerCtxKey, caller)
}

// NewVerifier constructs a Verifier matching the supplied configuration.
func NewVerifier(cfg Config) (Verifier, error) {
	switch cfg.Mode {
	case ModeFirebase:
		return newFirebaseVerifier(cfg)
	case ModeNoop:
		return newNoopVerifier(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}
