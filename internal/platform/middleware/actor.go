package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	dErrors "channelling/pkg/domain-errors"
	"channelling/pkg/platform/httputil"
	"channelling/pkg/requestcontext"
)

// DefaultActorHeader carries the acting user name when no token is used.
const DefaultActorHeader = "user-name"

// ActorFromHeader records the value of header as the request actor. Requests
// without the header proceed anonymously; writes are then rejected further in.
func ActorFromHeader(header string) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultActorHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithActor(r.Context(), r.Header.Get(header))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// JWTValidator resolves a bearer token into the acting user name.
type JWTValidator interface {
	ValidateToken(tokenString string) (string, error)
}

// HMACValidator validates HS256 tokens and reads the actor from one claim,
// falling back to "sub".
type HMACValidator struct {
	key   []byte
	claim string
}

// NewHMACValidator builds a validator for tokens signed with key.
func NewHMACValidator(key, claim string) *HMACValidator {
	if claim == "" {
		claim = "user_name"
	}
	return &HMACValidator{key: []byte(key), claim: claim}
}

var errNoActorClaim = errors.New("token carries no user claim")

func (v *HMACValidator) ValidateToken(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if actor, ok := claims[v.claim].(string); ok && actor != "" {
		return actor, nil
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	return "", errNoActorClaim
}

// ActorFromJWT records the actor carried by a bearer token. A missing
// Authorization header leaves the request anonymous; an invalid token is
// rejected with 401.
func ActorFromJWT(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "missing or invalid Authorization header"))
				return
			}
			actor, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}
