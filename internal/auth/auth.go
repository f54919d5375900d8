// Package auth resolves the calling principal from a bearer token.
package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleKitchen Role = "kitchen"
)

type Principal struct {
	UserID     string
	MerchantID int64 // 0 when the caller has no merchant association
	Role       Role
}

type Claims struct {
	MerchantID int64  `json:"merchant_id,omitempty"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// MerchantID returns the caller's merchant or Forbidden when there is none.
func MerchantID(ctx context.Context) (int64, error) {
	p, ok := FromContext(ctx)
	if !ok || p.MerchantID <= 0 {
		return 0, apperr.Forbidden("user is not associated with a merchant")
	}
	return p.MerchantID, nil
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Parse(token string) (Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, err
	}
	if claims.Role == "" {
		return Principal{}, errors.New("token has no role")
	}
	return Principal{UserID: claims.Subject, MerchantID: claims.MerchantID, Role: Role(claims.Role)}, nil
}

// Sign issues an HS256 token; used by tooling and tests.
func (v *Verifier) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// ErrorWriter renders an apperr; httpx supplies it so every failure uses one envelope.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

func (v *Verifier) Middleware(onErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(h, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				onErr(w, r, apperr.Unauthorized("missing bearer token"))
				return
			}
			p, err := v.Parse(strings.TrimSpace(token))
			if err != nil {
				onErr(w, r, &apperr.Error{Kind: apperr.KindUnauthorized, Message: "invalid token", Err: err})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole rejects callers whose role is not listed.
func RequireRole(onErr ErrorWriter, roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				onErr(w, r, apperr.Unauthorized("missing principal"))
				return
			}
			if !slices.Contains(roles, p.Role) {
				onErr(w, r, apperr.Forbidden("role %q may not access this resource", p.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
