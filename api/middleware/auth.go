package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/packfinderz-carts/api/responses"
	pkgAuth "github.com/angelmondragon/packfinderz-carts/pkg/auth"
	"github.com/angelmondragon/packfinderz-carts/pkg/config"
	pkgerrors "github.com/angelmondragon/packfinderz-carts/pkg/errors"
	"github.com/angelmondragon/packfinderz-carts/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
// Rejections are reported to obs like any handler error.
func Auth(cfg config.JWTConfig, logg *logger.Logger, obs responses.ErrorObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.Fail(r.Context(), logg, obs, w, pkgerrors.New(pkgerrors.CodeAuthentication, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.Fail(r.Context(), logg, obs, w, pkgerrors.Wrap(pkgerrors.CodeAuthentication, err, "invalid token"))
				return
			}

			user := User{
				ID:    claims.UserID.String(),
				Email: claims.Email,
				Role:  claims.Role,
			}
			ctx := WithUser(r.Context(), user)
			if logg != nil {
				ctx = logg.WithUser(ctx, user.ID, string(user.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
