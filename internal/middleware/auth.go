package middleware

import (
	"context"
	"net/http"

	"procurement-be/internal/access"
	"procurement-be/internal/apperr"
	"procurement-be/internal/auth"
	"procurement-be/internal/logger"
	"procurement-be/internal/profile"
	"procurement-be/internal/user"
	"procurement-be/internal/utils"

	"go.uber.org/zap"
)

const msgNoCredentials = "Authentication credentials were not provided."

type TokenParser interface {
	Parse(token string) (*user.Claims, error)
}

type ProfileResolver interface {
	Resolve(ctx context.Context, userID int64) (profile.IDs, error)
}

// Auth turns a valid access token into an access.Principal on the request
// context. Requests without a token pass through anonymous; a token that
// fails verification is rejected.
func Auth(tokens TokenParser, profiles ProfileResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			log := logger.FromCtx(r.Context()).With(zap.String("layer", "middleware"))

			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				log.Info("rejected access token", zap.Error(err))
				utils.WriteDetail(w, apperr.Message(err), http.StatusUnauthorized)
				return
			}

			ids, err := profiles.Resolve(r.Context(), claims.UserID)
			if err != nil {
				log.Error("failed to resolve profiles", zap.Int64("user_id", claims.UserID), zap.Error(err))
				utils.WriteDetail(w, apperr.Message(err), http.StatusInternalServerError)
				return
			}

			p := access.Principal{
				UserID:      claims.UserID,
				Email:       claims.Email,
				Role:        access.Role(claims.Role),
				PurchaserID: ids.PurchaserID,
				SupplierID:  ids.SupplierID,
			}
			logger.SetCaller(r.Context(), p.UserID, string(p.Role))
			next.ServeHTTP(w, r.WithContext(access.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := access.PrincipalFrom(r.Context()); !ok {
			utils.WriteDetail(w, msgNoCredentials, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
