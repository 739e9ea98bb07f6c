package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"todobackend/infrastructure/config"
	"todobackend/pkg/auth"

	"go.uber.org/zap"
)

// Authenticate extracts the caller's identity and rejects requests without
// one before any business logic runs.
//
// Behind API Gateway the JWT authorizer has already validated the token;
// the Lambda entry point forwards the verified subject as X-User-ID with
// X-API-Gateway-Authorized set. Outside Lambda the bearer token is
// validated locally with HS256.
func Authenticate(cfg *config.Config, logger *zap.Logger) func(next http.Handler) http.Handler {
	var validator *auth.JWTValidator
	if !cfg.IsLambda {
		v, err := auth.NewJWTValidator(auth.JWTConfig{
			SecretKey: cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
		})
		if err != nil {
			logger.Error("JWT validator unavailable, all requests will be rejected", zap.Error(err))
		}
		validator = v
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Pre-authorized by the API Gateway JWT authorizer
			if r.Header.Get("X-API-Gateway-Authorized") == "true" {
				userID := r.Header.Get("X-User-ID")
				if userID == "" {
					respondUnauthorized(w, "missing user context from API Gateway")
					return
				}

				userCtx := &auth.UserContext{
					UserID: userID,
					Email:  r.Header.Get("X-User-Email"),
				}
				next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), userCtx)))
				return
			}

			if validator == nil {
				respondUnauthorized(w, "authentication unavailable")
				return
			}

			token := extractBearerToken(r)
			if token == "" {
				respondUnauthorized(w, "missing authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("path", r.URL.Path),
				)
				switch err {
				case auth.ErrExpiredToken:
					respondUnauthorized(w, "token has expired")
				case auth.ErrInvalidSignature:
					respondUnauthorized(w, "invalid token signature")
				default:
					respondUnauthorized(w, "invalid token")
				}
				return
			}

			userCtx := &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
			}
			next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), userCtx)))
		})
	}
}

// extractBearerToken pulls the token out of the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    http.StatusUnauthorized,
	})
}
