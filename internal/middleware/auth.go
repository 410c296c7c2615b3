package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Binayak012/StillGood/internal/models"
	"github.com/Binayak012/StillGood/internal/repository"
	"github.com/Binayak012/StillGood/internal/services"
)

type contextKey string

const (
	UserContextKey       contextKey = "user"
	MembershipContextKey contextKey = "membership"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// RequireAuth resolves the session cookie to a user and stores it on the
// request context.
func RequireAuth(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authService.GetCurrentUser(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireHousehold loads the authenticated user's membership and stores it
// on the request context. Runs after RequireAuth.
func RequireHousehold(householdRepo repository.HouseholdRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user.ID == "" {
				writeError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required")
				return
			}

			membership, err := householdRepo.FindMembership(r.Context(), user.ID)
			if err != nil {
				writeError(w, http.StatusForbidden, "HOUSEHOLD_REQUIRED", "Join or create a household first")
				return
			}

			ctx := context.WithValue(r.Context(), MembershipContextKey, membership)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOwner runs after RequireHousehold.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		membership := GetMembership(r.Context())
		if membership.Role != models.RoleOwner {
			writeError(w, http.StatusForbidden, "OWNER_REQUIRED", "Owner access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUser(ctx context.Context) models.User {
	user, _ := ctx.Value(UserContextKey).(models.User)
	return user
}

func GetMembership(ctx context.Context) models.HouseholdMember {
	membership, _ := ctx.Value(MembershipContextKey).(models.HouseholdMember)
	return membership
}
