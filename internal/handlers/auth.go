package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/Binayak012/StillGood/internal/middleware"
	"github.com/Binayak012/StillGood/internal/repository"
	"github.com/Binayak012/StillGood/internal/services"
)

type AuthHandler struct {
	authService   *services.AuthService
	userRepo      repository.UserRepository
	householdRepo repository.HouseholdRepository
}

func NewAuthHandler(
	authService *services.AuthService,
	userRepo repository.UserRepository,
	householdRepo repository.HouseholdRepository,
) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		userRepo:      userRepo,
		householdRepo: householdRepo,
	}
}

type registerRequest struct {
	Email         string  `json:"email"`
	Password      string  `json:"password"`
	Name          string  `json:"name"`
	HouseholdName *string `json:"householdName"`
	PrefsEmail    *bool   `json:"prefsEmail"`
	PrefsInApp    *bool   `json:"prefsInApp"`
}

func (handler *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request registerRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if _, err := mail.ParseAddress(request.Email); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "A valid email is required")
		return
	}
	if len(request.Password) < 8 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Password must be at least 8 characters")
		return
	}
	if len(request.Name) < 2 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name must be at least 2 characters")
		return
	}

	user, err := handler.authService.Register(r.Context(), services.RegisterInput{
		Email:         request.Email,
		Password:      request.Password,
		Name:          request.Name,
		HouseholdName: request.HouseholdName,
		PrefsEmail:    request.PrefsEmail,
		PrefsInApp:    request.PrefsInApp,
	})
	if errors.Is(err, services.ErrEmailInUse) {
		writeError(w, http.StatusConflict, "EMAIL_IN_USE", "Email is already registered")
		return
	}
	if err != nil {
		slog.Error("registering user", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to register")
		return
	}

	if err := handler.authService.SetSession(w, user.ID); err != nil {
		slog.Error("setting session", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to start session")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (handler *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	user, err := handler.authService.Login(r.Context(), request.Email, request.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}
	if err != nil {
		slog.Error("logging in", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to log in")
		return
	}

	if err := handler.authService.SetSession(w, user.ID); err != nil {
		slog.Error("setting session", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to start session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (handler *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	handler.authService.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (handler *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	response := map[string]any{"user": user, "household": nil}
	membership, err := handler.householdRepo.FindMembership(r.Context(), user.ID)
	if err == nil {
		household, err := handler.householdRepo.FindByID(r.Context(), membership.HouseholdID)
		if err != nil {
			slog.Error("loading household", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load household")
			return
		}
		response["household"] = map[string]any{
			"id":         household.ID,
			"name":       household.Name,
			"inviteCode": household.InviteCode,
			"role":       membership.Role,
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		slog.Error("loading membership", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load membership")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// UpdateMe decodes the body as raw fields so an explicit null householdName
// is distinguishable from an omitted one: null clears the stored name, while
// omission leaves it alone.
func (handler *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var fields map[string]json.RawMessage
	if !decodeJSON(w, r, &fields) {
		return
	}

	var update repository.UserUpdate
	updated := false

	if raw, ok := fields["name"]; ok {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "name must be a string")
			return
		}
		if len(value) < 2 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name must be at least 2 characters")
			return
		}
		update.Name = &value
		updated = true
	}
	if raw, ok := fields["householdName"]; ok {
		var value *string
		if err := json.Unmarshal(raw, &value); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "householdName must be a string or null")
			return
		}
		if value == nil {
			update.ClearHousehold = true
		} else {
			update.HouseholdName = value
		}
		updated = true
	}
	if raw, ok := fields["prefsEmail"]; ok {
		var value bool
		if err := json.Unmarshal(raw, &value); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "prefsEmail must be a boolean")
			return
		}
		update.PrefsEmail = &value
		updated = true
	}
	if raw, ok := fields["prefsInApp"]; ok {
		var value bool
		if err := json.Unmarshal(raw, &value); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "prefsInApp must be a boolean")
			return
		}
		update.PrefsInApp = &value
		updated = true
	}

	if !updated {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "At least one field must be updated")
		return
	}

	updatedUser, err := handler.userRepo.Update(r.Context(), user.ID, update)
	if err != nil {
		slog.Error("updating profile", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": updatedUser})
}
