package handlers

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Binayak012/StillGood/internal/middleware"
	"github.com/Binayak012/StillGood/internal/models"
	"github.com/Binayak012/StillGood/internal/repository"
	"github.com/go-chi/chi/v5"
)

type HouseholdHandler struct {
	householdRepo repository.HouseholdRepository
	userRepo      repository.UserRepository
}

func NewHouseholdHandler(householdRepo repository.HouseholdRepository, userRepo repository.UserRepository) *HouseholdHandler {
	return &HouseholdHandler{householdRepo: householdRepo, userRepo: userRepo}
}

const inviteCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func generateInviteCode() string {
	bytes := make([]byte, 6)
	rand.Read(bytes)
	code := make([]byte, len(bytes))
	for i, b := range bytes {
		code[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(code)
}

func (handler *HouseholdHandler) ensureNoMembership(w http.ResponseWriter, r *http.Request, userID string) bool {
	_, err := handler.householdRepo.FindMembership(r.Context(), userID)
	if err == nil {
		writeError(w, http.StatusBadRequest, "ALREADY_IN_HOUSEHOLD", "User already belongs to a household")
		return false
	}
	if !errors.Is(err, sql.ErrNoRows) {
		slog.Error("checking membership", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to check membership")
		return false
	}
	return true
}

type createHouseholdRequest struct {
	Name string `json:"name"`
}

func (handler *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request createHouseholdRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if len(request.Name) < 2 || len(request.Name) > 80 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Household name must be 2-80 characters")
		return
	}
	if !handler.ensureNoMembership(w, r, user.ID) {
		return
	}

	household, err := handler.householdRepo.Create(r.Context(), models.Household{
		Name:       request.Name,
		InviteCode: generateInviteCode(),
	})
	if err != nil {
		slog.Error("creating household", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to create household")
		return
	}

	if _, err := handler.householdRepo.AddMember(r.Context(), models.HouseholdMember{
		HouseholdID: household.ID,
		UserID:      user.ID,
		Role:        models.RoleOwner,
	}); err != nil {
		slog.Error("adding owner membership", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to create household")
		return
	}

	if _, err := handler.userRepo.Update(r.Context(), user.ID, repository.UserUpdate{
		HouseholdName: &request.Name,
	}); err != nil {
		slog.Warn("updating user household name", "error", err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{"household": household})
}

type joinHouseholdRequest struct {
	InviteCode string `json:"inviteCode"`
}

func (handler *HouseholdHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request joinHouseholdRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if len(request.InviteCode) < 4 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invite code is required")
		return
	}
	if !handler.ensureNoMembership(w, r, user.ID) {
		return
	}

	household, err := handler.householdRepo.FindByInviteCode(r.Context(), strings.ToUpper(request.InviteCode))
	if err != nil {
		writeError(w, http.StatusNotFound, "INVALID_INVITE_CODE", "Invite code not found")
		return
	}

	if _, err := handler.householdRepo.AddMember(r.Context(), models.HouseholdMember{
		HouseholdID: household.ID,
		UserID:      user.ID,
		Role:        models.RoleMember,
	}); err != nil {
		slog.Error("adding member", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to join household")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"household": household})
}

func (handler *HouseholdHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	membership, err := handler.householdRepo.FindMembership(r.Context(), user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusOK, map[string]any{"household": nil})
		return
	}
	if err != nil {
		slog.Error("loading membership", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load membership")
		return
	}

	household, err := handler.householdRepo.FindByID(r.Context(), membership.HouseholdID)
	if err != nil {
		slog.Error("loading household", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load household")
		return
	}

	members, err := handler.householdRepo.FindMembers(r.Context(), household.ID)
	if err != nil {
		slog.Error("loading members", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load members")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"household": map[string]any{
			"id":         household.ID,
			"name":       household.Name,
			"inviteCode": household.InviteCode,
			"role":       membership.Role,
			"members":    members,
		},
	})
}

func (handler *HouseholdHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	membership := middleware.GetMembership(r.Context())
	targetUserID := chi.URLParam(r, "userId")

	if targetUserID == user.ID {
		writeError(w, http.StatusBadRequest, "CANNOT_REMOVE_SELF", "Owners cannot remove themselves")
		return
	}

	err := handler.householdRepo.RemoveMember(r.Context(), membership.HouseholdID, targetUserID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "MEMBER_NOT_FOUND", "Member not found")
		return
	}
	if err != nil {
		slog.Error("removing member", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to remove member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
