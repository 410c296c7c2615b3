package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Binayak012/StillGood/internal/config"
	"github.com/Binayak012/StillGood/internal/models"
	"github.com/Binayak012/StillGood/internal/repository"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailInUse         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const sessionCookieName = "stillgood_session"

// AuthService owns password checks and the encrypted session cookie.
type AuthService struct {
	secureCookie *securecookie.SecureCookie
	userRepo     repository.UserRepository
}

type SessionData struct {
	UserID string `json:"user_id"`
}

func NewAuthService(cfg config.Config, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		secureCookie: securecookie.New([]byte(cfg.SessionSecret), nil),
		userRepo:     userRepo,
	}
}

type RegisterInput struct {
	Email         string
	Password      string
	Name          string
	HouseholdName *string
	PrefsEmail    *bool
	PrefsInApp    *bool
}

func (service *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	if _, err := service.userRepo.FindByEmail(ctx, input.Email); err == nil {
		return models.User{}, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hashing password: %w", err)
	}

	prefsEmail := false
	if input.PrefsEmail != nil {
		prefsEmail = *input.PrefsEmail
	}
	prefsInApp := true
	if input.PrefsInApp != nil {
		prefsInApp = *input.PrefsInApp
	}

	user, err := service.userRepo.Create(ctx, models.User{
		Email:         input.Email,
		PasswordHash:  string(hash),
		Name:          input.Name,
		HouseholdName: input.HouseholdName,
		PrefsEmail:    prefsEmail,
		PrefsInApp:    prefsInApp,
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (service *AuthService) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := service.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (service *AuthService) SetSession(w http.ResponseWriter, userID string) error {
	data, err := json.Marshal(SessionData{UserID: userID})
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	value, err := service.secureCookie.Encode(sessionCookieName, string(data))
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	return nil
}

func (service *AuthService) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (service *AuthService) GetSession(r *http.Request) (SessionData, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return SessionData{}, fmt.Errorf("no session cookie: %w", err)
	}

	var decoded string
	if err := service.secureCookie.Decode(sessionCookieName, cookie.Value, &decoded); err != nil {
		return SessionData{}, fmt.Errorf("decoding session cookie: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(decoded), &session); err != nil {
		return SessionData{}, fmt.Errorf("unmarshaling session: %w", err)
	}
	return session, nil
}

func (service *AuthService) GetCurrentUser(r *http.Request) (models.User, error) {
	session, err := service.GetSession(r)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.userRepo.FindByID(r.Context(), session.UserID)
	if err != nil {
		return models.User{}, fmt.Errorf("finding user: %w", err)
	}
	return user, nil
}
