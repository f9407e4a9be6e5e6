package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/todo-api/internal/api/middleware"
	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/service/auth"
	"github.com/phrazzld/todo-api/internal/store"
)

// AuthHandler handles user registration, login and identity requests.
type AuthHandler struct {
	userStore  store.UserStore
	jwtService auth.JWTService
	hasher     auth.PasswordHasher
	verifier   auth.PasswordVerifier
	validate   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
) *AuthHandler {
	return &AuthHandler{
		userStore:  userStore,
		jwtService: jwtService,
		hasher:     hasher,
		verifier:   verifier,
		validate:   validator.New(),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithValidationErrors(w, r, validationErrorsFrom(err))
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to register user")
		return
	}

	user := domain.NewUser(req.Name, req.Email, hash)
	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "A user with this email already exists")
			return
		}
		slog.Error("failed to create user", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to register user")
		return
	}

	token, expires, err := h.jwtService.GenerateToken(r.Context(), user)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to register user")
		return
	}

	slog.Info("registered user", "user_id", user.ID)
	shared.RespondWithSuccess(w, r, http.StatusCreated, AuthResponse{
		Token:   token,
		Expires: expires,
		User:    userInfo(user),
	}, "Registration successful")
}

// Login handles POST /api/auth/login. Unknown emails and wrong passwords
// get the same response, so the endpoint cannot be used to probe accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithValidationErrors(w, r, validationErrorsFrom(err))
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid email or password")
			return
		}
		slog.Error("failed to look up user", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if err := h.verifier.Compare(user.PasswordHash, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid email or password")
		return
	}

	token, expires, err := h.jwtService.GenerateToken(r.Context(), user)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	shared.RespondWithSuccess(w, r, http.StatusOK, AuthResponse{
		Token:   token,
		Expires: expires,
		User:    userInfo(user),
	}, "Login successful")
}

// Me handles GET /api/auth/me, echoing the identity embedded in the
// caller's token without a database round trip.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found in context")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, UserInfo{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
	}, "")
}

func userInfo(user *domain.User) UserInfo {
	return UserInfo{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
