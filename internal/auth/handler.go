package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/minimart-pos/minimart-pos/internal/platform/httpx"
	"github.com/minimart-pos/minimart-pos/internal/rbac"
	"github.com/minimart-pos/minimart-pos/internal/users"
)

// Handler serves auth endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW, validate: validator.New()}
}

// MountPublicRoutes registers the routes reachable without a token.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/login", h.login)
}

// MountProtectedRoutes registers the routes behind the Authenticate middleware.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Post("/logout", h.logout)
	r.Get("/profile", h.profile)
	r.Put("/profile", h.updateProfile)
	r.Put("/change-password", h.changePassword)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CapManageUsers))
		r.Post("/register", h.register)
	})
}

type loginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	session, err := h.service.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		h.logger.Warn("login failed", slog.String("username", form.Username))
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusOK, "Login successful", session)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), bearerToken(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusOK, "Logged out", nil)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := rbac.ActorFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	u, err := h.service.Profile(r.Context(), actor.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, u)
}

type registerForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required,oneof=admin staff cashier"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "username, full_name, email, a valid role and a password of at least 8 characters are required")
		return
	}

	u, err := h.service.Register(r.Context(), users.CreateInput{
		Username: form.Username,
		Password: form.Password,
		FullName: form.FullName,
		Email:    form.Email,
		Phone:    form.Phone,
		Role:     form.Role,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusCreated, "Account created successfully", u)
}

type updateProfileForm struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := rbac.ActorFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var form updateProfileForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "email must be a valid address")
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), actor.ID, ProfileUpdate{
		FullName: form.FullName,
		Email:    form.Email,
		Phone:    form.Phone,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusOK, "Profile updated successfully", u)
}

type changePasswordForm struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := rbac.ActorFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var form changePasswordForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "current_password and a new_password of at least 8 characters are required")
		return
	}

	if err := h.service.ChangePassword(r.Context(), actor.ID, form.CurrentPassword, form.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusOK, "Password changed successfully", nil)
}
