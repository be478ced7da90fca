package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore defines the store methods needed by user handlers.
// Satisfied by *database.Queries and *docstore.Store; narrow interface for testability.
type UserStore interface {
	ListUsers(ctx context.Context) ([]database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUserRole(ctx context.Context, arg database.UpdateUserRoleParams) (database.User, error)
}

// RoleForgetter drops cached roles. Satisfied by *access.Resolver.
type RoleForgetter interface {
	Forget(ctx context.Context, userID string)
}

// UserHandler handles staff profile endpoints.
type UserHandler struct {
	store  UserStore
	forget RoleForgetter
	log    *zap.Logger
}

// NewUserHandler creates a UserHandler. forget may be nil when no role cache is used.
func NewUserHandler(store UserStore, forget RoleForgetter, log *zap.Logger) *UserHandler {
	return &UserHandler{store: store, forget: forget, log: log}
}

// RegisterRoutes registers user endpoints. Expected at /admin/users.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}/role", h.UpdateRole)
}

// --- Request / Response types ---

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      enum.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u database.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// --- Handlers ---

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		internalError(w, h.log, "list users", err)
		return
	}

	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	errs := map[string]string{}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		errs["email"] = "Correo electrónico inválido."
	}
	if len(req.Password) < 8 {
		errs["password"] = "La contraseña debe tener al menos 8 caracteres."
	}
	if req.FullName == "" {
		errs["fullName"] = "El nombre es requerido."
	}
	role, err := enum.ParseRole(req.Role)
	if err != nil {
		errs["role"] = "Rol inválido."
	}
	if len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		internalError(w, h.log, "hash password", err)
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		Email:          req.Email,
		HashedPassword: string(hash),
		FullName:       req.FullName,
		Role:           role,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
			return
		}
		internalError(w, h.log, "create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// UpdateRole changes a profile's role. The cached role is dropped so the
// next request resolves the new one.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	role, err := enum.ParseRole(req.Role)
	if err != nil {
		validationFailed(w, map[string]string{"role": "Rol inválido."})
		return
	}

	user, err := h.store.UpdateUserRole(r.Context(), database.UpdateUserRoleParams{ID: id, Role: role})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		internalError(w, h.log, "update user role", err)
		return
	}
	if h.forget != nil {
		h.forget.Forget(r.Context(), user.ID)
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
