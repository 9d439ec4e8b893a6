package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/campushub/registrar/internal/authz"
	"github.com/campushub/registrar/internal/config"
	"github.com/campushub/registrar/internal/domain/user"
	"github.com/campushub/registrar/internal/http/middlewares"
	"github.com/campushub/registrar/internal/security"
	"github.com/gin-gonic/gin"
)

type UsersStore interface {
	List(ctx context.Context, filter user.ListFilter) ([]user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	Update(ctx context.Context, id int64, req user.UpdateRequest, passwordHash *string) (user.User, error)
	Delete(ctx context.Context, id int64) error
}

type UsersHandler struct {
	repo UsersStore
}

func NewUsersHandler(repo UsersStore) *UsersHandler {
	return &UsersHandler{repo: repo}
}

// ListUsers is admin-only (enforced at the route) with optional search
// and role filters.
func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	var filter user.ListFilter

	if search := ctx.Query("search"); search != "" {
		filter.Search = &search
	}

	if role := ctx.Query("role"); role != "" {
		if !user.ValidRole(role) {
			RespondBadRequest(ctx, "role must be student or admin", nil)
			return
		}
		filter.Role = &role
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	users, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"msg":   "Users fetched successfully",
		"count": len(users),
		"users": users,
	})
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	targetID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "unauthenticated", "Missing identity", nil)
		return
	}

	if err := authz.CanViewUser(p, targetID); err != nil {
		RespondForbidden(ctx, "You can only view your own profile unless you are an admin.")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.repo.GetByID(cctx, targetID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"msg":  "User fetched successfully",
		"user": u,
	})
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	targetID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "unauthenticated", "Missing identity", nil)
		return
	}

	var req user.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// The role check happens before anything is written: a non-admin
	// sending a role field is denied outright, even when the other
	// fields would have been fine.
	if err := authz.CanUpdateUser(p, targetID, req.WantsRoleChange()); err != nil {
		if req.WantsRoleChange() && p.UserID == targetID {
			RespondForbidden(ctx, "You cannot change user roles.")
			return
		}
		RespondForbidden(ctx, "You can only update your own profile unless you are an admin.")
		return
	}

	// empty password means "no change"; validated here rather than at
	// binding so the empty string never trips the length rule
	var passwordHash *string

	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < 8 {
			RespondBadRequest(ctx, "Invalid request body", gin.H{
				"fields": []FieldError{
					{Field: "password", Rule: "min", Param: "8", Message: validationMessage("min", "8")},
				},
			})
			return
		}

		hash, err := security.HashPassword(*req.Password)

		if err != nil {
			RespondInternal(ctx, "Could not update user")
			return
		}
		passwordHash = &hash
	}
	req.Password = nil

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.repo.Update(cctx, targetID, req, passwordHash)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrAlreadyUsed):
			RespondConflict(ctx, "already_exists", "Username or email already exists.")
		default:
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"msg":  "User updated successfully",
		"user": u,
	})
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	targetID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	p, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "unauthenticated", "Missing identity", nil)
		return
	}

	if err := authz.CanDeleteUser(p, targetID); err != nil {
		if p.IsAdmin() && p.UserID == targetID {
			RespondForbidden(ctx, "You cannot delete your own admin account.")
			return
		}
		RespondForbidden(ctx, "You do not have permission to delete users.")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, targetID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"msg": "User deleted successfully",
	})
}
