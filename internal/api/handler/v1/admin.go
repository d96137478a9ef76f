package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runshare/runshare-api/internal/api/handler/v1/request"
	"github.com/runshare/runshare-api/internal/api/handler/v1/response"
	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/service"
)

type AdminUserService interface {
	ListUsers(ctx context.Context) ([]domain.UserWithStats, error)
	DeleteUser(ctx context.Context, adminID, targetID uint) error
}

type AdminRunService interface {
	GetAllRuns(ctx context.Context) ([]domain.Run, error)
	DeleteRun(ctx context.Context, runID uint, requester domain.User) error
}

type AdminRoleService interface {
	UpdateRole(ctx context.Context, targetID uint, role domain.Role) error
}

type AdminHandler struct {
	uSvc AdminUserService
	rSvc AdminRunService
	aSvc AdminRoleService
}

func NewAdminHandler(uSvc AdminUserService, rSvc AdminRunService, aSvc AdminRoleService) *AdminHandler {
	return &AdminHandler{
		uSvc: uSvc,
		rSvc: rSvc,
		aSvc: aSvc,
	}
}

// HandleListUsers godoc
// @Summary      List all users with their activity stats
// @Tags         admin
// @Produce      json
// @Success      200      {array}    domain.UserWithStats
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/users [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleListUsers(ctx *gin.Context) {
	users, err := h.uSvc.ListUsers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListUsers -> h.uSvc.ListUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleDeleteUser godoc
// @Summary      Delete a user and everything they own
// @Tags         admin
// @Produce      json
// @Param        userID   path       integer true "user ID"
// @Success      200      {object}   response.SimpleMessageResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/users/{userID} [delete]
// @Security     BearerAuth
func (h *AdminHandler) HandleDeleteUser(ctx *gin.Context) {
	adminID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	targetID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	err := h.uSvc.DeleteUser(ctx.Request.Context(), adminID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotDeleteSelf):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound(err))
		default:
			err = fmt.Errorf("v1.HandleDeleteUser -> h.uSvc.DeleteUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, response.SimpleMessageResponse{
		Message: "user deleted",
	})
}

// HandleListAllRuns godoc
// @Summary      List every run, including past and private ones
// @Tags         admin
// @Produce      json
// @Success      200      {array}    domain.Run
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/runs [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleListAllRuns(ctx *gin.Context) {
	runs, err := h.rSvc.GetAllRuns(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListAllRuns -> h.rSvc.GetAllRuns -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, runs)
}

// HandleAdminDeleteRun godoc
// @Summary      Delete any run
// @Tags         admin
// @Produce      json
// @Param        runID    path       integer true "run ID"
// @Success      200      {object}   response.SimpleMessageResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/runs/{runID} [delete]
// @Security     BearerAuth
func (h *AdminHandler) HandleAdminDeleteRun(ctx *gin.Context) {
	adminID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	runID, respErr := parseRunIDParam(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	requester := domain.User{
		ID:   adminID,
		Role: domain.RoleAdmin,
	}

	err := h.rSvc.DeleteRun(ctx.Request.Context(), runID, requester)
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(err))

			return
		}

		err = fmt.Errorf("v1.HandleAdminDeleteRun -> h.rSvc.DeleteRun -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.SimpleMessageResponse{
		Message: "run deleted",
	})
}

// HandleUpdateRole godoc
// @Summary      Change a user's role
// @Tags         admin
// @Produce      json
// @Param        userID   path       integer true "user ID"
// @Param        request   body      request.UpdateRoleRequest true "request body"
// @Success      200      {object}   response.SimpleMessageResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/users/{userID}/role [put]
// @Security     BearerAuth
func (h *AdminHandler) HandleUpdateRole(ctx *gin.Context) {
	targetID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	err := h.aSvc.UpdateRole(ctx.Request.Context(), targetID, domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound(err))
		default:
			err = fmt.Errorf("v1.HandleUpdateRole -> h.aSvc.UpdateRole -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, response.SimpleMessageResponse{
		Message: "role updated",
	})
}
