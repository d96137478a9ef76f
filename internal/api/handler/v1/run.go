package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/runshare/runshare-api/internal/api/handler/v1/request"
	"github.com/runshare/runshare-api/internal/api/handler/v1/response"
	"github.com/runshare/runshare-api/internal/api/middleware"
	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/service"
)

var errInvalidRunID = errors.New("invalid run ID")

type RunService interface {
	CreateRun(ctx context.Context, run domain.Run) (domain.Run, error)
	GetRuns(ctx context.Context, filters domain.RunFilters, authenticated bool) ([]domain.Run, error)
	GetRun(ctx context.Context, runID, requesterID uint) (domain.RunDetail, error)
	UpdateRun(ctx context.Context, runID, userID uint, update domain.RunUpdate) (domain.Run, error)
	DeleteRun(ctx context.Context, runID uint, requester domain.User) error
	Join(ctx context.Context, runID, userID uint) (domain.Participation, error)
	Leave(ctx context.Context, runID, userID uint) error
	SetParticipantStatus(ctx context.Context, runID, organizerID, targetUserID uint, status domain.ParticipationStatus) error
	RateRun(ctx context.Context, userID, runID uint, rating int, comment string) (domain.RunRating, error)
}

type RunHandler struct {
	svc RunService
}

func NewRunHandler(svc RunService) *RunHandler {
	return &RunHandler{
		svc: svc,
	}
}

func getUserRoleFromContext(ctx *gin.Context) domain.Role {
	v, exists := ctx.Get(middleware.ContextKeyUserRole)
	if !exists {
		return domain.RoleUser
	}

	role, ok := v.(string)
	if !ok {
		return domain.RoleUser
	}

	return domain.Role(role)
}

// HandleListRuns godoc
// @Summary      List upcoming runs
// @Tags         runs
// @Produce      json
// @Param        city      query      string false "filter by city"
// @Param        date      query      string false "filter by date (YYYY-MM-DD)"
// @Param        level     query      string false "filter by level"
// @Param        distance  query      string false "distance range, e.g. 5-10 or 10+"
// @Param        search    query      string false "text search in title, description and location"
// @Success      200      {array}    domain.Run
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /runs [get]
func (h *RunHandler) HandleListRuns(ctx *gin.Context) {
	filters, err := request.ParseRunFilters(
		ctx.Query("city"),
		ctx.Query("date"),
		ctx.Query("level"),
		ctx.Query("distance"),
		ctx.Query("search"),
	)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	// Private runs stay hidden from anonymous callers.
	authenticated := getOptionalUserIDFromContext(ctx) != 0

	runs, err := h.svc.GetRuns(ctx.Request.Context(), filters, authenticated)
	if err != nil {
		err = fmt.Errorf("v1.HandleListRuns -> h.svc.GetRuns -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, runs)
}

// HandleGetRun godoc
// @Summary      Get a run with its participants and ratings
// @Tags         runs
// @Produce      json
// @Param        runID    path       integer true "run ID"
// @Success      200      {object}   domain.RunDetail
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /runs/{runID} [get]
func (h *RunHandler) HandleGetRun(ctx *gin.Context) {
	runID, respErr := parseRunIDParam(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	requesterID := getOptionalUserIDFromContext(ctx)

	detail, err := h.svc.GetRun(ctx.Request.Context(), runID, requesterID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRunNotFound):
			response.RenderErr(ctx, response.ErrNotFound(err))
		case errors.Is(err, service.ErrPrivateRun):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleGetRun -> h.svc.GetRun -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, detail)
}

// HandleCreateRun godoc
// @Summary      Create a run
// @Tags         runs
// @Produce      json
// @Param        request   body      request.CreateRunRequest true "request body"
// @Success      201      {object}   domain.Run
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /runs [post]
// @Security     BearerAuth
func (h *RunHandler) HandleCreateRun(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.CreateRunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	run, err := h.svc.CreateRun(ctx.Request.Context(), domain.Run{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Distance:    req.Distance,
		Level:       domain.Level(req.Level),
		IsPrivate:   req.IsPrivate,
		OrganizerID: userID,
	})
	if err != nil {
		if errors.Is(err, service.ErrRunDateInPast) {
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		}

		err = fmt.Errorf("v1.HandleCreateRun -> h.svc.CreateRun -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, run)
}

// HandleUpdateRun godoc
// @Summary      Update a run (organizer only)
// @Tags         runs
// @Produce      json
// @Param        runID    path       integer true "run ID"
// @Param        request   body      request.UpdateRunRequest true "request body"
// @Success      200      {object}   domain.Run
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /runs/{runID} [put]
// @Security     BearerAuth
func (h *RunHandler) HandleUpdateRun(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	runID, respErr := parseRunIDParam(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.UpdateRunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	run, err := h.svc.UpdateRun(ctx.Request.Context(), runID, userID, req.ToDomain())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRunNotFound):
			response.RenderErr(ctx, response.ErrNotFound(err))
		case errors.Is(err, service.ErrNotOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrRunDateInPast):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleUpdateRun -> h.svc.UpdateRun -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, run)
}

// HandleDeleteRun godoc
// @Summary      Delete a run (organizer or admin)
// @Tags         runs
// @Produce      json
// @Param        runID    path       integer true "run ID"
// @Success      200      {object}   response.SimpleMessageResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /runs/{runID} [delete]
// @Security     BearerAuth
func (h *RunHandler) HandleDeleteRun(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
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
		ID:   userID,
		Role: getUserRoleFromContext(ctx),
	}

	err := h.svc.DeleteRun(ctx.Request.Context(), runID, requester)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRunNotFound):
			response.RenderErr(ctx, response.ErrNotFound(err))
		case errors.Is(err, service.ErrNotOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleDeleteRun -> h.svc.DeleteRun -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, response.SimpleMessageResponse{
		Message: "run deleted",
	})
}

// HandleJoinRun godoc
// @Summary      Request to join a run
// @Tags         runs
// @Produce      json
// @Param        runID    path       integer true "run ID"
// @Success      201      {object}   domain.Participation
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /runs/{runID}/join [post]
// @Security     BearerAuth
func (h *RunHandler) HandleJoinRun(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	runID, respErr := parseRunIDParam(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	participation, err := h.svc.Join(ctx.Request.Context(), runID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRunNotFound):
			response.RenderErr(ctx, response.ErrNotFound(err))
		case errors.Is(err, service.ErrAlreadyJoined):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleJoinRun -> h.svc.Join -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, participation)
}

// HandleLeaveRun godoc
// @Summary      Leave a run
// @Tags         runs
// @Produce      json
// @Param        runID    path       integer true "run ID"
// @Success      200      {object}   response.SimpleMessageResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /runs/{runID}/leave [post]
// @Security     BearerAuth
func (h *RunHandler) HandleLeaveRun(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	runID, respErr := parseRunIDParam(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	err := h.svc.Leave(ctx.Request.Context(), runID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRunNotFound):
			response.RenderErr(ctx, response.ErrNotFound(err))
		case errors.Is(err, service.ErrNotParticipant):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrOrganizerCannotLeave):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleLeaveRun -> h.svc.Leave -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, response.SimpleMessageResponse{
		Message: "run left",
	})
}

// HandleSetParticipantStatus godoc
// @Summary      Confirm or cancel a participant (organizer only)
// @Tags         runs
// @Produce      json
// @Param        runID    path       integer true "run ID"
// @Param        userID   path       integer true "participant user ID"
// @Param        request   body      request.ParticipantStatusRequest true "request body"
// @Success      200      {object}   response.SimpleMessageResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /runs/{runID}/participants/{userID} [put]
// @Security     BearerAuth
func (h *RunHandler) HandleSetParticipantStatus(ctx *gin.Context) {
	organizerID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	runID, respErr := parseRunIDParam(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	targetUserID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.ParticipantStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	err := h.svc.SetParticipantStatus(ctx.Request.Context(), runID, organizerID, targetUserID, domain.ParticipationStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRunNotFound), errors.Is(err, service.ErrNotParticipant):
			response.RenderErr(ctx, response.ErrNotFound(err))
		case errors.Is(err, service.ErrNotOrganizer), errors.Is(err, service.ErrOrganizerCannotLeave):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrInvalidTransition):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleSetParticipantStatus -> h.svc.SetParticipantStatus -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, response.SimpleMessageResponse{
		Message: "participant status updated",
	})
}

// HandleRateRun godoc
// @Summary      Rate a run (confirmed participants only)
// @Tags         runs
// @Produce      json
// @Param        runID    path       integer true "run ID"
// @Param        request   body      request.RateRunRequest true "request body"
// @Success      201      {object}   domain.RunRating
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /runs/{runID}/rate [post]
// @Security     BearerAuth
func (h *RunHandler) HandleRateRun(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	runID, respErr := parseRunIDParam(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.RateRunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	rating, err := h.svc.RateRun(ctx.Request.Context(), userID, runID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRunNotFound):
			response.RenderErr(ctx, response.ErrNotFound(err))
		case errors.Is(err, service.ErrRatingOutOfRange):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrNotConfirmedParticipant):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleRateRun -> h.svc.RateRun -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, rating)
}

func parseRunIDParam(ctx *gin.Context) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param("runID"), 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(errInvalidRunID)
	}

	return uint(id), nil
}
