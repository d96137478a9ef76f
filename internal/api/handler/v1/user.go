package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/runshare/runshare-api/internal/api/handler/v1/request"
	"github.com/runshare/runshare-api/internal/api/handler/v1/response"
	"github.com/runshare/runshare-api/internal/api/middleware"
	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/service"
)

const maxProfilePictureBytes = 5 << 20

var (
	errNotAuthenticated    = errors.New("not authenticated")
	errInvalidUserID       = errors.New("invalid user ID")
	errUnsupportedFileType = errors.New("profile picture must be a jpg, png or gif file")
	errPictureTooLarge     = errors.New("profile picture must be smaller than 5MB")

	allowedPictureExts = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
	}
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	GetProfile(ctx context.Context, id uint) (domain.UserProfile, error)
	UpdateProfile(ctx context.Context, id uint, update domain.ProfileUpdate) (domain.User, error)
	UpdateProfilePicture(ctx context.Context, id uint, path string) error
	RateUser(ctx context.Context, raterID, rateeID uint, rating int, comment string) (domain.UserRating, error)
}

type UserHandler struct {
	svc       UserService
	uploadDir string
}

func NewUserHandler(svc UserService, uploadDir string) *UserHandler {
	return &UserHandler{
		svc:       svc,
		uploadDir: uploadDir,
	}
}

func getUserIDFromContext(ctx *gin.Context) (uint, *response.Err) {
	v, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return 0, response.ErrUnauthorized(errNotAuthenticated)
	}

	userID, ok := v.(uint)
	if !ok || userID == 0 {
		return 0, response.ErrUnauthorized(errNotAuthenticated)
	}

	return userID, nil
}

// getOptionalUserIDFromContext returns 0 for anonymous requests.
func getOptionalUserIDFromContext(ctx *gin.Context) uint {
	v, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return 0
	}

	userID, ok := v.(uint)
	if !ok {
		return 0
	}

	return userID
}

func parseIDParam(ctx *gin.Context, name string) (uint, *response.Err) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(errInvalidUserID)
	}

	return uint(id), nil
}

// HandleGetUserProfile godoc
// @Summary      Get a user's public profile
// @Tags         users
// @Produce      json
// @Param        userID   path       integer true "user ID"
// @Success      200      {object}   domain.UserProfile
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/{userID} [get]
// @Security     BearerAuth
func (h *UserHandler) HandleGetUserProfile(ctx *gin.Context) {
	userID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	profile, err := h.svc.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(err))

			return
		}

		err = fmt.Errorf("v1.HandleGetUserProfile -> h.svc.GetProfile -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, profile)
}

// HandleUpdateProfile godoc
// @Summary      Update the authenticated user's profile
// @Tags         users
// @Produce      json
// @Param        request   body      request.UpdateProfileRequest true "request body"
// @Success      200      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/profile [put]
// @Security     BearerAuth
func (h *UserHandler) HandleUpdateProfile(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.svc.UpdateProfile(ctx.Request.Context(), userID, req.ToDomain())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyUpdate):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrUserUsernameExists):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound(err))
		default:
			err = fmt.Errorf("v1.HandleUpdateProfile -> h.svc.UpdateProfile -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleUploadProfilePicture godoc
// @Summary      Upload a profile picture
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        picture   formData   file true "image file"
// @Success      200      {object}   response.ProfilePictureResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/profile/picture [post]
// @Security     BearerAuth
func (h *UserHandler) HandleUploadProfilePicture(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	file, err := ctx.FormFile("picture")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("missing picture file")))

		return
	}

	if file.Size > maxProfilePictureBytes {
		response.RenderErr(ctx, response.ErrBadRequest(errPictureTooLarge))

		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedPictureExts[ext] {
		response.RenderErr(ctx, response.ErrBadRequest(errUnsupportedFileType))

		return
	}

	// The stored name is random so uploads can never collide or
	// overwrite another user's picture.
	filename := uuid.NewString() + ext
	dst := filepath.Join(h.uploadDir, filename)
	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		err = fmt.Errorf("v1.HandleUploadProfilePicture -> ctx.SaveUploadedFile -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	publicPath := "/images/profiles/" + filename
	if err := h.svc.UpdateProfilePicture(ctx.Request.Context(), userID, publicPath); err != nil {
		err = fmt.Errorf("v1.HandleUploadProfilePicture -> h.svc.UpdateProfilePicture -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.ProfilePictureResponse{
		ProfilePicture: publicPath,
	})
}

// HandleRateUser godoc
// @Summary      Rate another user after a shared run
// @Tags         users
// @Produce      json
// @Param        userID   path       integer true "ratee user ID"
// @Param        request   body      request.RateUserRequest true "request body"
// @Success      201      {object}   domain.UserRating
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/{userID}/rate [post]
// @Security     BearerAuth
func (h *UserHandler) HandleRateUser(ctx *gin.Context) {
	raterID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	rateeID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.RateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	rating, err := h.svc.RateUser(ctx.Request.Context(), raterID, rateeID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfRating), errors.Is(err, service.ErrRatingOutOfRange):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrNotEligibleToRate):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound(err))
		default:
			err = fmt.Errorf("v1.HandleRateUser -> h.svc.RateUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, rating)
}
