package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runshare/runshare-api/internal/api/handler/v1/request"
	"github.com/runshare/runshare-api/internal/api/handler/v1/response"
	"github.com/runshare/runshare-api/internal/config"
	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/pkg/jwthelper"
	"github.com/runshare/runshare-api/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, user domain.User) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	GetProfile(ctx context.Context, userID uint) (domain.User, error)
	ForgotPassword(ctx context.Context, email string)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type AuthHandler struct {
	conf *config.APIConfig
	svc  AuthService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService) *AuthHandler {
	return &AuthHandler{
		conf: conf,
		svc:  svc,
	}
}

// HandleRegister godoc
// @Summary      Register a new user
// @Tags         auth
// @Produce      json
// @Param        request   body      request.RegisterRequest true "request body"
// @Success      201      {object}   response.LoginResponse
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/register [post]
func (h *AuthHandler) HandleRegister(ctx *gin.Context) {
	var req request.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	level := domain.Level(req.Level)
	if req.Level == "" {
		level = domain.LevelBeginner
	}

	user, err := h.svc.Register(ctx.Request.Context(), domain.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		City:     req.City,
		Level:    level,
		Bio:      req.Bio,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserEmailExists) || errors.Is(err, service.ErrUserUsernameExists) {
			response.RenderErr(ctx, response.ErrConflict(err))

			return
		}

		err = fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	token, err := jwthelper.GenerateSessionToken([]byte(h.conf.JWTSigningKey), user.ID, string(user.Role))
	if err != nil {
		err = fmt.Errorf("v1.HandleRegister -> jwthelper.GenerateSessionToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, response.LoginResponse{
		Token: token,
		User:  user,
	})
}

// HandleLogin godoc
// @Summary      Login a user
// @Tags         auth
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))

			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	token, err := jwthelper.GenerateSessionToken([]byte(h.conf.JWTSigningKey), user.ID, string(user.Role))
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateSessionToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  user,
	})
}

// HandleGetOwnProfile godoc
// @Summary      Get the authenticated user's own account
// @Tags         auth
// @Produce      json
// @Success      200      {object}   domain.User
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/profile [get]
// @Security     BearerAuth
func (h *AuthHandler) HandleGetOwnProfile(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	user, err := h.svc.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(err))

			return
		}

		err = fmt.Errorf("v1.HandleGetOwnProfile -> h.svc.GetProfile -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleForgotPassword godoc
// @Summary      Request a password reset email
// @Tags         auth
// @Produce      json
// @Param        request   body      request.ForgotPasswordRequest true "request body"
// @Success      200      {object}   response.SimpleMessageResponse
// @Failure      400      {object}   response.Err
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) HandleForgotPassword(ctx *gin.Context) {
	var req request.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	// The response is identical whether or not the account exists, so
	// the endpoint cannot be used to probe for registered emails.
	h.svc.ForgotPassword(ctx.Request.Context(), req.Email)

	ctx.JSON(http.StatusOK, response.SimpleMessageResponse{
		Message: "if the email exists, a reset link has been sent",
	})
}

// HandleResetPassword godoc
// @Summary      Reset the password with a token from the reset email
// @Tags         auth
// @Produce      json
// @Param        request   body      request.ResetPasswordRequest true "request body"
// @Success      200      {object}   response.SimpleMessageResponse
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/reset-password [post]
func (h *AuthHandler) HandleResetPassword(ctx *gin.Context) {
	var req request.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	err := h.svc.ResetPassword(ctx.Request.Context(), req.Token, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) ||
			errors.Is(err, service.ErrResetTokenExpired) ||
			errors.Is(err, service.ErrInvalidPurpose) ||
			errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid or expired reset token")))

			return
		}

		err = fmt.Errorf("v1.HandleResetPassword -> h.svc.ResetPassword -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.SimpleMessageResponse{
		Message: "password has been reset",
	})
}
