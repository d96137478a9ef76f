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

type MessageService interface {
	Send(ctx context.Context, senderID, recipientID uint, content string) (domain.Message, error)
	GetConversation(ctx context.Context, userID, otherUserID uint) ([]domain.Message, error)
	ListConversations(ctx context.Context, userID uint) ([]domain.Conversation, error)
	CountReceived(ctx context.Context, userID uint) (int64, error)
}

type MessageHandler struct {
	svc MessageService
}

func NewMessageHandler(svc MessageService) *MessageHandler {
	return &MessageHandler{
		svc: svc,
	}
}

// HandleSendMessage godoc
// @Summary      Send a message to a user from one of your shared runs
// @Tags         messages
// @Produce      json
// @Param        request   body      request.SendMessageRequest true "request body"
// @Success      201      {object}   domain.Message
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /messages [post]
// @Security     BearerAuth
func (h *MessageHandler) HandleSendMessage(ctx *gin.Context) {
	senderID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	message, err := h.svc.Send(ctx.Request.Context(), senderID, req.RecipientID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound(err))
		case errors.Is(err, service.ErrNotEligibleToChat):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleSendMessage -> h.svc.Send -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, message)
}

// HandleGetConversation godoc
// @Summary      Get the message history with another user
// @Tags         messages
// @Produce      json
// @Param        userID   path       integer true "other user ID"
// @Success      200      {array}    domain.Message
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /messages/{userID} [get]
// @Security     BearerAuth
func (h *MessageHandler) HandleGetConversation(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	otherUserID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	messages, err := h.svc.GetConversation(ctx.Request.Context(), userID, otherUserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound(err))
		case errors.Is(err, service.ErrNotEligibleToChat):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleGetConversation -> h.svc.GetConversation -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, messages)
}

// HandleListConversations godoc
// @Summary      List conversations with their latest message
// @Tags         messages
// @Produce      json
// @Success      200      {array}    domain.Conversation
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /messages/conversations [get]
// @Security     BearerAuth
func (h *MessageHandler) HandleListConversations(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	conversations, err := h.svc.ListConversations(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListConversations -> h.svc.ListConversations -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, conversations)
}

// HandleCountReceived godoc
// @Summary      Count messages received by the authenticated user
// @Tags         messages
// @Produce      json
// @Success      200      {object}   response.ReceivedCountResponse
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /messages/count [get]
// @Security     BearerAuth
func (h *MessageHandler) HandleCountReceived(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	count, err := h.svc.CountReceived(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleCountReceived -> h.svc.CountReceived -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.ReceivedCountResponse{
		Count: count,
	})
}
