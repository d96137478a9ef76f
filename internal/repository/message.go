package repository

import (
	"context"
	"fmt"

	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/repository/dao"
)

type MessageDAO interface {
	Insert(ctx context.Context, message dao.Message) (dao.Message, error)
	ListBetween(ctx context.Context, userA, userB uint) ([]dao.MessageRow, error)
	ListConversations(ctx context.Context, userID uint) ([]dao.ConversationRow, error)
	CountReceived(ctx context.Context, userID uint) (int64, error)
}

type MessageRepository struct {
	dao MessageDAO
}

func NewMessageRepository(dao MessageDAO) *MessageRepository {
	return &MessageRepository{
		dao: dao,
	}
}

func (r *MessageRepository) Insert(ctx context.Context, message domain.Message) (domain.Message, error) {
	created, err := r.dao.Insert(ctx, dao.Message{
		SenderID:    message.SenderID,
		RecipientID: message.RecipientID,
		Content:     message.Content,
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	message.ID = created.ID
	message.SentAt = created.SentAt

	return message, nil
}

func (r *MessageRepository) ListBetween(ctx context.Context, userA, userB uint) ([]domain.Message, error) {
	rows, err := r.dao.ListBetween(ctx, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListBetween -> %w", err)
	}

	messages := make([]domain.Message, len(rows))
	for i, row := range rows {
		messages[i] = domain.Message{
			ID:            row.ID,
			SenderID:      row.SenderID,
			RecipientID:   row.RecipientID,
			Content:       row.Content,
			SentAt:        row.SentAt,
			SenderName:    row.SenderName,
			SenderPicture: row.SenderPicture,
		}
	}

	return messages, nil
}

func (r *MessageRepository) ListConversations(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	rows, err := r.dao.ListConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListConversations -> %w", err)
	}

	conversations := make([]domain.Conversation, len(rows))
	for i, row := range rows {
		conversations[i] = domain.Conversation{
			OtherUserID:     row.OtherUserID,
			OtherUsername:   row.OtherUsername,
			OtherPicture:    row.OtherPicture,
			LastMessage:     row.LastMessage,
			LastMessageTime: row.LastMessageTime,
		}
	}

	return conversations, nil
}

func (r *MessageRepository) CountReceived(ctx context.Context, userID uint) (int64, error) {
	count, err := r.dao.CountReceived(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountReceived -> %w", err)
	}

	return count, nil
}
