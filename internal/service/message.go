package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/runshare/runshare-api/internal/domain"
)

var (
	ErrEmptyMessage      = errors.New("message content cannot be empty")
	ErrNotEligibleToChat = errors.New("you can only message users who share one of your organized runs")
)

type MessageRepository interface {
	Insert(ctx context.Context, message domain.Message) (domain.Message, error)
	ListBetween(ctx context.Context, userA, userB uint) ([]domain.Message, error)
	ListConversations(ctx context.Context, userID uint) ([]domain.Conversation, error)
	CountReceived(ctx context.Context, userID uint) (int64, error)
}

type MessageUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// ChatEligibilityChecker is the slice of the eligibility engine
// messaging needs.
type ChatEligibilityChecker interface {
	CanCommunicate(ctx context.Context, userA, userB uint) (bool, error)
}

type MessageService struct {
	repo        MessageRepository
	userRepo    MessageUserRepository
	eligibility ChatEligibilityChecker
}

func NewMessageService(repo MessageRepository, userRepo MessageUserRepository, eligibility ChatEligibilityChecker) *MessageService {
	return &MessageService{
		repo:        repo,
		userRepo:    userRepo,
		eligibility: eligibility,
	}
}

// Send delivers a message to another user. The recipient must exist and
// the pair must share a confirmed run organized by either of them.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID uint, content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, ErrEmptyMessage
	}

	if _, err := s.userRepo.FindByID(ctx, recipientID); err != nil {
		return domain.Message{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	eligible, err := s.eligibility.CanCommunicate(ctx, senderID, recipientID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("s.eligibility.CanCommunicate -> %w", err)
	}
	if !eligible {
		return domain.Message{}, ErrNotEligibleToChat
	}

	message, err := s.repo.Insert(ctx, domain.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("s.repo.Insert -> %w", err)
	}

	return message, nil
}

// GetConversation returns the full exchange between the caller and the
// other user. Eligibility is re-checked so history disappears when the
// shared-run link no longer holds.
func (s *MessageService) GetConversation(ctx context.Context, userID, otherUserID uint) ([]domain.Message, error) {
	if _, err := s.userRepo.FindByID(ctx, otherUserID); err != nil {
		return nil, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	eligible, err := s.eligibility.CanCommunicate(ctx, userID, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("s.eligibility.CanCommunicate -> %w", err)
	}
	if !eligible {
		return nil, ErrNotEligibleToChat
	}

	messages, err := s.repo.ListBetween(ctx, userID, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListBetween -> %w", err)
	}

	return messages, nil
}

func (s *MessageService) ListConversations(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	conversations, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListConversations -> %w", err)
	}

	return conversations, nil
}

func (s *MessageService) CountReceived(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repo.CountReceived(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("s.repo.CountReceived -> %w", err)
	}

	return count, nil
}
