package dao

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"
)

type Message struct {
	ID uint `gorm:"primaryKey"`

	SenderID    uint   `gorm:"not null;index"`
	RecipientID uint   `gorm:"not null;index"`
	Content     string `gorm:"not null"`

	SentAt time.Time `gorm:"not null"`

	Sender    User `gorm:"foreignKey:SenderID"`
	Recipient User `gorm:"foreignKey:RecipientID"`
}

// MessageRow is the scan target for conversation listings.
type MessageRow struct {
	ID            uint
	SenderID      uint
	RecipientID   uint
	Content       string
	SentAt        time.Time
	SenderName    string
	SenderPicture string
}

// ConversationRow is the scan target for the per-peer conversation list.
type ConversationRow struct {
	OtherUserID     uint
	OtherUsername   string
	OtherPicture    string
	LastMessage     string
	LastMessageTime time.Time
}

type MessageDAO struct {
	db *gorm.DB
}

func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{
		db: db,
	}
}

func (d *MessageDAO) Insert(ctx context.Context, message Message) (Message, error) {
	message.SentAt = time.Now()

	result := d.db.WithContext(ctx).Create(&message)
	if result.Error != nil {
		return Message{}, result.Error
	}

	return message, nil
}

func (d *MessageDAO) ListBetween(ctx context.Context, userA, userB uint) ([]MessageRow, error) {
	var rows []MessageRow

	result := d.db.WithContext(ctx).
		Table("messages").
		Select(`messages.*,
			users.username AS sender_name,
			users.profile_picture AS sender_picture`).
		Joins("JOIN users ON users.id = messages.sender_id").
		Where("(messages.sender_id = ? AND messages.recipient_id = ?) OR (messages.sender_id = ? AND messages.recipient_id = ?)",
			userA, userB, userB, userA).
		Order("messages.sent_at ASC").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// ListConversations returns one row per peer the user has exchanged
// messages with, carrying the most recent message, newest conversation
// first.
func (d *MessageDAO) ListConversations(ctx context.Context, userID uint) ([]ConversationRow, error) {
	var rows []ConversationRow

	result := d.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (other_user_id)
			other_user_id,
			users.username AS other_username,
			users.profile_picture AS other_picture,
			m.content AS last_message,
			m.sent_at AS last_message_time
		FROM (
			SELECT *,
				CASE WHEN sender_id = @user THEN recipient_id ELSE sender_id END AS other_user_id
			FROM messages
			WHERE sender_id = @user OR recipient_id = @user
		) m
		JOIN users ON users.id = m.other_user_id
		ORDER BY other_user_id, m.sent_at DESC`,
		map[string]interface{}{"user": userID}).
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	// DISTINCT ON fixes the per-peer row but not the final ordering.
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].LastMessageTime.After(rows[j].LastMessageTime)
	})

	return rows, nil
}

func (d *MessageDAO) CountReceived(ctx context.Context, userID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Message{}).
		Where("recipient_id = ?", userID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
