package domain

import "time"

type Message struct {
	ID          uint      `json:"id"`
	SenderID    uint      `json:"sender_id"`
	RecipientID uint      `json:"recipient_id"`
	Content     string    `json:"content"`
	SentAt      time.Time `json:"sent_at"`

	SenderName    string `json:"sender_name,omitempty"`
	SenderPicture string `json:"sender_picture,omitempty"`
}

// Conversation is a peer summary in the conversation list: the other
// user plus the most recent message exchanged with them.
type Conversation struct {
	OtherUserID     uint      `json:"other_user_id"`
	OtherUsername   string    `json:"other_username"`
	OtherPicture    string    `json:"other_picture"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
}
