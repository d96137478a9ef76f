package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type SendMessageRequest struct {
	RecipientID uint   `json:"recipient_id"`
	Content     string `json:"content"`
}

func (req *SendMessageRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RecipientID, validation.Required),
		validation.Field(&req.Content, validation.Required, validation.Length(1, 2000)),
	)
}
