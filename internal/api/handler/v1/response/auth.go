package response

import (
	"github.com/runshare/runshare-api/internal/domain"
)

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type SimpleMessageResponse struct {
	Message string `json:"message"`
}
