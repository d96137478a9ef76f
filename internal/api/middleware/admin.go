package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/runshare/runshare-api/internal/api/handler/v1/response"
	"github.com/runshare/runshare-api/internal/domain"
)

var errAdminOnly = errors.New("admin access required")

// RequireAdmin must run after VerifyJWT.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role, exists := ctx.Get(ContextKeyUserRole)
		if !exists || role != string(domain.RoleAdmin) {
			response.RenderErr(ctx, response.ErrPermissionDenied(errAdminOnly))
			return
		}

		ctx.Next()
	}
}
