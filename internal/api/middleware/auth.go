package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/runshare/runshare-api/internal/api/handler/v1/response"
	"github.com/runshare/runshare-api/internal/pkg/jwthelper"
)

const (
	// ContextKeyUserID and ContextKeyUserRole are where the verified
	// claims land for downstream handlers.
	ContextKeyUserID   = "userID"
	ContextKeyUserRole = "userRole"
)

var (
	errMissingAuthHeader = errors.New("missing or malformed Authorization header")
)

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// VerifyJWT rejects requests without a valid bearer token.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := bearerToken(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingAuthHeader))
			return
		}

		claims, err := jwthelper.ParseSessionToken(a.signingKey, tokenString)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		ctx.Set(ContextKeyUserID, claims.UserID)
		ctx.Set(ContextKeyUserRole, claims.Role)
		ctx.Next()
	}
}

// OptionalJWT attaches claims when a valid token is present and lets
// anonymous requests through. Listing endpoints use it to widen
// visibility for authenticated callers.
func (a *Authenticator) OptionalJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := bearerToken(ctx)
		if ok {
			if claims, err := jwthelper.ParseSessionToken(a.signingKey, tokenString); err == nil {
				ctx.Set(ContextKeyUserID, claims.UserID)
				ctx.Set(ContextKeyUserRole, claims.Role)
			}
		}

		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) (string, bool) {
	header := ctx.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
