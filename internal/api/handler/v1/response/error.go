package response

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	StatusCode int    `json:"-"`
	RequestID  string `json:"request_id"`
	Msg        string `json:"msg"`

	// err carries the underlying error for logging. Never serialized.
	err error
}

func NewErr(statusCode int, err error) *Err {
	return &Err{
		StatusCode: statusCode,
		Msg:        err.Error(),
		err:        err,
	}
}

func ErrBadRequest(err error) *Err {
	return NewErr(http.StatusBadRequest, err)
}

func ErrWrongCredentials(err error) *Err {
	e := NewErr(http.StatusUnauthorized, errors.New("wrong credentials"))
	e.err = err

	return e
}

func ErrUnauthorized(err error) *Err {
	return NewErr(http.StatusUnauthorized, err)
}

func ErrPermissionDenied(err error) *Err {
	return NewErr(http.StatusForbidden, err)
}

func ErrNotFound(err error) *Err {
	return NewErr(http.StatusNotFound, err)
}

func ErrConflict(err error) *Err {
	return NewErr(http.StatusConflict, err)
}

func ErrInternalServerError(err error) *Err {
	e := NewErr(http.StatusInternalServerError, errors.New("internal server error"))
	e.err = err

	return e
}

// RenderErr writes the error response. Server-side errors are logged
// with the request ID so the generic message can be traced back.
func RenderErr(ctx *gin.Context, e *Err) {
	e.RequestID = requestid.Get(ctx)

	if e.StatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", e.RequestID),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.err),
		)
	}

	ctx.AbortWithStatusJSON(e.StatusCode, e)
}
