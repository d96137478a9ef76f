package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleHealthcheck godoc
// @Summary      Healthcheck
// @Tags         health
// @Produce      plain
// @Success      200 {string} string "."
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.String(http.StatusOK, ".")
}
