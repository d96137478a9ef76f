package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ConfigCORS builds the CORS middleware from a comma-separated list of
// allowed origins. "*" allows everything, which is only meant for
// local development.
func ConfigCORS(allowedDomains string) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if allowedDomains == "*" {
		conf.AllowAllOrigins = true
		conf.AllowCredentials = false
	} else {
		origins := strings.Split(allowedDomains, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		conf.AllowOrigins = origins
	}

	return cors.New(conf)
}
