package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS handles Cross-Origin Resource Sharing. Allowed origins come from the
// comma-separated origins string; "*" allows all origins.
func CORS(origins string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if origins == "" || origins == "*" {
		config.AllowAllOrigins = true
		config.AllowCredentials = false
	} else {
		for _, o := range strings.Split(origins, ",") {
			config.AllowOrigins = append(config.AllowOrigins, strings.TrimSpace(o))
		}
	}

	return cors.New(config)
}
