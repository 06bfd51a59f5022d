// AngelaMos | 2026
// cors.go

package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/carterperez-dev/reviewdb/internal/config"
)

func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
	return c.Handler
}
