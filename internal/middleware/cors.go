package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS：origins 为 ["*"] 时放开所有来源且不携带凭据
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Admin-Token"},
		AllowCredentials: !allowAll,
		MaxAge:           600,
	})
	if allowAll {
		c = cors.AllowAll()
	}
	return c.Handler
}
