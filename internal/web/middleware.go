package web

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
)

// Wrap adds access logging, CORS and panic recovery around h.
func Wrap(h http.Handler, allowedOrigins []string, accessLog io.Writer) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))
	return handlers.LoggingHandler(accessLog, recovery(cors(h)))
}
