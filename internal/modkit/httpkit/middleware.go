package httpkit

import (
	"net/http"
	"time"

	"tasksync/internal/platform/config"
	"tasksync/internal/platform/net/middleware"
)

// CommonStack is the middleware every /api/v1 route runs behind.
// Reads TIMEOUT, SLOW_REQUEST and CORS_ORIGINS under cfg's prefix
func CommonStack(cfg config.Conf) []func(http.Handler) http.Handler {
	timeout := cfg.MayDuration("TIMEOUT", 5*time.Minute)
	stack := middleware.Defaults(timeout)
	stack = append(stack,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: cfg.MayDuration("SLOW_REQUEST", 10*time.Second)}),
		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins: cfg.MayCSV("CORS_ORIGINS", []string{"*"}),
		}),
	)
	return stack
}
