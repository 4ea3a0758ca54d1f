package httpapi

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
)

// RouterConfig carries the cross-cutting HTTP settings wired from config.
type RouterConfig struct {
	AllowedOrigins   []string
	InternalJobToken string
}

// NewRouter assembles the HTTP routing tree with the shared middleware chain.
func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	registerSystemRoutes(mux, handler)
	registerPublicRoutes(mux, handler)
	registerAuthorizedRoutes(mux, handler, verifier)
	registerInternalJobRoutes(mux, handler, cfg.InternalJobToken)

	return RequestTracing(RequestLogging(logger, CORS(cfg.AllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.ErrorContext(r.Context(), "panic recovered in http handler",
					"panic", fmt.Sprintf("%v", recovered),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeInternalError(r.Context(), w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
