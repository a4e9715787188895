package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/hay-kot/shopcart/internal/gateway"
)

// requestLogging attaches a request scoped logger and writes one access log
// line per request.
func (s *Server) requestLogging() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		hlog.NewHandler(s.logger),
		hlog.RequestIDHandler("req_id", "X-Server-Request-Id"),
		hlog.CustomHeaderHandler("client_request_id", gateway.HeaderRequestID),
		hlog.RemoteAddrHandler("ip"),
		hlog.MethodHandler("method"),
		hlog.URLHandler("url"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		}),
	}
}

// recoverer turns a panic into a JSON 500.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				hlog.FromRequest(r).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
				writeError(w, r, http.StatusInternalServerError, "Server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// originGuard rejects browser requests from origins outside the allow-list
// instead of serving them without CORS headers.
func (s *Server) originGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); !s.originAllowed(origin) {
			hlog.FromRequest(r).Warn().Str("origin", origin).Msg("origin rejected")
			writeError(w, r, http.StatusBadRequest, "Not allowed by CORS")
			return
		}
		next.ServeHTTP(w, r)
	})
}
