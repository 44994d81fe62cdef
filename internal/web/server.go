package web

import (
	"net/http"
	"time"

	"github.com/eurekazheng/learning-react/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Options tunes the HTTP layer.
type Options struct {
	Logger *zap.Logger
	// CookieTTL is the lifetime of the cookie that remembers the last session.
	CookieTTL time.Duration
}

// NewServer wires routes and returns an http.Handler. It also installs the
// game fragment renderer on the service so open event streams receive
// updates.
func NewServer(s *app.Service, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &handlers{svc: s, tpl: loadTemplates(), log: log.Named("http"), cookieTTL: opts.CookieTTL}
	s.SetRenderer(func(sess app.Session) []byte { return h.renderGame(sess, "") })

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.log))
	r.Get("/", h.index)
	r.Get("/ping", h.ping)
	r.Post("/session", h.create)
	r.Route("/session/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/play", h.play)
		r.Post("/jump", h.jump)
		r.Post("/order", h.order)
		r.Post("/restart", h.restart)
		r.Get("/history", h.history)
		r.Get("/events", h.events)
	})
	return r
}

// requestLogger logs one line per request with its status and duration.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
