package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/eurekazheng/learning-react/internal/app"
	"github.com/eurekazheng/learning-react/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       *zap.Logger
	cookieTTL time.Duration
}

func (h *handlers) renderGame(s app.Session, errMsg string) []byte {
	return renderTemplate(h.tpl.game, "", newGameView(s, errMsg))
}

func (h *handlers) writeGame(w http.ResponseWriter, s app.Session, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.renderGame(s, errMsg))
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	var resume string
	if id := sessionFromCookie(r); id != "" {
		if _, ok := h.svc.Get(id); ok {
			resume = id
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.index, "base", resume))
}

func (h *handlers) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.CreateSession()
	if err != nil {
		if errors.Is(err, app.ErrTooManySessions) {
			http.Error(w, "too many games in progress, try again later", http.StatusServiceUnavailable)
			return
		}
		h.log.Error("failed to create session", zap.Error(err))
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	rememberSession(w, s.ID, h.cookieTTL)
	http.Redirect(w, r, "/session/"+s.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	s, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	rememberSession(w, s.ID, h.cookieTTL)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.page, "base", newGameView(*s, "")))
}

// formInt reads an integer form field. Missing or malformed values map to -1,
// which every action rejects as out of range.
func formInt(r *http.Request, name string) int {
	_ = r.ParseForm()
	v, err := strconv.Atoi(r.Form.Get(name))
	if err != nil {
		return -1
	}
	return v
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.svc.Play(id, formInt(r, "cell"))
	h.respond(w, r, s, err)
}

func (h *handlers) jump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.svc.JumpTo(id, formInt(r, "step"))
	h.respond(w, r, s, err)
}

func (h *handlers) order(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.ToggleOrder(chi.URLParam(r, "id"))
	h.respond(w, r, s, err)
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Restart(chi.URLParam(r, "id"))
	h.respond(w, r, s, err)
}

// respond renders the game fragment after an action. A rejected action still
// renders the unchanged game with an alert. Plain form posts without htmx are
// redirected back to the page on success and get the full page on failure.
func (h *handlers) respond(w http.ResponseWriter, r *http.Request, s *app.Session, err error) {
	if s == nil {
		http.NotFound(w, r)
		return
	}
	var errMsg string
	if err != nil {
		errMsg = errorText(err)
	}
	if r.Header.Get("HX-Request") == "" {
		if errMsg == "" {
			http.Redirect(w, r, "/session/"+s.ID, http.StatusSeeOther)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(renderTemplate(h.tpl.page, "base", newGameView(*s, errMsg)))
		return
	}
	h.writeGame(w, *s, errMsg)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrOccupied):
		return "Cell is occupied"
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over"
	case errors.Is(err, domain.ErrInvalidCell):
		return "Out of bounds"
	case errors.Is(err, domain.ErrInvalidStep):
		return "Invalid step"
	default:
		return "Invalid action"
	}
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	s, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newHistoryView(*s)); err != nil {
		h.log.Error("failed to encode history", zap.String("session", s.ID), zap.Error(err))
	}
}

var heartbeatInterval = 15 * time.Second

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// Only EventSource clients get a stream; anything else just sees the headers.
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "event: game\n")
			// SSE data fields cannot hold newlines
			for _, line := range bytes.Split(b, []byte("\n")) {
				_, _ = fmt.Fprintf(w, "data: %s\n", line)
			}
			_, _ = io.WriteString(w, "\n")
			flusher.Flush()
		}
	}
}
