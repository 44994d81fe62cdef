package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eurekazheng/learning-react/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Errors exposed by the service layer.
var (
	ErrNotFound        = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Order is the direction the move list is shown in.
type Order uint8

const (
	Ascending Order = iota
	Descending
)

// Toggle returns the opposite order.
func (o Order) Toggle() Order {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

// Session is the in-memory state tracked per browser.
type Session struct {
	ID      string
	History domain.History
	Order   Order
	Created time.Time
	Updated time.Time
}

// Options configures a Service. Zero values disable the limit they control.
type Options struct {
	// TTL is how long a session may stay idle before Sweep removes it.
	TTL time.Duration
	// MaxSessions caps the number of live sessions.
	MaxSessions int
	Logger      *zap.Logger
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages sessions and subscribers.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session
	subs     map[string]map[*subscriber]struct{}
	render   func(Session) []byte
	opts     Options
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a service with a renderer that encodes nothing.
func NewService(opts Options) *Service { return NewServiceWithRenderer(opts, nil) }

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(opts Options, renderer func(Session) []byte) *Service {
	if renderer == nil {
		renderer = func(Session) []byte { return nil }
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		sessions: make(map[string]*Session),
		subs:     make(map[string]map[*subscriber]struct{}),
		render:   renderer,
		opts:     opts,
		log:      log.Named("sessions"),
		now:      time.Now,
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(Session) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(Session) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateSession starts a new game on an empty board.
func (s *Service) CreateSession() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.MaxSessions > 0 && len(s.sessions) >= s.opts.MaxSessions {
		s.log.Warn("session limit reached", zap.Int("max", s.opts.MaxSessions))
		return nil, ErrTooManySessions
	}
	now := s.now()
	sess := &Session{ID: uuid.NewString(), History: domain.NewHistory(), Created: now, Updated: now}
	s.sessions[sess.ID] = sess
	s.log.Debug("session created", zap.String("session", sess.ID))
	cp := *sess
	return &cp, nil
}

// Get returns a copy of the session if present. Reading a session counts as
// activity and postpones its expiry.
func (s *Service) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.Updated = s.now()
	cp := *sess
	return &cp, true
}

// Len returns the number of live sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Play places the next mark on cell.
func (s *Service) Play(id string, cell int) (*Session, error) {
	return s.update(id, "play", func(sess *Session) error {
		h, err := sess.History.Play(cell)
		if err != nil {
			return fmt.Errorf("play cell %d: %w", cell, err)
		}
		sess.History = h
		return nil
	})
}

// JumpTo shows the board as it was after step.
func (s *Service) JumpTo(id string, step int) (*Session, error) {
	return s.update(id, "jump", func(sess *Session) error {
		h, err := sess.History.JumpTo(step)
		if err != nil {
			return fmt.Errorf("jump to step %d: %w", step, err)
		}
		sess.History = h
		return nil
	})
}

// ToggleOrder flips the direction of the move list.
func (s *Service) ToggleOrder(id string) (*Session, error) {
	return s.update(id, "order", func(sess *Session) error {
		sess.Order = sess.Order.Toggle()
		return nil
	})
}

// Restart discards the whole history and starts from an empty board.
func (s *Service) Restart(id string) (*Session, error) {
	return s.update(id, "restart", func(sess *Session) error {
		sess.History = domain.NewHistory()
		return nil
	})
}

// update applies fn to the session, then broadcasts the rendered result.
// When fn fails the session is left as it was and a copy of it is returned
// along with the error.
func (s *Service) update(id, action string, fn func(*Session) error) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := *sess
	if err := fn(&next); err != nil {
		s.log.Debug("action rejected",
			zap.String("session", id), zap.String("action", action), zap.Error(err))
		cp := *sess
		return &cp, err
	}
	next.Updated = s.now()
	*sess = next

	s.log.Debug("action applied",
		zap.String("session", id),
		zap.String("action", action),
		zap.Int("step", next.History.Step()),
		zap.Int("len", next.History.Len()),
		zap.Stringer("state", next.History.Status().State),
	)
	s.broadcastLocked(id, s.render(next))
	return &next, nil
}

// broadcastLocked hands payload to every subscriber of the session without
// blocking. Subscribers whose buffer is still full are closed and dropped.
func (s *Service) broadcastLocked(id string, payload []byte) {
	set := s.subs[id]
	dropped := 0
	for sub := range set {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			delete(set, sub)
			dropped++
		}
	}
	if dropped > 0 {
		s.log.Debug("dropped slow subscribers", zap.String("session", id), zap.Int("count", dropped))
	}
}

// Subscribe registers a subscriber for a session. Returns a channel and an
// unsubscribe func. The channel is closed when ctx is done or the subscriber
// falls behind.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}
	sess.Updated = s.now()

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

// Sweep removes sessions idle for longer than the TTL. Sessions with an open
// event stream are kept however long they have been idle. It returns the
// number of sessions removed.
func (s *Service) Sweep(now time.Time) int {
	if s.opts.TTL <= 0 {
		return 0
	}
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.Updated) <= s.opts.TTL || len(s.subs[id]) > 0 {
			continue
		}
		delete(s.sessions, id)
		delete(s.subs, id)
		removed++
	}
	s.mu.Unlock()

	if removed > 0 {
		s.log.Info("expired sessions removed", zap.Int("count", removed))
	}
	return removed
}

// MaintainSessions runs Sweep every interval until ctx is done.
func (s *Service) MaintainSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			s.Sweep(t)
		}
	}
}
