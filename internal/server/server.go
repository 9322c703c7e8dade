// Package server exposes a session over HTTP. Each visitor is identified by
// a cookie and owns one session; every control on the page is a form post
// that redirects back to the page, or answers with JSON for scripted
// clients.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/submit"
)

// DefaultIdleTTL is how long an unused session is kept.
const DefaultIdleTTL = 30 * time.Minute

// Option configures a Server.
type Option func(*Server)

// WithSender replaces the simulated sender.
func WithSender(sender submit.Sender) Option {
	return func(s *Server) {
		if sender != nil {
			s.sender = sender
		}
	}
}

// WithTable sets the initial message catalog.
func WithTable(table *i18n.MessageTable) Option {
	return func(s *Server) {
		if table != nil {
			s.table.Store(table)
		}
	}
}

// WithPrefs selects where visitor preferences live. Cookies by default.
func WithPrefs(backend PrefsBackend) Option {
	return func(s *Server) {
		if backend != nil {
			s.prefs = backend
		}
	}
}

// WithNotifyTTL sets how long notifications stay visible.
func WithNotifyTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.notifyTTL = ttl
		}
	}
}

// WithIdleTTL sets how long an unused session is kept.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

// WithStrictI18n reports missing translations as errors in the logs.
func WithStrictI18n(strict bool) Option {
	return func(s *Server) {
		s.strict = strict
	}
}

// WithThemeVariant picks the default theme variant; ?theme= overrides it.
func WithThemeVariant(variant string) Option {
	return func(s *Server) {
		s.themeVariant = variant
	}
}

// WithShareURL enables the share button.
func WithShareURL(url string) Option {
	return func(s *Server) {
		s.shareURL = url
	}
}

// WithAssets serves files under /assets/.
func WithAssets(files fs.FS) Option {
	return func(s *Server) {
		s.assets = files
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides time.Now for idle expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server serves one form to many visitors.
type Server struct {
	form         model.FormModel
	fields       map[string]struct{}
	renderer     render.Renderer
	sender       submit.Sender
	table        atomic.Pointer[i18n.MessageTable]
	prefs        PrefsBackend
	notifyTTL    time.Duration
	idleTTL      time.Duration
	strict       bool
	themeVariant string
	shareURL     string
	assets       fs.FS
	logger       *zap.Logger
	now          func() time.Time

	sessions *registry
	mux      *http.ServeMux
}

// New builds a server for form, rendering pages with renderer.
func New(form model.FormModel, renderer render.Renderer, opts ...Option) (*Server, error) {
	if len(form.Steps) == 0 {
		return nil, fmt.Errorf("server: form %q has no steps", form.ID)
	}
	if renderer == nil {
		return nil, fmt.Errorf("server: renderer is required")
	}
	s := &Server{
		form:      form,
		fields:    make(map[string]struct{}),
		renderer:  renderer,
		sender:    submit.SimulatedSender{Delay: submit.DefaultDelay},
		prefs:     CookiePrefs{},
		notifyTTL: notify.DefaultTTL,
		idleTTL:   DefaultIdleTTL,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	s.table.Store(i18n.Default())
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	for _, field := range form.Fields() {
		s.fields[field.Name] = struct{}{}
	}
	s.sessions = newRegistry(s.idleTTL, s.now, s.openSession)
	s.mux = s.routes()
	return s, nil
}

// Handler returns the HTTP handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// SetTable swaps the catalog for new and live sessions.
func (s *Server) SetTable(table *i18n.MessageTable) {
	if table == nil {
		return
	}
	s.table.Store(table)
	s.sessions.each(func(e *entry) { e.sess.SetTable(table) })
	s.logger.Info("catalog reloaded", zap.Int("sessions", s.sessions.len()))
}

// Sweep closes idle sessions and returns how many were closed.
func (s *Server) Sweep() int {
	return s.sessions.sweep()
}

// Run sweeps idle sessions until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	interval := s.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("idle sessions closed", zap.Int("count", n))
			}
		}
	}
}

// Close closes every session.
func (s *Server) Close() {
	s.sessions.closeAll()
}

func (s *Server) openSession(ctx context.Context, visitorID string, r *http.Request) (*entry, error) {
	store := s.prefs.ForVisitor(visitorID, r)
	hint := model.MatchAcceptLanguage(r.Header.Get("Accept-Language"))
	if lang, ok := model.ParseLanguage(r.URL.Query().Get("lang")); ok {
		hint = lang
	}
	sess, err := session.Open(ctx, session.Deps{
		Form:      s.form,
		Table:     s.table.Load(),
		Prefs:     store,
		Sender:    s.sender,
		NotifyTTL: s.notifyTTL,
		Strict:    s.strict,
		Language:  hint,
		Logger:    s.logger.With(zap.String("visitor", visitorID)),
	})
	if err != nil {
		return nil, fmt.Errorf("server: open session: %w", err)
	}
	s.logger.Debug("session opened", zap.String("visitor", visitorID), zap.String("language", string(sess.Language())))
	return &entry{sess: sess, store: store}, nil
}
