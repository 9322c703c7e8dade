package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/submit"
)

// stepField is the hidden input stamping each rendered form with its step.
const stepField = "_step"

// actionResponse is the JSON body of every POST route.
type actionResponse struct {
	OK     bool         `json:"ok"`
	Error  string       `json:"error,omitempty"`
	Result any          `json:"result,omitempty"`
	View   session.View `json:"view"`
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /language", s.handleLanguage)
	mux.HandleFunc("POST /language/toggle", s.handleToggle)
	mux.HandleFunc("POST /keys", s.handleKey)
	mux.HandleFunc("POST /fields/{name}", s.handleFieldEdit)
	mux.HandleFunc("POST /fields/{name}/blur", s.handleFieldBlur)
	mux.HandleFunc("POST /steps/next", s.handleNext)
	mux.HandleFunc("POST /steps/prev", s.handlePrev)
	mux.HandleFunc("POST /submit", s.handleSubmit)
	mux.HandleFunc("POST /share", s.handleShare)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.assets != nil {
		mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(s.assets)))
	}
	return mux
}

// visitor returns the visitor's session entry, issuing the identity cookie
// when the request has none.
func (s *Server) visitor(w http.ResponseWriter, r *http.Request) (*entry, bool) {
	id := ""
	if c, err := r.Cookie(VisitorCookie); err == nil {
		if parsed, err := uuid.Parse(c.Value); err == nil {
			id = parsed.String()
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     VisitorCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(cookieMaxAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	e, _, err := s.sessions.get(r.Context(), id, r)
	if err != nil {
		s.logger.Error("open session failed", zap.String("visitor", id), zap.Error(err))
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return nil, false
	}
	return e, true
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	e, ok := s.visitor(w, r)
	if !ok {
		return
	}
	if lang, ok := model.ParseLanguage(r.URL.Query().Get("lang")); ok && lang != e.sess.Language() {
		if err := e.sess.I18n().SetLanguage(r.Context(), lang); err != nil {
			s.logger.Warn("apply query language failed", zap.Error(err))
		}
	}
	s.persist(w, e)

	view := e.sess.View()
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, view)
		return
	}

	variant := s.themeVariant
	if q := strings.TrimSpace(r.URL.Query().Get("theme")); q != "" {
		variant = q
	}
	out, err := s.renderer.Render(r.Context(), view, render.RenderOptions{
		ThemeVariant:    variant,
		ShareURL:        s.shareURL,
		NotificationTTL: s.notifyTTL,
		Hidden:          render.MergeHiddenFields(nil, render.Hidden(stepField, view.Step.Active)),
	})
	if err != nil {
		s.logger.Error("render failed", zap.String("renderer", s.renderer.Name()), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(out)
}

func (s *Server) handleLanguage(w http.ResponseWriter, r *http.Request) {
	e, ok := s.visitor(w, r)
	if !ok {
		return
	}
	lang, valid := model.ParseLanguage(r.FormValue("lang"))
	if !valid {
		s.fail(w, r, e, http.StatusBadRequest, "unsupported language")
		return
	}
	if err := e.sess.SelectLanguage(r.Context(), lang); err != nil {
		s.logger.Error("select language failed", zap.Error(err))
		s.fail(w, r, e, http.StatusInternalServerError, "could not save language")
		return
	}
	s.respond(w, r, e, nil)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	e, ok := s.visitor(w, r)
	if !ok {
		return
	}
	lang, err := e.sess.ToggleLanguage(r.Context())
	if err != nil {
		s.logger.Error("toggle language failed", zap.Error(err))
		s.fail(w, r, e, http.StatusInternalServerError, "could not save language")
		return
	}
	s.respond(w, r, e, map[string]string{"language": string(lang)})
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	e, ok := s.visitor(w, r)
	if !ok {
		return
	}
	key := session.Key{Name: r.FormValue("key"), Ctrl: isTruthy(r.FormValue("ctrl"))}
	handled, err := e.sess.HandleKey(r.Context(), key)
	if err != nil {
		s.logger.Error("key handling failed", zap.String("key", key.Name), zap.Error(err))
		s.fail(w, r, e, http.StatusInternalServerError, "key failed")
		return
	}
	s.respond(w, r, e, map[string]bool{"handled": handled})
}

func (s *Server) handleFieldEdit(w http.ResponseWriter, r *http.Request) {
	e, ok := s.visitor(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	if _, known := s.fields[name]; !known {
		s.fail(w, r, e, http.StatusNotFound, "unknown field")
		return
	}
	if err := e.sess.Wizard().SetValue(name, r.FormValue("value")); err != nil {
		s.fail(w, r, e, http.StatusBadRequest, err.Error())
		return
	}
	s.respond(w, r, e, nil)
}

func (s *Server) handleFieldBlur(w http.ResponseWriter, r *http.Request) {
	e, ok := s.visitor(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	if _, known := s.fields[name]; !known {
		s.fail(w, r, e, http.StatusNotFound, "unknown field")
		return
	}
	res, err := e.sess.Wizard().Blur(name)
	if err != nil {
		s.fail(w, r, e, http.StatusBadRequest, err.Error())
		return
	}
	if wantsJSON(r) {
		s.persist(w, e)
		writeJSON(w, http.StatusOK, res)
		return
	}
	s.respond(w, r, e, res)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	e, ok := s.visitor(w, r)
	if !ok {
		return
	}
	if s.staleStep(r, e) {
		s.respond(w, r, e, e.sess.Wizard().State())
		return
	}
	s.applyPosted(r, e)
	if !e.sess.Wizard().Advance() {
		s.failWith(w, r, e, http.StatusUnprocessableEntity, submit.ErrInvalid.Error(), e.sess.Wizard().State())
		return
	}
	s.respond(w, r, e, e.sess.Wizard().State())
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	e, ok := s.visitor(w, r)
	if !ok {
		return
	}
	if s.staleStep(r, e) {
		s.respond(w, r, e, e.sess.Wizard().State())
		return
	}
	s.applyPosted(r, e)
	e.sess.Wizard().Retreat()
	s.respond(w, r, e, e.sess.Wizard().State())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	e, ok := s.visitor(w, r)
	if !ok {
		return
	}
	if s.staleStep(r, e) {
		s.respond(w, r, e, e.sess.Wizard().State())
		return
	}
	s.applyPosted(r, e)
	result, err := e.sess.Submit(r.Context())
	switch {
	case err == nil:
		s.respond(w, r, e, result)
	case errors.Is(err, submit.ErrInvalid):
		s.fail(w, r, e, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, submit.ErrInFlight):
		s.fail(w, r, e, http.StatusConflict, err.Error())
	default:
		s.logger.Warn("submission failed", zap.String("form", s.form.ID), zap.Error(err))
		s.fail(w, r, e, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	e, ok := s.visitor(w, r)
	if !ok {
		return
	}
	n := e.sess.ShareNotice(session.ShareOutcome(strings.TrimSpace(r.FormValue("outcome"))))
	s.respond(w, r, e, n)
}

// staleStep reports whether a browser form was posted from a step the
// wizard has already left, e.g. a double-clicked Next. Scripted clients that
// omit the field are never stale.
func (s *Server) staleStep(r *http.Request, e *entry) bool {
	if err := r.ParseForm(); err != nil {
		return false
	}
	posted := strings.TrimSpace(r.PostForm.Get(stepField))
	if posted == "" {
		return false
	}
	active := e.sess.Wizard().State().Active
	if posted == strconv.Itoa(active) {
		return false
	}
	s.logger.Debug("ignoring stale step post", zap.String("path", r.URL.Path), zap.String("posted", posted), zap.Int("active", active))
	return true
}

// applyPosted copies posted form fields into the wizard, so a plain HTML
// form post carries its values with the navigation.
func (s *Server) applyPosted(r *http.Request, e *entry) {
	if err := r.ParseForm(); err != nil {
		return
	}
	ctrl := e.sess.Wizard()
	for name := range s.fields {
		if values, ok := r.PostForm[name]; ok && len(values) > 0 {
			_ = ctrl.SetValue(name, values[0])
		}
	}
}

func (s *Server) persist(w http.ResponseWriter, e *entry) {
	if cw, ok := s.prefs.(cookieWriter); ok {
		cw.WriteCookies(w, e.store)
	}
}

// respond finishes a successful action: JSON for scripted clients, a
// redirect to the page otherwise.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, e *entry, result any) {
	s.persist(w, e)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, actionResponse{OK: true, Result: result, View: e.sess.View()})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, e *entry, status int, msg string) {
	s.failWith(w, r, e, status, msg, nil)
}

// failWith reports a failed action. Browsers are still redirected: the page
// shows the annotations and notification the failure left behind.
func (s *Server) failWith(w http.ResponseWriter, r *http.Request, e *entry, status int, msg string, result any) {
	s.persist(w, e)
	if wantsJSON(r) {
		writeJSON(w, status, actionResponse{Error: msg, Result: result, View: e.sess.View()})
		return
	}
	if status == http.StatusBadRequest || status == http.StatusNotFound {
		http.Error(w, msg, status)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
