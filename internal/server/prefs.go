package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/prefs"
	"github.com/goliatone/go-formflow/pkg/prefs/sqlite"
)

// Cookie names.
const (
	VisitorCookie  = "ff_visitor"
	LanguageCookie = "ff_lang"
	VisitedCookie  = "ff_visited"
)

const cookieMaxAge = 365 * 24 * time.Hour

// PrefsBackend resolves the preference store of a visitor when their session
// is opened.
type PrefsBackend interface {
	ForVisitor(visitorID string, r *http.Request) prefs.Store
}

// cookieWriter is implemented by backends that persist through the response.
type cookieWriter interface {
	WriteCookies(w http.ResponseWriter, store prefs.Store)
}

// CookiePrefs keeps preferences in the visitor's browser. The session works
// on an in-memory copy seeded from the request cookies; the copy is written
// back on every response.
type CookiePrefs struct {
	Secure bool
}

func (CookiePrefs) ForVisitor(_ string, r *http.Request) prefs.Store {
	var snap prefs.Snapshot
	if c, err := r.Cookie(VisitedCookie); err == nil && c.Value == "1" {
		snap.HasVisited = true
	}
	if c, err := r.Cookie(LanguageCookie); err == nil {
		if lang, ok := model.ParseLanguage(c.Value); ok {
			snap.PreferredLanguage = lang
		}
	}
	return prefs.NewMemory(snap)
}

func (c CookiePrefs) WriteCookies(w http.ResponseWriter, store prefs.Store) {
	mem, ok := store.(*prefs.Memory)
	if !ok {
		return
	}
	snap := mem.Snapshot()
	if snap.HasVisited {
		http.SetCookie(w, c.cookie(VisitedCookie, "1"))
	}
	if snap.PreferredLanguage.Valid() {
		http.SetCookie(w, c.cookie(LanguageCookie, string(snap.PreferredLanguage)))
	}
}

func (c CookiePrefs) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// MemoryPrefs keeps preferences per visitor in process memory.
type MemoryPrefs struct {
	mu     sync.Mutex
	stores map[string]*prefs.Memory
}

func (m *MemoryPrefs) ForVisitor(visitorID string, _ *http.Request) prefs.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stores == nil {
		m.stores = make(map[string]*prefs.Memory)
	}
	store, ok := m.stores[visitorID]
	if !ok {
		store = &prefs.Memory{}
		m.stores[visitorID] = store
	}
	return store
}

// SQLitePrefs keeps preferences in the visitor_preferences table.
type SQLitePrefs struct {
	Store *sqlite.Store
}

func (s SQLitePrefs) ForVisitor(visitorID string, _ *http.Request) prefs.Store {
	return s.Store.Visitor(visitorID)
}
