package session

import (
	"context"
	"strings"

	"github.com/goliatone/go-formflow/pkg/notify"
)

// Key is a keyboard command forwarded by a frontend.
type Key struct {
	Name string
	Ctrl bool
}

// KeyEscape closes the language modal.
var KeyEscape = Key{Name: "Escape"}

// KeyToggleLanguage is Ctrl+L.
var KeyToggleLanguage = Key{Name: "l", Ctrl: true}

// HandleKey applies a keyboard command and reports whether it did anything.
// Escape closes the modal without choosing a language, so the modal returns
// on the next visit.
func (s *Session) HandleKey(ctx context.Context, key Key) (bool, error) {
	name := strings.ToLower(strings.TrimSpace(key.Name))
	switch {
	case name == "escape" || name == "esc":
		if !s.ModalOpen() {
			return false, nil
		}
		s.setModal(false)
		return true, nil
	case key.Ctrl && name == "l":
		if _, err := s.ToggleLanguage(ctx); err != nil {
			return true, err
		}
		return true, nil
	default:
		return false, nil
	}
}

// ShareOutcome is the result of a client-side share attempt.
type ShareOutcome string

const (
	ShareShared ShareOutcome = "shared"
	ShareCopied ShareOutcome = "copied"
	ShareFailed ShareOutcome = "failed"
)

// ShareNotice shows the localized notice for a share outcome. Unknown
// outcomes are reported as failures.
func (s *Session) ShareNotice(outcome ShareOutcome) notify.Notification {
	switch outcome {
	case ShareShared:
		return s.center.Show(s.lang.T("share.shared"), notify.KindSuccess)
	case ShareCopied:
		return s.center.Show(s.lang.T("share.copied"), notify.KindSuccess)
	default:
		return s.center.Show(s.lang.T("share.failed"), notify.KindError)
	}
}
