package render

import "time"

// RenderOptions carry per-request data that is not part of the session view.
type RenderOptions struct {
	// ActionPrefix is prepended to every form action URL, for mounting the
	// page below a sub-path.
	ActionPrefix string
	// ThemeVariant selects a theme variant; empty uses the manifest defaults.
	ThemeVariant string
	// ShareURL is the link offered by the share button. Empty hides it.
	ShareURL string
	// Hidden adds hidden inputs (such as the active step) to every form.
	Hidden map[string]string
	// NotificationTTL tells client scripts when to hide the rendered
	// notification. Zero uses the notification center default.
	NotificationTTL time.Duration
}
