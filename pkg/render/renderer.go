// Package render defines the renderer contract shared by the HTML and
// terminal frontends, plus a registry for selecting one by name.
package render

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/session"
)

// Renderer converts a session snapshot into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view session.View, options RenderOptions) ([]byte, error)
}
