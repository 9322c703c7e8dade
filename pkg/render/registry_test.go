package render_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/session"
)

type stubRenderer struct{ name string }

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(context.Context, session.View, render.RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister(stubRenderer{name: "vanilla"})
	reg.MustRegister(stubRenderer{name: "json"})

	if err := reg.Register(stubRenderer{name: "vanilla"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if err := reg.Register(stubRenderer{}); err == nil {
		t.Fatalf("expected empty name error")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatalf("expected nil renderer error")
	}

	def, err := reg.Get("")
	if err != nil || def.Name() != "vanilla" {
		t.Fatalf("expected first registered as default, got %v %v", def, err)
	}
	if err := reg.SetDefault("json"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	def, _ = reg.Get("")
	if def.Name() != "json" {
		t.Fatalf("expected json default, got %s", def.Name())
	}
	if err := reg.SetDefault("missing"); err == nil {
		t.Fatalf("expected unknown default error")
	}
	if _, err := reg.Get("missing"); err == nil {
		t.Fatalf("expected not found error")
	}
	if diff := cmp.Diff([]string{"json", "vanilla"}, reg.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestHiddenFields(t *testing.T) {
	merged := render.MergeHiddenFields(
		map[string]string{" visitor ": "abc", "": "dropped"},
		render.Hidden(" _step ", 2),
		render.Hidden("", "dropped"),
		render.Hidden("visitor", "xyz"),
	)
	want := []render.HiddenField{
		{Name: "_step", Value: "2"},
		{Name: "visitor", Value: "xyz"},
	}
	if diff := cmp.Diff(want, render.SortedHiddenFields(merged)); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
	if render.SortedHiddenFields(nil) != nil {
		t.Fatalf("expected nil for empty input")
	}
}
