package wizard_test

import (
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/events"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/wizard"
)

func enrollmentForm() model.FormModel {
	return model.FormModel{
		ID: "enrollment",
		Steps: []model.Step{
			{ID: "parent", Fields: []model.FieldSpec{
				{Name: "parentName", Required: true},
				{Name: "email", Required: true, Kind: model.FieldKindEmail},
			}},
			{ID: "contact", Fields: []model.FieldSpec{
				{Name: "phone", Required: true, Kind: model.FieldKindPhone},
			}},
			{ID: "child", Fields: []model.FieldSpec{
				{Name: "childAge", Required: true, Kind: model.FieldKindBoundedInteger, Min: 4, Max: 6},
			}},
		},
	}
}

func newController(t *testing.T, opts ...wizard.Option) (*wizard.Controller, *validation.Annotations) {
	t.Helper()
	notes := validation.NewAnnotations(nil)
	ctrl, err := wizard.New(enrollmentForm(), notes, opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return ctrl, notes
}

func mustSet(t *testing.T, ctrl *wizard.Controller, name, value string) {
	t.Helper()
	if err := ctrl.SetValue(name, value); err != nil {
		t.Fatalf("set %s: %v", name, err)
	}
}

func TestNew_RejectsEmptyForm(t *testing.T) {
	if _, err := wizard.New(model.FormModel{ID: "empty"}, nil); err == nil {
		t.Fatalf("expected error for form without steps")
	}
}

func TestAdvance_ValidStepMovesForward(t *testing.T) {
	ctrl, notes := newController(t)
	mustSet(t, ctrl, "parentName", "Ana")
	mustSet(t, ctrl, "email", "ana@example.com")

	if !ctrl.Advance() {
		t.Fatalf("expected advance to succeed")
	}
	if got := ctrl.State(); got != (model.StepState{Active: 2, Total: 3}) {
		t.Fatalf("unexpected state %+v", got)
	}
	if notes.Len() != 0 {
		t.Fatalf("expected no annotations, got %v", notes.Snapshot())
	}
}

func TestAdvance_InvalidStepStaysAndAnnotates(t *testing.T) {
	ctrl, notes := newController(t, wizard.WithLocalizer(wizard.CatalogLocalizer(i18n.NewStore(i18n.Default()).T)))
	mustSet(t, ctrl, "email", "ana@example.com")

	if ctrl.Advance() {
		t.Fatalf("expected advance to fail")
	}
	if got := ctrl.State().Active; got != 1 {
		t.Fatalf("expected to stay on step 1, got %d", got)
	}
	want := map[string]string{"parentName": "This field is required"}
	if diff := cmp.Diff(want, notes.Snapshot()); diff != "" {
		t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvance_LastStepValidatesWithoutMoving(t *testing.T) {
	ctrl, _ := newController(t)
	mustSet(t, ctrl, "parentName", "Ana")
	mustSet(t, ctrl, "email", "ana@example.com")
	mustSet(t, ctrl, "phone", "555 123 4567")
	mustSet(t, ctrl, "childAge", "5")

	for i := 0; i < 2; i++ {
		if !ctrl.Advance() {
			t.Fatalf("advance %d failed", i)
		}
	}
	if !ctrl.Advance() {
		t.Fatalf("expected valid last step to report true")
	}
	if got := ctrl.State().Active; got != 3 {
		t.Fatalf("expected to remain on step 3, got %d", got)
	}
}

func TestRetreat_FlooredAndUnvalidated(t *testing.T) {
	bus := events.NewBus()
	var changes []wizard.StepChange
	bus.Subscribe(events.StepChanged, func(e events.Event) {
		changes = append(changes, e.Payload.(wizard.StepChange))
	})
	ctrl, notes := newController(t, wizard.WithBus(bus))

	ctrl.Retreat()
	if got := ctrl.State().Active; got != 1 {
		t.Fatalf("retreat from step 1 should be a no-op, got %d", got)
	}

	mustSet(t, ctrl, "parentName", "Ana")
	mustSet(t, ctrl, "email", "ana@example.com")
	ctrl.Advance()
	ctrl.Retreat()
	if got := ctrl.State().Active; got != 1 {
		t.Fatalf("expected step 1 after retreat, got %d", got)
	}
	if notes.Len() != 0 {
		t.Fatalf("retreat must not validate, got %v", notes.Snapshot())
	}

	want := []wizard.StepChange{{From: 1, To: 2}, {From: 2, To: 1}}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Fatalf("step events mismatch (-want +got):\n%s", diff)
	}
}

func TestSetValue_ClearsAnnotation(t *testing.T) {
	ctrl, notes := newController(t)
	mustSet(t, ctrl, "email", "broken")
	if res, err := ctrl.Blur("email"); err != nil || res.Valid {
		t.Fatalf("expected blur failure, got %+v err=%v", res, err)
	}
	if !notes.Invalid("email") {
		t.Fatalf("expected email annotation after blur")
	}
	mustSet(t, ctrl, "email", "fixed@example.com")
	if notes.Invalid("email") {
		t.Fatalf("edit should clear the annotation")
	}
	if err := ctrl.SetValue("nope", "x"); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := ctrl.Blur("nope"); err == nil {
		t.Fatalf("expected unknown field error on blur")
	}
}

func TestValidateAllAndReset(t *testing.T) {
	ctrl, notes := newController(t)
	mustSet(t, ctrl, "parentName", "Ana")
	mustSet(t, ctrl, "email", "ana@example.com")
	ctrl.Advance()

	if ctrl.ValidateAll() {
		t.Fatalf("expected validation across steps to fail")
	}
	if diff := cmp.Diff([]string{"childAge", "phone"}, sortedKeys(notes.Snapshot())); diff != "" {
		t.Fatalf("annotated fields mismatch (-want +got):\n%s", diff)
	}

	ctrl.Reset()
	ctrl.ClearValues()
	if got := ctrl.State().Active; got != 1 {
		t.Fatalf("reset should return to step 1, got %d", got)
	}
	if len(ctrl.Values()) != 0 {
		t.Fatalf("expected values cleared")
	}
}

func TestIndicators(t *testing.T) {
	ctrl, _ := newController(t)
	mustSet(t, ctrl, "parentName", "Ana")
	mustSet(t, ctrl, "email", "ana@example.com")
	ctrl.Advance()

	want := []wizard.Indicator{
		{Index: 1, Completed: true},
		{Index: 2, Active: true},
		{Index: 3},
	}
	if diff := cmp.Diff(want, ctrl.Indicators()); diff != "" {
		t.Fatalf("indicators mismatch (-want +got):\n%s", diff)
	}
	if ctrl.ActiveStep().ID != "contact" {
		t.Fatalf("unexpected active step %q", ctrl.ActiveStep().ID)
	}
}

func TestConcurrentEdits(t *testing.T) {
	ctrl, _ := newController(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ctrl.SetValue("parentName", "Ana")
			_ = ctrl.Values()
			ctrl.Retreat()
		}()
	}
	wg.Wait()
	if ctrl.Value("parentName") != "Ana" {
		t.Fatalf("expected value to be stored")
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestValidateSnapshot_ReturnsCheckedCopy(t *testing.T) {
	ctrl, notes := newController(t)
	mustSet(t, ctrl, "parentName", "Ana")
	mustSet(t, ctrl, "email", "ana@example.com")
	mustSet(t, ctrl, "phone", "555 1234")
	mustSet(t, ctrl, "childAge", "4")

	values, ok := ctrl.ValidateSnapshot()
	if !ok {
		t.Fatalf("expected valid snapshot, annotations %v", notes.Snapshot())
	}
	mustSet(t, ctrl, "email", "broken")

	want := map[string]string{"parentName": "Ana", "email": "ana@example.com", "phone": "555 1234", "childAge": "4"}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	if _, ok := ctrl.ValidateSnapshot(); ok {
		t.Fatalf("expected the edited email to fail")
	}
	if !notes.Invalid("email") {
		t.Fatalf("expected email annotation")
	}
}
