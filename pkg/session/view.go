package session

import (
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/wizard"
)

// OptionView is a rendered select option.
type OptionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// FieldView is a rendered input on the active step.
type FieldView struct {
	Name        string          `json:"name"`
	Kind        model.FieldKind `json:"kind"`
	Input       string          `json:"input"`
	Required    bool            `json:"required"`
	Label       string          `json:"label"`
	Placeholder string          `json:"placeholder,omitempty"`
	Value       string          `json:"value"`
	Error       string          `json:"error,omitempty"`
	Min         int             `json:"min,omitempty"`
	Max         int             `json:"max,omitempty"`
	Options     []OptionView    `json:"options,omitempty"`
}

// View is a render-ready snapshot of a session.
type View struct {
	Language     model.Language       `json:"language"`
	Indicator    string               `json:"indicator"`
	ModalOpen    bool                 `json:"modalOpen"`
	FormID       string               `json:"formId"`
	Step         model.StepState      `json:"step"`
	StepLabel    string               `json:"stepLabel"`
	StepTitle    string               `json:"stepTitle,omitempty"`
	Indicators   []wizard.Indicator   `json:"indicators"`
	Fields       []FieldView          `json:"fields"`
	Errors       map[string]string    `json:"errors,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
	Control      submit.Control       `json:"control"`
	Texts        map[string]string    `json:"texts"`
}

// Text returns the bound text for id, or "" when unbound.
func (v View) Text(id string) string {
	return v.Texts[id]
}

// View captures the current state for rendering.
func (s *Session) View() View {
	lang := s.lang.Language()
	state := s.ctrl.State()
	step := s.ctrl.ActiveStep()
	values := s.ctrl.Values()
	errs := s.notes.Snapshot()

	texts := make(map[string]string)
	placeholders := make(map[string]string)
	for id, el := range s.lang.Snapshot() {
		texts[id] = el.Text
		if el.Placeholder != "" {
			placeholders[id] = el.Placeholder
		}
	}

	fields := make([]FieldView, 0, len(step.Fields))
	for _, spec := range step.Fields {
		id := fieldTextID(spec.Name)
		fv := FieldView{
			Name:        spec.Name,
			Kind:        validation.InferKind(spec),
			Input:       inputType(spec),
			Required:    spec.Required,
			Label:       texts[id],
			Placeholder: placeholders[id],
			Value:       values[spec.Name],
			Error:       errs[spec.Name],
			Min:         spec.Min,
			Max:         spec.Max,
		}
		if fv.Label == "" {
			fv.Label = spec.LabelFor(lang)
		}
		for _, opt := range spec.Options {
			fv.Options = append(fv.Options, OptionView{
				Value:    opt.Value,
				Label:    opt.LabelFor(lang),
				Selected: opt.Value == fv.Value,
			})
		}
		fields = append(fields, fv)
	}

	view := View{
		Language:   lang,
		Indicator:  lang.Code(),
		ModalOpen:  s.ModalOpen(),
		FormID:     s.ctrl.Form().ID,
		Step:       state,
		StepLabel:  s.lang.T("page.step_of", map[string]any{"active": state.Active, "total": state.Total}),
		StepTitle:  texts[stepTextID(step.ID)],
		Indicators: s.ctrl.Indicators(),
		Fields:     fields,
		Control:    s.flow.Control(),
		Texts:      texts,
	}
	if len(errs) > 0 {
		view.Errors = errs
	}
	if n, ok := s.center.Current(); ok {
		view.Notification = &n
	}
	return view
}

func inputType(spec model.FieldSpec) string {
	if spec.Input != "" {
		return spec.Input
	}
	if len(spec.Options) > 0 {
		return "select"
	}
	switch validation.InferKind(spec) {
	case model.FieldKindEmail:
		return "email"
	case model.FieldKindPhone:
		return "tel"
	case model.FieldKindBoundedInteger:
		return "number"
	default:
		return "text"
	}
}
