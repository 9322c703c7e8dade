package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/events"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/submit"
)

type action int

const (
	actionNext action = iota
	actionBack
	actionSubmit
	actionLanguage
)

// Wizard walks a session through its steps with terminal prompts.
type Wizard struct {
	sess   *session.Session
	driver PromptDriver
	theme  Theme
}

// NewWizard binds a wizard to sess.
func NewWizard(sess *session.Session, opts ...Option) (*Wizard, error) {
	if sess == nil {
		return nil, ErrSessionRequired
	}
	cfg := newOptions(opts)
	return &Wizard{sess: sess, driver: cfg.driver, theme: cfg.theme}, nil
}

// Run asks for a language on first use, then prompts step by step until the
// form is submitted. Failed sends keep the answers and offer a retry; a
// declined retry returns the send error.
func (w *Wizard) Run(ctx context.Context) (submit.Result, error) {
	unsubscribe := w.sess.Bus().Subscribe(events.NotificationShown, func(evt events.Event) {
		if n, ok := evt.Payload.(notify.Notification); ok {
			_ = w.driver.Info(ctx, w.theme.prefix(n.Kind)+n.Message)
		}
	})
	defer unsubscribe()

	if w.sess.ModalOpen() {
		if err := w.chooseLanguage(ctx); err != nil {
			return submit.Result{}, err
		}
	}

	view := w.sess.View()
	if err := w.driver.Info(ctx, view.Text("page.title")); err != nil {
		return submit.Result{}, err
	}

	ctrl := w.sess.Wizard()
	for {
		if err := ctx.Err(); err != nil {
			return submit.Result{}, err
		}
		view = w.sess.View()
		if err := w.printStep(ctx, view); err != nil {
			return submit.Result{}, err
		}
		if err := w.promptFields(ctx, view.Fields); err != nil {
			return submit.Result{}, err
		}

		next, err := w.chooseAction(ctx, w.sess.View())
		if err != nil {
			return submit.Result{}, err
		}
		switch next {
		case actionNext:
			ctrl.Advance()
		case actionBack:
			ctrl.Retreat()
		case actionLanguage:
			if _, err := w.sess.ToggleLanguage(ctx); err != nil {
				return submit.Result{}, err
			}
		case actionSubmit:
			result, err := w.sess.Submit(ctx)
			switch {
			case err == nil:
				return result, nil
			case errors.Is(err, submit.ErrInvalid), errors.Is(err, submit.ErrInFlight):
				continue
			}
			retry, cerr := w.driver.Confirm(ctx, ConfirmConfig{
				Message: w.sess.I18n().T("submit.retry"),
				Default: true,
			})
			if cerr != nil {
				return result, cerr
			}
			if !retry {
				return result, err
			}
		}
	}
}

func (w *Wizard) chooseLanguage(ctx context.Context) error {
	view := w.sess.View()
	idx, err := w.driver.Select(ctx, SelectConfig{
		Message: view.Text("page.modal_title"),
		Options: []string{view.Text("page.modal_english"), view.Text("page.modal_spanish")},
	})
	if err != nil {
		return err
	}
	lang := model.LanguagePrimary
	if idx == 1 {
		lang = model.LanguageSecondary
	}
	return w.sess.SelectLanguage(ctx, lang)
}

func (w *Wizard) printStep(ctx context.Context, view session.View) error {
	header := view.StepTitle
	if view.Step.Total > 1 {
		header = view.StepLabel
		if view.StepTitle != "" {
			header += " · " + view.StepTitle
		}
	}
	if header == "" {
		return nil
	}
	return w.driver.Info(ctx, w.theme.InfoPrefix+header)
}

// promptFields asks for each field until its value passes validation.
func (w *Wizard) promptFields(ctx context.Context, fields []session.FieldView) error {
	ctrl := w.sess.Wizard()
	for _, field := range fields {
		if field.Error != "" {
			if err := w.driver.Info(ctx, w.theme.ErrorPrefix+field.Error); err != nil {
				return err
			}
		}
		for {
			raw, err := w.ask(ctx, field)
			if err != nil {
				return err
			}
			if err := ctrl.SetValue(field.Name, raw); err != nil {
				return err
			}
			res, err := ctrl.Blur(field.Name)
			if err != nil {
				return err
			}
			if res.Valid {
				break
			}
			if err := w.driver.Info(ctx, w.theme.ErrorPrefix+res.Message); err != nil {
				return err
			}
			field.Value = raw
		}
	}
	return nil
}

func (w *Wizard) ask(ctx context.Context, field session.FieldView) (string, error) {
	message := w.theme.PromptPrefix + field.Label
	switch {
	case len(field.Options) > 0:
		labels := make([]string, len(field.Options))
		selected := 0
		for i, opt := range field.Options {
			labels[i] = opt.Label
			if opt.Value == field.Value {
				selected = i
			}
		}
		idx, err := w.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels,
			DefaultIndex: selected,
			Help:         field.Placeholder,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(field.Options) {
			return "", fmt.Errorf("tui: option %d out of range for %q", idx, field.Name)
		}
		return field.Options[idx].Value, nil
	case field.Input == "textarea":
		return w.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: field.Value,
			Help:    field.Placeholder,
		})
	default:
		return w.driver.Input(ctx, InputConfig{
			Message: message,
			Default: field.Value,
			Help:    field.Placeholder,
		})
	}
}

func (w *Wizard) chooseAction(ctx context.Context, view session.View) (action, error) {
	var (
		labels  []string
		actions []action
	)
	if view.Step.Active >= view.Step.Total {
		labels = append(labels, view.Control.Label)
		actions = append(actions, actionSubmit)
	} else {
		labels = append(labels, view.Text("submit.next"))
		actions = append(actions, actionNext)
	}
	if view.Step.Active > 1 {
		labels = append(labels, view.Text("submit.back"))
		actions = append(actions, actionBack)
	}
	other := view.Text("page.modal_spanish")
	if view.Language == model.LanguageSecondary {
		other = view.Text("page.modal_english")
	}
	labels = append(labels, other)
	actions = append(actions, actionLanguage)

	idx, err := w.driver.Select(ctx, SelectConfig{
		Message: view.StepLabel,
		Options: labels,
	})
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(actions) {
		return 0, fmt.Errorf("tui: action %d out of range", idx)
	}
	return actions[idx], nil
}
