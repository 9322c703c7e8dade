package submit_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/goliatone/go-formflow/pkg/events"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/wizard"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func threeStepForm() model.FormModel {
	return model.FormModel{
		ID: "enrollment",
		Steps: []model.Step{
			{ID: "parent", Fields: []model.FieldSpec{
				{Name: "parentName", Required: true},
				{Name: "email", Required: true, Kind: model.FieldKindEmail},
			}},
			{ID: "contact", Fields: []model.FieldSpec{{Name: "phone", Required: true}}},
			{ID: "child", Fields: []model.FieldSpec{
				{Name: "childAge", Required: true, Kind: model.FieldKindBoundedInteger, Min: 4, Max: 6},
			}},
		},
	}
}

type fixture struct {
	ctrl   *wizard.Controller
	notes  *validation.Annotations
	center *notify.Center
	store  *i18n.Store
	bus    *events.Bus
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := i18n.NewStore(i18n.Default())
	notes := validation.NewAnnotations(nil)
	ctrl, err := wizard.New(threeStepForm(), notes, wizard.WithLocalizer(wizard.CatalogLocalizer(store.T)))
	require.NoError(t, err)
	center := notify.NewCenter()
	t.Cleanup(center.Close)
	return fixture{ctrl: ctrl, notes: notes, center: center, store: store, bus: events.NewBus()}
}

func (fx fixture) fill(t *testing.T) {
	t.Helper()
	for name, value := range map[string]string{
		"parentName": "Ana",
		"email":      "ana@example.com",
		"phone":      "(555) 123-4567",
		"childAge":   "5",
	} {
		require.NoError(t, fx.ctrl.SetValue(name, value))
	}
	require.True(t, fx.ctrl.Advance())
	require.True(t, fx.ctrl.Advance())
	require.Equal(t, 3, fx.ctrl.State().Active)
}

func (fx fixture) flow(t *testing.T, sender submit.Sender) *submit.Flow {
	t.Helper()
	flow, err := submit.New(fx.ctrl, sender, fx.center, fx.store.T,
		submit.WithBus(fx.bus),
		submit.WithLanguage(fx.store.Language))
	require.NoError(t, err)
	return flow
}

func TestSubmit_SuccessResetsWizard(t *testing.T) {
	fx := newFixture(t)
	fx.fill(t)
	var topics []events.Topic
	for _, topic := range []events.Topic{events.SubmissionStarted, events.SubmissionSucceeded} {
		fx.bus.Subscribe(topic, func(e events.Event) { topics = append(topics, e.Topic) })
	}

	flow := fx.flow(t, submit.SimulatedSender{Delay: 10 * time.Millisecond})
	res, err := flow.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "enrollment", res.Payload.FormID)
	assert.Equal(t, "5", res.Payload.Values["childAge"])
	assert.Equal(t, 1, fx.ctrl.State().Active)
	assert.Empty(t, fx.ctrl.Values())
	assert.Zero(t, fx.notes.Len())

	current, ok := fx.center.Current()
	require.True(t, ok)
	assert.Equal(t, notify.KindSuccess, current.Kind)
	assert.Equal(t, "Thank you! We will contact you within 24 hours.", current.Message)
	assert.Equal(t, submit.Control{Label: "Submit"}, flow.Control())
	assert.Equal(t, []events.Topic{events.SubmissionStarted, events.SubmissionSucceeded}, topics)
}

func TestSubmit_InvalidDoesNotSend(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.ctrl.SetValue("parentName", "Ana"))

	sent := false
	flow := fx.flow(t, submit.SenderFunc(func(context.Context, submit.Payload) error {
		sent = true
		return nil
	}))
	_, err := flow.Submit(context.Background())
	require.ErrorIs(t, err, submit.ErrInvalid)
	assert.False(t, sent)
	assert.True(t, fx.notes.Invalid("email"))
	assert.True(t, fx.notes.Invalid("childAge"))
}

func TestSubmit_FailureKeepsState(t *testing.T) {
	fx := newFixture(t)
	fx.fill(t)
	require.NoError(t, fx.store.SetLanguage(context.Background(), model.LanguageSecondary))

	remote := &submit.RemoteError{Status: 422, Fields: map[string][]string{"email": {"Ya registrado"}}}
	flow := fx.flow(t, submit.SenderFunc(func(context.Context, submit.Payload) error { return remote }))

	_, err := flow.Submit(context.Background())
	require.Error(t, err)
	var got *submit.RemoteError
	require.True(t, errors.As(err, &got))

	assert.Equal(t, 3, fx.ctrl.State().Active)
	assert.Equal(t, "Ana", fx.ctrl.Value("parentName"))
	msg, ok := fx.notes.Get("email")
	require.True(t, ok)
	assert.Equal(t, "Ya registrado", msg)

	current, ok := fx.center.Current()
	require.True(t, ok)
	assert.Equal(t, notify.KindError, current.Kind)
	assert.Equal(t, "No pudimos enviar tu información. Por favor intenta de nuevo.", current.Message)
	assert.Equal(t, submit.Control{Label: "Enviar"}, flow.Control())
}

func TestSubmit_DoubleSubmitGuarded(t *testing.T) {
	fx := newFixture(t)
	fx.fill(t)

	started := make(chan struct{})
	release := make(chan struct{})
	flow := fx.flow(t, submit.SenderFunc(func(ctx context.Context, _ submit.Payload) error {
		close(started)
		<-release
		return nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background())
		done <- err
	}()
	<-started

	assert.True(t, flow.InFlight())
	assert.Equal(t, submit.Control{Disabled: true, Label: "Sending..."}, flow.Control())
	_, err := flow.Submit(context.Background())
	assert.ErrorIs(t, err, submit.ErrInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, flow.Control().Disabled)
}

func TestSubmit_SendsTheValuesItValidated(t *testing.T) {
	bus := events.NewBus()
	notes := validation.NewAnnotations(bus)
	ctrl, err := wizard.New(threeStepForm(), notes)
	require.NoError(t, err)
	for name, value := range map[string]string{
		"parentName": "Ana",
		"email":      "ana@example.com",
		"phone":      "(555) 123-4567",
		"childAge":   "5",
	} {
		require.NoError(t, ctrl.SetValue(name, value))
	}

	// An edit that lands while the form is being validated must not reach
	// the sender unchecked.
	notes.Show("email", "stale")
	bus.Subscribe(events.FieldCleared, func(e events.Event) {
		if e.Payload == "email" {
			_ = ctrl.SetValue("email", "not-an-email")
		}
	})

	center := notify.NewCenter()
	t.Cleanup(center.Close)
	var sent submit.Payload
	flow, err := submit.New(ctrl, submit.SenderFunc(func(_ context.Context, p submit.Payload) error {
		sent = p
		return nil
	}), center, i18n.NewStore(i18n.Default()).T)
	require.NoError(t, err)

	_, err = flow.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", sent.Values["email"])
}

func TestSimulatedSender_Cancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := submit.SimulatedSender{Delay: time.Hour}.Send(ctx, submit.Payload{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSender(t *testing.T) {
	form := threeStepForm()

	t.Run("success", func(t *testing.T) {
		var received submit.Payload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "es", r.Header.Get("Accept-Language"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		sender := submit.HTTPSender{Endpoint: srv.URL, Client: srv.Client(), Form: form}
		err := sender.Send(context.Background(), submit.Payload{
			FormID:   "enrollment",
			Language: model.LanguageSecondary,
			Values:   map[string]string{"email": "ana@example.com"},
		})
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", received.Values["email"])
	})

	t.Run("remote validation errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"Study is full","errors":{"/body/email":["Email already registered"],"non_field_errors":["Try later"]}}`))
		}))
		defer srv.Close()

		sender := submit.HTTPSender{Endpoint: srv.URL, Client: srv.Client(), Form: form}
		err := sender.Send(context.Background(), submit.Payload{FormID: "enrollment"})
		var remote *submit.RemoteError
		require.True(t, errors.As(err, &remote))
		assert.Equal(t, http.StatusUnprocessableEntity, remote.Status)
		assert.Equal(t, map[string][]string{"email": {"Email already registered"}}, remote.Fields)
		assert.Equal(t, []string{"Try later", "Study is full"}, remote.Form)
	})

	t.Run("endpoint required", func(t *testing.T) {
		assert.Error(t, submit.HTTPSender{}.Send(context.Background(), submit.Payload{}))
	})
}
