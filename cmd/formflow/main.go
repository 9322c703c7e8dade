// Command formflow serves the bilingual contact form over HTTP, runs it as a
// terminal wizard, and checks forms and catalogs.
package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/logging"
	"github.com/goliatone/go-formflow/pkg/formconfig"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/submit"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:           "formflow",
		Short:         "Bilingual multi-step contact form",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.Verbose = true
			}
			logger, err := logging.New(cfg.Verbose)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file overlaid on the environment")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.serveCmd(),
		a.wizardCmd(),
		a.validateCmd(),
		a.formsCmd(),
		a.lintCmd(),
	)
	return root
}

func (a *app) formStore() (*formconfig.Store, error) {
	if path := strings.TrimSpace(a.cfg.FormsFile); path != "" {
		return formconfig.LoadFile(path)
	}
	return formconfig.Default(), nil
}

func (a *app) form(id string) (model.FormModel, error) {
	store, err := a.formStore()
	if err != nil {
		return model.FormModel{}, err
	}
	form, ok := store.Form(id)
	if !ok {
		return model.FormModel{}, fmt.Errorf("form %q not found (available: %s)", id, strings.Join(store.IDs(), ", "))
	}
	return form, nil
}

func (a *app) table() (*i18n.MessageTable, error) {
	if dir := strings.TrimSpace(a.cfg.CatalogDir); dir != "" {
		return i18n.LoadDir(dir)
	}
	return i18n.Default(), nil
}

// sender posts to the configured endpoint, or simulates the send when none
// is set.
func (a *app) sender(form model.FormModel) submit.Sender {
	endpoint := strings.TrimSpace(a.cfg.SubmitEndpoint)
	if endpoint == "" {
		endpoint = strings.TrimSpace(form.Endpoint)
	}
	if endpoint == "" {
		return submit.SimulatedSender{Delay: a.cfg.SimulatedDelay}
	}
	return submit.HTTPSender{
		Endpoint: endpoint,
		Method:   form.Method,
		Client:   http.DefaultClient,
		Form:     form,
	}
}
