package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/prefs"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/session"
)

func (a *app) wizardCmd() *cobra.Command {
	var (
		formID       string
		prefsPath    string
		printPayload bool
	)
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Fill in the form from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("form") {
				a.cfg.Form = formID
			}
			form, err := a.form(a.cfg.Form)
			if err != nil {
				return err
			}
			table, err := a.table()
			if err != nil {
				return err
			}
			if strings.TrimSpace(prefsPath) == "" {
				if prefsPath, err = prefs.DefaultFilePath(); err != nil {
					return err
				}
			}
			store, err := prefs.NewFile(prefsPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			sess, err := session.Open(ctx, session.Deps{
				Form:      form,
				Table:     table,
				Prefs:     store,
				Sender:    a.sender(form),
				NotifyTTL: a.cfg.NotifyTTL,
				Strict:    a.cfg.StrictI18n,
				Logger:    a.logger,
			})
			if err != nil {
				return err
			}
			defer sess.Close()

			w, err := tui.NewWizard(sess)
			if err != nil {
				return err
			}
			result, err := w.Run(ctx)
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
				return nil
			}
			if err != nil {
				return err
			}
			if printPayload {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result.Payload)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&formID, "form", "", "form variant (overrides FORMFLOW_FORM)")
	cmd.Flags().StringVar(&prefsPath, "prefs", "", "preferences file (defaults to the user config dir)")
	cmd.Flags().BoolVar(&printPayload, "print-payload", false, "print the submitted payload as JSON")
	return cmd
}
