package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/formconfig"
)

type formSummary struct {
	ID     string   `json:"id"`
	Steps  int      `json:"steps"`
	Fields []string `json:"fields"`
}

func (a *app) formsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "List the configured form variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.formStore()
			if err != nil {
				return err
			}
			return writeForms(cmd.OutOrStdout(), summarizeForms(store), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func summarizeForms(store *formconfig.Store) []formSummary {
	var out []formSummary
	for _, id := range store.IDs() {
		form, _ := store.Form(id)
		summary := formSummary{ID: id, Steps: len(form.Steps)}
		for _, field := range form.Fields() {
			summary.Fields = append(summary.Fields, field.Name)
		}
		out = append(out, summary)
	}
	return out
}

func writeForms(w io.Writer, forms []formSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(forms)
	}
	for _, f := range forms {
		if _, err := fmt.Fprintf(w, "%s\t%d step(s)\t%s\n", f.ID, f.Steps, strings.Join(f.Fields, ", ")); err != nil {
			return err
		}
	}
	return nil
}
