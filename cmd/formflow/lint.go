package main

import (
	"fmt"
	"regexp"
	"slices"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/model"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

type violation struct {
	language model.Language
	key      string
	message  string
}

func (a *app) lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint-catalogs [dir]",
		Short: "Report catalog keys missing from the secondary language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				table *i18n.MessageTable
				err   error
			)
			if len(args) == 1 {
				table, err = i18n.LoadDir(args[0])
			} else {
				table, err = a.table()
			}
			if err != nil {
				return err
			}
			violations := lintTable(table)
			for _, v := range violations {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s -> %s\n", v.language, v.key, v.message)
			}
			if len(violations) > 0 {
				return fmt.Errorf("lint-catalogs: %d catalog problem(s)", len(violations))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "catalogs ok")
			return nil
		},
	}
}

// lintTable reports keys missing from the secondary catalog and entries
// whose {placeholders} differ from the primary text.
func lintTable(table *i18n.MessageTable) []violation {
	var out []violation
	secondary := model.LanguageSecondary
	missing := table.Missing(secondary)
	for _, key := range missing {
		out = append(out, violation{language: secondary, key: key, message: "missing translation"})
	}
	for _, key := range table.Keys(model.LanguagePrimary) {
		if slices.Contains(missing, key) {
			continue
		}
		primary, _ := table.Lookup(model.LanguagePrimary, key)
		translated, _ := table.Lookup(secondary, key)
		if !slices.Equal(placeholders(primary), placeholders(translated)) {
			out = append(out, violation{language: secondary, key: key, message: "placeholders differ from primary"})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].key == out[j].key {
			return out[i].message < out[j].message
		}
		return out[i].key < out[j].key
	})
	return out
}

func placeholders(msg string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(msg, -1) {
		names = append(names, m[1])
	}
	sort.Strings(names)
	return slices.Compact(names)
}
