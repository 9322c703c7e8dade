package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func (a *app) validateCmd() *cobra.Command {
	var (
		minimum  int
		maximum  int
		optional bool
		lang     string
	)
	cmd := &cobra.Command{
		Use:   "validate <kind> <value>",
		Short: "Validate a value as email, phone, age or generic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			language, ok := model.ParseLanguage(lang)
			if !ok {
				return fmt.Errorf("unsupported language %q", lang)
			}
			table, err := a.table()
			if err != nil {
				return err
			}
			spec := model.FieldSpec{Name: args[0], Kind: kind, Required: !optional, Min: minimum, Max: maximum}
			store := i18n.NewStore(table, i18n.WithLanguage(language))
			res := validation.Localize(validation.Validate(spec, args[1]), spec, store.T)
			if res.Valid {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return validation.AsError(spec.Name, res)
		},
	}
	cmd.Flags().IntVar(&minimum, "min", 4, "lower bound for age")
	cmd.Flags().IntVar(&maximum, "max", 5, "upper bound for age")
	cmd.Flags().BoolVar(&optional, "optional", false, "accept an empty value")
	cmd.Flags().StringVar(&lang, "lang", "en", "message language (en or es)")
	return cmd
}

func parseKind(raw string) (model.FieldKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "email":
		return model.FieldKindEmail, nil
	case "phone", "tel":
		return model.FieldKindPhone, nil
	case "age", "boundedinteger", "bounded_integer":
		return model.FieldKindBoundedInteger, nil
	case "generic", "text", "required":
		return model.FieldKindGeneric, nil
	default:
		return "", fmt.Errorf("unknown kind %q (want email, phone, age or generic)", raw)
	}
}
