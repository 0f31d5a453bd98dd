package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/furrykit/form"
	"github.com/odvcencio/furrykit/internal/report"
)

func newValidateCmd(e *env) *cobra.Command {
	var (
		sets   []string
		format string
	)
	cmd := &cobra.Command{
		Use:   "validate SCHEMA",
		Short: "Validate the fields declared in a YAML form schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, data, err := loadForm(args[0])
			if err != nil {
				return err
			}
			for _, s := range sets {
				name, value, ok := strings.Cut(s, "=")
				if !ok {
					return fmt.Errorf("invalid --set %q: want name=value", s)
				}
				if err := data.SetValue(name, value); err != nil {
					return err
				}
			}

			v := form.New(data, form.WithLogger(e.logger))
			defer v.Stop()
			v.ValidateForm()

			r := report.FromValidator(schema.Name, v, schema.Label)
			if err := report.Write(cmd.OutOrStdout(), r, format); err != nil {
				return err
			}
			if !r.Valid {
				return errSilent
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "override a field value as name=value (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "report format: text, markdown or html")
	return cmd
}

func loadForm(path string) (*form.Schema, *form.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open schema: %w", err)
	}
	defer f.Close()

	schema, err := form.LoadSchema(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	data, err := schema.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema, data, nil
}
