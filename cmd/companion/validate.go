package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cooking-companion/server/internal/docvalue"
	"github.com/cooking-companion/server/internal/schema"
)

var errInvalidDocuments = errors.New("validation failed")

func newValidateCmd(c *cli) *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate data files against their JSON Schemas",
		Long: `Validate data files against their JSON Schemas.

The kind is detected from the file name (taste-profile.json, shelf.json,
appliances.json, recipes/*.json) unless --kind is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var forced schema.Kind
			if kindName != "" {
				k, ok := schema.ParseKind(kindName)
				if !ok {
					return fmt.Errorf("unknown kind %q (want one of %s)", kindName, kindList())
				}
				forced = k
			}

			validator := schema.NewEmbeddedValidator()
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				kind := forced
				if kind == "" {
					k, ok := schema.DetectKind(path)
					if !ok {
						fmt.Fprintf(out, "✗ %s: cannot tell the document kind, use --kind\n", path)
						failed++
						continue
					}
					kind = k
				}

				result, err := validateFile(validator, kind, path)
				if err != nil {
					fmt.Fprintf(out, "✗ %s: %v\n", path, err)
					failed++
					continue
				}
				if !result.Valid {
					fmt.Fprintf(out, "✗ %s (%s)\n", path, kind.Label())
					for _, line := range result.Errors {
						fmt.Fprintf(out, "    %s\n", line)
					}
					failed++
					continue
				}
				fmt.Fprintf(out, "✓ %s (%s)\n", path, kind.Label())
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d files", errInvalidDocuments, failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&kindName, "kind", "k", "", "document kind: "+kindList())
	return cmd
}

func validateFile(v *schema.Validator, kind schema.Kind, path string) (schema.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Result{}, err
	}
	doc, err := docvalue.Parse(data)
	if err != nil {
		return schema.Result{}, err
	}
	return v.Validate(kind, doc)
}

func kindList() string {
	kinds := schema.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
