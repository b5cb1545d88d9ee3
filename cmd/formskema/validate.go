package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/i18n"
)

// errInvalid signals a rejected submission; the payload is already printed.
var errInvalid = errors.New("validation failed")

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a data file against a schema definition",
		Long:  `Binds the data record to the schema and prints the clean values, or the field-keyed error payload as JSON.`,
		RunE:  runValidate,
	}
	cmd.Flags().String("schema", "", "Schema definition file (.json, .yaml)")
	cmd.Flags().String("data", "", "Data record file (.json, .yaml)")
	cmd.Flags().String("lang", "en", "Language of default messages (en, ja)")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	logger, err := loggerFor(cmd)
	if err != nil {
		return err
	}
	schemaPath, _ := cmd.Flags().GetString("schema")
	dataPath, _ := cmd.Flags().GetString("data")
	lang, _ := cmd.Flags().GetString("lang")
	i18n.SetLanguage(lang)
	defer i18n.SetLanguage("en")

	defs, err := formskema.LoadDefinitions(schemaPath)
	if err != nil {
		return err
	}
	s, err := formskema.New(defs, formskema.WithLogger(logger))
	if err != nil {
		return err
	}
	data, err := formskema.LoadData(dataPath)
	if err != nil {
		return err
	}

	b, err := s.BindData(data)
	if ve, ok := formskema.AsValidationError(err); ok {
		out, merr := json.MarshalIndent(ve, "", "  ")
		if merr != nil {
			return merr
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		for _, it := range ve.Issues() {
			logger.Debug("issue", "path", it.Path, "code", it.Code)
		}
		return errInvalid
	}
	if err != nil {
		return err
	}
	printBound(cmd.OutOrStdout(), b, 0)
	return nil
}

// printBound writes one "id: value" line per bound field, nesting groups.
func printBound(w io.Writer, b *formskema.Bound, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, v := range b.Values() {
		switch c := v.Clean.(type) {
		case []*formskema.Bound:
			fmt.Fprintf(w, "%s%s:\n", indent, v.Field.ID())
			for i, nb := range c {
				fmt.Fprintf(w, "%s  [%d]\n", indent, i)
				printBound(w, nb, depth+2)
			}
		default:
			fmt.Fprintf(w, "%s%s: %s\n", indent, v.Field.ID(), formatClean(c))
		}
	}
}

func formatClean(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(formskema.DatetimeLayout)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatClean(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + formatClean(x[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *formskema.Record:
		return formatClean(x.Map())
	default:
		return fmt.Sprint(x)
	}
}
