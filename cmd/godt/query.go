package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newQueryCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "query <table> <params.json|->",
		Short: "Run one data-grid request and print the response",
		Example: `  godt query users params.json
  echo '{"draw":1,"length":5,"search":{"value":"ali"}}' | godt query users -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readParams(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}

			eng, closeFn, err := buildEngine(cmd.Context(), a.cfg, a.tables, a.log, nil)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := a.log.WithContext(cmd.Context())
			resp, err := eng.ProcessRaw(ctx, args[0], raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			case "text":
				t, err := eng.Table(args[0])
				if err != nil {
					return err
				}
				names := t.Columns.Names()
				fmt.Fprintf(out, "draw=%d total=%d filtered=%d\n", resp.Draw, resp.RecordsTotal, resp.RecordsFiltered)
				fmt.Fprintln(out, strings.Join(names, " | "))
				for _, d := range resp.Data {
					obj, _ := d.(map[string]any)
					parts := make([]string, len(names))
					for i, n := range names {
						parts[i] = formatValue(obj[n])
					}
					fmt.Fprintln(out, strings.Join(parts, " | "))
				}
				return nil
			}
			return fmt.Errorf("unknown format %q (want json or text)", format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or text")
	return cmd
}

func readParams(stdin io.Reader, path string) (map[string]any, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	return raw, nil
}

// formatValue converts a response cell to a human-readable string.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		return fmt.Sprintf("%f", t)
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
