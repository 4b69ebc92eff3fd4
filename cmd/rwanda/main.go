// Package main provides the rwanda command, an offline browser for the
// administrative hierarchy of Rwanda.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nerrad567/rwanda"
	"github.com/nerrad567/rwanda/internal/location"
)

// version is set at build time via ldflags.
var version = "dev"

// errUnresolved is returned when a filter value matches nothing.
var errUnresolved = errors.New("filter does not resolve")

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the flags shared by every subcommand.
type options struct {
	dataset string
	asJSON  bool
}

// table loads the dataset named by --dataset, or the embedded one.
func (o *options) table() (*rwanda.Table, error) {
	if o.dataset == "" {
		return rwanda.Default(), nil
	}
	return rwanda.LoadFile(o.dataset)
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "rwanda",
		Short: "Browse the administrative divisions of Rwanda",
		Long: `rwanda lists the provinces, districts, sectors, cells and villages of
Rwanda. Each level can be narrowed by naming its ancestors; names match
regardless of case.

  rwanda cells --province Kigali --district Kicukiro --sector Nyarugunga`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.dataset, "dataset", "", "YAML dataset file (default: embedded dataset)")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of one name per line")

	for _, l := range rwanda.Levels {
		cmd.AddCommand(levelCmd(opts, l))
	}
	cmd.AddCommand(searchCmd(opts), statsCmd(opts), exportCmd(opts), importCmd())

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rwanda version %s\n", version)
		},
	})

	return cmd
}

// levelCmd builds the listing command for level, with a flag for every
// ancestor level.
func levelCmd(opts *options, level rwanda.Level) *cobra.Command {
	var f rwanda.Filter

	cmd := &cobra.Command{
		Use:   level.Plural(),
		Short: fmt.Sprintf("List %s", level.Plural()),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := opts.table()
			if err != nil {
				return err
			}
			r := t.Lookup(level, &f)
			if !r.Resolved {
				return fmt.Errorf("%w: no %s matches %s", errUnresolved, level, describe(f, level))
			}
			if !r.Complete {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: the dataset does not list every %s under this filter\n", level)
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"level":    level,
					"names":    r.Names,
					"count":    len(r.Names),
					"complete": r.Complete,
				})
			}
			for _, n := range r.Names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}

	fields := []*string{&f.Province, &f.District, &f.Sector, &f.Cell}
	for l := rwanda.LevelProvince; l < level; l++ {
		cmd.Flags().StringVar(fields[l-1], l.String(), "", fmt.Sprintf("Narrow to one %s", l))
	}
	return cmd
}

// describe renders the ancestor filter values used for level.
func describe(f rwanda.Filter, level rwanda.Level) string {
	values := []string{f.Province, f.District, f.Sector, f.Cell}
	var parts []string
	for l := rwanda.LevelProvince; l < level; l++ {
		if v := values[l-1]; v != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", l, v))
		}
	}
	return strings.Join(parts, " ")
}

func searchCmd(opts *options) *cobra.Command {
	var (
		levelName string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find locations whose name contains query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var level rwanda.Level
			if levelName != "" {
				l, err := rwanda.ParseLevel(levelName)
				if err != nil {
					return err
				}
				level = l
			}
			t, err := opts.table()
			if err != nil {
				return err
			}

			found := t.Search(args[0], level, limit)
			if opts.asJSON {
				results := make([]location.Location, 0, len(found))
				for _, l := range found {
					results = append(results, location.FromTable(l, 0))
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"results": results, "count": len(results)})
			}
			for _, l := range found {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-40s %s\n", l.Level, l.Code, strings.Join(l.Path, " / "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&levelName, "level", "", "Restrict to one level (province..village)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results (0 = no limit)")
	return cmd
}

func statsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number of entries at each level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := opts.table()
			if err != nil {
				return err
			}
			if opts.asJSON {
				counts := make(map[string]int, len(rwanda.Levels))
				complete := make(map[string]bool, len(rwanda.Levels))
				for _, l := range rwanda.Levels {
					counts[l.Plural()] = t.Count(l)
					complete[l.Plural()] = t.Complete(l)
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"counts": counts, "complete": complete})
			}
			for _, l := range rwanda.Levels {
				note := ""
				if !t.Complete(l) {
					note = "  (partial)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d%s\n", l.Plural(), t.Count(l), note)
			}
			return nil
		},
	}
}

func exportCmd(opts *options) *cobra.Command {
	var (
		out       string
		tableName string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dataset as a SQL script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := location.TableName(tableName)
			if err != nil {
				return err
			}
			t, err := opts.table()
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, func(w io.Writer) error {
				return location.WriteSQL(w, t, name)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&tableName, "table", "", "Table name (default: locations)")
	return cmd
}

func importCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Convert a CSV or YAML dataset to the YAML dataset format",
		Long: `import reads a dataset and writes it in the YAML shape served by
--dataset and dataset.path. CSV input needs a header naming the level
columns (province, district, sector, cell, village); other columns are
ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := rwanda.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, out, t.WriteYAML); err != nil {
				return err
			}
			for _, l := range rwanda.Levels {
				if !t.Complete(l) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: not every %s is listed\n", l)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

// writeOutput runs write against stdout, or against a new file at path.
// The file is removed again when writing or closing it fails.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	err = write(f)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("closing %s: %w", path, cerr)
	}
	if err != nil {
		os.Remove(path) //nolint:errcheck // best effort, err is what matters
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
