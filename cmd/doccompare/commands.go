package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"doccompare/internal/domain"
	"doccompare/internal/extract"
	"doccompare/internal/report"
	"doccompare/internal/tablealign"
)

func (a *app) textCmd() *cobra.Command {
	var (
		threshold  int
		ignoreCase bool
		unified    bool
		asJSON     bool
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "text LEFT RIGHT",
		Short: "Match the lines of two txt or docx documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := readDocument(args[0])
			if err != nil {
				return err
			}
			right, err := readDocument(args[1])
			if err != nil {
				return err
			}

			opts := a.cfg.Compare.Defaults()
			if cmd.Flags().Changed("threshold") {
				opts.Threshold = threshold
			}
			if ignoreCase {
				opts.CaseSensitive = false
			}

			lc, err := a.engine.Lines(left.Lines, right.Lines, opts)
			if err != nil {
				return err
			}
			var fc *domain.FormatComparison
			if left.Type == domain.FileTypeDOCX && right.Type == domain.FileTypeDOCX {
				f := a.engine.Formats(left.Paragraphs, right.Paragraphs)
				fc = &f
			}
			diffs := 0
			if fc != nil {
				diffs = len(fc.Mismatches)
			}
			summary := report.Summarize(len(lc.Matched), len(lc.Unmatched), diffs)

			if reportPath != "" {
				if err := writeFile(reportPath, func(w io.Writer) error {
					return report.WriteLineReport(w, lc)
				}); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, struct {
					Lines   domain.LineComparison    `json:"lines"`
					Format  *domain.FormatComparison `json:"format,omitempty"`
					Summary domain.Summary           `json:"summary"`
				}{lc, fc, summary})
			}

			if len(lc.Matched) > 0 {
				fmt.Fprintln(out, "Matched lines:")
				for _, m := range lc.Matched {
					fmt.Fprintln(out, report.MatchLine(m))
				}
				fmt.Fprintln(out)
			}
			if len(lc.Unmatched) > 0 {
				fmt.Fprintln(out, "Unmatched lines:")
				for _, m := range lc.Unmatched {
					fmt.Fprintln(out, report.UnmatchedLine(m))
				}
				fmt.Fprintln(out)
			}
			if fc != nil {
				for _, m := range fc.Mismatches {
					fmt.Fprintln(out, report.FormatMismatchLine(m))
				}
			}
			if unified {
				fmt.Fprint(out, report.UnifiedDiff(left.Lines, right.Lines))
			}
			fmt.Fprintf(out, "matched=%d (%.1f%%) unmatched=%d (%.1f%%)\n",
				summary.Matched, summary.MatchedPercent, summary.Unmatched, summary.UnmatchedPercent)
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", domain.DefaultThreshold, "minimum similarity score for a match (0-100)")
	cmd.Flags().BoolVar(&ignoreCase, "ignore-case", false, "compare lines case-insensitively")
	cmd.Flags().BoolVar(&unified, "unified", false, "print a unified diff of the two documents")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().StringVarP(&reportPath, "report", "o", "", "write the line report to this file")
	return cmd
}

func (a *app) tableCmd() *cobra.Command {
	var (
		keys       []string
		columns    []string
		ignoreCase bool
		fuzzy      bool
		strict     bool
		sheet      string
		asJSON     bool
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "table LEFT RIGHT",
		Short: "Join two xlsx workbooks on key columns and diff their cells",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := readDataset(args[0], sheet)
			if err != nil {
				return err
			}
			right, err := readDataset(args[1], sheet)
			if err != nil {
				return err
			}

			opts := a.cfg.Compare.Defaults()
			opts.KeyColumns = keys
			opts.CompareColumns = columns
			if ignoreCase {
				opts.CaseSensitive = false
			}
			if fuzzy {
				opts.FuzzyMode = true
			}
			if strict {
				opts.StrictKeys = true
			}

			tc, err := a.engine.Tables(left, right, opts)
			if err != nil {
				return err
			}
			summary := report.Summarize(len(tc.Matched), len(tc.Unmatched), len(tc.Differences))

			if reportPath != "" {
				if err := writeTableReport(reportPath, tc); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, struct {
					Table   domain.TableComparison `json:"table"`
					Summary domain.Summary         `json:"summary"`
				}{tc, summary})
			}

			for _, d := range tc.Differences {
				fmt.Fprintf(out, "%s\t%s\t%s\n", d.Key, d.Column, report.DifferenceText(d))
			}
			for _, row := range tc.Unmatched {
				fmt.Fprintf(out, "%s\t%s\n", row.Status, row.Key)
			}
			fmt.Fprintf(out, "matched=%d unmatched=%d differences=%d\n",
				summary.Matched, summary.Unmatched, summary.Differences)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&keys, "key", "k", nil, "key columns (default: first common column)")
	cmd.Flags().StringSliceVarP(&columns, "compare", "c", nil, "columns to diff (default: all common non-key columns)")
	cmd.Flags().BoolVar(&ignoreCase, "ignore-case", false, "match keys case-insensitively")
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "report a similarity percentage for each difference")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on duplicate keys instead of joining every pair")
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().StringVarP(&reportPath, "report", "o", "", "write an .xlsx or .csv report to this file")
	return cmd
}

func (a *app) columnsCmd() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "columns LEFT RIGHT",
		Short: "List the columns two workbooks have in common",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := readDataset(args[0], sheet)
			if err != nil {
				return err
			}
			right, err := readDataset(args[1], sheet)
			if err != nil {
				return err
			}
			common := tablealign.CommonColumns(left, right)
			if len(common) == 0 {
				return domain.ErrNoCommonColumns
			}
			for _, c := range common {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet to read (default: first sheet)")
	return cmd
}

func (a *app) sheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets FILE",
		Short: "List the worksheets of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := extract.SpreadsheetType(args[0]); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			defer f.Close()

			names, err := extract.SheetNames(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func readDocument(path string) (extract.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return extract.ReadDocument(filepath.Base(path), data)
}

func readDataset(path, sheet string) (domain.Dataset, error) {
	if _, err := extract.SpreadsheetType(path); err != nil {
		return domain.Dataset{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	ds, err := extract.ReadDataset(f, sheet)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func writeTableReport(path string, tc domain.TableComparison) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeFile(path, func(w io.Writer) error { return report.WriteDifferencesCSV(w, tc) })
	case ".xlsx":
		return writeFile(path, func(w io.Writer) error { return report.WriteTableWorkbook(w, tc) })
	default:
		return fmt.Errorf("%w: report %s must be .xlsx or .csv", domain.ErrUnsupportedFileType, path)
	}
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
