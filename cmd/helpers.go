package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/brokerdash-cli/internal/broker"
	"github.com/KaramelBytes/brokerdash-cli/internal/dataset"
	"github.com/KaramelBytes/brokerdash-cli/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// csvFlags are the locale flags shared by the file-reading commands.
type csvFlags struct {
	delimiter string
	decimal   string
	thousands string
}

func (f *csvFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default by extension)")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
}

// parseOptions starts from the configured options for path and applies flag overrides.
func (f *csvFlags) parseOptions(path string) (dataset.ParseOptions, error) {
	opt := cfg.ParseOptions(path)
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	return opt, nil
}

// threshold returns the --min-success value when set, else the configured default.
func threshold(cmd *cobra.Command, flagVal int) (int, error) {
	if !cmd.Flags().Changed("min-success") {
		return cfg.MinSuccessRate, nil
	}
	if err := broker.ValidateThreshold(flagVal); err != nil {
		return 0, err
	}
	return flagVal, nil
}

// buildReport reads, parses and reports on one file.
func buildReport(path string, opt dataset.ParseOptions, threshold int) (*report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	raw, err := dataset.Parse(data, opt)
	if err != nil {
		return nil, err
	}
	rep, err := report.Build(filepath.Base(path), raw, threshold, cfg.ReportOptions())
	if err != nil {
		return nil, err
	}
	logger.Debug("report built",
		zap.String("file", path),
		zap.Int("rows", raw.Len()),
		zap.Int("filtered_rows", rep.Summary.Rows),
		zap.Int("threshold", threshold),
		zap.Strings("numeric_columns", raw.NumericColumns()))
	return rep, nil
}

func validateFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "md", "markdown", "json":
		return nil
	}
	return fmt.Errorf("unsupported --format: %s (use md|json)", format)
}

// render returns the report in the requested format and the matching file extension.
func render(rep *report.Report, format string) ([]byte, string, error) {
	if err := validateFormat(format); err != nil {
		return nil, "", err
	}
	if strings.ToLower(format) == "json" {
		b, err := rep.JSON()
		return b, ".json", err
	}
	return []byte(rep.Markdown()), ".md", nil
}
