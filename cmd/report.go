package cmd

import (
	"fmt"

	"github.com/KaramelBytes/brokerdash-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	repMinSuccess int
	repFormat     string
	repOutputPath string
	repExportPath string
	repCSV        csvFlags
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Filter a broker CSV and print the performance report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt, err := repCSV.parseOptions(path)
		if err != nil {
			return err
		}
		th, err := threshold(cmd, repMinSuccess)
		if err != nil {
			return err
		}
		rep, err := buildReport(path, opt, th)
		if err != nil {
			return err
		}
		body, _, err := render(rep, repFormat)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if repOutputPath != "" {
			if err := utils.SafeWriteFile(repOutputPath, body); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote report to %s\n", repOutputPath)
		} else {
			fmt.Fprintln(out, string(body))
		}
		if repExportPath != "" {
			csv, err := rep.ExportCSV()
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(repExportPath, csv); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(out, "✓ Exported %d filtered rows to %s\n", rep.Summary.Rows, repExportPath)
		}
		if rep.NoData {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ No rows meet the minimum success rate of %d%%\n", th)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVar(&repMinSuccess, "min-success", 50, "minimum order success rate (%) a row must reach, 0-100 (default from config)")
	reportCmd.Flags().StringVar(&repFormat, "format", "md", "output format: md|json")
	reportCmd.Flags().StringVarP(&repOutputPath, "output", "o", "", "optional path to write the report")
	reportCmd.Flags().StringVar(&repExportPath, "export", "", "optional path to write the filtered rows as CSV")
	repCSV.register(reportCmd)
}
