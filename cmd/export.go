package cmd

import (
	"fmt"

	"github.com/KaramelBytes/brokerdash-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	expMinSuccess int
	expOutputPath string
	expCSV        csvFlags
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the rows that meet the minimum success rate to a CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt, err := expCSV.parseOptions(path)
		if err != nil {
			return err
		}
		th, err := threshold(cmd, expMinSuccess)
		if err != nil {
			return err
		}
		rep, err := buildReport(path, opt, th)
		if err != nil {
			return err
		}
		b, err := rep.ExportCSV()
		if err != nil {
			return err
		}
		dest := expOutputPath
		if dest == "" {
			dest = cfg.ExportFilename
		}
		if dest == "-" {
			_, err := cmd.OutOrStdout().Write(b)
			return err
		}
		if err := utils.SafeWriteFile(dest, b); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d of %d rows to %s\n", rep.Summary.Rows, rep.RawRows, dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().IntVar(&expMinSuccess, "min-success", 50, "minimum order success rate (%) a row must reach, 0-100 (default from config)")
	exportCmd.Flags().StringVarP(&expOutputPath, "output", "o", "", "output path, '-' for stdout (default from config: filtered_data.csv)")
	expCSV.register(exportCmd)
}
