package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/brokerdash-cli/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rbMinSuccess int
	rbFormat     string
	rbOutDir     string
	rbExport     bool
	rbQuiet      bool
	rbCSV        csvFlags
)

var reportBatchCmd = &cobra.Command{
	Use:   "report-batch <files...>",
	Short: "Write one report per broker CSV with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandArgs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		th, err := threshold(cmd, rbMinSuccess)
		if err != nil {
			return err
		}
		if err := validateFormat(rbFormat); err != nil {
			return err
		}
		if err := utils.EnsureDir(rbOutDir); err != nil {
			return fmt.Errorf("create out dir: %w", err)
		}

		out := cmd.OutOrStdout()
		total := len(files)
		failed := 0
		for i, path := range files {
			base := filepath.Base(path)
			if !rbQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, base)
			}
			opt, err := rbCSV.parseOptions(path)
			if err != nil {
				return err
			}
			rep, err := buildReport(path, opt, th)
			if err != nil {
				failed++
				logger.Warn("report failed", zap.String("file", path), zap.Error(err))
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", base, err)
				continue
			}
			body, ext, err := render(rep, rbFormat)
			if err != nil {
				return err
			}
			stem := strings.TrimSuffix(base, filepath.Ext(base))
			outFile := utils.UniquePath(rbOutDir, stem+".report", ext)
			if err := utils.SafeWriteFile(outFile, body); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if !rbQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", outFile)
			}
			if rbExport {
				csv, err := rep.ExportCSV()
				if err != nil {
					return err
				}
				exportFile := utils.UniquePath(rbOutDir, stem+".filtered", ".csv")
				if err := utils.SafeWriteFile(exportFile, csv); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				if !rbQuiet {
					fmt.Fprintf(out, "✓ Exported %s\n", exportFile)
				}
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

// expandArgs resolves globs, keeps literal paths that exist, and returns a
// sorted, de-duplicated file list.
func expandArgs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(reportBatchCmd)
	reportBatchCmd.Flags().IntVar(&rbMinSuccess, "min-success", 50, "minimum order success rate (%) a row must reach, 0-100 (default from config)")
	reportBatchCmd.Flags().StringVar(&rbFormat, "format", "md", "output format: md|json")
	reportBatchCmd.Flags().StringVar(&rbOutDir, "out-dir", ".", "directory for the generated reports")
	reportBatchCmd.Flags().BoolVar(&rbExport, "export", false, "also write each file's filtered rows as CSV")
	reportBatchCmd.Flags().BoolVar(&rbQuiet, "quiet", false, "suppress progress and non-essential output")
	rbCSV.register(reportBatchCmd)
}
