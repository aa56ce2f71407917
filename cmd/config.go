package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/brokerdash-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set brokerdash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "min_success_rate: %d\n", cfg.MinSuccessRate)
		fmt.Fprintf(out, "top_resolution_n: %d\n", cfg.TopResolutionN)
		fmt.Fprintf(out, "top_success_n: %d\n", cfg.TopSuccessN)
		fmt.Fprintf(out, "top_efficiency_n: %d\n", cfg.TopEfficiencyN)
		fmt.Fprintf(out, "preview_rows: %d\n", cfg.PreviewRows)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.DecimalSeparator != "" {
			fmt.Fprintf(out, "decimal_separator: %q\n", cfg.DecimalSeparator)
		}
		if cfg.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %q\n", cfg.ThousandsSeparator)
		}
		fmt.Fprintf(out, "export_filename: %s\n", cfg.ExportFilename)
		fmt.Fprintf(out, "serve_addr: %s\n", cfg.ServeAddr)
		fmt.Fprintf(out, "max_upload_mb: %d\n", cfg.MaxUploadMB)
		fmt.Fprintf(out, "max_sessions: %d\n", cfg.MaxSessions)
		fmt.Fprintf(out, "app_env: %s\n", cfg.AppEnv)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "min_success_rate":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for min_success_rate: %w", err)
			}
			next.MinSuccessRate = i
		case "top_resolution_n", "top_success_n", "top_efficiency_n", "preview_rows", "max_upload_mb", "max_sessions":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "top_resolution_n":
				next.TopResolutionN = i
			case "top_success_n":
				next.TopSuccessN = i
			case "top_efficiency_n":
				next.TopEfficiencyN = i
			case "preview_rows":
				next.PreviewRows = i
			case "max_upload_mb":
				next.MaxUploadMB = i
			case "max_sessions":
				next.MaxSessions = i
			}
		case "delimiter":
			if val == "tab" {
				val = `\t`
			}
			next.Delimiter = val
		case "decimal_separator":
			next.DecimalSeparator = val
		case "thousands_separator":
			next.ThousandsSeparator = val
		case "export_filename":
			next.ExportFilename = val
		case "serve_addr":
			next.ServeAddr = val
		case "app_env":
			switch val {
			case "development", "production":
				next.AppEnv = val
			default:
				return fmt.Errorf("invalid app_env: %s (use development or production)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
