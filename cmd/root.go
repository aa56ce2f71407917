package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/brokerdash-cli/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Diagnostics logger; user-facing output goes to the command's writer.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "brokerdash",
	Short: "Broker performance reports from a CSV of broker records",
	Long: `brokerdash reads a CSV of broker records (name, tickets, order_success_rate,
avg_resolution_time), filters it by a minimum success rate and reports per-broker
resolution times, success-rate rankings, efficiency scores and correlations.
Run "brokerdash serve" for the interactive dashboard.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.brokerdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	_ = godotenv.Load(".env")
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = defaultConfig()
	}
	cfg = c

	l, err := cfgpkg.NewLogger(cfg.AppEnv, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to initialize logger: %v\n", err)
		l = zap.NewNop()
	}
	logger = l
}

// defaultConfig mirrors the defaults of config.Load without reading any file.
func defaultConfig() *cfgpkg.Global {
	return &cfgpkg.Global{
		MinSuccessRate: 50,
		TopResolutionN: 20,
		TopSuccessN:    5,
		TopEfficiencyN: 5,
		PreviewRows:    5,
		ExportFilename: "filtered_data.csv",
		ServeAddr:      ":8501",
		MaxUploadMB:    32,
		MaxSessions:    100,
		AppEnv:         "development",
	}
}
