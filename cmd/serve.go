package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/brokerdash-cli/internal/dashboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive broker performance dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.ServeAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		srv := dashboard.NewServer(dashboard.Options{
			Addr:             addr,
			DefaultThreshold: cfg.MinSuccessRate,
			MaxUploadBytes:   int64(cfg.MaxUploadMB) << 20,
			MaxSessions:      cfg.MaxSessions,
			ExportFilename:   cfg.ExportFilename,
			Report:           cfg.ReportOptions(),
			ParseOptions:     cfg.ParseOptions,
		}, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("start dashboard: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard running at http://%s (Ctrl+C to stop)\n", displayAddr(addr))
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("dashboard shutdown", zap.Error(err))
			return err
		}
		logger.Info("dashboard stopped", zap.Int("sessions", srv.Sessions().Len()))
		return nil
	},
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8501", "listen address (default from config)")
}
