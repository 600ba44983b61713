package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/strikelab/optionscan/internal/api"
	"github.com/strikelab/optionscan/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health            - Health check
  POST /api/scan          - Run a scan over an inline worklist
  GET  /api/scan/results  - Latest scan report
  GET  /api/cache/stats   - Chain cache statistics
  POST /api/cache/clear   - Clear cached chains

Example:
  go run ./cmd/scan api
  go run ./cmd/scan api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	stack, err := buildStack()
	if err != nil {
		return err
	}
	if apiPort != "" {
		stack.config.Port = apiPort
	}

	log := stack.logger

	scanHandler := handlers.NewScanHandler(
		stack.orchestrator,
		stack.writer,
		stack.config.Scan.OutputDir,
		stack.configHash,
		log,
	)
	cacheHandler := handlers.NewCacheHandler(stack.cache, log)

	router := api.NewRouter(scanHandler, cacheHandler, log)
	server := api.New(stack.config.Port, router, log)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", stack.config.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
