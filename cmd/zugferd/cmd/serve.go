package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/zugferd/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for building and validating invoices.

The API provides endpoints for:
  - GET  /api/v1/profiles                   - List profiles
  - POST /api/v1/invoices/:profile/xml      - Build invoice XML from JSON or YAML
  - POST /api/v1/invoices/:profile/pdf      - Attach invoice XML to an uploaded PDF
  - POST /api/v1/invoices/:profile/validate - Run the configured validators
  - POST /api/v1/info                       - Detect the format of a payload
  - GET  /health                            - Health check

Examples:
  # Start server on the configured address
  zugferd serve

  # Start on custom port with schema validation
  zugferd serve --address :9000 --xsd-dir ./schemas

  # Start in debug mode
  zugferd serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (env: ZUGFERD_ADDRESS)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serverAddr != "" {
		cfg.Server.Address = serverAddr
	}
	if serverDebug {
		cfg.Server.Debug = true
	}
	if readTimeout > 0 {
		cfg.Server.ReadTimeout = readTimeout
	}
	if writeTimeout > 0 {
		cfg.Server.WriteTimeout = writeTimeout
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return err
	}

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		_ = logger.Sync()
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", cfg.Server.Address)
	if cfg.XSD.Enabled() {
		fmt.Printf("XSD validation enabled (%s)\n", cfg.XSD.Dir)
	}
	if cfg.Kosit.Enabled() {
		fmt.Println("KoSIT validation enabled")
	}

	return srv.Run()
}
