package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhenliu/marketbrief/internal/api"
	"github.com/zhenliu/marketbrief/internal/api/handlers"
	"github.com/zhenliu/marketbrief/pkg/redis"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serves stored snapshots over HTTP and accepts collection triggers.

Endpoints:
  GET  /health                 - Health check
  GET  /api/snapshots          - List stored dates
  GET  /api/snapshot/latest    - Latest snapshot (cached)
  GET  /api/snapshot/{date}    - Snapshot by date
  GET  /api/quality/{date}     - Quality verdict by date
  GET  /api/report/{date}      - Markdown brief by date
  POST /api/collect            - Trigger a collection run

Example:
  go run ./cmd/brief serve
  go run ./cmd/brief serve --port 8087`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(true)
	if err != nil {
		return err
	}
	defer rt.close()

	if servePort != "" {
		rt.cfg.Port = servePort
	}

	handler := handlers.NewSnapshotHandler(
		rt.store,
		redis.NewCache(rt.redis, "marketbrief"),
		rt.runner,
		rt.cfg.Location(),
		rt.log,
	)
	server := api.New(rt.cfg, rt.log, api.NewRouter(handler, rt.log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		fmt.Printf("Received %s, shutting down\n", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
