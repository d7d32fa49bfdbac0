package cli

import (
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tasktalk/tasktalk/internal/web"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to bind (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	host := rt.cfg.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := rt.cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	printHeader("🌐 TaskTalk Server")
	fmt.Printf("Listening on http://%s\n", addr)

	srv := web.NewServer(rt.loop, rt.tasks, rt.history, rt.logger)
	if err := srv.ListenAndServe(ctx, addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
