package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/rogue-gym/internal/env"
	"github.com/vovakirdan/rogue-gym/internal/platform/tui"
	"github.com/vovakirdan/rogue-gym/internal/transport/ws"
)

var (
	flagSSHAddr     string
	flagWSAddr      string
	flagHostKey     string
	flagIdleTimeout int
	flagServeSteps  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve play over SSH and environments over websockets",
	Long: `Start the remote front ends.

--ssh starts a Wish SSH server: every connection plays its own dungeon
and finished episodes are saved to the shared episode database.

--ws starts a websocket server for agents: GET /env opens a connection
owning one environment, driven by JSON requests such as
  {"op":"reset"}  {"op":"step","action":3}  {"op":"step","keys":"hjk"}
  {"op":"seed","seed":7}  {"op":"observe"}  {"op":"config"}
GET /healthz reports the registered engines.

Without flags only the SSH server starts.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.roguegym/host_key

Examples:
  roguegym serve
  roguegym serve --ssh :2222
  roguegym serve --ws :8080
  roguegym serve --ssh :2222 --ws :8080 --max-steps 5000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port), default :23234 when --ws is unset")
	serveCmd.Flags().StringVar(&flagWSAddr, "ws", "", "Websocket server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().IntVar(&flagServeSteps, "max-steps", env.DefaultMaxSteps, "Step limit per episode")
}

func runServe(_ *cobra.Command, _ []string) error {
	doc, err := loadGame("")
	if err != nil {
		return err
	}
	if flagSSHAddr == "" && flagWSAddr == "" {
		flagSSHAddr = tui.DefaultSSHServerConfig().Address
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 2)
	running := 0

	if flagWSAddr != "" {
		srv := ws.NewServer(ws.Config{
			Game:    doc,
			Options: env.Options{MaxSteps: flagServeSteps},
			Logger:  logger.WithPrefix("roguegym-ws"),
		})
		running++
		go func() { errc <- srv.ListenAndServe(ctx, flagWSAddr) }()
	}

	if flagSSHAddr != "" {
		cfg := tui.DefaultSSHServerConfig()
		cfg.Address = flagSSHAddr
		cfg.HostKeyPath = flagHostKey
		cfg.DBPath = flagDBPath
		cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
		cfg.Game = doc
		cfg.MaxSteps = flagServeSteps
		cfg.Logger = logger.WithPrefix("roguegym-ssh")

		server, err := tui.NewSSHServer(cfg)
		if err != nil {
			return fmt.Errorf("cannot create SSH server: %w", err)
		}
		fmt.Printf("Connect with: ssh localhost -p %s\n", portOf(cfg.Address))
		running++
		go func() { errc <- server.Run(ctx) }()
	}

	fmt.Println("Press Ctrl+C to stop")
	var first error
	for range running {
		if err := <-errc; err != nil && first == nil {
			first = err
			stop()
		}
	}
	return first
}

// portOf returns the port part of a host:port address.
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
