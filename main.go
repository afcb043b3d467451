package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/nstehr/bulwark/catalog"
	"github.com/nstehr/bulwark/config"
	"github.com/nstehr/bulwark/ipc"
	"github.com/nstehr/bulwark/session"
)

const banner = `
 ___ _   _ _ __      ___   ___ _  __
| _ ) | | | |\ \    / /_\ | _ \ |/ /
| _ \ |_| | |_\ \/\/ / _ \|   / ' <
|___/\___/|____\_/\_/_/ \_\_|_\_|\_\

Two-Lane Battle Rules Engine`

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	configDir := flag.String("config", ".", "directory containing bulwark.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load card catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	caps := cfg.Rules.Capacities()
	slog.Info("starting bulwark", "cards", cat.Len(), "meleeCapacity", caps.Melee, "rangedCapacity", caps.Ranged)

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(cfg.SocketPath); err != nil {
		slog.Error("failed to clean up socket", "path", cfg.SocketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", cfg.SocketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", cfg.SocketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(cfg.SocketPath)

	slog.Info("listening on domain socket", "path", cfg.SocketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var battles atomic.Int64
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			n := battles.Add(1)
			slog.Info("battle connection accepted", "battle", n)
			go handleConn(conn, fmt.Sprintf("battle-%d", n), cfg, cat)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down", "battles", battles.Load())
}

// handleConn gives every connection its own battle. The battle is named
// after its accept order until the client's hello renames it.
func handleConn(conn net.Conn, battle string, cfg config.Config, cat *catalog.Catalog) {
	s, err := session.New(cfg.Rules.Capacities(), cat)
	if err != nil {
		slog.Error("failed to start battle", "battle", battle, "error", err)
		conn.Close()
		return
	}
	c := ipc.NewConnection(conn, nil)
	c.Battle = battle
	s.Battle = battle
	s.Register(c)
	c.ReadLoop()

	stats := c.Stats()
	slog.Info("battle finished", "battle", c.Battle, "units", s.Engine.Snapshot().UnitCount(),
		"requests", stats.Requests, "rejected", stats.Rejected)
}
