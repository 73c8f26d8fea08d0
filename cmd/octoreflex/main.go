// Package main — cmd/octoreflex/main.go
//
// Kernel host entrypoint.
//
// Startup sequence (adapted from the teacher's daemon startup, collapsed
// from a privileged BPF/gossip daemon into a tick-driven loop around a
// simulated host):
//  1. Load and validate config from the path given by -config.
//  2. Initialise structured logger (zap; level/format from config).
//  3. Open the durable-root store (bbolt-backed, internal/hostsim).
//  4. Load (or create fresh) the persisted DurableRoot.
//  5. Construct the Kernel.
//  6. Run the tick loop on a fixed interval until SIGINT/SIGTERM.
//
// Shutdown sequence (on SIGINT/SIGTERM):
//  1. Stop the ticker.
//  2. Persist the DurableRoot one last time.
//  3. Close the store.
//  4. Flush the logger.
//  5. Exit 0.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/screepskernel/kernel"
	"github.com/screepskernel/kernel/internal/config"
	"github.com/screepskernel/kernel/internal/hostsim"
	"github.com/screepskernel/kernel/internal/klog"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (optional; defaults are used if empty)")
	dbPath := flag.String("db", "kernel.db", "Path to the durable-root store")
	tickInterval := flag.Duration("tick-interval", time.Second, "Wall-clock interval between ticks")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: config load failed: %v\n", err)
		os.Exit(1)
	}

	log, err := klog.Build(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("kernel host starting",
		zap.String("config", *configPath),
		zap.String("db", *dbPath))

	store, err := hostsim.Open(*dbPath)
	if err != nil {
		log.Fatal("durable-root store open failed", zap.Error(err), zap.String("path", *dbPath))
	}
	defer store.Close() //nolint:errcheck

	root, err := store.Load()
	if err != nil {
		log.Fatal("durable-root load failed", zap.Error(err))
	}

	k := kernel.New(*cfg, log, nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()

	var tick uint64
	host := &hostsim.FakeHost{CPUValue: &hostsim.FakeCPU{LimitValue: 100}}

	log.Info("entering tick loop")
	for {
		select {
		case <-ticker.C:
			tick++
			host.TickValue = tick
			result := k.Loop(host, root)
			if len(result.Warnings) > 0 {
				log.Warn("tick produced warnings", zap.Uint64("tick", tick), zap.Strings("warnings", result.Warnings))
			}
			if err := store.Save(root); err != nil {
				log.Error("durable-root save failed", zap.Error(err))
			}

		case sig := <-sigCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			if err := store.Save(root); err != nil {
				log.Error("final durable-root save failed", zap.Error(err))
			}
			log.Info("shutdown complete")
			return
		}
	}
}

// loadConfig loads config bytes from path if given, falling back to
// defaults. The kernel's own config.Load never touches a filesystem;
// reading the file is this host binary's responsibility (spec.md §9).
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Defaults()
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return config.Load(data)
}
