package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bistro/internal/config"
	"bistro/internal/metrics"
	"bistro/internal/tracker"
)

// ordertrack keeps a local mirror of in-flight orders and polls the
// storefront for status changes, printing an updated panel after each
// cycle.
func main() {
	cfg := config.NewTracker()

	store, err := tracker.NewStore(cfg.StateDir)
	if err != nil {
		slog.Error("failed to open state dir", "error", err)
		os.Exit(1)
	}

	cache := tracker.NewCache(store, cfg.GracePeriod, cfg.Retention)
	client := tracker.NewClient(cfg.ServerAddress)

	poller := tracker.NewPoller(cache, client, cfg.PollInterval, cfg.PruneInterval)
	poller.OnChange(printPanel)

	// Order numbers passed on the command line start being tracked
	// right away, same as opening the tracking page for them.
	for _, number := range flag.Args() {
		snap, err := client.GetOrder(context.Background(), number)
		if err != nil {
			slog.Error("cannot track order", "order", number, "error", err)
			continue
		}
		cache.Add(snap.OrderNumber, snap.Status, snap.CreatedAt)
	}

	if cfg.MetricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			slog.Info("serving metrics", "addr", cfg.MetricsAddress)
			if err := http.ListenAndServe(cfg.MetricsAddress, mux); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	slog.Info("tracker stopped")
}

func printPanel(entries []tracker.Entry) {
	if len(entries) == 0 {
		fmt.Println("no active orders")
		return
	}
	for _, e := range entries {
		mark := ""
		if e.MarkedForRemoval {
			mark = " (finished)"
		}
		fmt.Printf("order #%s  %-16s placed %s%s\n",
			e.OrderNumber, e.Status, e.CreatedAt.Format("2006-01-02 15:04"), mark)
	}
}
