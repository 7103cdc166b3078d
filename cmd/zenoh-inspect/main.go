// Command zenoh-inspect subscribes directly to a zenoh-style resource
// name or wildcard, bypassing any GStreamer element, and prints the
// decoded envelope for every sample it receives. It is a debugging aid
// for checking what a publisher is actually putting on the wire.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/e7canasta/gst-plugin-zenoh/config"
	"github.com/e7canasta/gst-plugin-zenoh/envelope"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
	"github.com/e7canasta/gst-plugin-zenoh/transport/loopback"
	"github.com/e7canasta/gst-plugin-zenoh/transport/natstransport"
)

type appConfig struct {
	keyExpr    string
	configPath string
	loopbackTr bool
	limit      int
}

func parseFlags() appConfig {
	cfg := appConfig{}
	flag.StringVar(&cfg.keyExpr, "key-expr", "", "resource name or wildcard to subscribe to (required)")
	flag.StringVar(&cfg.configPath, "config", "", "transport config file, same format the elements accept")
	flag.BoolVar(&cfg.loopbackTr, "loopback", false, "use the in-process loopback transport instead of NATS")
	flag.IntVar(&cfg.limit, "limit", 0, "stop after this many samples, 0 = run until interrupted")
	flag.Parse()
	return cfg
}

func printBanner(cfg appConfig) {
	fmt.Println("zenoh-inspect")
	fmt.Printf("  key-expr: %s\n", cfg.keyExpr)
	if cfg.loopbackTr {
		fmt.Println("  transport: loopback")
	} else {
		fmt.Println("  transport: nats")
	}
}

func main() {
	cfg := parseFlags()
	if cfg.keyExpr == "" {
		fmt.Fprintln(os.Stderr, "zenoh-inspect: -key-expr is required")
		os.Exit(2)
	}
	printBanner(cfg)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, logger *slog.Logger) error {
	tcfg, err := config.LoadTransportConfig(cfg.configPath)
	if err != nil {
		return fmt.Errorf("load transport config: %w", err)
	}

	open := natstransport.Open
	if cfg.loopbackTr {
		open = loopback.Open
	}

	sess, err := open(tcfg)
	if err != nil {
		return fmt.Errorf("open transport: %w", err)
	}
	defer sess.Close()

	received := 0
	done := make(chan struct{})
	sub, err := sess.DeclareSubscriber(cfg.keyExpr, transport.QoS{
		Priority:    4,
		Reliability: transport.ReliabilityReliable,
		Congestion:  transport.CongestionBlock,
	}, func(sample transport.Sample) {
		printSample(logger, sample)
		received++
		if cfg.limit > 0 && received >= cfg.limit {
			select {
			case <-done:
			default:
				close(done)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("declare subscriber: %w", err)
	}
	defer sub.Undeclare()

	select {
	case <-ctx.Done():
	case <-done:
		logger.Info("limit reached", "received", received)
	}
	return nil
}

func printSample(logger *slog.Logger, sample transport.Sample) {
	env := envelope.Decode(sample.Attachment)

	if env.Legacy {
		logger.Info("sample", "key", sample.KeyExpr, "bytes", len(sample.Payload), "legacy", true)
		return
	}

	args := []any{
		"key", sample.KeyExpr,
		"bytes", len(sample.Payload),
		"version", env.Version.String(),
		"compression", env.Compression,
		"flags", env.Flags.String(),
	}
	if env.Caps != nil {
		args = append(args, "caps", *env.Caps)
	}
	if env.PTS != nil {
		args = append(args, "pts", time.Duration(*env.PTS))
	}
	if env.SourceKeyExpr != nil {
		args = append(args, "source-key-expr", *env.SourceKeyExpr)
	}
	logger.Info("sample", args...)
}
