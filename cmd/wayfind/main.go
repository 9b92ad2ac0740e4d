// Command wayfind turns captured shopping sessions into training examples.
//
// Usage:
//
//	wayfind -process session.json            # process one capture file
//	wayfind -serve                           # HTTP ingestion server
//	wayfind -serve -config wayfind.yaml      # server with YAML config
//	wayfind -mcp                             # MCP tools over stdio
//	wayfind -report -config wayfind.yaml     # archive-wide quality report
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/mkurahn/wayfind/api"
	"github.com/mkurahn/wayfind/pipeline"
	"github.com/mkurahn/wayfind/selector"
	"github.com/mkurahn/wayfind/session"
	"github.com/mkurahn/wayfind/sink"
	"github.com/mkurahn/wayfind/store"
)

func main() {
	configPath := flag.String("config", "", "path to wayfind.yaml config file")
	processFile := flag.String("process", "", "process one session capture file (- for stdin)")
	serve := flag.Bool("serve", false, "run the HTTP ingestion server")
	serveMCP := flag.Bool("mcp", false, "serve MCP tools over stdio")
	report := flag.Bool("report", false, "print the archive-wide quality report")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *processFile, *serve, *serveMCP, *report); err != nil {
		logger.Error("wayfind: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, processFile string, serve, serveMCP, report bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	switch {
	case processFile != "":
		return runProcess(ctx, logger, cfg, processFile)
	case report:
		return runReport(ctx, logger, cfg)
	case serveMCP:
		return runMCP(ctx, logger, cfg)
	case serve:
		return runServe(ctx, logger, cfg)
	}

	fmt.Fprintln(os.Stderr, "usage: wayfind -process <file> | -serve | -mcp | -report [-config <file>]")
	os.Exit(1)
	return nil
}

func loadConfig(path string) (*pipeline.Config, error) {
	if path == "" {
		return nil, nil
	}
	cfg, err := pipeline.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// runProcess handles one capture file end to end and prints the result.
func runProcess(ctx context.Context, logger *slog.Logger, cfg *pipeline.Config, path string) error {
	var payload []byte
	var err error
	if path == "-" {
		payload, err = io.ReadAll(os.Stdin)
	} else {
		payload, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	sess, err := session.Parse(payload)
	if err != nil {
		return fmt.Errorf("parse session: %w", err)
	}

	pipe := pipeline.New(cfg, logger)

	// A live probe gives rendered-DOM match counts instead of snapshot
	// counts. One probe serves one page, so it anchors on the first event.
	if cfg != nil && cfg.Probe.Enabled && len(sess.Events) > 0 {
		probe, perr := selector.NewLiveProbe(ctx, sess.Events[0].Page.URL, selector.ProbeConfig{
			RemoteURL: cfg.Probe.Remote,
			Logger:    logger,
		})
		if perr != nil {
			logger.Warn("live probe unavailable, using snapshot counts", "error", perr)
		} else {
			defer probe.Close()
			pipe.SetMatchCounter(probe)
		}
	}

	res, err := pipe.Process(ctx, sess)
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}

	sinks, st, err := buildOutputs(cfg, logger)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
		if err := st.SaveResult(ctx, res, sess.Task, len(sess.Events)); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
	}
	if sinks != nil {
		defer sinks.Close()
		for _, ex := range res.Examples {
			if err := sinks.SendExample(ctx, res.SessionID, ex); err != nil {
				return fmt.Errorf("sink: %w", err)
			}
		}
		if err := sinks.SendReport(ctx, res.SessionID, res.Report); err != nil {
			return fmt.Errorf("sink: %w", err)
		}
	} else {
		data, _ := json.MarshalIndent(res, "", "  ")
		os.Stdout.Write(data)
		os.Stdout.Write([]byte("\n"))
	}

	logger.Info("session processed",
		"session_id", res.SessionID,
		"journeys", res.Journeys,
		"examples", len(res.Examples))
	return nil
}

// runServe runs the HTTP ingestion server until shutdown.
func runServe(ctx context.Context, logger *slog.Logger, cfg *pipeline.Config) error {
	sinks, st, err := buildOutputs(cfg, logger)
	if err != nil {
		return err
	}

	svc := api.New(pipeline.New(cfg, logger), st, sinks, logger)
	defer svc.Close()

	r := chi.NewRouter()
	svc.RegisterHTTP(r)

	listen := ":8087"
	if cfg != nil && cfg.Listen != "" {
		listen = cfg.Listen
	}

	srv := &http.Server{
		Addr:              listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// runMCP exposes the pipeline tools over stdio.
func runMCP(ctx context.Context, logger *slog.Logger, cfg *pipeline.Config) error {
	pipe := pipeline.New(cfg, logger)

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "wayfind",
		Version: "1.0.0",
	}, nil)
	pipe.RegisterMCP(srv)

	logger.Info("MCP server on stdio")
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

// runReport prints the archive-wide aggregate report.
func runReport(ctx context.Context, logger *slog.Logger, cfg *pipeline.Config) error {
	if cfg == nil || cfg.Store.Path == "" {
		return fmt.Errorf("report: no store configured (set store.path)")
	}
	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	rep, err := st.Report(ctx)
	if err != nil {
		return err
	}
	data, _ := json.MarshalIndent(rep, "", "  ")
	os.Stdout.Write(data)
	os.Stdout.Write([]byte("\n"))
	return nil
}

// buildOutputs assembles the sink router and the archive store from config.
// Either may come back nil.
func buildOutputs(cfg *pipeline.Config, logger *slog.Logger) (sink.Sink, *store.Store, error) {
	if cfg == nil {
		return nil, nil, nil
	}

	var sinks []sink.Sink
	for _, sc := range cfg.Sinks {
		s, err := sink.New(sc.Type, sc.URL, os.Stdout, logger)
		if err != nil {
			logger.Warn("skipping sink", "type", sc.Type, "error", err)
			continue
		}
		sinks = append(sinks, s)
	}

	var out sink.Sink
	switch len(sinks) {
	case 0:
	case 1:
		out = sinks[0]
	default:
		out = sink.NewRouter(logger, sinks...)
	}

	var st *store.Store
	if cfg.Store.Path != "" {
		var err error
		st, err = store.Open(cfg.Store.Path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
	}
	return out, st, nil
}
