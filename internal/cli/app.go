package cli

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"openF1Poll/internal/config"
	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/application/usecase"
	"openF1Poll/internal/modules/telemetry/infrastructure"
	transport "openF1Poll/internal/modules/telemetry/interface"
	"openF1Poll/internal/platform/broker"
	"openF1Poll/internal/platform/metrics"
	"openF1Poll/internal/platform/output"
	"openF1Poll/internal/shared/auth"
)

// runPoll wires the sinks, the poller and the optional status server, then blocks until the
// poll finishes or ctx is cancelled.
func runPoll(ctx context.Context, cfg *config.Config, registry *infrastructure.EndpointRegistry, req usecase.PollRequest) error {
	primary, err := output.OpenSink(req.Format, req.OutputPath)
	if err != nil {
		return err
	}

	mirrors := []port.RecordSink{broker.NewKafkaMirror(cfg.Kafka.Brokers, cfg.Kafka.Topic)}
	var hub *infrastructure.Hub
	if cfg.Status.Addr != "" {
		hub = infrastructure.NewHub()
		mirrors = append(mirrors, hub)
	}
	sink := output.NewFanout(primary, mirrors...)
	defer func() {
		if err := sink.Close(); err != nil {
			slog.Warn("closing outputs", slog.Any("error", err))
		}
	}()

	recorder := metrics.NewRecorder()
	fetcher := infrastructure.NewOpenF1HTTPClient(cfg.OpenF1.BaseURL, cfg.OpenF1.Timeout, nil)
	poller := usecase.NewPoller(registry, fetcher, sink, usecase.WithObserver(recorder))
	slog.Info("poll configured",
		slog.String("runId", poller.RunID()),
		slog.String("target", req.Target),
		slog.String("output", req.OutputPath),
		slog.String("format", req.Format),
		slog.Bool("kafka", cfg.Kafka.Enabled()),
		slog.String("statusAddr", cfg.Status.Addr),
	)

	g, gctx := errgroup.WithContext(ctx)
	serverCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()

	g.Go(func() error {
		defer stopServer()
		return poller.Run(gctx, req)
	})

	if hub != nil {
		var validator auth.TokenValidator
		if cfg.Status.JWTSecret != "" {
			validator = auth.NewHMACValidator(cfg.Status.JWTSecret)
		}
		server := transport.NewServer(transport.ServerConfig{
			Status:    poller,
			Hub:       hub,
			Metrics:   recorder.Handler(),
			Validator: validator,
		})
		g.Go(func() error {
			return transport.Serve(serverCtx, server, cfg.Status.Addr)
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("poll failed", slog.String("target", req.Target), slog.Any("error", err))
		return err
	}
	return nil
}
