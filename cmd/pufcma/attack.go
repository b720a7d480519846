package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/katalvlaran/pufcma/challenge"
	"github.com/katalvlaran/pufcma/cmaes"
	"github.com/katalvlaran/pufcma/cmd/pufcma/config"
	"github.com/katalvlaran/pufcma/internal/telemetry"
	"github.com/katalvlaran/pufcma/ltf"
	"github.com/katalvlaran/pufcma/simulation"
)

type attackFlags struct {
	metricsAddr string
	seed        int64
}

// report is what one attack run prints.
type report struct {
	RunID           string
	N, K            int
	Searches        int
	Duplicates      int
	Generations     int
	PolarityFlipped bool
	Similarity      float64
	Elapsed         time.Duration
}

func newAttackCmd(root *rootFlags) *cobra.Command {
	flags := &attackFlags{}
	cmd := &cobra.Command{
		Use:   "attack",
		Short: "Attack a simulated noisy XOR arbiter PUF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if root.logLevel != "" {
				cfg.LogLevel = root.logLevel
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Telemetry.MetricsAddr = flags.metricsAddr
			}
			if cmd.Flags().Changed("seed") {
				cfg.Attack.Seed = flags.seed
			}
			if err = cfg.Validate(); err != nil {
				return err
			}

			rep, err := runAttack(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus /metrics on this address while attacking")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "attack seed (overrides config)")

	return cmd
}

// runAttack builds the simulated target, learns it and scores the model on a
// held-out challenge batch. Logs go to logOut.
func runAttack(ctx context.Context, cfg config.Config, logOut io.Writer) (report, error) {
	runID := uuid.New().String()
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.Level()})).
		With(slog.String("run_id", runID))
	rep := report{RunID: runID, N: cfg.Target.N, K: cfg.Target.K}

	tcfg := cfg.TelemetryConfig(version)
	tcfg.Writer = logOut
	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return rep, fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("telemetry shutdown", slog.Any("error", err))
		}
	}()
	if cfg.Telemetry.MetricsAddr != "" {
		stop, err := serveMetrics(cfg.Telemetry.MetricsAddr, logger)
		if err != nil {
			return rep, err
		}
		defer stop()
	}

	ctx, span := otel.Tracer("pufcma").Start(ctx, "pufcma.attack")
	defer span.End()
	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.Int("puf.n", cfg.Target.N),
		attribute.Int("puf.k", cfg.Target.K),
		attribute.Float64("puf.noisiness", cfg.Target.Noisiness),
	)

	target, err := simulation.New(cfg.Target.N, cfg.Target.K, cfg.Transform(), cfg.Target.Noisiness, cfg.Target.Seed)
	if err != nil {
		return rep, fmt.Errorf("target: %w", err)
	}
	logger.Info("attack started",
		slog.Int("n", cfg.Target.N),
		slog.Int("k", cfg.Target.K),
		slog.Float64("noise_sigma", target.NoiseSigma()),
		slog.Float64("unreliability", cfg.Attack.Unreliability))

	start := time.Now()
	learner, err := cmaes.NewLearner(target, cfg.Options(logger))
	if err != nil {
		return rep, err
	}
	res, err := learner.Learn(ctx)
	rep.Elapsed = time.Since(start)
	if res != nil {
		rep.Searches = res.Searches
		rep.Duplicates = res.Duplicates
		rep.Generations = res.Generations
		rep.PolarityFlipped = res.PolarityFlipped
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return rep, fmt.Errorf("attack: %w", err)
	}

	batch, err := challenge.Sample(challenge.FromSeed(cfg.Evaluation.Seed), cfg.Target.N, cfg.Evaluation.Challenges)
	if err != nil {
		return rep, fmt.Errorf("evaluation: %w", err)
	}
	if rep.Similarity, err = ltf.Similarity(res.Model, target.Noiseless(), batch); err != nil {
		return rep, fmt.Errorf("evaluation: %w", err)
	}
	span.SetAttributes(attribute.Float64("model.similarity", rep.Similarity))
	logger.Info("model evaluated",
		slog.Float64("similarity", rep.Similarity),
		slog.Duration("elapsed", rep.Elapsed))

	return rep, nil
}

// serveMetrics exposes telemetry.MetricsHandler on addr until stop is called.
func serveMetrics(addr string, logger *slog.Logger) (stop func(), err error) {
	handler := telemetry.MetricsHandler()
	if handler == nil {
		return nil, errors.New("metrics address set but metric_exporter is not prometheus")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", slog.Any("error", err))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func printReport(w io.Writer, r report) {
	fmt.Fprintf(w, "run:          %s\n", r.RunID)
	fmt.Fprintf(w, "target:       %d-XOR, %d-bit challenges\n", r.K, r.N)
	fmt.Fprintf(w, "searches:     %d (%d duplicates)\n", r.Searches, r.Duplicates)
	fmt.Fprintf(w, "generations:  %d\n", r.Generations)
	fmt.Fprintf(w, "polarity fix: %t\n", r.PolarityFlipped)
	fmt.Fprintf(w, "similarity:   %.4f\n", r.Similarity)
	fmt.Fprintf(w, "elapsed:      %s\n", r.Elapsed.Round(time.Millisecond))
}

