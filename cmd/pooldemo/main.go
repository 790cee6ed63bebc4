// Command pooldemo submits a batch of sleeping jobs to a threadpool and prints
// their results in submission order.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	threadpool "github.com/NoobFreshMeat/Std-MultiThreadTest"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "pooldemo",
		Usage: "run sleeping jobs on a fixed-size thread pool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "pool config file (.yaml, .yml or .json)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "number of workers, overrides the config file",
				Value:   4,
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"n"},
				Usage:   "number of jobs to submit",
				Value:   8,
			},
			&cli.DurationFlag{
				Name:    "delay",
				Aliases: []string{"d"},
				Usage:   "how long each job sleeps",
				Value:   time.Second,
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve Prometheus metrics on this address while running, e.g. :9090",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := resolveConfig(cmd.String("config"), int(cmd.Int("workers")), cmd.IsSet("workers"))
			if err != nil {
				return err
			}
			return run(ctx, cfg, int(cmd.Int("jobs")), cmd.Duration("delay"), cmd.String("metrics-addr"))
		},
	}
}

const defaultPoolName = "pooldemo"

// resolveConfig loads path if given. The workers flag wins when it was set
// explicitly or when there is no config file; a config without a name gets
// defaultPoolName so metric labels are never empty.
func resolveConfig(path string, workers int, workersSet bool) (threadpool.Config, error) {
	cfg := threadpool.DefaultConfig()
	if path != "" {
		loaded, err := threadpool.LoadConfigFile(path)
		if err != nil {
			return threadpool.Config{}, err
		}
		cfg = loaded
	}
	if workersSet || path == "" {
		cfg.Workers = workers
	}
	if cfg.Name == "" {
		cfg.Name = defaultPoolName
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg threadpool.Config, jobs int, delay time.Duration, metricsAddr string) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := threadpool.NewMetrics(reg, "pooldemo")

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	pool, err := threadpool.NewFromConfig(cfg, threadpool.WithLogger(logger), threadpool.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer pool.Close()

	start := time.Now()
	futures := make([]*threadpool.Future[string], 0, jobs)
	for i := 0; i < jobs; i++ {
		f, err := threadpool.SubmitValue(pool, func() string {
			logger.Info("hello", "job", i)
			time.Sleep(delay)
			logger.Info("finished", "job", i)
			return fmt.Sprintf("job %d done", i)
		})
		if err != nil {
			return err
		}
		futures = append(futures, f)
	}

	results := make([]string, len(futures))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range futures {
		g.Go(func() error {
			v, err := f.GetContext(gctx)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		fmt.Println(r)
	}
	if err := pool.Close(); err != nil {
		return err
	}
	st := pool.Stats()
	fmt.Printf("%d jobs on %d workers in %s (completed=%d failed=%d)\n",
		jobs, pool.Workers(), time.Since(start).Round(time.Millisecond), st.Completed, st.Failed)
	return nil
}
