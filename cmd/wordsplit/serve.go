package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/oarkflow/wordsplit"
	"github.com/oarkflow/wordsplit/config"
	"github.com/oarkflow/wordsplit/corpus"
	"github.com/oarkflow/wordsplit/costmodel"
	"github.com/oarkflow/wordsplit/logging"
	"github.com/oarkflow/wordsplit/metrics"
	"github.com/oarkflow/wordsplit/server"
	"github.com/oarkflow/wordsplit/watch"
)

var serveFlags struct {
	config string
	env    string
	addr   string
	corpus string
	watch  bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP segmentation service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(serveFlags.config, serveFlags.env)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveFlags.addr
		}
		if cmd.Flags().Changed("corpus") {
			cfg.Corpus.Source = serveFlags.corpus
		}
		if cmd.Flags().Changed("watch") {
			cfg.Corpus.Watch = serveFlags.watch
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.config, "config", "", "YAML or BCL config file")
	f.StringVar(&serveFlags.env, "env", ".env", "dotenv file with WORDSPLIT_* overrides")
	f.StringVar(&serveFlags.addr, "addr", ":8080", "listen address")
	f.StringVar(&serveFlags.corpus, "corpus", "", "corpus source (default: embedded English list)")
	f.BoolVar(&serveFlags.watch, "watch", false, "reload the corpus file when it changes")
}

func serve(ctx context.Context, cfg *config.Config) error {
	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	met, err := metrics.New(reg)
	if err != nil {
		return err
	}

	cache, err := wordsplit.NewCache(cfg.Corpus.CacheSize, nil)
	if err != nil {
		return err
	}
	source := corpus.Normalize(cfg.Corpus.Source)
	model, err := cache.Model(ctx, source)
	met.ObserveBuild(modelLen(model), err)
	if err != nil {
		slog.Error("corpus load failed", slog.String("source", source), slog.String("err", err.Error()))
		return err
	}
	slog.Info("model ready", slog.String("source", source),
		slog.Int("words", model.Len()), slog.Int("max_word_length", model.MaxWordLength()))
	holder := watch.NewHolder(source, model)

	srv, err := server.New(server.Options{
		Config:   cfg.Server,
		Workers:  cfg.Batch.Workers,
		Holder:   holder,
		Metrics:  met,
		Gatherer: reg,
		Logger:   slog.Default(),
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Corpus.Watch {
		if !isFileSource(source) {
			return errors.New("corpus.watch needs a file corpus source")
		}
		w, err := watch.New(source, holder, func(ctx context.Context, path string) (*costmodel.Model, error) {
			m, err := wordsplit.BuildModel(ctx, path)
			if err == nil {
				cache.Put(source, m)
			}
			return m, err
		}, watch.WithBuildHook(met.ObserveBuild))
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(ctx) })
	}
	g.Go(func() error { return srv.Run(ctx, cfg.Server.Addr) })
	return g.Wait()
}

func isFileSource(source string) bool {
	return !strings.HasPrefix(source, "sqlite://") && !strings.HasPrefix(source, "embedded:")
}

func modelLen(m *costmodel.Model) int {
	if m == nil {
		return 0
	}
	return m.Len()
}
