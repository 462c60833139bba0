// cmd/sacavia/main.go
// Command line client for the Sacavia mobile API

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/auth"
	"github.com/sacavia/sacavia-go/internal/categories"
	"github.com/sacavia/sacavia-go/internal/common/database"
	"github.com/sacavia/sacavia-go/internal/common/logger"
	"github.com/sacavia/sacavia-go/internal/config"
	"github.com/sacavia/sacavia-go/internal/events"
	"github.com/sacavia/sacavia-go/internal/locations"
	"github.com/sacavia/sacavia-go/internal/media"
	"github.com/sacavia/sacavia-go/internal/metrics"
	"github.com/sacavia/sacavia-go/internal/optimistic"
	"github.com/sacavia/sacavia-go/internal/planner"
	"github.com/sacavia/sacavia-go/internal/posts"
	"github.com/sacavia/sacavia-go/internal/profile"
	"github.com/sacavia/sacavia-go/internal/reports"
	"github.com/sacavia/sacavia-go/internal/session"
	"go.uber.org/zap"
)

const sessionKey = "cli"

// app holds every wired service a command may need.
type app struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	registry *prometheus.Registry
	session  *session.Session
	source   media.Source

	auth       *auth.Service
	profile    *profile.Service
	posts      *posts.Service
	locations  *locations.Service
	media      *media.Service
	categories *categories.Service
	events     *events.Service
	reports    *reports.Service
	planner    *planner.Service
	reconciler *optimistic.Reconciler
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// 1. Load environment variables
	envErr := godotenv.Load()

	// 2. Load and validate configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	if envErr != nil {
		log.Debugw("no .env file found, using environment variables", "error", envErr)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalw("configuration validation failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire services
	a, cleanup, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize", "error", err)
	}
	defer cleanup()

	// 4. Run the command
	cmd, ok := commands[os.Args[1]]
	if !ok {
		usage()
		os.Exit(2)
	}
	runErr := cmd.run(ctx, a, os.Args[2:])
	a.reportMetrics()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", apiclient.MessageOf(runErr))
		log.Debugw("command failed", "command", os.Args[1], "kind", apiclient.KindOf(runErr), "error", runErr)
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*app, func(), error) {
	a := &app{cfg: cfg, log: log}
	cleanup := func() {}

	// Metrics
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		a.registry = prometheus.NewRegistry()
		var err error
		if m, err = metrics.New(a.registry); err != nil {
			return nil, cleanup, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	// Session persistence
	var store session.Store = session.NewMemoryStore()
	if cfg.SessionStore == "redis" {
		rdb, err := database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { rdb.Close() }
		store = session.NewRedisStore(rdb, cfg.SessionKeyPrefix)
		log.Debugw("using redis session store", "prefix", cfg.SessionKeyPrefix)
	}
	a.session = session.New(store, sessionKey, log)
	if err := a.session.Restore(ctx); err != nil {
		log.Warnw("failed to restore session", "error", err)
	}
	if token := os.Getenv("SACAVIA_TOKEN"); token != "" && !a.session.Authenticated() {
		if err := a.session.SetToken(ctx, token); err != nil {
			log.Warnw("failed to store token from environment", "error", err)
		}
	}

	// Transport
	client, err := apiclient.NewFromConfig(cfg, a.session, log, m)
	if err != nil {
		return nil, cleanup, err
	}

	// Media sources: local files always, s3:// when AWS credentials resolve
	resolver := media.Resolver{Files: media.FileSource{}}
	if s3src, err := media.NewS3SourceForRegion(cfg.MediaS3Region); err == nil {
		resolver.S3 = s3src
	} else {
		log.Debugw("s3 media source disabled", "error", err)
	}
	a.source = resolver

	a.reconciler = optimistic.NewReconciler(log, m)
	a.auth = auth.NewService(client, a.session, log)
	a.profile = profile.NewService(client, a.session, log)
	a.posts = posts.NewService(client, a.reconciler, log)
	a.locations = locations.NewService(client, a.reconciler, log)
	a.media = media.NewService(client, resolver, log)
	a.categories = categories.NewService(client)
	a.events = events.NewService(client)
	a.reports = reports.NewService(client)
	a.planner = planner.NewService(client)

	return a, cleanup, nil
}

// reportMetrics logs the collected series when metrics are enabled.
func (a *app) reportMetrics() {
	if a.registry == nil {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		a.log.Warnw("failed to gather metrics", "error", err)
		return
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			sort.Strings(labels)
			switch {
			case m.GetCounter() != nil:
				a.log.Infow("metric", "name", f.GetName(), "labels", labels, "value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				a.log.Infow("metric", "name", f.GetName(), "labels", labels,
					"count", m.GetHistogram().GetSampleCount(), "sum", m.GetHistogram().GetSampleSum())
			}
		}
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sacavia <command> [flags]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", name, commands[name].help)
	}
}
