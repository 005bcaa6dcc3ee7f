package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lumenwiki/platform/modules/document/infrastructure/markup"
	docpersistence "github.com/lumenwiki/platform/modules/document/infrastructure/persistence"
	docservices "github.com/lumenwiki/platform/modules/document/services"
	esdomain "github.com/lumenwiki/platform/modules/eventstream/domain"
	espersistence "github.com/lumenwiki/platform/modules/eventstream/infrastructure/persistence"
	esservices "github.com/lumenwiki/platform/modules/eventstream/services"
	mentionsqueue "github.com/lumenwiki/platform/modules/mentions/infrastructure/queue"
	mentionsservices "github.com/lumenwiki/platform/modules/mentions/services"
	"github.com/lumenwiki/platform/pkg/configuration"
	"github.com/lumenwiki/platform/pkg/eventbus"
	"github.com/lumenwiki/platform/pkg/metrics"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Event processing core: async event store and mentions pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	return cmd
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	conf := configuration.Use()
	logger := conf.Logger()
	entry := logrus.NewEntry(logger)

	bus := eventbus.NewEventPublisher(logger)

	backend, pool, err := newBackend(ctx, conf)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	store, err := esservices.NewAsyncEventStore(backend, bus, esservices.Options{
		QueueSize:  conf.EventStore.QueueSize,
		NotifyEach: conf.EventStore.NotifyEach,
		NotifyAll:  conf.EventStore.NotifyAll,
		Logger:     entry,
	})
	if err != nil {
		return err
	}
	defer store.Dispose()

	revisions := docpersistence.NewMemoryRevisions()
	consumer, err := mentionsservices.NewDataConsumer(
		revisions,
		markup.NewParser(),
		docservices.NewUserResolver(),
		bus,
		entry,
	)
	if err != nil {
		return err
	}

	jobQueue, err := newMentionsQueue(conf)
	if err != nil {
		return err
	}

	executor, err := mentionsservices.NewMentionsEventExecutor(jobQueue, consumer, mentionsservices.ExecutorOptions{
		PoolSize:    conf.Mentions.PoolSize,
		PollTimeout: conf.Mentions.PollTimeout,
		Logger:      entry,
	})
	if err != nil {
		return err
	}
	defer executor.Dispose()

	unsubscribe := mentionsservices.RegisterDocumentListeners(bus, executor, entry)
	defer unsubscribe()

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)
	router.HandleFunc("/debug/mentions/queue", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "%d\n", executor.QueueSize())
	}).Methods(http.MethodGet)
	if conf.Prometheus.Enabled {
		metrics.NewPrometheusController(conf.Prometheus.Path).Register(router)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func newBackend(ctx context.Context, conf *configuration.Configuration) (esdomain.Backend, *pgxpool.Pool, error) {
	if conf.EventStore.Backend != "postgres" {
		return espersistence.NewMemoryBackend(), nil, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(connectCtx, conf.Database.ConnectionString())
	if err != nil {
		return nil, nil, err
	}
	backend, err := espersistence.NewPgBackend(pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return backend, pool, nil
}

func newMentionsQueue(conf *configuration.Configuration) (mentionsqueue.BlockingQueue, error) {
	if conf.Mentions.Queue != "redis" {
		return mentionsqueue.NewMemoryQueue(conf.Mentions.QueueSize), nil
	}
	client := redis.NewClient(&redis.Options{Addr: conf.Mentions.RedisURL})
	return mentionsqueue.NewRedisQueue(client, "")
}
