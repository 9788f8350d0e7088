package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/chat-delivery/config"
	"github.com/xenn00/chat-delivery/internal/broadcast"
	"github.com/xenn00/chat-delivery/internal/counter"
	"github.com/xenn00/chat-delivery/internal/dispatch"
	"github.com/xenn00/chat-delivery/internal/lock"
	"github.com/xenn00/chat-delivery/internal/pipeline"
	"github.com/xenn00/chat-delivery/internal/preview"
	"github.com/xenn00/chat-delivery/internal/publisher"
	"github.com/xenn00/chat-delivery/internal/queue"
	chat_repo "github.com/xenn00/chat-delivery/internal/repo/chat"
	deadletter_repo "github.com/xenn00/chat-delivery/internal/repo/deadletter"
	dlq_repo "github.com/xenn00/chat-delivery/internal/repo/dlq"
	schedule_repo "github.com/xenn00/chat-delivery/internal/repo/schedule"
	"github.com/xenn00/chat-delivery/internal/routers"
	"github.com/xenn00/chat-delivery/internal/saga"
	"github.com/xenn00/chat-delivery/internal/scheduler"
	chat_service "github.com/xenn00/chat-delivery/internal/use-case/chat-case"
	"github.com/xenn00/chat-delivery/internal/websocket"
	"github.com/xenn00/chat-delivery/internal/worker"
	"github.com/xenn00/chat-delivery/state"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	conf := config.Conf

	instanceID := conf.App.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	log.Logger = log.With().Str("instance", instanceID).Logger()

	appState, err := state.InitAppState(ctx, stop)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer appState.Close()

	// stores
	chatRepo := chat_repo.NewChatRepo(appState, conf.DATABASE.Mongo.Database)
	if err := chatRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure message indexes")
	}
	dlqRepo := dlq_repo.NewDLQRepo(appState.Mongo, conf.DLQ)
	if err := dlqRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure dlq indexes")
	}
	deadLetters := deadletter_repo.NewDeadLetterRepo(appState.Mongo.Database(conf.DATABASE.Mongo.Database))
	schedules := schedule_repo.NewScheduleRepo(appState.DB)

	locker := lock.NewSQLLocker(appState.SQL, lock.Postgres)
	if err := locker.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure lock table")
	}

	// live sessions
	typing, err := websocket.NewTypingLimiter(conf.TYPING.Rate, conf.TYPING.Burst, conf.TYPING.TTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create typing limiter")
	}
	wsHub := websocket.NewHub(typing)
	broker := broadcast.NewBroker(wsHub, broadcast.NewRedisFailedStore(appState.Redis), conf.BROADCAST)
	wsHandler := websocket.NewWebSocketHandler(wsHub, websocket.JWTWebSocketAuth(appState.PublicKey), chatRepo, conf.WS.AllowedOrigins)
	log.Info().Msg("Websocket hub initialized")

	// send path
	tracker := counter.NewTracker(appState.Redis, chatRepo, chatRepo, queue.NewProducer(appState.Redis), conf.COUNTER)
	events := publisher.NewDualPublisher(
		publisher.NewStreamPath(appState.Redis, publisher.StreamConfig{
			Prefix: conf.STREAM.Prefix,
			Shards: conf.STREAM.Shards,
			MaxLen: conf.STREAM.MaxLen,
		}),
		publisher.NewLogPath(appState.Kafka),
	)

	chatService := chat_service.NewChatService(chat_service.Dependencies{
		Pipeline: pipeline.Dependencies{
			Rooms:       chatRepo,
			Messages:    chatRepo,
			Previews:    preview.NewFetcher(appState.Redis, conf.PIPELINE.PreviewTimeout, conf.PIPELINE.PreviewCacheTTL),
			Counter:     tracker,
			ReadStatus:  chatRepo,
			Publisher:   events,
			MaxPreviews: conf.PIPELINE.MaxPreviews,
		},
		Saga: saga.Config{
			StepTimeout: conf.PIPELINE.StepTimeout,
			DeadLetters: deadLetters,
		},
		Tracker:     tracker,
		Schedules:   schedules,
		Broadcaster: broker,
	})

	// background work
	alerts, err := worker.NewAlertThrottle(conf.WORKER.AlertWindow)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create alert throttle")
	}
	defer alerts.Close()

	workerPool := worker.NewWorkerPool(appState.Redis, conf.WORKER.Count, dlqRepo, conf.DLQ, alerts)
	workerPool.Register(queue.JobReadStatusIncrement, tracker.HandleReconcileJob)
	workerPool.Register(queue.JobReadStatusDecrement, tracker.HandleReconcileJob)
	workerPool.Register(queue.JobReadStatusReset, tracker.HandleReconcileJob)
	workerPool.Start(ctx)
	workerPool.StartDLQWorker(ctx)
	workerPool.StartDLQRetryConsumer(ctx)

	group := conf.STREAM.Group
	if group == "" {
		group = "chat-broadcast:" + instanceID
	}
	streams := worker.NewStreamConsumer(appState.Redis, broker, worker.StreamConsumerConfig{
		Keys:      publisher.StreamKeys(conf.STREAM.Prefix, conf.STREAM.Shards),
		Group:     group,
		Consumer:  instanceID,
		Workers:   conf.STREAM.Workers,
		Block:     conf.STREAM.Block,
		ClaimIdle: conf.STREAM.ClaimIdle,
	})
	if err := streams.EnsureGroups(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create stream consumer groups")
	}
	streams.Start(ctx)

	notifier := worker.NewLogConsumer(
		worker.NewKafkaReader(conf.KAFKA.Brokers, conf.KAFKA.Topic, worker.NotifyGroup(conf.KAFKA.NotifyGroup, instanceID)),
		appState.Redis, tracker, broker, instanceID,
	)
	notifier.Start(ctx)

	dispatcher := dispatch.NewDispatcher(locker, schedules, chatService, instanceID, conf.DISPATCH)
	jobs, err := scheduler.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := jobs.Every("scheduled-dispatch", conf.DISPATCH.Interval, func(ctx context.Context) error {
		_, err := dispatcher.Sweep(ctx)
		return err
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule dispatch")
	}
	if err := jobs.Every("counter-repopulate", conf.COUNTER.RepopulateInterval, func(ctx context.Context) error {
		_, err := tracker.Repopulate(ctx)
		return err
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule counter repopulate")
	}
	jobs.Start()

	server := &http.Server{
		Addr: conf.App.Port,
		Handler: routers.NewRouter(routers.Deps{
			PublicKey:   appState.PublicKey,
			Chat:        chatService,
			Hub:         wsHub,
			WS:          wsHandler,
			DLQ:         workerPool,
			DeadLetters: deadLetters,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("Starting server on http://localhost%s", conf.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("ListenAndServe failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown initiated...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := jobs.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}

	wsHub.Close()
	streams.Wait()
	notifier.Wait()
	workerPool.Wait()
	log.Info().Msg("Server exited gracefully.")
}
