package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"aora/backend"
	"aora/config"
	"aora/gateway"
	"aora/handlers"
	"aora/logger"
	"aora/storage"
	"aora/storage/inmemory"
	"aora/storage/mongostorage"
	"aora/storage/pgstorage"
	"aora/storage/redissession"
	"aora/storage/remote"
	"aora/users"
	"aora/workers"
)

func Start() error {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	switch cfg.AppMode {
	case config.ModeServer:
		return runAsServer(cfg)
	case config.ModeWorker:
		return runAsWorker(cfg)
	case config.ModeClient:
		return runAsClient(cfg)
	default:
		panic(fmt.Errorf("unexpected app mode: %s", cfg.AppMode))
	}
}

func runAsServer(cfg *config.Config) error {
	ctx := context.Background()
	log := logger.GetLogger("server")

	var purger backend.Purger
	if cfg.BrokerURL != "" {
		scheduler, err := workers.NewScheduler(cfg.BrokerURL, logger.GetLogger("scheduler"))
		if err != nil {
			panic(err)
		}
		purger = scheduler
	}

	service := buildService(ctx, cfg, purger)
	handler := handlers.NewHTTPHandler(service, logger.GetLogger("handlers"))

	server := &http.Server{
		Handler:      handler.Handler(cfg.CORSOrigins),
		Addr:         fmt.Sprintf("0.0.0.0:%d", cfg.ServerPort),
		WriteTimeout: 15 * time.Minute,
		ReadTimeout:  15 * time.Minute,
	}
	log.WithField("engine", cfg.DocumentEngine).Infof("Start serving at %s", server.Addr)
	return server.ListenAndServe()
}

func runAsWorker(cfg *config.Config) error {
	ctx := context.Background()

	scheduler, err := workers.NewScheduler(cfg.BrokerURL, logger.GetLogger("scheduler"))
	if err != nil {
		panic(err)
	}
	service := buildService(ctx, cfg, nil)

	executor := workers.NewFilesTasksExecutor(service, cfg.RequestTimeout)
	if err := scheduler.Register(executor); err != nil {
		panic(err)
	}
	return scheduler.Listen()
}

// runAsClient signs in against a running backend and prints the latest posts.
func runAsClient(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	log := logger.GetLogger("client")

	client := remote.NewClient(cfg.BackendEndpoint, cfg.BackendProject, &http.Client{Timeout: cfg.RequestTimeout})
	g := gateway.New(client, gateway.NewSession(),
		gateway.WithCollections(cfg.PostsCollection, cfg.MediaBucket),
		gateway.WithAssets(gateway.LocalFiles{}),
		gateway.WithLogger(log),
	)

	account, err := g.SignIn(ctx, cfg.ClientEmail, cfg.ClientPassword)
	if err != nil {
		return err
	}
	defer func() {
		if err := g.SignOut(context.Background()); err != nil {
			log.WithError(err).Warn("sign out failed")
		}
	}()
	log.WithField("account", account.ID).Infof("Signed in as %s", account.Username)

	posts, err := g.ListLatestPosts(ctx)
	if err != nil {
		return err
	}
	for _, post := range posts {
		log.WithFields(logrus.Fields{
			"post":    post.ID,
			"creator": post.Creator.Username,
		}).Info(post.Title)
	}
	return nil
}

func buildService(ctx context.Context, cfg *config.Config, purger backend.Purger) *backend.Service {
	log := logger.GetLogger("backend")
	if cfg.DocumentEngine == config.EngineMemory {
		return backend.NewInMemory(cfg.PublicURL, cfg.SessionSecret, cfg.SessionTTL, log)
	}

	db, err := mongostorage.Connect(ctx, cfg.MongoURL, cfg.MongoDBName)
	if err != nil {
		panic(err)
	}
	files := mongostorage.NewFileStorage(db, cfg.PublicURL)
	accounts := users.NewStorage(ctx, db)

	var documents storage.Documents
	switch cfg.DocumentEngine {
	case config.EnginePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			panic(fmt.Errorf("connect to postgres failed: %w", err))
		}
		repo, err := pgstorage.NewPostgresRepo(ctx, pool)
		if err != nil {
			panic(err)
		}
		documents = repo
	default:
		documents = mongostorage.NewStorage(ctx, db, map[string][]string{
			cfg.PostsCollection: {"creatorId", "title"},
		})
	}

	var sessions storage.SessionStore = inmemory.NewSessionStorage()
	if cfg.RedisURL != "" {
		client, err := redissession.Connect(ctx, cfg.RedisURL)
		if err != nil {
			panic(err)
		}
		sessions = redissession.NewSessionStorage(client, cfg.BackendProject)
	}

	manager := users.NewUsersManager(
		accounts,
		sessions,
		users.NewTokenIssuer(cfg.SessionSecret, nil),
		cfg.SessionTTL,
		cfg.PublicURL,
		users.WithLogger(logger.GetLogger("users")),
	)
	return backend.NewService(manager, documents, files, purger, log)
}

func main() {
	logger.GetLogger("main").Println(Start())
}
