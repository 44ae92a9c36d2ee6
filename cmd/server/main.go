package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"luckyman-server/internal/config"
	"luckyman-server/internal/jwt"
	"luckyman-server/internal/mux"
	"luckyman-server/internal/rng"
	"luckyman-server/pkg/db"
	"luckyman-server/pkg/model"
	"luckyman-server/pkg/playable/luckyman"
	"luckyman-server/pkg/room"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", "", "the listen address, overrides the configuration")

func main() {
	flag.Parse()
	setupLogger()

	// fail fast
	if err := jwt.LoadKeys(); err != nil {
		logrus.WithError(err).Fatal("could not load keys")
	}

	cfg := config.Instance()
	opts := roomOptions(cfg)
	if err := opts.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid game configuration")
	}

	// run the db migrations
	dbh := db.Instance()
	if err := db.Migrate(dbh, cfg.Database.Driver, cfg.Database.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}

	store := model.NewStore(dbh)
	pitBoss := room.NewPitBoss(logrus.StandardLogger(), store, opts)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet},
	})

	listenAddr := cfg.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, pitBoss, store))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		logrus.Info("shutting down")
		pitBoss.EndShift()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logrus.WithField("addr", srv.Addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func roomOptions(cfg config.Config) room.Options {
	game := luckyman.DefaultOptions()
	game.HandSize = cfg.Game.HandSize
	game.TurnTimeout = cfg.Game.TurnTimeout
	game.BaseBonus = cfg.Game.BaseBonus
	game.Multiplier = cfg.Game.Multiplier
	game.HouseFeePercent = cfg.Game.HouseFeePercent

	opts := room.DefaultOptions()
	opts.Game = game
	opts.MaxSeats = cfg.Game.MaxSeats
	opts.StartingBounty = cfg.Game.StartingBounty
	opts.StoreTimeout = cfg.Game.StoreTimeout
	opts.Generator = rng.Crypto{}

	return opts
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
