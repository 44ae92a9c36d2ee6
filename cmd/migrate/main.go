package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"
	"luckyman-server/internal/config"
	"luckyman-server/pkg/db"
)

func main() {
	cfg := config.Instance().Database
	dbh := waitForDB(cfg.Driver, cfg.DSN)
	defer dbh.Close()

	if err := db.Migrate(dbh, cfg.Driver, cfg.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}

	logrus.Info("migrations complete")
}

func waitForDB(driver, dsn string) *sql.DB {
	timeout := time.NewTimer(time.Second * 10)
	for {
		select {
		case <-timeout.C:
			logrus.Fatal("could not connect to database")
		default:
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			dbh, err := db.Open(ctx, driver, dsn)
			cancel()
			if err == nil {
				return dbh
			}

			logrus.WithError(err).Debug("database is not ready")
			time.Sleep(time.Millisecond * 500)
		}
	}
}
