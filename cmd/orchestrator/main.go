package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	db "github.com/ERRORIK404/Session_Calculator/database"
	orchestrator "github.com/ERRORIK404/Session_Calculator/internal/orchestrator_application"
	conf "github.com/ERRORIK404/Session_Calculator/pkg/config"
)

func setupLogging(config *conf.Config) {
	level, err := log.ParseLevel(config.LOG_LEVEL)
	if err != nil {
		log.Warnf("unknown log level %q, using info", config.LOG_LEVEL)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if config.LOG_FORMAT == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)
}

func main() {
	envFile := flag.String("env", ".env", "path to .env file")
	flag.Parse()

	config, err := conf.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	setupLogging(config)

	database, err := db.InitDB(config.DB_PATH)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := orchestrator.New(config, database)
	if n, err := o.PurgeSessions(ctx); err != nil {
		log.WithError(err).Warn("failed to purge expired sessions")
	} else if n > 0 {
		log.Infof("purged %d expired sessions", n)
	}

	if err := o.RunServer(ctx); err != nil {
		log.Errorf("orchestrator stopped: %v", err)
		return
	}
	log.Info("orchestrator stopped")
}
