package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"blockdelivery/cmd"
	apihttp "blockdelivery/internal/adapters/in/http"
	"blockdelivery/internal/adapters/out/natsstan"
	"blockdelivery/internal/adapters/out/postgres/counterrepo"
	"blockdelivery/internal/adapters/out/postgres/orderrepo"
	"blockdelivery/internal/core/ports"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustOpenDB(configs)

	var feedPublisher ports.EventPublisher
	if configs.NatsURL != "" {
		sc, err := natsstan.Connect(configs.StanClusterID, configs.StanClientID, configs.NatsURL)
		if err != nil {
			log.Fatalf("Error connecting to NATS Streaming: %v", err)
		}
		defer sc.Close()
		feedPublisher = natsstan.NewPublisher(sc, configs.EventSubject)
	}

	app := cmd.NewCompositionRoot(configs, gormDB, feedPublisher, logger)
	defer app.Broker().Close()

	synchronizer := app.CreateSynchronizer()
	if err := synchronizer.Start(context.Background()); err != nil {
		log.Fatalf("Error starting projection synchronizer: %v", err)
	}

	jobManager := app.CreateJobManager(synchronizer)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(&app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:         goDotEnvVariable("HTTP_PORT"),
		DBHost:           goDotEnvVariable("DB_HOST"),
		DBPort:           goDotEnvVariable("DB_PORT"),
		DBUser:           goDotEnvVariable("DB_USER"),
		DBPassword:       goDotEnvVariable("DB_PASSWORD"),
		DBName:           goDotEnvVariable("DB_NAME"),
		DBSslMode:        goDotEnvVariable("DB_SSLMODE"),
		NatsURL:          goDotEnvVariable("NATS_URL"),
		StanClusterID:    goDotEnvVariable("STAN_CLUSTER_ID"),
		StanClientID:     goDotEnvVariable("STAN_CLIENT_ID"),
		EventSubject:     goDotEnvVariable("EVENT_SUBJECT"),
		IssuanceAttempts: goDotEnvVariable("ISSUANCE_ATTEMPTS"),
		ResyncSchedule:   goDotEnvVariable("RESYNC_SCHEDULE"),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func mustOpenDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode,
	)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	if err := gormDB.AutoMigrate(&orderrepo.OrderDTO{}, &counterrepo.RegistryDTO{}); err != nil {
		log.Fatalf("Error migrating database schema: %v", err)
	}

	return gormDB
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()

	server := apihttp.NewServer(
		app.CreateCreateOrderCommandHandler(),
		app.CreateAcceptOrderCommandHandler(),
		app.CreateCompleteOrderCommandHandler(),
		app.CreateGetOrderQueryHandler(),
		app.CreateGetUncompletedOrdersQueryHandler(),
	)
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
