package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"

	"fooddelivery/cmd"
	httpin "fooddelivery/internal/adapters/in/http"
	amqpout "fooddelivery/internal/adapters/out/amqp"
	"fooddelivery/internal/adapters/out/postgres/orderrepo"
	"fooddelivery/internal/adapters/out/sesmail"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/generated/servers"
	"fooddelivery/internal/notifiers/accounting"
	"fooddelivery/internal/notifiers/delivery"
	"fooddelivery/internal/notifiers/kitchen"
	"fooddelivery/internal/notifiers/notification"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	_ "github.com/lib/pq"
	"github.com/rabbitmq/amqp091-go"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustConnectDB(configs)
	mustMigrate(gormDB)

	app := cmd.NewCompositionRoot(
		configs,
		gormDB,
		createEmailSender(configs, logger),
		createEventRelay(configs, logger),
		logger,
	)

	if err := app.ReconciliationJob().Start(); err != nil {
		log.Fatalf("Error starting reconciliation job: %v", err)
	}
	defer app.ReconciliationJob().Stop()

	startWebServer(app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("No .env file loaded: %v", err)
	}
	return cmd.Config{
		HTTPPort:            os.Getenv("HTTP_PORT"),
		DBHost:              os.Getenv("DB_HOST"),
		DBPort:              os.Getenv("DB_PORT"),
		DBUser:              os.Getenv("DB_USER"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBName:              os.Getenv("DB_NAME"),
		DBSslMode:           os.Getenv("DB_SSLMODE"),
		RabbitMQURL:         os.Getenv("RABBITMQ_URL"),
		AWSRegion:           os.Getenv("AWS_REGION"),
		AWSAccessKeyID:      os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SESSenderAddress:    os.Getenv("SES_SENDER_ADDRESS"),
		CommissionRate:      os.Getenv("COMMISSION_RATE"),
		PrepEstimateMin:     os.Getenv("PREP_ESTIMATE_MIN"),
		DeliveryEstimateMin: os.Getenv("DELIVERY_ESTIMATE_MIN"),
	}
}

// mustConnectDB opens the connection through database/sql with the pq driver
// and hands the live connection to gorm.
func mustConnectDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Error opening database connection: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Error pinging database: %v", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error initializing gorm: %v", err)
	}
	return gormDB
}

func mustMigrate(gormDB *gorm.DB) {
	err := gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.ItemDTO{},
		&orderrepo.HistoryDTO{},
		&kitchen.TicketDTO{},
		&delivery.AssignmentDTO{},
		&accounting.EntryDTO{},
		&notification.MessageDTO{},
	)
	if err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
}

func createEmailSender(configs cmd.Config, logger *slog.Logger) notification.EmailSender {
	if configs.SESSenderAddress == "" {
		logger.Info("SES sender address not set, customer emails disabled")
		return nil
	}

	sender, err := sesmail.NewSender(context.Background(), sesmail.Config{
		Region:          configs.AWSRegion,
		AccessKeyID:     configs.AWSAccessKeyID,
		SecretAccessKey: configs.AWSSecretAccessKey,
		Sender:          configs.SESSenderAddress,
	})
	if err != nil {
		log.Fatalf("Error creating SES sender: %v", err)
	}
	return sender
}

func createEventRelay(configs cmd.Config, logger *slog.Logger) ports.EventSubscriber {
	if configs.RabbitMQURL == "" {
		logger.Info("RabbitMQ URL not set, event relay disabled")
		return nil
	}

	conn, err := amqp091.Dial(configs.RabbitMQURL)
	if err != nil {
		log.Fatalf("Error connecting to RabbitMQ: %v", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		log.Fatalf("Error opening RabbitMQ channel: %v", err)
	}
	forwarder, err := amqpout.NewForwarder(channel)
	if err != nil {
		log.Fatalf("Error declaring RabbitMQ exchange: %v", err)
	}
	return forwarder
}

func startWebServer(app cmd.CompositionRoot, port string) {
	e := echo.New()
	e.Validator = httpin.NewValidator()

	server := httpin.NewServer(
		app.CreateCreateOrderCommandHandler(),
		app.CreateChangeOrderStatusCommandHandler(),
		app.CreateCancelOrderCommandHandler(),
		app.CreateGetOrderQueryHandler(),
		app.CreateGetOrderHistoryQueryHandler(),
		app.CreateListOrdersQueryHandler(),
	)
	servers.RegisterHandlersWithBaseURL(e, server, "/api/v1")

	e.GET("/health", func(c echo.Context) error {
		return c.String(nethttp.StatusOK, "Healthy")
	})
	registerOpenAPIRoute(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}

// registerOpenAPIRoute serves the validated contract at /openapi.json. The
// route is skipped when the spec file is not shipped next to the binary.
func registerOpenAPIRoute(e *echo.Echo) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile("api/openapi.yml")
	if err != nil {
		log.Warnf("OpenAPI document not available: %v", err)
		return
	}
	if err := doc.Validate(loader.Context); err != nil {
		log.Fatalf("OpenAPI document is invalid: %v", err)
	}

	e.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(nethttp.StatusOK, doc)
	})
}
