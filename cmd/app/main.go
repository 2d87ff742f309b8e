package main

import (
	"fmt"
	"os"

	"storefront/cmd"
	storehttp "storefront/internal/adapters/in/http"
	"storefront/internal/adapters/out/postgres/cartrepo"
	"storefront/internal/adapters/out/postgres/notificationrepo"
	"storefront/internal/adapters/out/postgres/orderrepo"
	"storefront/internal/adapters/out/postgres/paymentrepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	goredis "github.com/redis/go-redis/v9"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()

	gormDB := openDatabase(configs)
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     configs.RedisAddr,
		Password: configs.RedisPassword,
	})

	app := cmd.NewCompositionRoot(configs, gormDB, redisClient)
	defer func() {
		_ = app.ClosePublisher()
	}()

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}
	defer jobManager.StopAll()
	defer app.Dispatcher().Wait()

	startWebServer(&app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	return cmd.Config{
		HTTPPort:   goDotEnvVariable("HTTP_PORT"),
		DBHost:     goDotEnvVariable("DB_HOST"),
		DBPort:     goDotEnvVariable("DB_PORT"),
		DBUser:     goDotEnvVariable("DB_USER"),
		DBPassword: goDotEnvVariable("DB_PASSWORD"),
		DBName:     goDotEnvVariable("DB_NAME"),
		DBSslMode:  goDotEnvVariable("DB_SSLMODE"),

		RedisAddr:     goDotEnvVariable("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaHost:            goDotEnvVariable("KAFKA_HOST"),
		KafkaTransitionTopic: goDotEnvVariable("KAFKA_TRANSITION_TOPIC"),

		GatewayBaseURL:     goDotEnvVariable("PAYMENT_GATEWAY_URL"),
		GatewayAPIKey:      goDotEnvVariable("PAYMENT_GATEWAY_API_KEY"),
		GatewayCallbackURL: goDotEnvVariable("PAYMENT_CALLBACK_URL"),

		IdentityBaseURL: goDotEnvVariable("IDENTITY_SERVICE_URL"),
		IdentityAPIKey:  goDotEnvVariable("IDENTITY_SERVICE_API_KEY"),

		GeocoderBaseURL: goDotEnvVariable("GEOCODER_URL"),

		EmailProviderURL:    goDotEnvVariable("EMAIL_PROVIDER_URL"),
		EmailProviderAPIKey: goDotEnvVariable("EMAIL_PROVIDER_API_KEY"),
		SMSProviderURL:      goDotEnvVariable("SMS_PROVIDER_URL"),
		SMSProviderAPIKey:   goDotEnvVariable("SMS_PROVIDER_API_KEY"),
		ChatProviderURL:     goDotEnvVariable("CHAT_PROVIDER_URL"),
		ChatProviderAPIKey:  goDotEnvVariable("CHAT_PROVIDER_API_KEY"),

		ZoneMinLatitude:  envFloat("ZONE_MIN_LATITUDE"),
		ZoneMaxLatitude:  envFloat("ZONE_MAX_LATITUDE"),
		ZoneMinLongitude: envFloat("ZONE_MIN_LONGITUDE"),
		ZoneMaxLongitude: envFloat("ZONE_MAX_LONGITUDE"),

		CartIncentiveCode: goDotEnvVariable("CART_INCENTIVE_CODE"),
	}
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}

	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Missing required environment variable %s", key)
	}
	return value
}

func envFloat(key string) float64 {
	var value float64
	if _, err := fmt.Sscanf(goDotEnvVariable(key), "%f", &value); err != nil {
		log.Fatalf("Environment variable %s must be a number: %v", key, err)
	}
	return value
}

func openDatabase(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode,
	)

	gormDB, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.LineItemDTO{},
		&paymentrepo.PaymentDTO{},
		&notificationrepo.NotificationDTO{},
		&cartrepo.CartDTO{},
		&cartrepo.EntryDTO{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	return gormDB
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()

	server := storehttp.NewServer(
		app.CreateCartService(),
		app.Geofence(),
		app.Identity(),
		app.CreateCheckoutCommandHandler(),
		app.CreatePaymentCallbackCommandHandler(),
		app.CreateUpdateOrderStatusCommandHandler(),
		app.CreateShipOrderCommandHandler(),
		app.CreateRefundOrderCommandHandler(),
		app.CreateConfirmDeliveryCommandHandler(),
		app.CreateResendNotificationCommandHandler(),
		app.CreateConfirmNotificationCommandHandler(),
		app.CreateGetOrderQueryHandler(),
		app.CreateGetNotificationsQueryHandler(),
	)
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
