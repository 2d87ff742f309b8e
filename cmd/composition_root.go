package cmd

import (
	"log/slog"
	"net/http"
	"os"

	"storefront/internal/adapters/out/gateway"
	"storefront/internal/adapters/out/geo"
	"storefront/internal/adapters/out/identity"
	"storefront/internal/adapters/out/kafka"
	"storefront/internal/adapters/out/postgres"
	storeredis "storefront/internal/adapters/out/redis"
	"storefront/internal/adapters/out/transport"
	"storefront/internal/core/application/notify"
	"storefront/internal/core/application/usecases/cartops"
	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/application/usecases/queries"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/services"
	"storefront/internal/core/ports"
	"storefront/internal/jobs"

	"github.com/labstack/gommon/log"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters into the application layer. Everything the
// handlers share (unit of work factory, session store, dispatcher, publisher)
// is built once here.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	logger       *slog.Logger
	sessionStore *storeredis.SessionStore
	publisher    *kafka.TransitionPublisher
	identity     *identity.Client
	gateway      *gateway.Client
	geofence     *services.GeofenceResolver
	dispatcher   *notify.Dispatcher
	recovery     *notify.RecoveryService
}

// NewCompositionRoot builds the object graph from configuration.
func NewCompositionRoot(config Config, gormDB *gorm.DB, redisClient *goredis.Client) CompositionRoot {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	uowFactory := postgres.NewGormUnitOfWorkFactory(gormDB)

	zone, err := services.NewBoundingBox(
		config.ZoneMinLatitude,
		config.ZoneMaxLatitude,
		config.ZoneMinLongitude,
		config.ZoneMaxLongitude,
	)
	if err != nil {
		log.Fatalf("Invalid delivery zone configuration: %v", err)
	}

	geocoder := geo.NewClient(config.GeocoderBaseURL, nil)
	geofence := services.NewGeofenceResolver(zone, geocoder, services.DefaultGeocodeTimeout, logger)

	senders := map[notification.Channel]ports.MessageSender{
		notification.ChannelEmail: transport.NewEmailSender(config.EmailProviderURL, config.EmailProviderAPIKey, nil),
		notification.ChannelSMS:   transport.NewSMSSender(config.SMSProviderURL, config.SMSProviderAPIKey, nil),
		notification.ChannelChat:  transport.NewChatSender(config.ChatProviderURL, config.ChatProviderAPIKey, nil),
	}

	root := CompositionRoot{
		gormDB:       gormDB,
		uowFactory:   *uowFactory,
		logger:       logger,
		sessionStore: storeredis.NewSessionStore(redisClient, storeredis.DefaultTTL),
		publisher:    kafka.NewTransitionPublisher(config.KafkaTransitionTopic, config.KafkaHost),
		identity:     identity.NewClient(config.IdentityBaseURL, config.IdentityAPIKey, nil),
		gateway:      gateway.NewClient(config.GatewayBaseURL, config.GatewayAPIKey, config.GatewayCallbackURL, &http.Client{}),
		geofence:     geofence,
	}

	root.dispatcher = notify.NewDispatcher(
		FuncRecordUoWFactory(func() notify.RecordUoW { return uowFactory.Create() }),
		senders,
		notify.DefaultSendTimeout,
		logger,
	)

	root.recovery = notify.NewRecoveryService(
		FuncNotifyCartUoWFactory(func() notify.CartUoW { return uowFactory.Create() }),
		root.sessionStore,
		root.identity,
		root.dispatcher,
		notify.DefaultAbandonAfter,
		config.CartIncentiveCode,
		logger,
	)

	return root
}

// Dispatcher returns the shared notification dispatcher, exposed so shutdown
// can wait for in-flight sends.
func (c *CompositionRoot) Dispatcher() *notify.Dispatcher {
	return c.dispatcher
}

// Geofence returns the shared geofence resolver.
func (c *CompositionRoot) Geofence() *services.GeofenceResolver {
	return c.geofence
}

// Identity returns the identity service client.
func (c *CompositionRoot) Identity() ports.IdentityProvider {
	return c.identity
}

// ClosePublisher flushes the kafka writer on shutdown.
func (c *CompositionRoot) ClosePublisher() error {
	return c.publisher.Close()
}

func (c *CompositionRoot) CreateCartService() *cartops.Service {
	var f cartops.CartUoWFactory = FuncCartopsUoWFactory(func() cartops.CartUoW {
		return c.uowFactory.Create()
	})
	return cartops.NewService(c.sessionStore, f, c.logger)
}

func (c *CompositionRoot) CreateCheckoutCommandHandler() commands.CheckoutCommandHandler {
	var f commands.CheckoutUoWFactory = FuncCheckoutUoWFactory(func() commands.CheckoutUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCheckoutCommandHandler(
		f,
		services.NewOrderFactory(c.geofence),
		c.gateway,
		c.sessionStore,
		c.dispatcher,
		c.publisher,
		c.logger,
	)
}

func (c *CompositionRoot) CreatePaymentCallbackCommandHandler() commands.PaymentCallbackCommandHandler {
	var f commands.CallbackUoWFactory = FuncCallbackUoWFactory(func() commands.CallbackUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPaymentCallbackCommandHandler(
		f, c.sessionStore, c.identity, c.dispatcher, c.publisher, c.logger,
	)
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	return commands.NewUpdateOrderStatusCommandHandler(
		c.fulfillmentUoWFactory(), c.identity, c.dispatcher, c.publisher, c.logger,
	)
}

func (c *CompositionRoot) CreateShipOrderCommandHandler() commands.ShipOrderCommandHandler {
	return commands.NewShipOrderCommandHandler(
		c.fulfillmentUoWFactory(), c.identity, c.dispatcher, c.publisher, c.logger,
	)
}

func (c *CompositionRoot) CreateRefundOrderCommandHandler() commands.RefundOrderCommandHandler {
	return commands.NewRefundOrderCommandHandler(c.fulfillmentUoWFactory(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateConfirmDeliveryCommandHandler() commands.ConfirmDeliveryCommandHandler {
	return commands.NewConfirmDeliveryCommandHandler(
		c.fulfillmentUoWFactory(), c.identity, c.dispatcher, c.publisher, c.logger,
	)
}

func (c *CompositionRoot) CreateResendNotificationCommandHandler() commands.ResendNotificationCommandHandler {
	return commands.NewResendNotificationCommandHandler(c.notificationUoWFactory(), c.dispatcher, c.logger)
}

func (c *CompositionRoot) CreateConfirmNotificationCommandHandler() commands.ConfirmNotificationCommandHandler {
	return commands.NewConfirmNotificationCommandHandler(c.notificationUoWFactory())
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetNotificationsQueryHandler() queries.GetNotificationsQueryHandler {
	return queries.NewGetNotificationsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.recovery, c.logger)
}

func (c *CompositionRoot) fulfillmentUoWFactory() commands.FulfillmentUoWFactory {
	return FuncFulfillmentUoWFactory(func() commands.FulfillmentUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) notificationUoWFactory() commands.NotificationUoWFactory {
	return FuncNotificationUoWFactory(func() commands.NotificationUoW {
		return c.uowFactory.Create()
	})
}

type FuncCheckoutUoWFactory func() commands.CheckoutUoW

func (f FuncCheckoutUoWFactory) Create() commands.CheckoutUoW {
	return f()
}

type FuncCallbackUoWFactory func() commands.CallbackUoW

func (f FuncCallbackUoWFactory) Create() commands.CallbackUoW {
	return f()
}

type FuncFulfillmentUoWFactory func() commands.FulfillmentUoW

func (f FuncFulfillmentUoWFactory) Create() commands.FulfillmentUoW {
	return f()
}

type FuncNotificationUoWFactory func() commands.NotificationUoW

func (f FuncNotificationUoWFactory) Create() commands.NotificationUoW {
	return f()
}

type FuncRecordUoWFactory func() notify.RecordUoW

func (f FuncRecordUoWFactory) Create() notify.RecordUoW {
	return f()
}

type FuncNotifyCartUoWFactory func() notify.CartUoW

func (f FuncNotifyCartUoWFactory) Create() notify.CartUoW {
	return f()
}

type FuncCartopsUoWFactory func() cartops.CartUoW

func (f FuncCartopsUoWFactory) Create() cartops.CartUoW {
	return f()
}
