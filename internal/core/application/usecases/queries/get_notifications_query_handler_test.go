package queries_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/adapters/out/postgres"
	"storefront/internal/adapters/out/postgres/notificationrepo"
	"storefront/internal/core/application/usecases/queries"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type GetNotificationsQueryHandlerTestSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetNotificationsQueryHandler
}

func (suite *GetNotificationsQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&notificationrepo.NotificationDTO{}))

	suite.handler = queries.NewGetNotificationsQueryHandler(db)
}

func (suite *GetNotificationsQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE notifications").Error)
}

func (suite *GetNotificationsQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetNotificationsQueryHandlerTestSuite) TestHandle_NoFilters_ReturnsAllRecordsNewestFirst() {
	ctx := context.Background()

	orderID := kernel.NewUUID()
	older := suite.seedRecord(ctx, &orderID, notification.OrderConfirmation, time.Now().Add(-time.Hour))
	newer := suite.seedRecord(ctx, &orderID, notification.PaymentReceived, time.Now())

	query, err := queries.NewGetNotificationsQuery(nil, nil)
	suite.Require().NoError(err)

	records, err := suite.handler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.Require().Len(records, 2)
	suite.True(newer.ID().IsEqual(records[0].ID))
	suite.True(older.ID().IsEqual(records[1].ID))
	suite.Require().NotNil(records[0].OrderID)
	suite.True(orderID.IsEqual(*records[0].OrderID))
}

func (suite *GetNotificationsQueryHandlerTestSuite) TestHandle_WithFilters_NarrowsResult() {
	ctx := context.Background()

	firstOrderID := kernel.NewUUID()
	secondOrderID := kernel.NewUUID()
	suite.seedRecord(ctx, &firstOrderID, notification.OrderConfirmation, time.Now().Add(-time.Minute))
	matching := suite.seedRecord(ctx, &secondOrderID, notification.OrderShipped, time.Now())

	suite.Run("should filter by order", func() {
		query, err := queries.NewGetNotificationsQuery(&secondOrderID, nil)
		suite.Require().NoError(err)

		records, err := suite.handler.Handle(ctx, query)
		suite.Require().NoError(err)
		suite.Require().Len(records, 1)
		suite.True(matching.ID().IsEqual(records[0].ID))
	})

	suite.Run("should filter by status", func() {
		status := notification.StatusSent
		query, err := queries.NewGetNotificationsQuery(nil, &status)
		suite.Require().NoError(err)

		records, err := suite.handler.Handle(ctx, query)
		suite.Require().NoError(err)
		suite.Empty(records)
	})
}

// seedRecord persists a pending notification record with a controlled
// creation time.
func (suite *GetNotificationsQueryHandlerTestSuite) seedRecord(
	ctx context.Context,
	orderID *kernel.UUID,
	eventType notification.EventType,
	createdAt time.Time,
) *notification.Record {
	record, err := notification.RestoreRecord(
		kernel.NewUUID(),
		orderID,
		eventType,
		notification.ChannelEmail,
		"jo@example.com",
		"Your order",
		"Thanks for your order.",
		notification.StatusPending,
		0,
		nil,
		nil,
		createdAt.UTC(),
		createdAt.UTC(),
	)
	suite.Require().NoError(err)

	uow := postgres.NewGormUnitOfWorkFactory(suite.db).Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.NotificationRepository().Add(ctx, record))
	suite.Require().NoError(uow.Commit(ctx))

	return record
}

func TestGetNotificationsQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetNotificationsQueryHandlerTestSuite))
}
