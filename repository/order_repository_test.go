package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/Rohit1034/HrudaySparshi/models"
	"github.com/Rohit1034/HrudaySparshi/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

var orderColumns = []string{
	"id", "user_id", "customer_name", "customer_email", "customer_phone", "delivery_address",
	"items", "total_amount", "status", "payment_mode", "created_at", "updated_at",
}

func TestOrderCreate_SingleInsert(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	order := &models.Order{
		ID:           uuid.New(),
		UserID:       "user-1",
		CustomerName: "Asha",
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Chakli", Quantity: 2, Price: 100},
		},
		TotalAmount: 200,
		Status:      models.StatusRequested,
		PaymentMode: models.PaymentModeOffline,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), order))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderFindByID(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows(orderColumns).AddRow(
		id.String(), "user-1", "Asha", "asha@example.com", "+91 98765 43210", "Pune",
		`[{"productId":"p1","name":"Chakli","quantity":2,"price":100}]`,
		200.0, "REQUESTED", "OFFLINE", now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE id = $1`)).
		WillReturnRows(rows)

	order, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, order.ID)
	assert.Equal(t, models.StatusRequested, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestOrderFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(orderColumns))

	order, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, order)
}

func TestOrderFindByUserID_NewestFirst(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	now := time.Now()
	rows := sqlmock.NewRows(orderColumns).
		AddRow(uuid.New().String(), "user-1", "", "", "", "", `[]`, 10.0, "PENDING", "OFFLINE", now, now).
		AddRow(uuid.New().String(), "user-1", "", "", "", "", `[]`, 20.0, "REQUESTED", "OFFLINE", now.Add(-time.Hour), now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE user_id = $1 ORDER BY created_at DESC`)).
		WithArgs("user-1").
		WillReturnRows(rows)

	orders, err := repo.FindByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.True(t, orders[0].CreatedAt.After(orders[1].CreatedAt))
}

func TestOrderFindByStatus(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE status = $1 ORDER BY created_at ASC`)).
		WithArgs("PENDING").
		WillReturnRows(sqlmock.NewRows(orderColumns))

	orders, err := repo.FindByStatus(context.Background(), models.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NotNil(t, orders)
}

func TestOrderUpdateStatus(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), uuid.New(), models.StatusRequested, models.StatusPending, time.Now())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateStatus_Conflict(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), uuid.New(), models.StatusPending, models.StatusCompleted, time.Now())
	assert.ErrorIs(t, err, repository.ErrStatusConflict)
}

func TestOrderStatusSummary(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	rows := sqlmock.NewRows([]string{"status", "count", "revenue"}).
		AddRow("REQUESTED", 2, 350.0).
		AddRow("COMPLETED", 1, 250.0)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, COUNT(*) AS count`)).
		WillReturnRows(rows)

	summary, err := repo.StatusSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, models.StatusRequested, summary[0].Status)
	assert.Equal(t, int64(2), summary[0].Count)
	assert.InDelta(t, 250.0, summary[1].Revenue, 1e-9)
}
