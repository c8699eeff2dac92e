package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/danbahadur2060/event/internal/models"
	"github.com/danbahadur2060/event/internal/order/db"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	if err := bunDB.ResetModel(context.Background(), (*models.Order)(nil), (*models.OrderItem)(nil)); err != nil {
		t.Fatalf("reset models: %v", err)
	}
	return &db.DB{Bun: bunDB}
}

func sampleOrder(id, sessionID string) *models.Order {
	return &models.Order{
		ID:              id,
		EventID:         "evt-1",
		Email:           "buyer@example.com",
		Currency:        "USD",
		TotalAmount:     9000,
		Status:          models.OrderPending,
		StripeSessionID: sessionID,
		CreatedAt:       time.Now(),
		Items: []models.OrderItem{
			{ID: id + "-i1", OrderID: id, TicketTypeID: "tt-1", Quantity: 2, UnitAmount: 5000},
		},
	}
}

func TestCreateOrderPersistsItems(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	if err := d.CreateOrder(ctx, sampleOrder("o-1", "cs_1")); err != nil {
		t.Fatalf("create order: %v", err)
	}

	got, err := d.GetOrderByID(ctx, "o-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got == nil {
		t.Fatal("expected order, got nil")
	}
	if len(got.Items) != 1 || got.Items[0].TicketTypeID != "tt-1" || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
}

func TestGetOrderBySessionID(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	if err := d.CreateOrder(ctx, sampleOrder("o-1", "cs_abc")); err != nil {
		t.Fatalf("create order: %v", err)
	}

	got, err := d.GetOrderBySessionID(ctx, "cs_abc")
	if err != nil {
		t.Fatalf("get by session: %v", err)
	}
	if got == nil || got.ID != "o-1" {
		t.Fatalf("unexpected order: %+v", got)
	}

	missing, err := d.GetOrderBySessionID(ctx, "cs_ghost")
	if err != nil {
		t.Fatalf("get missing session: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown session, got %+v", missing)
	}
}

func TestGetOrderByPaymentIntentID(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	if err := d.CreateOrder(ctx, sampleOrder("o-1", "cs_1")); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := d.SetPaymentDetails(ctx, "o-1", "pi_42", "https://invoice"); err != nil {
		t.Fatalf("set payment details: %v", err)
	}

	got, err := d.GetOrderByPaymentIntentID(ctx, "pi_42")
	if err != nil {
		t.Fatalf("get by payment intent: %v", err)
	}
	if got == nil || got.ID != "o-1" || got.InvoiceURL != "https://invoice" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	if err := d.CreateOrder(ctx, sampleOrder("o-1", "cs_1")); err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := d.UpdateOrderStatus(ctx, "o-1", models.OrderPaid); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, err := d.GetOrderByID(ctx, "o-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != models.OrderPaid {
		t.Fatalf("expected paid, got %s", got.Status)
	}

	if err := d.UpdateOrderStatus(ctx, "missing", models.OrderPaid); err == nil {
		t.Fatal("expected error for unknown order")
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	older := sampleOrder("o-1", "cs_1")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := sampleOrder("o-2", "cs_2")
	newer.CreatedAt = time.Now()

	if err := d.CreateOrder(ctx, older); err != nil {
		t.Fatalf("create older: %v", err)
	}
	if err := d.CreateOrder(ctx, newer); err != nil {
		t.Fatalf("create newer: %v", err)
	}

	orders, err := d.ListOrders(ctx)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "o-2" {
		t.Fatalf("unexpected order listing: %+v", orders)
	}
}
