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
	"github.com/danbahadur2060/event/internal/tickets/db"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if err := bunDB.ResetModel(ctx, (*models.TicketType)(nil)); err != nil {
		t.Fatalf("reset ticket_types: %v", err)
	}
	if err := bunDB.ResetModel(ctx, (*models.IssuedTicket)(nil)); err != nil {
		t.Fatalf("reset issued_tickets: %v", err)
	}
	return db.New(bunDB)
}

func seedTicketType(t *testing.T, d *db.DB, id string, quantity int) {
	t.Helper()
	tt := models.TicketType{
		ID:        id,
		EventID:   "ev-1",
		Name:      "GA",
		Category:  models.CategoryGeneral,
		Price:     5000,
		Currency:  "USD",
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
	if err := d.CreateTicketType(context.Background(), tt); err != nil {
		t.Fatalf("seed ticket type: %v", err)
	}
}

func TestGetTicketTypesByIDs(t *testing.T) {
	d := setupTestDB(t)
	seedTicketType(t, d, "tt-1", 100)
	seedTicketType(t, d, "tt-2", 50)

	types, err := d.GetTicketTypesByIDs(context.Background(), []string{"tt-1", "tt-2", "tt-3"})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("expected 2 ticket types, got %d", len(types))
	}
}

func TestReserveQuantityGuard(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	seedTicketType(t, d, "tt-1", 3)

	ok, err := d.ReserveQuantity(ctx, "tt-1", 2)
	if err != nil || !ok {
		t.Fatalf("first reserve: ok=%v err=%v", ok, err)
	}

	// 1 remaining: reserving 2 must fail, reserving 1 must pass.
	ok, err = d.ReserveQuantity(ctx, "tt-1", 2)
	if err != nil {
		t.Fatalf("second reserve: %v", err)
	}
	if ok {
		t.Fatal("oversell: reserved past quantity")
	}

	ok, err = d.ReserveQuantity(ctx, "tt-1", 1)
	if err != nil || !ok {
		t.Fatalf("final reserve: ok=%v err=%v", ok, err)
	}

	tt, err := d.GetTicketTypeByID(ctx, "tt-1")
	if err != nil {
		t.Fatalf("get ticket type: %v", err)
	}
	if tt.Sold != 3 || tt.Remaining() != 0 {
		t.Fatalf("expected sold=3 remaining=0, got sold=%d remaining=%d", tt.Sold, tt.Remaining())
	}
}

func TestReleaseQuantityFloorsAtZero(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	seedTicketType(t, d, "tt-1", 10)

	if _, err := d.ReserveQuantity(ctx, "tt-1", 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := d.ReleaseQuantity(ctx, "tt-1", 5); err != nil {
		t.Fatalf("release: %v", err)
	}

	tt, err := d.GetTicketTypeByID(ctx, "tt-1")
	if err != nil {
		t.Fatalf("get ticket type: %v", err)
	}
	if tt.Sold != 0 {
		t.Fatalf("expected sold floored at 0, got %d", tt.Sold)
	}
}

func TestCreateIssuedTickets(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	issued := []models.IssuedTicket{
		{ID: "it-1", OrderID: "order-1", TicketTypeID: "tt-1", TicketName: "GA", IssuedAt: time.Now()},
		{ID: "it-2", OrderID: "order-1", TicketTypeID: "tt-1", TicketName: "GA", IssuedAt: time.Now()},
	}
	if err := d.CreateIssuedTickets(ctx, issued); err != nil {
		t.Fatalf("create issued tickets: %v", err)
	}
}
