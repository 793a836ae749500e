package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/inventory-api/internal/core/domain"
	"github.com/example/inventory-api/internal/port"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/inventory?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func testItem(name string) *domain.InventoryItem {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.InventoryItem{
		Name:        name,
		Description: "test description",
		Price:       decimal.RequireFromString("15.50"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

func TestItemRepository_CreateAndGet(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	repo := NewMySQLItemRepository(db)

	item := testItem(uniqueName("create"))
	qty := 5
	item.Quantity = &qty

	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, item.ID)

	if item.ID == 0 {
		t.Fatal("expected a store-assigned id")
	}

	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("item not found after create")
	}
	if got.Name != item.Name {
		t.Errorf("expected name %q, got %q", item.Name, got.Name)
	}
	if !got.Price.Equal(item.Price) {
		t.Errorf("expected price %s, got %s", item.Price, got.Price)
	}
	if got.Quantity == nil || *got.Quantity != 5 {
		t.Errorf("expected quantity 5, got %v", got.Quantity)
	}
}

func TestItemRepository_NullQuantity(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	repo := NewMySQLItemRepository(db)

	item := testItem(uniqueName("nullqty"))
	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, item.ID)

	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Quantity != nil {
		t.Errorf("expected nil quantity, got %v", *got.Quantity)
	}
}

func TestItemRepository_DuplicateName(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	repo := NewMySQLItemRepository(db)

	item := testItem(uniqueName("dup"))
	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, item.ID)

	dup := testItem(item.Name)
	err := repo.Create(ctx, dup)
	if !errors.Is(err, port.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got: %v", err)
	}

	exists, err := repo.ExistsByName(ctx, item.Name)
	if err != nil {
		t.Fatalf("ExistsByName failed: %v", err)
	}
	if !exists {
		t.Error("ExistsByName must report the taken name")
	}
}

func TestItemRepository_UpdateAndDelete(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	repo := NewMySQLItemRepository(db)

	item := testItem(uniqueName("upd"))
	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, item.ID)

	item.Description = "updated description"
	item.Price = decimal.RequireFromString("12.99")
	item.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	if err := repo.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Description != "updated description" {
		t.Errorf("description not updated: %q", got.Description)
	}
	if !got.Price.Equal(decimal.RequireFromString("12.99")) {
		t.Errorf("price not updated: %s", got.Price)
	}

	deleted, err := repo.Delete(ctx, item.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Error("expected delete to report success")
	}

	got, err = repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Error("item still present after delete")
	}

	deleted, err = repo.Delete(ctx, item.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted {
		t.Error("second delete must report absence")
	}
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	repo := NewMySQLUserRepository(db)

	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     uniqueName("user"),
		Email:        "user@example.com",
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuv",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, user.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID == nil || byID.Username != user.Username {
		t.Errorf("unexpected user by id: %+v", byID)
	}

	byName, err := repo.GetByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if byName == nil || byName.ID != user.ID {
		t.Errorf("unexpected user by username: %+v", byName)
	}

	dup := *user
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, &dup); !errors.Is(err, port.ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got: %v", err)
	}

	missing, err := repo.GetByUsername(ctx, uniqueName("missing"))
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown username, got: %+v", missing)
	}
}
