package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/example/inventory-api/internal/core/domain"
	"github.com/example/inventory-api/internal/port"
)

// mysqlDuplicateEntry is the server error code for unique key violations.
const mysqlDuplicateEntry = 1062

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id          BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(100) NOT NULL,
		description TEXT NOT NULL,
		quantity    INT NULL,
		price       DECIMAL(10,2) NOT NULL,
		created_at  DATETIME(6) NOT NULL,
		updated_at  DATETIME(6) NOT NULL,
		UNIQUE KEY uq_items_name (name)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36) NOT NULL PRIMARY KEY,
		username      VARCHAR(150) NOT NULL,
		email         VARCHAR(254) NOT NULL,
		password_hash VARCHAR(60) NOT NULL,
		created_at    DATETIME(6) NOT NULL,
		updated_at    DATETIME(6) NOT NULL,
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB`,
}

// Migrate creates the items and users tables when they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// MySQLItemRepository implements port.ItemRepository. The unique index
// on name is the authoritative uniqueness guarantee.
type MySQLItemRepository struct {
	db *sql.DB
}

func NewMySQLItemRepository(db *sql.DB) *MySQLItemRepository {
	return &MySQLItemRepository{db: db}
}

func (r *MySQLItemRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO items (name, description, quantity, price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Quantity, item.Price,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return port.ErrDuplicateName
		}
		return fmt.Errorf("insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (r *MySQLItemRepository) GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, quantity, price, created_at, updated_at
		FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Description, &item.Quantity,
		&item.Price, &item.CreatedAt, &item.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &item, nil
}

func (r *MySQLItemRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM items WHERE name = ?)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check item name: %w", err)
	}
	return exists, nil
}

func (r *MySQLItemRepository) Update(ctx context.Context, item *domain.InventoryItem) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE items
		SET name = ?, description = ?, quantity = ?, price = ?, updated_at = ?
		WHERE id = ?`,
		item.Name, item.Description, item.Quantity, item.Price,
		item.UpdatedAt, item.ID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return port.ErrDuplicateName
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (r *MySQLItemRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// MySQLUserRepository implements port.UserRepository.
type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return port.ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *MySQLUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, `id = ?`, id)
}

func (r *MySQLUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUser(ctx, `username = ?`, username)
}

func (r *MySQLUserRepository) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users WHERE `+where, arg,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}
