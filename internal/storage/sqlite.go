package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/user/backoffice/internal/model"
)

// DatabaseFileName is the name of the SQLite database inside the data dir.
const DatabaseFileName = "backoffice.db"

const itemColumns = `id, sku, name, category, quantity, threshold, price, location, updated_at`

const orderColumns = `id, order_number, customer_name, customer_email, status, total_amount, item_count, created_at`

// SQLiteDB holds the inventory and order tables.
type SQLiteDB struct {
	db     *sql.DB
	dbPath string
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// OpenSQLite opens (and creates if needed) the database in baseDir.
func OpenSQLite(baseDir string) (*SQLiteDB, error) {
	dbPath := filepath.Join(baseDir, DatabaseFileName)

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteDB{db: db, dbPath: dbPath}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initTables creates the tables if they don't exist.
func (s *SQLiteDB) initTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS inventory_items (
			id TEXT PRIMARY KEY,
			sku TEXT NOT NULL DEFAULT '',
			name TEXT,
			category TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL DEFAULT 0,
			threshold INTEGER NOT NULL DEFAULT 0,
			price REAL NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			order_number TEXT NOT NULL DEFAULT '',
			customer_name TEXT,
			customer_email TEXT,
			status TEXT NOT NULL DEFAULT '',
			total_amount REAL NOT NULL DEFAULT 0,
			item_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ListItems returns all inventory items in insertion order.
func (s *SQLiteDB) ListItems(ctx context.Context) ([]model.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM inventory_items ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []model.InventoryItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItem returns one inventory item.
func (s *SQLiteDB) GetItem(ctx context.Context, id string) (model.InventoryItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return item, model.ErrRecordNotFound
	}
	if err != nil {
		return item, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// InsertItem inserts a new item; it fails if the id exists.
func (s *SQLiteDB) InsertItem(ctx context.Context, item model.InventoryItem) error {
	if _, err := s.GetItem(ctx, item.ID); err == nil {
		return model.ErrRecordExists
	}
	return upsertItem(ctx, s.db, item)
}

// UpsertItem inserts an item or updates it in place, keeping its position.
func (s *SQLiteDB) UpsertItem(ctx context.Context, item model.InventoryItem) error {
	return upsertItem(ctx, s.db, item)
}

// UpsertItems inserts or replaces items in one transaction.
func (s *SQLiteDB) UpsertItems(ctx context.Context, items []model.InventoryItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, item := range items {
		if err := upsertItem(ctx, tx, item); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit items: %w", err)
	}
	return nil
}

func upsertItem(ctx context.Context, db execer, item model.InventoryItem) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO inventory_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sku = excluded.sku,
			name = excluded.name,
			category = excluded.category,
			quantity = excluded.quantity,
			threshold = excluded.threshold,
			price = excluded.price,
			location = excluded.location,
			updated_at = excluded.updated_at
	`, item.ID, item.SKU, item.Name, item.Category, item.Quantity, item.Threshold,
		item.Price, item.Location, nullString(item.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

// DeleteItem removes an item.
func (s *SQLiteDB) DeleteItem(ctx context.Context, id string) error {
	return deleteRow(ctx, s.db, "inventory_items", id)
}

// ListOrders returns all orders in insertion order.
func (s *SQLiteDB) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// GetOrder returns one order.
func (s *SQLiteDB) GetOrder(ctx context.Context, id string) (model.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return order, model.ErrRecordNotFound
	}
	if err != nil {
		return order, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// UpsertOrder inserts an order or updates it in place, keeping its position.
func (s *SQLiteDB) UpsertOrder(ctx context.Context, order model.Order) error {
	return upsertOrder(ctx, s.db, order)
}

// UpsertOrders inserts or replaces orders in one transaction.
func (s *SQLiteDB) UpsertOrders(ctx context.Context, orders []model.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, order := range orders {
		if err := upsertOrder(ctx, tx, order); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit orders: %w", err)
	}
	return nil
}

func upsertOrder(ctx context.Context, db execer, order model.Order) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			order_number = excluded.order_number,
			customer_name = excluded.customer_name,
			customer_email = excluded.customer_email,
			status = excluded.status,
			total_amount = excluded.total_amount,
			item_count = excluded.item_count,
			created_at = excluded.created_at
	`, order.ID, order.OrderNumber, nullString(order.CustomerName), nullString(order.CustomerEmail),
		order.Status, order.TotalAmount, order.ItemCount, nullString(order.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert order: %w", err)
	}
	return nil
}

// DeleteOrder removes an order.
func (s *SQLiteDB) DeleteOrder(ctx context.Context, id string) error {
	return deleteRow(ctx, s.db, "orders", id)
}

// CountRecords returns the number of rows in a table.
func (s *SQLiteDB) CountRecords(ctx context.Context, table string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

func deleteRow(ctx context.Context, db execer, table, id string) error {
	result, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM "%s" WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrRecordNotFound
	}
	return nil
}

// scanItem scans a row into an InventoryItem. NULL text columns read as "".
func scanItem(row rowScanner) (model.InventoryItem, error) {
	var (
		item            model.InventoryItem
		name, updatedAt sql.NullString
	)
	err := row.Scan(&item.ID, &item.SKU, &name, &item.Category, &item.Quantity,
		&item.Threshold, &item.Price, &item.Location, &updatedAt)
	if err != nil {
		return item, err
	}
	item.Name = name.String
	item.UpdatedAt = updatedAt.String
	return item, nil
}

// scanOrder scans a row into an Order. NULL text columns read as "".
func scanOrder(row rowScanner) (model.Order, error) {
	var (
		order                  model.Order
		customer, email, since sql.NullString
	)
	err := row.Scan(&order.ID, &order.OrderNumber, &customer, &email, &order.Status,
		&order.TotalAmount, &order.ItemCount, &since)
	if err != nil {
		return order, err
	}
	order.CustomerName = customer.String
	order.CustomerEmail = email.String
	order.CreatedAt = since.String
	return order, nil
}

// nullString converts empty string to NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
