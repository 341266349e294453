package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/aid-distribution/internal/core/domain"
	"github.com/rl1809/aid-distribution/internal/port"
)

// MySQLAdapter is the durable store: inventory rows, the append-only
// distribution log, and the center/package/household directories.
// Stock mutations use a guarded UPDATE so quantity can never go
// negative even if a caller bypasses the ledger's lock.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// --- port.InventoryStore ---

func (m *MySQLAdapter) GetStock(ctx context.Context, key domain.InventoryKey) (int, bool, error) {
	var quantity int
	err := m.db.QueryRowContext(ctx, `
		SELECT quantity_on_hand FROM inventory
		WHERE center_id = ? AND package_id = ?`,
		key.CenterID, key.PackageID,
	).Scan(&quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query inventory: %w", err)
	}
	return quantity, true, nil
}

func (m *MySQLAdapter) DecrementStock(ctx context.Context, key domain.InventoryKey, amount int) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE inventory
		SET quantity_on_hand = quantity_on_hand - ?, updated_at = NOW()
		WHERE center_id = ? AND package_id = ? AND quantity_on_hand >= ?`,
		amount, key.CenterID, key.PackageID, amount,
	)
	if err != nil {
		return false, fmt.Errorf("decrement inventory: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (m *MySQLAdapter) IncrementStock(ctx context.Context, key domain.InventoryKey, amount int) (int, error) {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO inventory (center_id, package_id, quantity_on_hand, last_restock_date, last_restock_quantity)
		VALUES (?, ?, ?, CURDATE(), ?)
		ON DUPLICATE KEY UPDATE
			quantity_on_hand = quantity_on_hand + VALUES(quantity_on_hand),
			last_restock_date = CURDATE(),
			last_restock_quantity = VALUES(last_restock_quantity)`,
		key.CenterID, key.PackageID, amount, amount,
	)
	if err != nil {
		return 0, fmt.Errorf("increment inventory: %w", err)
	}

	quantity, _, err := m.GetStock(ctx, key)
	if err != nil {
		return 0, err
	}
	return quantity, nil
}

func (m *MySQLAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	result, err := m.db.ExecContext(ctx,
		`INSERT IGNORE INTO idempotency_keys (idem_key) VALUES (?)`, key)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// --- port.DistributionLogRepository ---

func (m *MySQLAdapter) Append(ctx context.Context, entry domain.LogEntry) (string, error) {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO distribution_log
			(log_id, household_id, package_id, center_id, quantity_distributed,
			 distribution_date, transaction_status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.LogID, entry.HouseholdID, entry.PackageID, entry.CenterID,
		entry.Quantity, entry.DistributionDate, entry.Status, entry.Notes,
	)
	if err != nil {
		return "", fmt.Errorf("insert distribution log: %w", err)
	}
	return entry.LogID, nil
}

func (m *MySQLAdapter) LastFor(ctx context.Context, householdID, packageID int64) (*domain.LogEntry, error) {
	query := `
		SELECT log_id, household_id, package_id, center_id, quantity_distributed,
		       distribution_date, transaction_status, notes
		FROM distribution_log
		WHERE household_id = ? AND transaction_status = 'success'`
	args := []any{householdID}

	if packageID != 0 {
		query += ` AND package_id = ?`
		args = append(args, packageID)
	}
	query += ` ORDER BY distribution_date DESC LIMIT 1`

	entry, err := scanLogEntry(m.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last distribution: %w", err)
	}
	return entry, nil
}

func (m *MySQLAdapter) Query(ctx context.Context, filter port.LogFilter, limit int) ([]domain.LogEntry, error) {
	var conds []string
	var args []any

	if filter.HouseholdID != 0 {
		conds = append(conds, "household_id = ?")
		args = append(args, filter.HouseholdID)
	}
	if filter.PackageID != 0 {
		conds = append(conds, "package_id = ?")
		args = append(args, filter.PackageID)
	}
	if filter.CenterID != 0 {
		conds = append(conds, "center_id = ?")
		args = append(args, filter.CenterID)
	}

	query := `
		SELECT log_id, household_id, package_id, center_id, quantity_distributed,
		       distribution_date, transaction_status, notes
		FROM distribution_log`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY distribution_date DESC LIMIT ?`
	args = append(args, limit)

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query distribution log: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan distribution log: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLogEntry(row rowScanner) (*domain.LogEntry, error) {
	var e domain.LogEntry
	var notes sql.NullString
	err := row.Scan(&e.LogID, &e.HouseholdID, &e.PackageID, &e.CenterID,
		&e.Quantity, &e.DistributionDate, &e.Status, &notes)
	if err != nil {
		return nil, err
	}
	e.Notes = notes.String
	return &e, nil
}

// --- port.DirectoryRepository ---

func (m *MySQLAdapter) GetCenter(ctx context.Context, id int64) (*domain.Center, error) {
	var c domain.Center
	err := m.db.QueryRowContext(ctx, `
		SELECT center_id, center_name, address, city, capacity, status, created_at, updated_at
		FROM distribution_centers WHERE center_id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.Capacity, &c.Status, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query center: %w", err)
	}
	return &c, nil
}

func (m *MySQLAdapter) GetPackage(ctx context.Context, id int64) (*domain.AidPackage, error) {
	var p domain.AidPackage
	err := m.db.QueryRowContext(ctx, `
		SELECT package_id, package_name, category, validity_period_days, is_active, created_at, updated_at
		FROM aid_packages WHERE package_id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Category, &p.ValidityPeriodDays, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query package: %w", err)
	}
	return &p, nil
}

func (m *MySQLAdapter) GetHousehold(ctx context.Context, id int64) (*domain.Household, error) {
	var h domain.Household
	err := m.db.QueryRowContext(ctx, `
		SELECT household_id, family_name, family_size, priority_level, status, created_at, updated_at
		FROM households WHERE household_id = ?`, id,
	).Scan(&h.ID, &h.FamilyName, &h.FamilySize, &h.Priority, &h.Status, &h.CreatedAt, &h.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query household: %w", err)
	}
	return &h, nil
}
