package storage

import (
	"context"

	"github.com/shopspring/decimal"
)

// Entry is the row shape of the entries table.
type Entry struct {
	ID           string
	EntryDate    string
	EntryType    string
	Amount       decimal.Decimal
	CouponType   string
	FaceValue    decimal.Decimal
	Quantity     decimal.Decimal
	SerialStart  int64
	SerialEnd    int64
	LabourCost   decimal.Decimal
	MaterialCost decimal.Decimal
	EntryMode    string
	Notes        string
	TimestampMs  int64
	Status       string
}

const entryColumns = `id, entry_date, entry_type, amount, coupon_type, face_value, quantity,
serial_start, serial_end, labour_cost, material_cost, entry_mode, notes, timestamp_ms, status`

const listEntries = `SELECT ` + entryColumns + `
FROM entries
ORDER BY entry_date DESC, timestamp_ms DESC`

func (q *Queries) ListEntries(ctx context.Context) ([]Entry, error) {
	rows, err := q.db.QueryContext(ctx, listEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Entry
	for rows.Next() {
		var i Entry
		if err := rows.Scan(
			&i.ID, &i.EntryDate, &i.EntryType, &i.Amount, &i.CouponType, &i.FaceValue, &i.Quantity,
			&i.SerialStart, &i.SerialEnd, &i.LabourCost, &i.MaterialCost, &i.EntryMode, &i.Notes,
			&i.TimestampMs, &i.Status,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertEntry = `INSERT INTO entries (` + entryColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertEntry(ctx context.Context, arg Entry) error {
	_, err := q.db.ExecContext(ctx, insertEntry,
		arg.ID, arg.EntryDate, arg.EntryType, arg.Amount, arg.CouponType, arg.FaceValue, arg.Quantity,
		arg.SerialStart, arg.SerialEnd, arg.LabourCost, arg.MaterialCost, arg.EntryMode, arg.Notes,
		arg.TimestampMs, arg.Status,
	)
	return err
}

const updateEntry = `UPDATE entries SET
    entry_date = ?, entry_type = ?, amount = ?, coupon_type = ?, face_value = ?, quantity = ?,
    serial_start = ?, serial_end = ?, labour_cost = ?, material_cost = ?, entry_mode = ?, notes = ?,
    timestamp_ms = ?, status = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

// UpdateEntry returns the number of rows changed.
func (q *Queries) UpdateEntry(ctx context.Context, arg Entry) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateEntry,
		arg.EntryDate, arg.EntryType, arg.Amount, arg.CouponType, arg.FaceValue, arg.Quantity,
		arg.SerialStart, arg.SerialEnd, arg.LabourCost, arg.MaterialCost, arg.EntryMode, arg.Notes,
		arg.TimestampMs, arg.Status, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setEntryStatus = `UPDATE entries SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) SetEntryStatus(ctx context.Context, status, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, setEntryStatus, status, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const archiveActiveEntries = `UPDATE entries SET status = 'Inactive', updated_at = CURRENT_TIMESTAMP
WHERE status = 'Active'`

func (q *Queries) ArchiveActiveEntries(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, archiveActiveEntries)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countEntries = `SELECT COUNT(*) FROM entries`

func (q *Queries) CountEntries(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countEntries).Scan(&n)
	return n, err
}
