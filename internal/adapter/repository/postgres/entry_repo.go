package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/duesledger/internal/domain"
	"github.com/iho/duesledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository. The entries table
// is append-only; there is no update or delete path.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create inserts an entry within a transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`INSERT INTO entries (id, debit_account_id, credit_account_id, amount, details, effective_date, created_at, modified_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID,
		entry.DebitAccountID,
		entry.CreditAccountID,
		decimalToNumeric(entry.Amount),
		entry.Details,
		timeToPgDate(entry.EffectiveDate),
		timeToPgTimestamptz(entry.CreatedAt),
		timeToPgTimestamptz(entry.ModifiedAt),
	)

	return err
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, debit_account_id, credit_account_id, amount, details, effective_date, created_at, modified_at
		 FROM entries WHERE id = $1`,
		id,
	)

	return scanEntry(row)
}

// ListByAccount lists entries where the account is either side, ordered
// for a reproducible statement view.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, debit_account_id, credit_account_id, amount, details, effective_date, created_at, modified_at
		 FROM entries
		 WHERE debit_account_id = $1 OR credit_account_id = $1
		 ORDER BY effective_date, created_at, id
		 LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// AccountBalance derives the raw balance: debits minus credits. COALESCE
// makes an account without entries balance to exactly zero.
func (r *EntryRepository) AccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(CASE WHEN debit_account_id = $1 THEN amount ELSE 0 END), 0)
		      - COALESCE(SUM(CASE WHEN credit_account_id = $1 THEN amount ELSE 0 END), 0)
		 FROM entries
		 WHERE debit_account_id = $1 OR credit_account_id = $1`,
		accountID,
	)

	var n pgtype.Numeric
	if err := row.Scan(&n); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(n), nil
}

// TotalBalance sums every account's raw balance. Summing over accounts
// rather than entries means an entry whose counter-account row is gone
// shows up as a nonzero total instead of cancelling itself out.
func (r *EntryRepository) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(b.balance), 0)
		 FROM (
		     SELECT COALESCE(SUM(CASE WHEN e.debit_account_id = a.id THEN e.amount ELSE 0 END), 0)
		          - COALESCE(SUM(CASE WHEN e.credit_account_id = a.id THEN e.amount ELSE 0 END), 0) AS balance
		     FROM accounts a
		     LEFT JOIN entries e ON e.debit_account_id = a.id OR e.credit_account_id = a.id
		     GROUP BY a.id
		 ) b`,
	)

	var n pgtype.Numeric
	if err := row.Scan(&n); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(n), nil
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		entry         domain.Entry
		amount        pgtype.Numeric
		effectiveDate pgtype.Date
		createdAt     pgtype.Timestamptz
		modifiedAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.DebitAccountID,
		&entry.CreditAccountID,
		&amount,
		&entry.Details,
		&effectiveDate,
		&createdAt,
		&modifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	entry.Amount = numericToDecimal(amount)
	entry.EffectiveDate = effectiveDate.Time
	entry.CreatedAt = createdAt.Time
	entry.ModifiedAt = modifiedAt.Time

	return &entry, nil
}
