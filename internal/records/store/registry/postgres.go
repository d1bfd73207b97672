package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgconn"

	"deedgate/internal/records/models"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
)

const selectColumns = `
	record_hash, content_hash, contract_id,
	owner_first, owner_last, owner_id, property_title, property_type,
	location, size, beds, baths, year,
	wallet, contact, registered_by, created_at`

// PostgresStore persists registry entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts the entry; the primary key on record_hash enforces write-once.
func (s *PostgresStore) Create(ctx context.Context, entry *models.RegistryEntry) error {
	if entry == nil {
		return fmt.Errorf("registry entry is required")
	}
	d := entry.Declaration
	query := `
		INSERT INTO registry_entries (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.db.ExecContext(ctx, query,
		string(entry.RecordHash),
		string(entry.ContentHash),
		int64(entry.ContractID), //nolint:gosec // contract ids are 9-digit values
		d.OwnerFirst,
		d.OwnerLast,
		d.OwnerID,
		d.PropertyTitle,
		string(d.PropertyType),
		d.Location,
		d.Size,
		d.Beds,
		d.Baths,
		d.Year,
		walletBytes(entry.Wallet),
		entry.Contact,
		entry.RegisteredBy,
		entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("record hash already registered: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create registry entry: %w", err)
	}
	return nil
}

// FindByHash retrieves the entry registered under a record hash.
func (s *PostgresStore) FindByHash(ctx context.Context, hash domain.RecordHash) (*models.RegistryEntry, error) {
	query := `SELECT ` + selectColumns + ` FROM registry_entries WHERE record_hash = $1`
	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, string(hash)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registry entry: %w", err)
	}
	return entry, nil
}

// List returns all entries, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]*models.RegistryEntry, error) {
	query := `SELECT ` + selectColumns + ` FROM registry_entries ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list registry entries: %w", err)
	}
	defer rows.Close()

	var out []*models.RegistryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registry entry: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registry entries: %w", err)
	}
	return out, nil
}

// Count returns the total number of registry entries.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registry_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count registry entries: %w", err)
	}
	return count, nil
}

type entryRow interface {
	Scan(dest ...any) error
}

func scanEntry(row entryRow) (*models.RegistryEntry, error) {
	var e models.RegistryEntry
	var recordHash, contentHash, propertyType string
	var contractID int64
	var wallet []byte
	d := &e.Declaration
	if err := row.Scan(
		&recordHash, &contentHash, &contractID,
		&d.OwnerFirst, &d.OwnerLast, &d.OwnerID, &d.PropertyTitle, &propertyType,
		&d.Location, &d.Size, &d.Beds, &d.Baths, &d.Year,
		&wallet, &e.Contact, &e.RegisteredBy, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.RecordHash = domain.RecordHash(recordHash)
	e.ContentHash = domain.ContentHash(contentHash)
	e.ContractID = domain.ContractID(contractID) //nolint:gosec // stored from a uint64 contract id
	d.PropertyType = models.PropertyType(propertyType)
	if len(wallet) == common.AddressLength {
		e.Wallet = domain.WalletAddress(common.BytesToAddress(wallet))
	}
	return &e, nil
}

func walletBytes(w domain.WalletAddress) []byte {
	if w.IsZero() {
		return nil
	}
	return w.Address().Bytes()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
