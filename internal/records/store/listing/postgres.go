package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"deedgate/internal/records/models"
	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
)

const selectColumns = `
	id, record_hash, contract_id, title, city, price_usd, beds, baths, area,
	owner, owner_wallet, property_type, description, image, verified, status, created_at`

// PostgresStore persists listings in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed listing store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateIfHashAvailable inserts the listing; the unique constraint on record_hash closes
// the race between two submitters that both passed the duplicate check.
func (s *PostgresStore) CreateIfHashAvailable(ctx context.Context, l *models.ListingEntry) error {
	if l == nil {
		return fmt.Errorf("listing is required")
	}
	query := `
		INSERT INTO listings (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(l.ID),
		string(l.RecordHash),
		int64(l.ContractID), //nolint:gosec // contract ids are 9-digit values
		l.Title,
		l.City,
		l.PriceUSD,
		l.Beds,
		l.Baths,
		l.Area,
		l.Owner,
		walletBytes(l.OwnerWallet),
		string(l.PropertyType),
		l.Description,
		l.Image,
		l.Verified,
		string(l.Status),
		l.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("record hash already listed: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

// FindByHash retrieves the listing for a record hash.
func (s *PostgresStore) FindByHash(ctx context.Context, hash domain.RecordHash) (*models.ListingEntry, error) {
	query := `SELECT ` + selectColumns + ` FROM listings WHERE record_hash = $1`
	l, err := scanListing(s.db.QueryRowContext(ctx, query, string(hash)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find listing by hash: %w", err)
	}
	return l, nil
}

// MarkPurchased hands the listing to its buyer and marks it sold.
func (s *PostgresStore) MarkPurchased(ctx context.Context, hash domain.RecordHash, buyer domain.WalletAddress) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET owner_wallet = $2, status = $3 WHERE record_hash = $1`,
		string(hash), walletBytes(buyer), string(models.ListingStatusSold),
	)
	if err != nil {
		return fmt.Errorf("mark listing purchased: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark listing purchased: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// List returns every listing, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]*models.ListingEntry, error) {
	query := `SELECT ` + selectColumns + ` FROM listings ORDER BY created_at DESC`
	return s.query(ctx, query)
}

// ListByOwnerWallet returns listings created by the given wallet, newest first.
func (s *PostgresStore) ListByOwnerWallet(ctx context.Context, wallet domain.WalletAddress) ([]*models.ListingEntry, error) {
	query := `SELECT ` + selectColumns + ` FROM listings WHERE owner_wallet = $1 ORDER BY created_at DESC`
	return s.query(ctx, query, walletBytes(wallet))
}

// Count returns the total number of listings.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.ListingEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	out := []*models.ListingEntry{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return out, nil
}

type listingRow interface {
	Scan(dest ...any) error
}

func scanListing(row listingRow) (*models.ListingEntry, error) {
	var l models.ListingEntry
	var listingID uuid.UUID
	var recordHash, propertyType, status string
	var contractID int64
	var wallet []byte
	if err := row.Scan(
		&listingID, &recordHash, &contractID, &l.Title, &l.City, &l.PriceUSD, &l.Beds, &l.Baths, &l.Area,
		&l.Owner, &wallet, &propertyType, &l.Description, &l.Image, &l.Verified, &status, &l.CreatedAt,
	); err != nil {
		return nil, err
	}
	l.ID = domain.ListingID(listingID)
	l.RecordHash = domain.RecordHash(recordHash)
	l.ContractID = domain.ContractID(contractID) //nolint:gosec // stored from a uint64 contract id
	l.PropertyType = models.PropertyType(propertyType)
	l.Status = models.ListingStatus(status)
	if len(wallet) == common.AddressLength {
		l.OwnerWallet = domain.WalletAddress(common.BytesToAddress(wallet))
	}
	return &l, nil
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
