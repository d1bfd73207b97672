package purchase

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
	id, record_hash, contract_id, buyer_wallet, tx_hash, title, city, price_usd, beds, baths, area, created_at`

// PostgresStore persists purchases in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed purchase store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts the purchase; unique constraints on record_hash and tx_hash reject a
// second sale of the listing and a reused transaction.
func (s *PostgresStore) Create(ctx context.Context, p *models.Purchase) error {
	if p == nil {
		return fmt.Errorf("purchase is required")
	}
	query := `
		INSERT INTO purchases (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.ID),
		string(p.RecordHash),
		int64(p.ContractID), //nolint:gosec // contract ids are 9-digit values
		p.BuyerWallet.Address().Bytes(),
		p.TxHash.Hash().Bytes(),
		p.Title,
		p.City,
		p.PriceUSD,
		p.Beds,
		p.Baths,
		p.Area,
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("purchase already recorded: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}

// FindByRecordHash retrieves the purchase of a listing.
func (s *PostgresStore) FindByRecordHash(ctx context.Context, hash domain.RecordHash) (*models.Purchase, error) {
	query := `SELECT ` + selectColumns + ` FROM purchases WHERE record_hash = $1`
	p, err := scanPurchase(s.db.QueryRowContext(ctx, query, string(hash)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find purchase by hash: %w", err)
	}
	return p, nil
}

// ListByBuyer returns the wallet's purchases, newest first.
func (s *PostgresStore) ListByBuyer(ctx context.Context, buyer domain.WalletAddress) ([]*models.Purchase, error) {
	query := `SELECT ` + selectColumns + ` FROM purchases WHERE buyer_wallet = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, buyer.Address().Bytes())
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	out := []*models.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}
	return out, nil
}

type purchaseRow interface {
	Scan(dest ...any) error
}

func scanPurchase(row purchaseRow) (*models.Purchase, error) {
	var p models.Purchase
	var purchaseID uuid.UUID
	var recordHash string
	var contractID int64
	var wallet, tx []byte
	if err := row.Scan(
		&purchaseID, &recordHash, &contractID, &wallet, &tx,
		&p.Title, &p.City, &p.PriceUSD, &p.Beds, &p.Baths, &p.Area, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.ID = domain.PurchaseID(purchaseID)
	p.RecordHash = domain.RecordHash(recordHash)
	p.ContractID = domain.ContractID(contractID) //nolint:gosec // stored from a uint64 contract id
	p.BuyerWallet = domain.WalletAddress(common.BytesToAddress(wallet))
	p.TxHash = domain.TxHash(common.BytesToHash(tx))
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
