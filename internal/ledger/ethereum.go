package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
	"deedgate/pkg/platform/tracer"
)

// ErrReadOnly is returned by write calls when no signing key is configured.
var ErrReadOnly = errors.New("ledger is read-only: no signing key configured")

// EthereumConfig configures the JSON-RPC ledger adapter.
type EthereumConfig struct {
	RPCURL          string
	ContractAddress string
	// PrivateKey is the hex-encoded key of the registrar account. Empty means read-only.
	PrivateKey  string
	ChainID     int64
	CallTimeout time.Duration
	TxTimeout   time.Duration
}

// Ethereum talks to the marketplace contract over JSON-RPC.
type Ethereum struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	from     common.Address

	callTimeout time.Duration
	txTimeout   time.Duration

	// txMu serializes writes so concurrent registrations never race for the same nonce.
	txMu sync.Mutex

	metrics *Metrics
	tracer  tracer.Tracer
	logger  *slog.Logger
}

type EthereumOption func(*Ethereum)

func WithEthereumMetrics(m *Metrics) EthereumOption {
	return func(e *Ethereum) { e.metrics = m }
}

func WithEthereumTracer(t tracer.Tracer) EthereumOption {
	return func(e *Ethereum) {
		if t != nil {
			e.tracer = t
		}
	}
}

func WithEthereumLogger(l *slog.Logger) EthereumOption {
	return func(e *Ethereum) {
		if l != nil {
			e.logger = l
		}
	}
}

// DialEthereum connects to the RPC endpoint and binds the marketplace contract.
func DialEthereum(ctx context.Context, cfg EthereumConfig, opts ...EthereumOption) (*Ethereum, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("ledger rpc url is required")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}
	parsed, err := abi.JSON(strings.NewReader(marketplaceABI))
	if err != nil {
		return nil, fmt.Errorf("parse marketplace abi: %w", err)
	}
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger rpc: %w", err)
	}

	address := common.HexToAddress(cfg.ContractAddress)
	e := &Ethereum{
		client:      client,
		contract:    bind.NewBoundContract(address, parsed, client, client, client),
		chainID:     big.NewInt(cfg.ChainID),
		callTimeout: cfg.CallTimeout,
		txTimeout:   cfg.TxTimeout,
		tracer:      tracer.NewNoop(),
		logger:      slog.Default(),
	}
	if e.callTimeout <= 0 {
		e.callTimeout = 10 * time.Second
	}
	if e.txTimeout <= 0 {
		e.txTimeout = 2 * time.Minute
	}
	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("parse ledger private key: %w", err)
		}
		e.key = key
		e.from = crypto.PubkeyToAddress(key.PublicKey)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Signer returns the registrar address, or the zero address in read-only mode.
func (e *Ethereum) Signer() domain.WalletAddress {
	return domain.WalletAddress(e.from)
}

func (e *Ethereum) IsRegistered(ctx context.Context, hash domain.RecordHash) (registered bool, err error) {
	ctx, span := e.startCall(ctx, MethodIsRegistered)
	defer func() { span.End(err) }()
	start := time.Now()
	defer func() { e.metrics.ObserveRPC(MethodIsRegistered, start, err) }()

	var out []any
	if err := e.call(ctx, &out, MethodIsRegistered, hash.String()); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (e *Ethereum) RegisterHash(ctx context.Context, hash domain.RecordHash) (receipt Receipt, err error) {
	ctx, span := e.startCall(ctx, MethodRegisterHash)
	defer func() { span.End(err) }()
	start := time.Now()
	defer func() { e.metrics.ObserveRPC(MethodRegisterHash, start, err) }()

	return e.transact(ctx, MethodRegisterHash, hash.String())
}

func (e *Ethereum) CreateListing(ctx context.Context, id domain.ContractID, priceWei *big.Int) (receipt Receipt, err error) {
	ctx, span := e.startCall(ctx, MethodCreateListing, tracer.String(tracer.AttrContractID, id.String()))
	defer func() { span.End(err) }()
	start := time.Now()
	defer func() { e.metrics.ObserveRPC(MethodCreateListing, start, err) }()

	if priceWei == nil {
		priceWei = DefaultPriceWei
	}
	return e.transact(ctx, MethodCreateListing, new(big.Int).SetUint64(id.Uint64()), priceWei)
}

func (e *Ethereum) Listing(ctx context.Context, id domain.ContractID) (listing *Listing, err error) {
	ctx, span := e.startCall(ctx, MethodListing, tracer.String(tracer.AttrContractID, id.String()))
	defer func() { span.End(err) }()
	start := time.Now()
	defer func() { e.metrics.ObserveRPC(MethodListing, start, err) }()

	var out []any
	if err := e.call(ctx, &out, MethodListing, new(big.Int).SetUint64(id.Uint64())); err != nil {
		return nil, err
	}
	owner := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	price := *abi.ConvertType(out[1], new(*big.Int)).(**big.Int)
	sold := *abi.ConvertType(out[2], new(bool)).(*bool)
	return &Listing{
		ContractID: id,
		Owner:      domain.WalletAddress(owner),
		PriceWei:   price,
		Sold:       sold,
		Exists:     owner != (common.Address{}),
	}, nil
}

// Health reports whether the RPC endpoint answers.
func (e *Ethereum) Health(ctx context.Context) error {
	_, err := e.client.BlockNumber(ctx)
	return err
}

func (e *Ethereum) Close() {
	e.client.Close()
}

func (e *Ethereum) startCall(ctx context.Context, method string, attrs ...tracer.Attribute) (context.Context, tracer.Span) {
	return e.tracer.Start(ctx, tracer.SpanLedgerCall, append(attrs, tracer.String(tracer.AttrMethod, method))...)
}

func (e *Ethereum) call(ctx context.Context, out *[]any, method string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	if err := e.contract.Call(&bind.CallOpts{Context: ctx}, out, method, args...); err != nil {
		return fmt.Errorf("ledger %s: %w: %w", method, sentinel.ErrUnavailable, err)
	}
	if len(*out) == 0 {
		return fmt.Errorf("ledger %s: empty result: %w", method, sentinel.ErrUnavailable)
	}
	return nil
}

func (e *Ethereum) transact(ctx context.Context, method string, args ...any) (Receipt, error) {
	if e.key == nil {
		return Receipt{}, ErrReadOnly
	}
	e.txMu.Lock()
	defer e.txMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.txTimeout)
	defer cancel()

	opts, err := bind.NewKeyedTransactorWithChainID(e.key, e.chainID)
	if err != nil {
		return Receipt{}, fmt.Errorf("ledger transactor: %w", err)
	}
	opts.Context = ctx

	tx, err := e.contract.Transact(opts, method, args...)
	if err != nil {
		return Receipt{}, fmt.Errorf("ledger %s: %w: %w", method, sentinel.ErrUnavailable, err)
	}
	e.logger.InfoContext(ctx, "ledger transaction submitted",
		"method", method,
		"tx_hash", tx.Hash().Hex(),
	)

	mined, err := bind.WaitMined(ctx, e.client, tx)
	if err != nil {
		return Receipt{}, fmt.Errorf("ledger %s wait mined: %w: %w", method, sentinel.ErrUnavailable, err)
	}
	if mined.Status != types.ReceiptStatusSuccessful {
		return Receipt{}, fmt.Errorf("ledger %s reverted in tx %s: %w", method, tx.Hash().Hex(), sentinel.ErrInvalidState)
	}
	return Receipt{TxHash: tx.Hash().Hex()}, nil
}

var _ Ledger = (*Ethereum)(nil)
