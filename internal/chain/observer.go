package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mysterylink/button-server/internal/adapter"
	"github.com/mysterylink/button-server/internal/domain"
	"github.com/mysterylink/button-server/internal/logger"
)

// Config holds the observer's retry policy.
// A freshly broadcast transaction is often not yet visible to the node, so
// the observer keeps polling with growing delays until the budget runs out.
type Config struct {
	// MaxAttempts is the total number of fetch attempts
	MaxAttempts uint64
	// BaseDelay is the delay before the first retry
	BaseDelay time.Duration
	// BackoffMultiplier is the geometric growth factor between retries
	BackoffMultiplier float64
	// MaxElapsedTime caps the total time spent waiting
	MaxElapsedTime time.Duration
}

// Observer reads a transaction and its receipt off the chain by hash
//
//go:generate mockgen -source=observer.go -destination=../mocks/observer.go -package=mocks -mock_names=Observer=MockObserver
type Observer interface {
	// Observe fetches the transaction body and receipt for the given hash.
	// It returns domain.ErrInvalidHashFormat for malformed hashes without any
	// network call, and domain.ErrTransactionNotYetVisible when the node
	// still cannot see the transaction after the retry budget is exhausted.
	Observe(ctx context.Context, txHash string) (*domain.Observation, error)
}

type observer struct {
	client adapter.EthClient
	config Config
}

// NewObserver creates a chain observer backed by an Ethereum client
func NewObserver(client adapter.EthClient, cfg Config) Observer {
	return &observer{client: client, config: cfg}
}

// visibilityErrorPhrases are node error fragments that mean the transaction
// simply is not indexed yet. Anything else is treated as fatal.
var visibilityErrorPhrases = []string{
	"not found",
	"not available",
	"could not find",
	"transaction not found",
	"receipt not found",
	"not be processed",
}

func isNotYetVisible(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ethereum.NotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range visibilityErrorPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func (o *observer) Observe(ctx context.Context, txHash string) (*domain.Observation, error) {
	if !domain.IsValidTxHash(txHash) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidHashFormat, txHash)
	}
	hash := common.HexToHash(txHash)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.config.BaseDelay
	b.Multiplier = o.config.BackoffMultiplier
	b.MaxElapsedTime = o.config.MaxElapsedTime
	b.RandomizationFactor = 0

	var attempt uint64
	var obs *domain.Observation

	operation := func() error {
		attempt++

		tx, receipt, err := o.fetch(ctx, hash)
		if err != nil {
			if isNotYetVisible(err) {
				logger.Debug("waiting for node to index transaction",
					zap.String("tx_hash", txHash),
					zap.Uint64("attempt", attempt),
					zap.Uint64("max_attempts", o.config.MaxAttempts))
				return err
			}
			return backoff.Permanent(err)
		}

		sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to recover transaction sender: %w", err))
		}

		var recipient string
		if to := tx.To(); to != nil {
			recipient = to.Hex()
		}

		obs = &domain.Observation{
			Hash:      txHash,
			Succeeded: receipt.Status == types.ReceiptStatusSuccessful,
			Sender:    sender.Hex(),
			Recipient: recipient,
			Value:     tx.Value(),
			Calldata:  tx.Data(),
		}
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, o.config.MaxAttempts-1), ctx))
	if err != nil {
		if isNotYetVisible(err) {
			return nil, fmt.Errorf("%w: %s (gave up after %d attempts)",
				domain.ErrTransactionNotYetVisible, txHash, attempt)
		}
		return nil, err
	}

	logger.Debug("transaction observed",
		zap.String("tx_hash", txHash),
		zap.Uint64("attempts", attempt))
	return obs, nil
}

// fetch issues the receipt and body reads concurrently. A pending transaction
// counts as not yet visible: its receipt does not exist yet.
func (o *observer) fetch(ctx context.Context, hash common.Hash) (*types.Transaction, *types.Receipt, error) {
	var (
		tx      *types.Transaction
		receipt *types.Receipt
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		var pending bool
		tx, pending, err = o.client.TransactionByHash(gctx, hash)
		if err != nil {
			return err
		}
		if pending {
			return ethereum.NotFound
		}
		return nil
	})
	g.Go(func() error {
		var err error
		receipt, err = o.client.TransactionReceipt(gctx, hash)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tx, receipt, nil
}
