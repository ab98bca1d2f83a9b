package chain

import (
	"context"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysterylink/button-server/internal/domain"
	"github.com/mysterylink/button-server/internal/logger"
	"github.com/mysterylink/button-server/internal/mocks"
)

var testChainID = big.NewInt(8453)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testConfig() Config {
	return Config{
		MaxAttempts:       3,
		BaseDelay:         time.Millisecond,
		BackoffMultiplier: 1.2,
		MaxElapsedTime:    time.Second,
	}
}

// signedTransfer builds a real signed transaction so sender recovery works
func signedTransfer(t *testing.T, value *big.Int) (*types.Transaction, common.Address) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	to := common.HexToAddress("0x8617E340B3D01FA5F11F306F4090FD50E238070D")
	tx := types.MustSignNewTx(key, types.LatestSignerForChainID(testChainID), &types.DynamicFeeTx{
		ChainID:   testChainID,
		Nonce:     1,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(100),
		Gas:       21000,
		To:        &to,
		Value:     value,
	})
	return tx, crypto.PubkeyToAddress(key.PublicKey)
}

func TestObserve(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed hash rejected without any network call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockEthClient(ctrl)
		o := NewObserver(client, testConfig())

		_, err := o.Observe(ctx, "0x1234")
		assert.ErrorIs(t, err, domain.ErrInvalidHashFormat)
	})

	t.Run("successful transaction observed on first attempt", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockEthClient(ctrl)

		tx, sender := signedTransfer(t, big.NewInt(20000000000000))
		hash := tx.Hash()
		receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful}

		client.EXPECT().TransactionByHash(gomock.Any(), hash).Return(tx, false, nil)
		client.EXPECT().TransactionReceipt(gomock.Any(), hash).Return(receipt, nil)

		o := NewObserver(client, testConfig())
		obs, err := o.Observe(ctx, hash.Hex())
		require.NoError(t, err)
		assert.True(t, obs.Succeeded)
		assert.Equal(t, sender.Hex(), obs.Sender)
		assert.Equal(t, "0x8617E340B3D01FA5F11F306F4090FD50E238070D", obs.Recipient)
		assert.Equal(t, big.NewInt(20000000000000), obs.Value)
	})

	t.Run("reverted transaction observed as failed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockEthClient(ctrl)

		tx, _ := signedTransfer(t, big.NewInt(1))
		hash := tx.Hash()
		receipt := &types.Receipt{Status: types.ReceiptStatusFailed}

		client.EXPECT().TransactionByHash(gomock.Any(), hash).Return(tx, false, nil)
		client.EXPECT().TransactionReceipt(gomock.Any(), hash).Return(receipt, nil)

		o := NewObserver(client, testConfig())
		obs, err := o.Observe(ctx, hash.Hex())
		require.NoError(t, err)
		assert.False(t, obs.Succeeded)
	})

	t.Run("retries while the node has not indexed the transaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockEthClient(ctrl)

		tx, _ := signedTransfer(t, big.NewInt(1))
		hash := tx.Hash()
		receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful}

		first := client.EXPECT().TransactionByHash(gomock.Any(), hash).
			Return(nil, false, ethereum.NotFound)
		client.EXPECT().TransactionByHash(gomock.Any(), hash).
			Return(tx, false, nil).After(first)
		client.EXPECT().TransactionReceipt(gomock.Any(), hash).
			Return(receipt, nil).Times(2)

		o := NewObserver(client, testConfig())
		obs, err := o.Observe(ctx, hash.Hex())
		require.NoError(t, err)
		assert.True(t, obs.Succeeded)
	})

	t.Run("pending transaction counts as not yet visible", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockEthClient(ctrl)

		tx, _ := signedTransfer(t, big.NewInt(1))
		hash := tx.Hash()
		receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful}

		first := client.EXPECT().TransactionByHash(gomock.Any(), hash).
			Return(tx, true, nil)
		client.EXPECT().TransactionByHash(gomock.Any(), hash).
			Return(tx, false, nil).After(first)
		client.EXPECT().TransactionReceipt(gomock.Any(), hash).
			Return(receipt, nil).Times(2)

		o := NewObserver(client, testConfig())
		obs, err := o.Observe(ctx, hash.Hex())
		require.NoError(t, err)
		assert.True(t, obs.Succeeded)
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockEthClient(ctrl)

		tx, _ := signedTransfer(t, big.NewInt(1))
		hash := tx.Hash()

		client.EXPECT().TransactionByHash(gomock.Any(), hash).
			Return(nil, false, ethereum.NotFound).Times(3)
		client.EXPECT().TransactionReceipt(gomock.Any(), hash).
			Return(nil, ethereum.NotFound).Times(3)

		o := NewObserver(client, testConfig())
		_, err := o.Observe(ctx, hash.Hex())
		assert.ErrorIs(t, err, domain.ErrTransactionNotYetVisible)
	})

	t.Run("node phrasing of not-found is retried too", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockEthClient(ctrl)

		tx, _ := signedTransfer(t, big.NewInt(1))
		hash := tx.Hash()

		client.EXPECT().TransactionByHash(gomock.Any(), hash).
			Return(nil, false, errors.New("transaction 0xabc could not be processed")).Times(3)
		client.EXPECT().TransactionReceipt(gomock.Any(), hash).
			Return(nil, errors.New("receipt not found")).Times(3)

		o := NewObserver(client, testConfig())
		_, err := o.Observe(ctx, hash.Hex())
		assert.ErrorIs(t, err, domain.ErrTransactionNotYetVisible)
	})

	t.Run("fatal node error aborts without retrying", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockEthClient(ctrl)

		tx, _ := signedTransfer(t, big.NewInt(1))
		hash := tx.Hash()

		client.EXPECT().TransactionByHash(gomock.Any(), hash).Return(tx, false, nil)
		client.EXPECT().TransactionReceipt(gomock.Any(), hash).
			Return(nil, errors.New("execution aborted"))

		o := NewObserver(client, testConfig())
		_, err := o.Observe(ctx, hash.Hex())
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrTransactionNotYetVisible)
		assert.Contains(t, err.Error(), "execution aborted")
	})
}
