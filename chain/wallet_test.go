package chain_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/tpf/chain"
)

func newTestWallet(t *testing.T, backend *MockBackend) *chain.KeyWallet {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	wallet, err := chain.NewKeyWallet(hexutil.Encode(crypto.FromECDSA(key)), 1337, backend)
	require.NoError(t, err)
	return wallet
}

func TestKeyWalletSendEstimatesAndSigns(t *testing.T) {
	backend := new(MockBackend)
	wallet := newTestWallet(t, backend)
	price := hexutil.Big(*big.NewInt(5))
	value := hexutil.Big(*big.NewInt(0))
	utx := &chain.UnsignedTx{From: wallet.Address(), To: brlx, Data: []byte{0x01}, Value: &value, Nonce: 4, GasPrice: &price}

	backend.On("EstimateGas", mock.AnythingOfType("ethereum.CallMsg")).Return(uint64(40_000), nil).Once()
	backend.On("SendTransaction", mock.MatchedBy(func(tx *types.Transaction) bool {
		sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1337)), tx)
		return err == nil && sender == wallet.Address() && tx.Gas() == 60_000 && tx.Nonce() == 4
	})).Return(nil).Once()

	hash, err := wallet.Send(testCtx(t), "mint", utx)
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, hash)
	backend.AssertExpectations(t)
}

func TestKeyWalletRejectsForeignSender(t *testing.T) {
	backend := new(MockBackend)
	wallet := newTestWallet(t, backend)
	price := hexutil.Big(*big.NewInt(5))
	value := hexutil.Big(*big.NewInt(0))

	_, err := wallet.Send(testCtx(t), "mint", &chain.UnsignedTx{From: user, To: brlx, Value: &value, GasPrice: &price})
	assert.Error(t, err)
	backend.AssertNotCalled(t, "SendTransaction", mock.Anything)
}

func TestKeyWalletSignMessage(t *testing.T) {
	wallet := newTestWallet(t, new(MockBackend))
	message := []byte("claim")

	sig, err := wallet.SignMessage(message)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.True(t, sig[64] == 27 || sig[64] == 28)

	recoverable := append([]byte(nil), sig...)
	recoverable[64] -= 27
	pub, err := crypto.SigToPub(accounts.TextHash(message), recoverable)
	require.NoError(t, err)
	assert.Equal(t, wallet.Address(), crypto.PubkeyToAddress(*pub))
}

func TestNewKeyWalletInvalidKey(t *testing.T) {
	_, err := chain.NewKeyWallet("not-a-key", 1, new(MockBackend))
	assert.Error(t, err)
}
