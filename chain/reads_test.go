package chain_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/tpf/chain"
)

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestBalanceOf(t *testing.T) {
	backend := new(MockBackend)
	client := newTestClient(backend)

	backend.On("CallContract", callTo(brlx, chain.ERC20ABI, "balanceOf")).
		Return(packOutputs(chain.ERC20ABI, "balanceOf", big.NewInt(1_500_000)), nil).Once()

	balance, err := client.BalanceOf(testCtx(t), brlx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), balance.Int64())
}

func TestUnitPriceAndPreview(t *testing.T) {
	backend := new(MockBackend)
	client := newTestClient(backend)
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	backend.On("CallContract", callTo(tpfAddr, chain.TPFABI, "unitPriceAt")).
		Return(packOutputs(chain.TPFABI, "unitPriceAt", big.NewInt(1_020_000)), nil).Once()
	backend.On("CallContract", callTo(tpfAddr, chain.TPFABI, "previewDepositAt")).
		Return(packOutputs(chain.TPFABI, "previewDepositAt", big.NewInt(980_392)), nil).Once()

	price, err := client.UnitPrice(testCtx(t), tpfAddr, at)
	require.NoError(t, err)
	assert.Equal(t, int64(1_020_000), price.Int64())

	shares, err := client.PreviewDeposit(testCtx(t), tpfAddr, big.NewInt(1_000_000), at)
	require.NoError(t, err)
	assert.Equal(t, int64(980_392), shares.Int64())
}

func TestIsFrozen(t *testing.T) {
	backend := new(MockBackend)
	client := newTestClient(backend)

	backend.On("CallContract", callTo(tpfAddr, chain.TPFABI, "isFrozen")).
		Return(packOutputs(chain.TPFABI, "isFrozen", true), nil).Once()

	frozen, err := client.IsFrozen(testCtx(t), tpfAddr, user)
	require.NoError(t, err)
	assert.True(t, frozen)
}

func TestListingDecodesTuple(t *testing.T) {
	backend := new(MockBackend)
	client := newTestClient(backend)

	backend.On("CallContract", callTo(market, chain.MarketABI, "listingIds")).
		Return(packOutputs(chain.MarketABI, "listingIds", big.NewInt(2)), nil).Once()
	backend.On("CallContract", callTo(market, chain.MarketABI, "listings")).
		Return(packOutputs(chain.MarketABI, "listings",
			big.NewInt(1), tpfAddr, big.NewInt(5_000_000), big.NewInt(5_100_000), user, false, true), nil).Once()

	count, err := client.ListingCount(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	listing, err := client.Listing(testCtx(t), big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), listing.InternalID.Int64())
	assert.Equal(t, tpfAddr.Hex(), listing.Token)
	assert.Equal(t, int64(5_000_000), listing.Amount.Int64())
	assert.Equal(t, int64(5_100_000), listing.Price.Int64())
	assert.Equal(t, user.Hex(), listing.Seller)
	assert.False(t, listing.IsSold)
	assert.True(t, listing.IsCanceled)
	assert.False(t, listing.Visible())
}

func TestCallErrorIsWrapped(t *testing.T) {
	backend := new(MockBackend)
	client := newTestClient(backend)

	backend.On("CallContract", callTo(brlx, chain.ERC20ABI, "totalSupply")).
		Return(nil, errors.New("execution reverted")).Once()

	_, err := client.TotalSupply(testCtx(t), brlx)
	assert.ErrorContains(t, err, "totalSupply")
}

func TestParseAddress(t *testing.T) {
	addr, err := chain.ParseAddress("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, user, addr)

	_, err = chain.ParseAddress("0x123")
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)
}

func TestNativeBalance(t *testing.T) {
	backend := new(MockBackend)
	client := newTestClient(backend)

	backend.On("BalanceAt", user).Return(big.NewInt(42), nil).Once()

	balance, err := client.NativeBalance(testCtx(t), user)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance.Int64())
}
