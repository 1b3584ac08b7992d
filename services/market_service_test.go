package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/tpf/chain"
	"github.com/ferreirogomes/tpf/models"
	"github.com/ferreirogomes/tpf/services"
)

var (
	sellerAddr   = common.HexToAddress("0x3333333333333333333333333333333333333333")
	unknownToken = common.HexToAddress("0x00000000000000000000000000000000000000ff")
)

func newMarketService(t *testing.T, c *MockChain, store *MockTPFStore) *services.MarketService {
	s, err := services.NewMarketService(c, store, brlxAddr, 6, 16)
	require.NoError(t, err)
	return s
}

func listing(id int64, token common.Address, sold, canceled bool) models.Listing {
	return models.Listing{
		InternalID: bigInt(id),
		Token:      token.Hex(),
		Amount:     bigInt(5_000_000),
		Price:      bigInt(5_100_000_000),
		Seller:     sellerAddr.Hex(),
		IsSold:     sold,
		IsCanceled: canceled,
	}
}

func setupBook(c *MockChain, store *MockTPFStore) {
	c.On("ListingCount").Return(uint64(4), nil)
	c.On("Listing", bigEq(0)).Return(listing(0, tpfContract, false, false), nil)
	c.On("Listing", bigEq(1)).Return(listing(1, tpfContract, true, false), nil)
	c.On("Listing", bigEq(2)).Return(listing(2, tpfContract, false, true), nil)
	c.On("Listing", bigEq(3)).Return(listing(3, unknownToken, false, false), nil)
	store.On("FindByContractAddress", tpfContract.Hex()).Return(sampleTPF(), true, nil)
	store.On("FindByContractAddress", unknownToken.Hex()).Return(models.TPF{}, false, nil)
}

func TestListOrdersRejectsListingCountAboveLimit(t *testing.T) {
	c := new(MockChain)
	store := new(MockTPFStore)
	service := newMarketService(t, c, store)
	service.MaxListings = 3

	c.On("ListingCount").Return(uint64(1)<<62, nil).Once()

	_, err := service.ListOrders(context.Background(), services.OrderFilter{})
	assert.ErrorIs(t, err, services.ErrTooManyListings)
	c.AssertNotCalled(t, "Listing", mock.Anything)
	assert.Equal(t, uint64(services.DefaultMaxListings), newMarketService(t, new(MockChain), new(MockTPFStore)).MaxListings)
}

// TestListOrdersHidesSoldCanceledAndUnknown verifica o filtro do livro de ofertas
func TestListOrdersHidesSoldCanceledAndUnknown(t *testing.T) {
	c := new(MockChain)
	store := new(MockTPFStore)
	setupBook(c, store)
	service := newMarketService(t, c, store)

	orders, err := service.ListOrders(context.Background(), services.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	order := orders[0]
	assert.Equal(t, "0", order.InternalID)
	assert.Equal(t, "LTN2027", order.Symbol)
	assert.Equal(t, "Tesouro Prefixado 2027", order.Name)
	assert.Equal(t, "01/01/2026", order.ExpirationDate)
	assert.Equal(t, "10.00%", order.YieldPercent)
	assert.Equal(t, "5", order.Quantity)
	assert.Equal(t, "5100", order.SellPrice)
	assert.False(t, order.IsSold)
	assert.False(t, order.IsCanceled)

	for _, o := range orders {
		assert.False(t, o.IsSold || o.IsCanceled)
	}
}

func TestListOrdersFilters(t *testing.T) {
	c := new(MockChain)
	store := new(MockTPFStore)
	setupBook(c, store)
	service := newMarketService(t, c, store)

	bySeller, err := service.ListOrders(context.Background(), services.OrderFilter{Seller: "0x3333333333333333333333333333333333333333"})
	require.NoError(t, err)
	assert.Len(t, bySeller, 1)

	otherSeller, err := service.ListOrders(context.Background(), services.OrderFilter{Seller: investorAddr.Hex()})
	require.NoError(t, err)
	assert.Empty(t, otherSeller)

	search, err := service.ListOrders(context.Background(), services.OrderFilter{Search: "prefixádo"})
	require.NoError(t, err)
	assert.Len(t, search, 1)

	noMatch, err := service.ListOrders(context.Background(), services.OrderFilter{Search: "ipca"})
	require.NoError(t, err)
	assert.Empty(t, noMatch)
}

func TestListOrdersFailsWhenListingReadFails(t *testing.T) {
	c := new(MockChain)
	store := new(MockTPFStore)
	service := newMarketService(t, c, store)

	c.On("ListingCount").Return(uint64(1), nil)
	c.On("Listing", bigEq(0)).Return(models.Listing{}, errors.New("rpc down"))

	_, err := service.ListOrders(context.Background(), services.OrderFilter{})
	assert.Error(t, err)
}

func TestPrepareApproveBuyUsesTotalPrice(t *testing.T) {
	c := new(MockChain)
	service := newMarketService(t, c, new(MockTPFStore))

	c.On("Market").Return(marketAddr)
	c.On("Listing", bigEq(0)).Return(listing(0, tpfContract, false, false), nil)
	c.On("PrepareApprove", investorAddr, brlxAddr, marketAddr, bigEq(5_100_000_000)).Return(unsigned(investorAddr, brlxAddr), nil).Once()
	c.On("PrepareBuyListing", investorAddr, bigEq(0)).Return(unsigned(investorAddr, marketAddr), nil).Once()

	_, err := service.PrepareApproveBuy(context.Background(), investorAddr.Hex(), "0")
	require.NoError(t, err)
	_, err = service.PrepareBuyListing(context.Background(), investorAddr.Hex(), "0")
	require.NoError(t, err)
	c.AssertExpectations(t)
}

func TestPrepareBuyRejectsClosedListing(t *testing.T) {
	c := new(MockChain)
	service := newMarketService(t, c, new(MockTPFStore))

	c.On("Listing", bigEq(1)).Return(listing(1, tpfContract, true, false), nil)

	_, err := service.PrepareBuyListing(context.Background(), investorAddr.Hex(), "1")
	var verr *services.ValidationError
	assert.True(t, errors.As(err, &verr))
	c.AssertNotCalled(t, "PrepareBuyListing", mock.Anything, mock.Anything)
}

func TestPrepareListing(t *testing.T) {
	c := new(MockChain)
	store := new(MockTPFStore)
	service := newMarketService(t, c, store)

	req := services.ListingRequest{From: sellerAddr.Hex(), TPFID: "LTN2027", Quantity: "5", Price: "5100"}
	store.On("FindByID", "LTN2027").Return(sampleTPF(), true, nil)
	c.On("Market").Return(marketAddr)
	c.On("PrepareApprove", sellerAddr, tpfContract, marketAddr, bigEq(5_000_000)).Return(unsigned(sellerAddr, tpfContract), nil).Once()
	c.On("PrepareCreateListing", sellerAddr, tpfContract, bigEq(5_000_000), bigEq(5_100_000_000)).Return(unsigned(sellerAddr, marketAddr), nil).Once()

	_, err := service.PrepareApproveListing(context.Background(), req)
	require.NoError(t, err)
	_, err = service.PrepareCreateListing(context.Background(), req)
	require.NoError(t, err)
	c.AssertExpectations(t)
}

func TestPrepareCancelListingChecksSeller(t *testing.T) {
	c := new(MockChain)
	service := newMarketService(t, c, new(MockTPFStore))

	c.On("Listing", bigEq(0)).Return(listing(0, tpfContract, false, false), nil)
	c.On("PrepareCancelListing", sellerAddr, bigEq(0)).Return(unsigned(sellerAddr, marketAddr), nil).Once()

	_, err := service.PrepareCancelListing(context.Background(), investorAddr.Hex(), "0")
	var verr *services.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = service.PrepareCancelListing(context.Background(), sellerAddr.Hex(), "0")
	require.NoError(t, err)

	_, err = service.PrepareCancelListing(context.Background(), sellerAddr.Hex(), "abc")
	assert.True(t, errors.As(err, &verr))
}

func TestAdminBuyListingPartialFlow(t *testing.T) {
	c := new(MockChain)
	signer := &MockSigner{address: adminAddr}
	service := newMarketService(t, c, new(MockTPFStore))
	service.Flow = services.NewFlowRunner(c, signer, nil)

	approveTx, buyTx := unsigned(adminAddr, brlxAddr), unsigned(adminAddr, marketAddr)
	h1 := common.HexToHash("0x01")
	c.On("Market").Return(marketAddr)
	c.On("Listing", bigEq(0)).Return(listing(0, tpfContract, false, false), nil)
	c.On("PrepareApprove", adminAddr, brlxAddr, marketAddr, bigEq(5_100_000_000)).Return(approveTx, nil).Once()
	c.On("PrepareBuyListing", adminAddr, bigEq(0)).Return(buyTx, nil).Once()
	signer.On("Send", "approve", approveTx).Return(h1, nil).Once()
	signer.On("Send", "buyListing", buyTx).Return(common.Hash{}, errors.New("nonce too low")).Once()
	c.On("WaitTransaction", h1).Return(receiptOK(), nil).Once()

	result, err := service.AdminBuyListing(context.Background(), "0")
	assert.ErrorIs(t, err, services.ErrPartialFlow)
	assert.Equal(t, h1.Hex(), result.ApproveHash)
}

var (
	_ services.Chain  = (*chain.Client)(nil)
	_ services.Signer = (*chain.KeyWallet)(nil)
)
