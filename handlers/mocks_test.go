package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/tpf/chain"
	"github.com/ferreirogomes/tpf/handlers"
	"github.com/ferreirogomes/tpf/models"
	"github.com/ferreirogomes/tpf/services"
)

const (
	adminToken = "segredo"
	wallet     = "0x1111111111111111111111111111111111111111"
)

// As interfaces embutidas fazem o teste falhar com panic se um método não sobrescrito for chamado.

type MockTPF struct {
	handlers.TPFAPI
	mock.Mock
}

func (m *MockTPF) Create(ctx context.Context, req services.CreateTPFRequest) (models.TPF, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.TPF), args.Error(1)
}

func (m *MockTPF) List(ctx context.Context) ([]models.TPF, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.TPF), args.Error(1)
}

func (m *MockTPF) Get(ctx context.Context, id string) (models.TPF, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.TPF), args.Error(1)
}

func (m *MockTPF) Simulate(ctx context.Context, id, amount string) (services.Simulation, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(services.Simulation), args.Error(1)
}

func (m *MockTPF) PrepareInvest(ctx context.Context, id, from, amount string) (*chain.UnsignedTx, error) {
	args := m.Called(ctx, id, from, amount)
	tx, _ := args.Get(0).(*chain.UnsignedTx)
	return tx, args.Error(1)
}

func (m *MockTPF) PrepareRedeem(ctx context.Context, id, from, shares string) (*chain.UnsignedTx, error) {
	args := m.Called(ctx, id, from, shares)
	tx, _ := args.Get(0).(*chain.UnsignedTx)
	return tx, args.Error(1)
}

func (m *MockTPF) Freeze(ctx context.Context, id, wallet string, frozen bool) (string, error) {
	args := m.Called(ctx, id, wallet, frozen)
	return args.String(0), args.Error(1)
}

func (m *MockTPF) AdminInvest(ctx context.Context, id, receiver, amount string) (services.FlowResult, error) {
	args := m.Called(ctx, id, receiver, amount)
	return args.Get(0).(services.FlowResult), args.Error(1)
}

type MockMarket struct {
	handlers.MarketAPI
	mock.Mock
}

func (m *MockMarket) ListOrders(ctx context.Context, filter services.OrderFilter) ([]models.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockMarket) PrepareCreateListing(ctx context.Context, req services.ListingRequest) (*chain.UnsignedTx, error) {
	args := m.Called(ctx, req)
	tx, _ := args.Get(0).(*chain.UnsignedTx)
	return tx, args.Error(1)
}

func (m *MockMarket) PrepareBuyListing(ctx context.Context, from, listingID string) (*chain.UnsignedTx, error) {
	args := m.Called(ctx, from, listingID)
	tx, _ := args.Get(0).(*chain.UnsignedTx)
	return tx, args.Error(1)
}

func (m *MockMarket) AdminBuyListing(ctx context.Context, listingID string) (services.FlowResult, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).(services.FlowResult), args.Error(1)
}

type MockTransactions struct {
	handlers.TransactionAPI
	mock.Mock
}

func (m *MockTransactions) Broadcast(ctx context.Context, raw, kind string) (models.Transaction, error) {
	args := m.Called(ctx, raw, kind)
	return args.Get(0).(models.Transaction), args.Error(1)
}

func (m *MockTransactions) Wait(ctx context.Context, hash string) (models.Transaction, error) {
	args := m.Called(ctx, hash)
	return args.Get(0).(models.Transaction), args.Error(1)
}

type MockUsers struct {
	handlers.UserAPI
	mock.Mock
}

func (m *MockUsers) Register(ctx context.Context, req services.RegisterRequest) (models.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUsers) List(ctx context.Context, search string, page, rowsPerPage int) (services.UserPage, error) {
	args := m.Called(ctx, search, page, rowsPerPage)
	return args.Get(0).(services.UserPage), args.Error(1)
}

func (m *MockUsers) Get(ctx context.Context, id string) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

type MockWallets struct {
	handlers.WalletAPI
	mock.Mock
}

func (m *MockWallets) Balances(ctx context.Context, address string) (services.Balances, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(services.Balances), args.Error(1)
}

func (m *MockWallets) MintBRLX(ctx context.Context, to, amount string) (string, error) {
	args := m.Called(ctx, to, amount)
	return args.String(0), args.Error(1)
}

type fixture struct {
	tpf     *MockTPF
	market  *MockMarket
	txs     *MockTransactions
	users   *MockUsers
	wallets *MockWallets
	router  http.Handler
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	f := &fixture{
		tpf:     &MockTPF{},
		market:  &MockMarket{},
		txs:     &MockTransactions{},
		users:   &MockUsers{},
		wallets: &MockWallets{},
	}
	f.router = handlers.NewRouter(handlers.Handlers{
		TPF:         handlers.NewTPFHandler(f.tpf),
		Market:      handlers.NewMarketHandler(f.market),
		Transaction: handlers.NewTransactionHandler(f.txs),
		User:        handlers.NewUserHandler(f.users),
		Wallet:      handlers.NewWalletHandler(f.wallets),
		AdminToken:  token,
	})
	t.Cleanup(func() {
		f.tpf.AssertExpectations(t)
		f.market.AssertExpectations(t)
		f.txs.AssertExpectations(t)
		f.users.AssertExpectations(t)
		f.wallets.AssertExpectations(t)
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var resp handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}
