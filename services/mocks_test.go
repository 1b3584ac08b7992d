package services_test

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"

	"github.com/ferreirogomes/tpf/chain"
	"github.com/ferreirogomes/tpf/models"
	"github.com/ferreirogomes/tpf/services"
)

// MockChain é uma implementação mock do services.Chain para testes de unidade
type MockChain struct {
	mock.Mock
}

func (m *MockChain) Market() common.Address {
	args := m.Called()
	return args.Get(0).(common.Address)
}
func (m *MockChain) PrepareApprove(ctx context.Context, from, token, spender common.Address, amount *big.Int) (*chain.UnsignedTx, error) {
	args := m.Called(from, token, spender, amount)
	return txOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) PrepareMint(ctx context.Context, from, token, to common.Address, amount *big.Int) (*chain.UnsignedTx, error) {
	args := m.Called(from, token, to, amount)
	return txOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) PrepareDeposit(ctx context.Context, from, contract common.Address, assets *big.Int, receiver common.Address) (*chain.UnsignedTx, error) {
	args := m.Called(from, contract, assets, receiver)
	return txOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) PrepareRedeem(ctx context.Context, from, contract common.Address, shares *big.Int, receiver, owner common.Address) (*chain.UnsignedTx, error) {
	args := m.Called(from, contract, shares, receiver, owner)
	return txOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) PrepareWithdraw(ctx context.Context, from, contract common.Address, assets *big.Int, receiver, owner common.Address) (*chain.UnsignedTx, error) {
	args := m.Called(from, contract, assets, receiver, owner)
	return txOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) PrepareSetFrozen(ctx context.Context, from, contract, wallet common.Address, frozen bool) (*chain.UnsignedTx, error) {
	args := m.Called(from, contract, wallet, frozen)
	return txOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) PrepareCreateListing(ctx context.Context, from, token common.Address, amount, price *big.Int) (*chain.UnsignedTx, error) {
	args := m.Called(from, token, amount, price)
	return txOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) PrepareCancelListing(ctx context.Context, from common.Address, listingID *big.Int) (*chain.UnsignedTx, error) {
	args := m.Called(from, listingID)
	return txOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) PrepareBuyListing(ctx context.Context, from common.Address, listingID *big.Int) (*chain.UnsignedTx, error) {
	args := m.Called(from, listingID)
	return txOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) PrepareApproveKyc(ctx context.Context, from, manager common.Address, in chain.KYCApproval) (*chain.UnsignedTx, error) {
	args := m.Called(from, manager, in)
	return txOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	args := m.Called(token, account)
	return bigOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	args := m.Called(account)
	return bigOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) UnitPrice(ctx context.Context, contract common.Address, at time.Time) (*big.Int, error) {
	args := m.Called(contract, at)
	return bigOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) PreviewDeposit(ctx context.Context, contract common.Address, assets *big.Int, at time.Time) (*big.Int, error) {
	args := m.Called(contract, assets, at)
	return bigOrNil(args.Get(0)), args.Error(1)
}
func (m *MockChain) IsFrozen(ctx context.Context, contract, wallet common.Address) (bool, error) {
	args := m.Called(contract, wallet)
	return args.Bool(0), args.Error(1)
}
func (m *MockChain) ListingCount(ctx context.Context) (uint64, error) {
	args := m.Called()
	return args.Get(0).(uint64), args.Error(1)
}
func (m *MockChain) Listing(ctx context.Context, id *big.Int) (models.Listing, error) {
	args := m.Called(id)
	return args.Get(0).(models.Listing), args.Error(1)
}
func (m *MockChain) WaitTransaction(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	args := m.Called(hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}
func (m *MockChain) SendRawTransaction(ctx context.Context, raw string) (*types.Transaction, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transaction), args.Error(1)
}

func txOrNil(v interface{}) *chain.UnsignedTx {
	if v == nil {
		return nil
	}
	return v.(*chain.UnsignedTx)
}

func bigOrNil(v interface{}) *big.Int {
	if v == nil {
		return nil
	}
	return v.(*big.Int)
}

// MockSigner é uma implementação mock do services.Signer
type MockSigner struct {
	mock.Mock
	address common.Address
}

func (m *MockSigner) Address() common.Address {
	return m.address
}
func (m *MockSigner) Send(ctx context.Context, kind string, tx *chain.UnsignedTx) (common.Hash, error) {
	args := m.Called(kind, tx)
	return args.Get(0).(common.Hash), args.Error(1)
}
func (m *MockSigner) SignMessage(message []byte) ([]byte, error) {
	args := m.Called(message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockTPFStore é uma implementação mock do services.TPFStore
type MockTPFStore struct {
	mock.Mock
}

func (m *MockTPFStore) Create(ctx context.Context, tpf models.TPF) (models.TPF, error) {
	args := m.Called(tpf)
	return args.Get(0).(models.TPF), args.Error(1)
}
func (m *MockTPFStore) FindByID(ctx context.Context, id string) (models.TPF, bool, error) {
	args := m.Called(id)
	return args.Get(0).(models.TPF), args.Bool(1), args.Error(2)
}
func (m *MockTPFStore) FindByContractAddress(ctx context.Context, address string) (models.TPF, bool, error) {
	args := m.Called(address)
	return args.Get(0).(models.TPF), args.Bool(1), args.Error(2)
}
func (m *MockTPFStore) List(ctx context.Context) ([]models.TPF, error) {
	args := m.Called()
	return args.Get(0).([]models.TPF), args.Error(1)
}

// MockUserStore é uma implementação mock do services.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(user)
	return args.Get(0).(models.User), args.Error(1)
}
func (m *MockUserStore) FindByID(ctx context.Context, id string) (models.User, bool, error) {
	args := m.Called(id)
	return args.Get(0).(models.User), args.Bool(1), args.Error(2)
}
func (m *MockUserStore) FindByPublicKey(ctx context.Context, publicKey string) (models.User, bool, error) {
	args := m.Called(publicKey)
	return args.Get(0).(models.User), args.Bool(1), args.Error(2)
}
func (m *MockUserStore) TouchLogin(ctx context.Context, id string, at time.Time) (models.User, error) {
	args := m.Called(id, at)
	return args.Get(0).(models.User), args.Error(1)
}
func (m *MockUserStore) List(ctx context.Context) ([]models.User, error) {
	args := m.Called()
	return args.Get(0).([]models.User), args.Error(1)
}

// MockTransactionStore é uma implementação mock do services.TransactionStore
type MockTransactionStore struct {
	mock.Mock
}

func (m *MockTransactionStore) SaveTransaction(ctx context.Context, tx models.Transaction) error {
	args := m.Called(tx)
	return args.Error(0)
}
func (m *MockTransactionStore) GetTransaction(ctx context.Context, hash string) (models.Transaction, bool, error) {
	args := m.Called(hash)
	return args.Get(0).(models.Transaction), args.Bool(1), args.Error(2)
}
func (m *MockTransactionStore) UpdateTransactionStatus(ctx context.Context, hash string, status models.TransactionStatus, blockNumber *int64) error {
	args := m.Called(hash, status, blockNumber)
	return args.Error(0)
}

// MockDeployer é uma implementação mock do services.Deployer
type MockDeployer struct {
	mock.Mock
}

func (m *MockDeployer) Deploy(ctx context.Context, req services.DeployRequest) (services.DeployResponse, error) {
	args := m.Called(req)
	return args.Get(0).(services.DeployResponse), args.Error(1)
}

// MockKYC é uma implementação mock do services.KYCApprover
type MockKYC struct {
	mock.Mock
}

func (m *MockKYC) Approve(ctx context.Context, wallet string, country int) (models.KYC, error) {
	args := m.Called(wallet, country)
	return args.Get(0).(models.KYC), args.Error(1)
}

var (
	adminAddr    = common.HexToAddress("0x000000000000000000000000000000000000a11e")
	investorAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	brlxAddr     = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	tpfContract  = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	marketAddr   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	fixedNow     = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func sampleTPF() models.TPF {
	return models.TPF{
		ID:              "LTN2027",
		Symbol:          "LTN2027",
		Name:            "Tesouro Prefixado 2027",
		ContractAddress: tpfContract.Hex(),
		Decimals:        6,
		StartTimestamp:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		DurationDays:    365,
		Asset:           brlxAddr.Hex(),
		Yield:           1000,
		MaxAssets:       1_000_000,
		MinimumValue:    "1000.000000",
	}
}

func unsigned(from, to common.Address) *chain.UnsignedTx {
	return &chain.UnsignedTx{From: from, To: to}
}
