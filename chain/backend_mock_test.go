package chain_test

import (
	"bytes"
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

// MockBackend é uma implementação mock do chain.Backend para testes de unidade
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	args := m.Called(account)
	return args.Get(0).(uint64), args.Error(1)
}
func (m *MockBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called()
	return args.Get(0).(*big.Int), args.Error(1)
}
func (m *MockBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	args := m.Called(msg)
	return args.Get(0).(uint64), args.Error(1)
}
func (m *MockBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
func (m *MockBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	args := m.Called(txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}
func (m *MockBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	args := m.Called(tx)
	return args.Error(0)
}
func (m *MockBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	args := m.Called(account)
	return args.Get(0).(*big.Int), args.Error(1)
}

// callTo casa chamadas de leitura pelo contrato de destino e pelo seletor do método.
func callTo(contract common.Address, contractABI abi.ABI, method string) interface{} {
	selector := contractABI.Methods[method].ID
	return mock.MatchedBy(func(msg ethereum.CallMsg) bool {
		return msg.To != nil && *msg.To == contract && len(msg.Data) >= 4 && bytes.Equal(msg.Data[:4], selector)
	})
}

// packOutputs codifica o retorno de method como o nó devolveria.
func packOutputs(contractABI abi.ABI, method string, values ...interface{}) []byte {
	out, err := contractABI.Methods[method].Outputs.Pack(values...)
	if err != nil {
		panic(err)
	}
	return out
}
