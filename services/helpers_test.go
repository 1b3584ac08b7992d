package services_test

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

// bigEq casa um *big.Int pelo valor.
func bigEq(v int64) interface{} {
	want := big.NewInt(v)
	return mock.MatchedBy(func(got *big.Int) bool {
		return got != nil && got.Cmp(want) == 0
	})
}

func bigInt(v int64) *big.Int {
	return big.NewInt(v)
}

func receiptOK() *types.Receipt {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(100)}
}

func anyTransaction() interface{} {
	return mock.AnythingOfType("models.Transaction")
}
