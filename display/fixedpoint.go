// Package display concentra as conversões e formatações usadas para exibir valores
// vindos da blockchain: deslocamento de ponto fixo, percentuais, datas, busca e paginação.
package display

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrNegativeAmount é retornado quando um valor negativo é convertido para unidades on-chain.
var ErrNegativeAmount = errors.New("valor não pode ser negativo")

// Shift desloca o ponto decimal de v por places casas (positivo multiplica por 10^places).
func Shift(v decimal.Decimal, places int32) decimal.Decimal {
	return v.Shift(places)
}

// ToUnits converte um valor humano para o inteiro on-chain do token.
// Casas além de decimals são descartadas, como o parseInt do portal fazia.
func ToUnits(amount decimal.Decimal, decimals uint8) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	return amount.Shift(int32(decimals)).Truncate(0).BigInt(), nil
}

// ParseUnits lê um valor decimal em texto e converte para unidades on-chain.
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("valor inválido %q: %w", s, err)
	}
	return ToUnits(amount, decimals)
}

// FromUnits converte um inteiro on-chain para o valor humano do token.
func FromUnits(units *big.Int, decimals uint8) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -int32(decimals))
}
