package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// PrepareDeposit investe assets (BRLX) no título, creditando as cotas para receiver.
// Exige approve prévio do BRLX para o contrato do título.
func (c *Client) PrepareDeposit(ctx context.Context, from, contract common.Address, assets *big.Int, receiver common.Address) (*UnsignedTx, error) {
	return c.build(ctx, TPFABI, from, contract, "deposit", []interface{}{assets, receiver})
}

// PrepareRedeem resgata shares cotas de owner, enviando o BRLX para receiver.
func (c *Client) PrepareRedeem(ctx context.Context, from, contract common.Address, shares *big.Int, receiver, owner common.Address) (*UnsignedTx, error) {
	return c.build(ctx, TPFABI, from, contract, "redeem", []interface{}{shares, receiver, owner})
}

// PrepareWithdraw saca assets (BRLX) do título para receiver.
func (c *Client) PrepareWithdraw(ctx context.Context, from, contract common.Address, assets *big.Int, receiver, owner common.Address) (*UnsignedTx, error) {
	return c.build(ctx, TPFABI, from, contract, "withdraw", []interface{}{assets, receiver, owner})
}

// PrepareSetFrozen congela (ou descongela) a carteira no título.
func (c *Client) PrepareSetFrozen(ctx context.Context, from, contract, wallet common.Address, frozen bool) (*UnsignedTx, error) {
	return c.build(ctx, TPFABI, from, contract, "setAddressFrozen", []interface{}{wallet, frozen})
}

// UnitPrice retorna o preço unitário do título no instante at, em unidades do BRLX.
func (c *Client) UnitPrice(ctx context.Context, contract common.Address, at time.Time) (*big.Int, error) {
	return c.callBig(ctx, TPFABI, contract, "unitPriceAt", big.NewInt(at.Unix()))
}

// PreviewDeposit simula quantas cotas assets comprariam no instante at.
func (c *Client) PreviewDeposit(ctx context.Context, contract common.Address, assets *big.Int, at time.Time) (*big.Int, error) {
	return c.callBig(ctx, TPFABI, contract, "previewDepositAt", assets, big.NewInt(at.Unix()))
}

// IsFrozen indica se a carteira está congelada no título.
func (c *Client) IsFrozen(ctx context.Context, contract, wallet common.Address) (bool, error) {
	values, err := c.call(ctx, TPFABI, contract, "isFrozen", wallet)
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, fmt.Errorf("isFrozen não retornou valor")
	}
	frozen, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("isFrozen retornou tipo inesperado %T", values[0])
	}
	return frozen, nil
}
