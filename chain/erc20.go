package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PrepareApprove autoriza spender a movimentar amount do token em nome de from.
// A estimativa de gás recebe folga de 50%.
func (c *Client) PrepareApprove(ctx context.Context, from, token, spender common.Address, amount *big.Int) (*UnsignedTx, error) {
	return c.build(ctx, ERC20ABI, from, token, "approve", []interface{}{spender, amount}, withGasEstimate())
}

// PrepareTransfer transfere amount do token de from para to.
func (c *Client) PrepareTransfer(ctx context.Context, from, token, to common.Address, amount *big.Int) (*UnsignedTx, error) {
	return c.build(ctx, ERC20ABI, from, token, "transfer", []interface{}{to, amount})
}

// PrepareMint emite amount do token para to. Só o administrador do token pode assinar.
func (c *Client) PrepareMint(ctx context.Context, from, token, to common.Address, amount *big.Int) (*UnsignedTx, error) {
	return c.build(ctx, ERC20ABI, from, token, "mint", []interface{}{to, amount})
}

// BalanceOf retorna o saldo de account no token.
func (c *Client) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	return c.callBig(ctx, ERC20ABI, token, "balanceOf", account)
}

// TotalSupply retorna o total emitido do token.
func (c *Client) TotalSupply(ctx context.Context, token common.Address) (*big.Int, error) {
	return c.callBig(ctx, ERC20ABI, token, "totalSupply")
}
