package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ferreirogomes/tpf/models"
)

// PrepareCreateListing cria uma oferta de venda de amount do token pelo preço total price.
// Exige approve prévio do token para o mercado.
func (c *Client) PrepareCreateListing(ctx context.Context, from, token common.Address, amount, price *big.Int) (*UnsignedTx, error) {
	return c.build(ctx, MarketABI, from, c.market, "createListing", []interface{}{token, amount, price})
}

// PrepareCancelListing cancela uma oferta do vendedor.
func (c *Client) PrepareCancelListing(ctx context.Context, from common.Address, listingID *big.Int) (*UnsignedTx, error) {
	return c.build(ctx, MarketABI, from, c.market, "cancelListing", []interface{}{listingID})
}

// PrepareBuyListing compra uma oferta. Exige approve prévio do BRLX (preço total) para o mercado.
func (c *Client) PrepareBuyListing(ctx context.Context, from common.Address, listingID *big.Int) (*UnsignedTx, error) {
	return c.build(ctx, MarketABI, from, c.market, "buyListing", []interface{}{listingID})
}

// ListingCount retorna quantas ofertas já foram criadas no mercado.
func (c *Client) ListingCount(ctx context.Context) (uint64, error) {
	n, err := c.callBig(ctx, MarketABI, c.market, "listingIds")
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("quantidade de ofertas fora do intervalo: %s", n)
	}
	return n.Uint64(), nil
}

// Listing lê uma oferta do mercado.
func (c *Client) Listing(ctx context.Context, id *big.Int) (models.Listing, error) {
	values, err := c.call(ctx, MarketABI, c.market, "listings", id)
	if err != nil {
		return models.Listing{}, err
	}
	if len(values) != 7 {
		return models.Listing{}, fmt.Errorf("listings retornou %d valores", len(values))
	}

	internalID, ok1 := values[0].(*big.Int)
	token, ok2 := values[1].(common.Address)
	amount, ok3 := values[2].(*big.Int)
	price, ok4 := values[3].(*big.Int)
	seller, ok5 := values[4].(common.Address)
	isSold, ok6 := values[5].(bool)
	isCanceled, ok7 := values[6].(bool)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return models.Listing{}, fmt.Errorf("oferta %s com formato inesperado", id)
	}

	return models.Listing{
		InternalID: internalID,
		Token:      token.Hex(),
		Amount:     amount,
		Price:      price,
		Seller:     seller.Hex(),
		IsSold:     isSold,
		IsCanceled: isCanceled,
	}, nil
}
