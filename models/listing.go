package models

import "math/big"

// Listing é a oferta de venda exatamente como está gravada no contrato do mercado secundário.
type Listing struct {
	InternalID *big.Int
	Token      string
	Amount     *big.Int
	Price      *big.Int // Preço total da oferta, em unidades do BRLX
	Seller     string
	IsSold     bool
	IsCanceled bool
}

// Visible indica se a oferta ainda pode ser exibida.
func (l Listing) Visible() bool {
	return !l.IsSold && !l.IsCanceled
}

// Order é a oferta enriquecida com os dados do título local correspondente.
type Order struct {
	InternalID     string `json:"internalId"`
	Token          string `json:"token"`
	Symbol         string `json:"symbol"`
	Name           string `json:"name"`
	ExpirationDate string `json:"expirationDate"`
	Yield          int64  `json:"yield"`
	YieldPercent   string `json:"yieldPercent"`
	Quantity       string `json:"quantity"`
	SellPrice      string `json:"sellPrice"`
	Seller         string `json:"seller"`
	IsSold         bool   `json:"isSold"`
	IsCanceled     bool   `json:"isCanceled"`
}
