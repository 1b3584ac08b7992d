package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ferreirogomes/tpf/chain"
	"github.com/ferreirogomes/tpf/display"
	"github.com/ferreirogomes/tpf/models"
)

// DefaultMaxListings limita quantas ofertas ListOrders aceita ler do contrato.
const DefaultMaxListings = 10_000

// ErrTooManyListings indica que o contrato informou mais ofertas do que o limite configurado.
var ErrTooManyListings = errors.New("mercado com ofertas acima do limite")

// MarketService lê o livro de ofertas do mercado secundário e monta as operações sobre ele.
type MarketService struct {
	Chain        Chain
	Store        TPFStore
	Flow         *FlowRunner
	BRLX         common.Address
	BRLXDecimals uint8
	MaxListings  uint64

	// tpfs guarda o título de cada token listado, pelo endereço em minúsculas.
	tpfs *lru.Cache[string, models.TPF]
}

func NewMarketService(c Chain, store TPFStore, brlx common.Address, brlxDecimals uint8, cacheSize int) (*MarketService, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, models.TPF](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar cache de títulos: %w", err)
	}
	return &MarketService{Chain: c, Store: store, BRLX: brlx, BRLXDecimals: brlxDecimals, MaxListings: DefaultMaxListings, tpfs: cache}, nil
}

// OrderFilter restringe o livro de ofertas.
type OrderFilter struct {
	Seller string
	Search string
}

// ListOrders lê todas as ofertas do contrato, descarta as vendidas, canceladas e as de tokens
// sem título local, e junta os dados do título.
func (s *MarketService) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	count, err := s.Chain.ListingCount(ctx)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("mercado secundário com %d ofertas", count)
	if s.MaxListings > 0 && count > s.MaxListings {
		return nil, fmt.Errorf("%w: %d ofertas, limite %d", ErrTooManyListings, count, s.MaxListings)
	}

	orders := make([]*models.Order, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i := uint64(0); i < count; i++ {
		i := i
		g.Go(func() error {
			listing, err := s.Chain.Listing(gctx, new(big.Int).SetUint64(i))
			if err != nil {
				return err
			}
			if !listing.Visible() {
				return nil
			}
			tpf, found, err := s.tpfForToken(gctx, listing.Token)
			if err != nil {
				return err
			}
			if !found {
				return nil
			}
			order := s.toOrder(listing, tpf)
			orders[i] = &order
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("falha ao ler ofertas do mercado: %w", err)
	}

	result := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o == nil {
			continue
		}
		if filter.Seller != "" && !strings.EqualFold(o.Seller, filter.Seller) {
			continue
		}
		if filter.Search != "" && !display.MatchesAny(filter.Search, o.Name, o.Symbol) {
			continue
		}
		result = append(result, *o)
	}
	return result, nil
}

func (s *MarketService) tpfForToken(ctx context.Context, token string) (models.TPF, bool, error) {
	key := strings.ToLower(token)
	if tpf, ok := s.tpfs.Get(key); ok {
		return tpf, true, nil
	}
	tpf, found, err := s.Store.FindByContractAddress(ctx, token)
	if err != nil || !found {
		return tpf, found, err
	}
	s.tpfs.Add(key, tpf)
	return tpf, true, nil
}

func (s *MarketService) toOrder(l models.Listing, tpf models.TPF) models.Order {
	return models.Order{
		InternalID:     l.InternalID.String(),
		Token:          l.Token,
		Symbol:         tpf.Symbol,
		Name:           tpf.Name,
		ExpirationDate: display.ExpirationDate(tpf.StartTimestamp, tpf.DurationDays),
		Yield:          tpf.Yield,
		YieldPercent:   display.YieldPercent(tpf.Yield),
		Quantity:       display.FromUnits(l.Amount, tpf.Decimals).String(),
		SellPrice:      display.FromUnits(l.Price, s.BRLXDecimals).String(),
		Seller:         l.Seller,
		IsSold:         l.IsSold,
		IsCanceled:     l.IsCanceled,
	}
}

// tpfToken resolve o título pelo id e valida o endereço do token.
func (s *MarketService) tpfToken(ctx context.Context, id string) (models.TPF, common.Address, error) {
	tpf, found, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return models.TPF{}, common.Address{}, err
	}
	if !found {
		return models.TPF{}, common.Address{}, fmt.Errorf("%w: título %s", ErrNotFound, id)
	}
	token, err := chain.ParseAddress(tpf.ContractAddress)
	if err != nil {
		return models.TPF{}, common.Address{}, fmt.Errorf("título %s com contrato inválido: %w", id, err)
	}
	return tpf, token, nil
}

// ListingRequest descreve uma nova oferta: quantity cotas do título tpfId pelo preço total price (BRLX).
type ListingRequest struct {
	From     string `json:"from" validate:"omitempty,eth_addr"`
	TPFID    string `json:"tpfId" validate:"required"`
	Quantity string `json:"quantity" validate:"required,numeric"`
	Price    string `json:"price" validate:"required,numeric"`
}

func (s *MarketService) listingUnits(tpf models.TPF, req ListingRequest) (*big.Int, *big.Int, error) {
	amount, err := display.ParseUnits(req.Quantity, tpf.Decimals)
	if err != nil {
		return nil, nil, invalidf("quantity: %v", err)
	}
	if amount.Sign() == 0 {
		return nil, nil, invalidf("quantity deve ser maior que zero")
	}
	price, err := display.ParseUnits(req.Price, s.BRLXDecimals)
	if err != nil {
		return nil, nil, invalidf("price: %v", err)
	}
	return amount, price, nil
}

// PrepareApproveListing autoriza o mercado a movimentar as cotas que serão ofertadas.
func (s *MarketService) PrepareApproveListing(ctx context.Context, req ListingRequest) (*chain.UnsignedTx, error) {
	tpf, token, err := s.tpfToken(ctx, req.TPFID)
	if err != nil {
		return nil, err
	}
	from, err := parseAddress("from", req.From)
	if err != nil {
		return nil, err
	}
	amount, _, err := s.listingUnits(tpf, req)
	if err != nil {
		return nil, err
	}
	return s.Chain.PrepareApprove(ctx, from, token, s.Chain.Market(), amount)
}

// PrepareCreateListing cria a oferta. Exige o approve de PrepareApproveListing minerado.
func (s *MarketService) PrepareCreateListing(ctx context.Context, req ListingRequest) (*chain.UnsignedTx, error) {
	tpf, token, err := s.tpfToken(ctx, req.TPFID)
	if err != nil {
		return nil, err
	}
	from, err := parseAddress("from", req.From)
	if err != nil {
		return nil, err
	}
	amount, price, err := s.listingUnits(tpf, req)
	if err != nil {
		return nil, err
	}
	return s.Chain.PrepareCreateListing(ctx, from, token, amount, price)
}

// PrepareCancelListing cancela a oferta do vendedor.
func (s *MarketService) PrepareCancelListing(ctx context.Context, from, listingID string) (*chain.UnsignedTx, error) {
	sender, err := parseAddress("from", from)
	if err != nil {
		return nil, err
	}
	id, err := parseListingID(listingID)
	if err != nil {
		return nil, err
	}
	listing, err := s.Chain.Listing(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(listing.Seller, sender.Hex()) {
		return nil, invalidf("oferta %s não pertence a %s", listingID, sender.Hex())
	}
	if !listing.Visible() {
		return nil, invalidf("oferta %s não está mais disponível", listingID)
	}
	return s.Chain.PrepareCancelListing(ctx, sender, id)
}

// openListing lê a oferta e garante que ainda pode ser comprada.
func (s *MarketService) openListing(ctx context.Context, listingID string) (*big.Int, models.Listing, error) {
	id, err := parseListingID(listingID)
	if err != nil {
		return nil, models.Listing{}, err
	}
	listing, err := s.Chain.Listing(ctx, id)
	if err != nil {
		return nil, models.Listing{}, err
	}
	if !listing.Visible() {
		return nil, models.Listing{}, invalidf("oferta %s não está mais disponível", listingID)
	}
	return id, listing, nil
}

// PrepareApproveBuy autoriza o mercado a debitar do comprador o preço total da oferta em BRLX.
func (s *MarketService) PrepareApproveBuy(ctx context.Context, from, listingID string) (*chain.UnsignedTx, error) {
	buyer, err := parseAddress("from", from)
	if err != nil {
		return nil, err
	}
	_, listing, err := s.openListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return s.Chain.PrepareApprove(ctx, buyer, s.BRLX, s.Chain.Market(), listing.Price)
}

// PrepareBuyListing compra a oferta. Exige o approve de PrepareApproveBuy minerado.
func (s *MarketService) PrepareBuyListing(ctx context.Context, from, listingID string) (*chain.UnsignedTx, error) {
	buyer, err := parseAddress("from", from)
	if err != nil {
		return nil, err
	}
	id, _, err := s.openListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return s.Chain.PrepareBuyListing(ctx, buyer, id)
}

// AdminCreateListing oferta cotas da carteira do administrador (approve -> aguarda -> createListing -> aguarda).
func (s *MarketService) AdminCreateListing(ctx context.Context, req ListingRequest) (FlowResult, error) {
	tpf, token, err := s.tpfToken(ctx, req.TPFID)
	if err != nil {
		return FlowResult{}, err
	}
	amount, price, err := s.listingUnits(tpf, req)
	if err != nil {
		return FlowResult{}, err
	}
	return s.Flow.Run(ctx, "createListing",
		func(ctx context.Context, from common.Address) (*chain.UnsignedTx, error) {
			return s.Chain.PrepareApprove(ctx, from, token, s.Chain.Market(), amount)
		},
		func(ctx context.Context, from common.Address) (*chain.UnsignedTx, error) {
			return s.Chain.PrepareCreateListing(ctx, from, token, amount, price)
		},
	)
}

// AdminBuyListing compra a oferta com o BRLX do administrador (approve -> aguarda -> buyListing -> aguarda).
func (s *MarketService) AdminBuyListing(ctx context.Context, listingID string) (FlowResult, error) {
	id, listing, err := s.openListing(ctx, listingID)
	if err != nil {
		return FlowResult{}, err
	}
	return s.Flow.Run(ctx, "buyListing",
		func(ctx context.Context, from common.Address) (*chain.UnsignedTx, error) {
			return s.Chain.PrepareApprove(ctx, from, s.BRLX, s.Chain.Market(), listing.Price)
		},
		func(ctx context.Context, from common.Address) (*chain.UnsignedTx, error) {
			return s.Chain.PrepareBuyListing(ctx, from, id)
		},
	)
}

func parseListingID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 {
		return nil, invalidf("id de oferta inválido %q", s)
	}
	return id, nil
}
