package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ferreirogomes/tpf/chain"
	"github.com/ferreirogomes/tpf/display"
	"github.com/ferreirogomes/tpf/models"
)

// readConcurrency limita as leituras paralelas ao nó.
const readConcurrency = 8

// TPFConfig reúne os parâmetros de rede usados pelo TPFService.
type TPFConfig struct {
	BRLX             common.Address
	BRLXDecimals     uint8
	TPFDecimals      uint8
	IdentityRegistry string
}

// TPFService implementa a emissão, consulta e operações dos títulos.
type TPFService struct {
	Store    TPFStore
	Users    UserStore
	Chain    Chain
	Deployer Deployer
	Signer   Signer
	Flow     *FlowRunner
	Recorder TxRecorder
	Config   TPFConfig
	Now      func() time.Time
}

func NewTPFService(store TPFStore, users UserStore, c Chain, deployer Deployer, cfg TPFConfig) *TPFService {
	return &TPFService{Store: store, Users: users, Chain: c, Deployer: deployer, Config: cfg, Now: time.Now}
}

// CreateTPFRequest é o pedido de emissão de um novo título.
type CreateTPFRequest struct {
	Symbol               string    `json:"symbol" validate:"required,alphanum,max=32"`
	Name                 string    `json:"name" validate:"required"`
	Decimals             *uint8    `json:"decimals" validate:"omitempty,lte=18"` // nil usa TPF_DECIMALS
	StartTimestamp       time.Time `json:"startTimestamp" validate:"required"`
	DurationDays         int       `json:"durationDays" validate:"required,min=1"`
	Yield                int64     `json:"yield" validate:"min=0"`
	MaxAssets            int64     `json:"maxAssets" validate:"required,min=1"`
	MinimumValue         string    `json:"minimumValue" validate:"omitempty,numeric"`
	BlocklistCountryCode []int     `json:"blocklistCountryCode"`
}

// TPFPrice é o preço unitário do título em BRLX.
type TPFPrice struct {
	ID              string    `json:"id"`
	Symbol          string    `json:"symbol"`
	ContractAddress string    `json:"contractAddress"`
	UnitPrice       string    `json:"unitPrice"`
	Formatted       string    `json:"formatted"`
	At              time.Time `json:"at"`
}

// Simulation é a prévia de um investimento.
type Simulation struct {
	Amount string    `json:"amount"`
	Shares string    `json:"shares"`
	At     time.Time `json:"at"`
}

// Holder é um investidor com saldo no título.
type Holder struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	PublicKey string `json:"publicKey"`
	Balance   string `json:"balance"`
	Frozen    bool   `json:"frozen"`
}

// AssetBalance é o saldo de BRLX custodiado pelo contrato do título.
type AssetBalance struct {
	Asset     string `json:"asset"`
	Balance   string `json:"balance"`
	Formatted string `json:"formatted"`
}

// Create implanta os contratos do título e grava o registro com os endereços retornados.
func (s *TPFService) Create(ctx context.Context, req CreateTPFRequest) (models.TPF, error) {
	if s.Deployer == nil {
		return models.TPF{}, fmt.Errorf("%w: função de implantação não configurada", ErrAdminDisabled)
	}
	if _, found, err := s.Store.FindByID(ctx, req.Symbol); err != nil {
		return models.TPF{}, err
	} else if found {
		return models.TPF{}, fmt.Errorf("%w: título %s", ErrAlreadyExists, req.Symbol)
	}

	decimals := s.Config.TPFDecimals
	if req.Decimals != nil {
		decimals = *req.Decimals
	}
	minimumValue := req.MinimumValue
	if minimumValue == "" {
		minimumValue = models.DefaultMinimumValue
	}
	minDeposit, err := display.ParseUnits(minimumValue, s.Config.BRLXDecimals)
	if err != nil {
		return models.TPF{}, invalidf("minimumValue: %v", err)
	}
	maxAssets, err := display.ToUnits(decimal.NewFromInt(req.MaxAssets), decimals)
	if err != nil {
		return models.TPF{}, invalidf("maxAssets: %v", err)
	}

	tpf := models.TPF{
		ID:                   req.Symbol,
		Symbol:               req.Symbol,
		Name:                 req.Name,
		Decimals:             decimals,
		StartTimestamp:       req.StartTimestamp.UTC(),
		DurationDays:         req.DurationDays,
		Asset:                s.Config.BRLX.Hex(),
		Yield:                req.Yield,
		MaxAssets:            req.MaxAssets,
		MinimumValue:         display.FromUnits(minDeposit, s.Config.BRLXDecimals).StringFixed(int32(s.Config.BRLXDecimals)),
		BlocklistCountryCode: req.BlocklistCountryCode,
		IdentityRegistry:     s.Config.IdentityRegistry,
	}
	expiresAt := tpf.ExpiresAt().Unix()

	deployed, err := s.Deployer.Deploy(ctx, DeployRequest{
		Name:             tpf.Name,
		Symbol:           tpf.Symbol,
		Decimals:         tpf.Decimals,
		StableToken:      tpf.Asset,
		YieldPercentage:  tpf.Yield,
		StartTimestamp:   tpf.StartTimestamp.Unix(),
		EndTimestamp:     expiresAt,
		EndPoolTimestamp: expiresAt,
		MinDeposit:       minDeposit.String(),
		MinAssets:        "0",
		MaxAssets:        maxAssets.String(),
		IdentityRegistry: tpf.IdentityRegistry,
	})
	if err != nil {
		return models.TPF{}, fmt.Errorf("falha ao implantar título %s: %w", tpf.Symbol, err)
	}
	tpf.ContractAddress = deployed.TokenImplementation
	tpf.Compliance = deployed.DefaultCompliance

	created, err := s.Store.Create(ctx, tpf)
	if err != nil {
		return models.TPF{}, fmt.Errorf("falha ao salvar título %s: %w", tpf.Symbol, err)
	}
	logrus.WithFields(logrus.Fields{"symbol": created.Symbol, "contract": created.ContractAddress}).Info("título emitido")
	return created, nil
}

func (s *TPFService) List(ctx context.Context) ([]models.TPF, error) {
	return s.Store.List(ctx)
}

func (s *TPFService) Get(ctx context.Context, id string) (models.TPF, error) {
	tpf, found, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return models.TPF{}, err
	}
	if !found {
		return models.TPF{}, fmt.Errorf("%w: título %s", ErrNotFound, id)
	}
	return tpf, nil
}

// lookup busca o título e valida o endereço do contrato.
func (s *TPFService) lookup(ctx context.Context, id string) (models.TPF, common.Address, error) {
	tpf, err := s.Get(ctx, id)
	if err != nil {
		return models.TPF{}, common.Address{}, err
	}
	contract, err := chain.ParseAddress(tpf.ContractAddress)
	if err != nil {
		return models.TPF{}, common.Address{}, fmt.Errorf("título %s com contrato inválido: %w", id, err)
	}
	return tpf, contract, nil
}

// asset retorna o BRLX do título, ou o configurado quando o registro não o tem.
func (s *TPFService) asset(tpf models.TPF) common.Address {
	if common.IsHexAddress(tpf.Asset) {
		return common.HexToAddress(tpf.Asset)
	}
	return s.Config.BRLX
}

// Price lê o preço unitário atual do título.
func (s *TPFService) Price(ctx context.Context, id string) (TPFPrice, error) {
	tpf, err := s.Get(ctx, id)
	if err != nil {
		return TPFPrice{}, err
	}
	return s.price(ctx, tpf, s.Now())
}

func (s *TPFService) price(ctx context.Context, tpf models.TPF, at time.Time) (TPFPrice, error) {
	contract, err := chain.ParseAddress(tpf.ContractAddress)
	if err != nil {
		return TPFPrice{}, fmt.Errorf("título %s com contrato inválido: %w", tpf.ID, err)
	}
	units, err := s.Chain.UnitPrice(ctx, contract, at)
	if err != nil {
		return TPFPrice{}, err
	}
	price := display.FromUnits(units, s.Config.BRLXDecimals)
	return TPFPrice{
		ID:              tpf.ID,
		Symbol:          tpf.Symbol,
		ContractAddress: tpf.ContractAddress,
		UnitPrice:       price.StringFixed(int32(s.Config.BRLXDecimals)),
		Formatted:       display.FormatBRLX(price),
		At:              at.UTC(),
	}, nil
}

// PriceList lê o preço de todos os títulos em paralelo. Leituras que falham são omitidas.
func (s *TPFService) PriceList(ctx context.Context) ([]TPFPrice, error) {
	tpfs, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}

	at := s.Now()
	results := make([]*TPFPrice, len(tpfs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, tpf := range tpfs {
		i, tpf := i, tpf
		g.Go(func() error {
			p, err := s.price(gctx, tpf, at)
			if err != nil {
				logrus.WithError(err).WithField("symbol", tpf.Symbol).Warn("falha ao ler preço do título")
				return nil
			}
			results[i] = &p
			return nil
		})
	}
	_ = g.Wait()

	prices := make([]TPFPrice, 0, len(results))
	for _, p := range results {
		if p != nil {
			prices = append(prices, *p)
		}
	}
	return prices, nil
}

// investAmount converte e valida o valor em BRLX contra o mínimo do título.
func (s *TPFService) investAmount(tpf models.TPF, amount string) (*big.Int, error) {
	units, err := display.ParseUnits(amount, s.Config.BRLXDecimals)
	if err != nil {
		return nil, invalidf("amount: %v", err)
	}
	if units.Sign() == 0 {
		return nil, invalidf("amount deve ser maior que zero")
	}
	minimum, err := display.ParseUnits(tpf.MinimumValue, s.Config.BRLXDecimals)
	if err == nil && units.Cmp(minimum) < 0 {
		return nil, invalidf("valor mínimo de investimento é %s BRLX", display.FormatBRLX(display.FromUnits(minimum, s.Config.BRLXDecimals)))
	}
	return units, nil
}

// Simulate prevê quantas cotas o valor compraria agora.
func (s *TPFService) Simulate(ctx context.Context, id, amount string) (Simulation, error) {
	tpf, contract, err := s.lookup(ctx, id)
	if err != nil {
		return Simulation{}, err
	}
	assets, err := s.investAmount(tpf, amount)
	if err != nil {
		return Simulation{}, err
	}
	at := s.Now()
	shares, err := s.Chain.PreviewDeposit(ctx, contract, assets, at)
	if err != nil {
		return Simulation{}, err
	}
	return Simulation{
		Amount: display.FromUnits(assets, s.Config.BRLXDecimals).StringFixed(int32(s.Config.BRLXDecimals)),
		Shares: display.FromUnits(shares, tpf.Decimals).StringFixed(int32(tpf.Decimals)),
		At:     at.UTC(),
	}, nil
}

// PrepareApprove autoriza o contrato do título a debitar amount BRLX de from.
func (s *TPFService) PrepareApprove(ctx context.Context, id, from, amount string) (*chain.UnsignedTx, error) {
	tpf, contract, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	sender, err := parseAddress("from", from)
	if err != nil {
		return nil, err
	}
	units, err := display.ParseUnits(amount, s.Config.BRLXDecimals)
	if err != nil {
		return nil, invalidf("amount: %v", err)
	}
	return s.Chain.PrepareApprove(ctx, sender, s.asset(tpf), contract, units)
}

// PrepareInvest deposita amount BRLX no título, creditando as cotas ao próprio investidor.
func (s *TPFService) PrepareInvest(ctx context.Context, id, from, amount string) (*chain.UnsignedTx, error) {
	tpf, contract, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	sender, err := parseAddress("from", from)
	if err != nil {
		return nil, err
	}
	assets, err := s.investAmount(tpf, amount)
	if err != nil {
		return nil, err
	}
	return s.Chain.PrepareDeposit(ctx, sender, contract, assets, sender)
}

// PrepareRedeem resgata shares cotas do investidor.
func (s *TPFService) PrepareRedeem(ctx context.Context, id, from, shares string) (*chain.UnsignedTx, error) {
	tpf, contract, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	sender, err := parseAddress("from", from)
	if err != nil {
		return nil, err
	}
	units, err := display.ParseUnits(shares, tpf.Decimals)
	if err != nil {
		return nil, invalidf("shares: %v", err)
	}
	return s.Chain.PrepareRedeem(ctx, sender, contract, units, sender, sender)
}

// PrepareWithdraw saca amount BRLX do título para o investidor.
func (s *TPFService) PrepareWithdraw(ctx context.Context, id, from, amount string) (*chain.UnsignedTx, error) {
	_, contract, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	sender, err := parseAddress("from", from)
	if err != nil {
		return nil, err
	}
	units, err := display.ParseUnits(amount, s.Config.BRLXDecimals)
	if err != nil {
		return nil, invalidf("amount: %v", err)
	}
	return s.Chain.PrepareWithdraw(ctx, sender, contract, units, sender, sender)
}

// AssetBalance retorna o BRLX custodiado pelo contrato do título.
func (s *TPFService) AssetBalance(ctx context.Context, id string) (AssetBalance, error) {
	tpf, contract, err := s.lookup(ctx, id)
	if err != nil {
		return AssetBalance{}, err
	}
	asset := s.asset(tpf)
	units, err := s.Chain.BalanceOf(ctx, asset, contract)
	if err != nil {
		return AssetBalance{}, err
	}
	balance := display.FromUnits(units, s.Config.BRLXDecimals)
	return AssetBalance{
		Asset:     asset.Hex(),
		Balance:   balance.StringFixed(int32(s.Config.BRLXDecimals)),
		Formatted: display.FormatBRLX(balance),
	}, nil
}

// Holders lista os usuários com saldo no título e se estão congelados.
func (s *TPFService) Holders(ctx context.Context, id string) ([]Holder, error) {
	tpf, contract, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*Holder, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, u := range users {
		i, u := i, u
		if !common.IsHexAddress(u.PublicKey) {
			continue
		}
		wallet := common.HexToAddress(u.PublicKey)
		g.Go(func() error {
			balance, err := s.Chain.BalanceOf(gctx, contract, wallet)
			if err != nil {
				return err
			}
			if balance.Sign() <= 0 {
				return nil
			}
			frozen, err := s.Chain.IsFrozen(gctx, contract, wallet)
			if err != nil {
				return err
			}
			results[i] = &Holder{
				UserID:    u.ID,
				Name:      u.Name,
				PublicKey: u.PublicKey,
				Balance:   display.FromUnits(balance, tpf.Decimals).StringFixed(int32(tpf.Decimals)),
				Frozen:    frozen,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("falha ao ler investidores de %s: %w", id, err)
	}

	holders := make([]Holder, 0, len(results))
	for _, h := range results {
		if h != nil {
			holders = append(holders, *h)
		}
	}
	return holders, nil
}

// AdminWithdraw saca amount BRLX do título para receiver, assinado pelo administrador.
func (s *TPFService) AdminWithdraw(ctx context.Context, id, receiver, amount string) (string, error) {
	if s.Signer == nil {
		return "", ErrAdminDisabled
	}
	_, contract, err := s.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	to, err := parseAddress("receiver", receiver)
	if err != nil {
		return "", err
	}
	units, err := display.ParseUnits(amount, s.Config.BRLXDecimals)
	if err != nil {
		return "", invalidf("amount: %v", err)
	}
	admin := s.Signer.Address()
	tx, err := s.Chain.PrepareWithdraw(ctx, admin, contract, units, to, admin)
	if err != nil {
		return "", err
	}
	return s.send(ctx, "withdraw", tx)
}

// Freeze congela (ou descongela) a carteira no título.
func (s *TPFService) Freeze(ctx context.Context, id, wallet string, frozen bool) (string, error) {
	if s.Signer == nil {
		return "", ErrAdminDisabled
	}
	_, contract, err := s.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	target, err := parseAddress("wallet", wallet)
	if err != nil {
		return "", err
	}
	tx, err := s.Chain.PrepareSetFrozen(ctx, s.Signer.Address(), contract, target, frozen)
	if err != nil {
		return "", err
	}
	return s.send(ctx, "setAddressFrozen", tx)
}

// AdminInvest investe amount BRLX da carteira do administrador em nome de receiver
// (approve -> aguarda -> deposit -> aguarda).
func (s *TPFService) AdminInvest(ctx context.Context, id, receiver, amount string) (FlowResult, error) {
	tpf, contract, err := s.lookup(ctx, id)
	if err != nil {
		return FlowResult{}, err
	}
	to, err := parseAddress("receiver", receiver)
	if err != nil {
		return FlowResult{}, err
	}
	assets, err := s.investAmount(tpf, amount)
	if err != nil {
		return FlowResult{}, err
	}
	asset := s.asset(tpf)
	return s.Flow.Run(ctx, "deposit",
		func(ctx context.Context, from common.Address) (*chain.UnsignedTx, error) {
			return s.Chain.PrepareApprove(ctx, from, asset, contract, assets)
		},
		func(ctx context.Context, from common.Address) (*chain.UnsignedTx, error) {
			return s.Chain.PrepareDeposit(ctx, from, contract, assets, to)
		},
	)
}

func (s *TPFService) send(ctx context.Context, kind string, tx *chain.UnsignedTx) (string, error) {
	hash, err := s.Signer.Send(ctx, kind, tx)
	if err != nil {
		return "", err
	}
	if s.Recorder != nil {
		if err := s.Recorder.Record(ctx, kind, tx.From, tx.To, hash); err != nil {
			logrus.WithError(err).Warnf("falha ao registrar transação %s", hash.Hex())
		}
	}
	return hash.Hex(), nil
}
