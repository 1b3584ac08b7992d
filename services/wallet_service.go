package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ferreirogomes/tpf/display"
)

const nativeDecimals = 18

// WalletService consulta saldos de carteiras e emite BRLX de teste.
type WalletService struct {
	Chain        Chain
	Signer       Signer
	Recorder     TxRecorder
	BRLX         common.Address
	BRLXDecimals uint8
	MintAmount   string
}

func NewWalletService(c Chain, signer Signer, recorder TxRecorder, brlx common.Address, brlxDecimals uint8, mintAmount string) *WalletService {
	return &WalletService{Chain: c, Signer: signer, Recorder: recorder, BRLX: brlx, BRLXDecimals: brlxDecimals, MintAmount: mintAmount}
}

// Balances são os saldos de uma carteira.
type Balances struct {
	Address       string `json:"address"`
	Native        string `json:"native"`
	BRLX          string `json:"brlx"`
	BRLXFormatted string `json:"brlxFormatted"`
}

// Balances lê em paralelo o saldo nativo e o de BRLX.
func (s *WalletService) Balances(ctx context.Context, address string) (Balances, error) {
	account, err := parseAddress("address", address)
	if err != nil {
		return Balances{}, err
	}

	out := Balances{Address: account.Hex()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		native, err := s.Chain.NativeBalance(gctx, account)
		if err != nil {
			return err
		}
		out.Native = display.FromUnits(native, nativeDecimals).String()
		return nil
	})
	g.Go(func() error {
		brlx, err := s.Chain.BalanceOf(gctx, s.BRLX, account)
		if err != nil {
			return err
		}
		v := display.FromUnits(brlx, s.BRLXDecimals)
		out.BRLX = v.StringFixed(int32(s.BRLXDecimals))
		out.BRLXFormatted = display.FormatBRLX(v)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Balances{}, err
	}
	return out, nil
}

// MintBRLX emite amount BRLX (ou o valor padrão) para a carteira, assinado pelo administrador.
func (s *WalletService) MintBRLX(ctx context.Context, to, amount string) (string, error) {
	if s.Signer == nil {
		return "", ErrAdminDisabled
	}
	receiver, err := parseAddress("to", to)
	if err != nil {
		return "", err
	}
	if amount == "" {
		amount = s.MintAmount
	}
	units, err := display.ParseUnits(amount, s.BRLXDecimals)
	if err != nil {
		return "", invalidf("amount: %v", err)
	}

	admin := s.Signer.Address()
	tx, err := s.Chain.PrepareMint(ctx, admin, s.BRLX, receiver, units)
	if err != nil {
		return "", err
	}
	hash, err := s.Signer.Send(ctx, "mint", tx)
	if err != nil {
		return "", err
	}
	if s.Recorder != nil {
		if err := s.Recorder.Record(ctx, "mint", admin, s.BRLX, hash); err != nil {
			logrus.WithError(err).Warnf("falha ao registrar transação %s", hash.Hex())
		}
	}
	return hash.Hex(), nil
}
