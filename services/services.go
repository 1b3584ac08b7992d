// Package services implementa as regras da plataforma sobre os repositórios e a blockchain.
package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ferreirogomes/tpf/chain"
	"github.com/ferreirogomes/tpf/models"
)

var (
	ErrNotFound      = errors.New("não encontrado")
	ErrAlreadyExists = errors.New("já existe")
	// ErrAdminDisabled indica que a chave do administrador não foi configurada.
	ErrAdminDisabled = errors.New("operações administrativas desabilitadas")
)

// ValidationError é um erro de entrada do usuário.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalidf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// TPFStore é o repositório de títulos.
type TPFStore interface {
	Create(ctx context.Context, tpf models.TPF) (models.TPF, error)
	FindByID(ctx context.Context, id string) (models.TPF, bool, error)
	FindByContractAddress(ctx context.Context, address string) (models.TPF, bool, error)
	List(ctx context.Context) ([]models.TPF, error)
}

// UserStore é o repositório de usuários.
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, bool, error)
	FindByPublicKey(ctx context.Context, publicKey string) (models.User, bool, error)
	TouchLogin(ctx context.Context, id string, at time.Time) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// TransactionStore é o repositório das transações acompanhadas.
type TransactionStore interface {
	SaveTransaction(ctx context.Context, tx models.Transaction) error
	GetTransaction(ctx context.Context, hash string) (models.Transaction, bool, error)
	UpdateTransactionStatus(ctx context.Context, hash string, status models.TransactionStatus, blockNumber *int64) error
}

// Chain é o subconjunto do *chain.Client usado pelos serviços.
type Chain interface {
	Market() common.Address

	PrepareApprove(ctx context.Context, from, token, spender common.Address, amount *big.Int) (*chain.UnsignedTx, error)
	PrepareMint(ctx context.Context, from, token, to common.Address, amount *big.Int) (*chain.UnsignedTx, error)
	PrepareDeposit(ctx context.Context, from, contract common.Address, assets *big.Int, receiver common.Address) (*chain.UnsignedTx, error)
	PrepareRedeem(ctx context.Context, from, contract common.Address, shares *big.Int, receiver, owner common.Address) (*chain.UnsignedTx, error)
	PrepareWithdraw(ctx context.Context, from, contract common.Address, assets *big.Int, receiver, owner common.Address) (*chain.UnsignedTx, error)
	PrepareSetFrozen(ctx context.Context, from, contract, wallet common.Address, frozen bool) (*chain.UnsignedTx, error)
	PrepareCreateListing(ctx context.Context, from, token common.Address, amount, price *big.Int) (*chain.UnsignedTx, error)
	PrepareCancelListing(ctx context.Context, from common.Address, listingID *big.Int) (*chain.UnsignedTx, error)
	PrepareBuyListing(ctx context.Context, from common.Address, listingID *big.Int) (*chain.UnsignedTx, error)
	PrepareApproveKyc(ctx context.Context, from, manager common.Address, in chain.KYCApproval) (*chain.UnsignedTx, error)

	BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error)
	NativeBalance(ctx context.Context, account common.Address) (*big.Int, error)
	UnitPrice(ctx context.Context, contract common.Address, at time.Time) (*big.Int, error)
	PreviewDeposit(ctx context.Context, contract common.Address, assets *big.Int, at time.Time) (*big.Int, error)
	IsFrozen(ctx context.Context, contract, wallet common.Address) (bool, error)
	ListingCount(ctx context.Context) (uint64, error)
	Listing(ctx context.Context, id *big.Int) (models.Listing, error)

	WaitTransaction(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	SendRawTransaction(ctx context.Context, raw string) (*types.Transaction, error)
}

// Signer assina e envia transações com a chave do administrador.
type Signer interface {
	Address() common.Address
	Send(ctx context.Context, kind string, tx *chain.UnsignedTx) (common.Hash, error)
	SignMessage(message []byte) ([]byte, error)
}

// TxRecorder registra transações enviadas para acompanhamento pelo listener.
type TxRecorder interface {
	Record(ctx context.Context, kind string, from, to common.Address, hash common.Hash) error
}

// parseAddress converte um endereço vindo do usuário em erro de validação quando inválido.
func parseAddress(field, s string) (common.Address, error) {
	addr, err := chain.ParseAddress(s)
	if err != nil {
		return common.Address{}, invalidf("%s: endereço inválido %q", field, s)
	}
	return addr, nil
}
