// Package chain monta as transações não assinadas dos contratos da plataforma, lê o estado
// dos contratos e acompanha recibos no nó JSON-RPC.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Backend é o subconjunto do *ethclient.Client usado pelo serviço.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Erros do pacote. ErrRPC marca falhas de comunicação com o nó ou de execução no nó.
var (
	ErrInvalidAddress      = errors.New("endereço inválido")
	ErrTransactionReverted = errors.New("transação revertida")
	ErrWaitTimeout         = errors.New("tempo esgotado aguardando o recibo")
	ErrInvalidTransaction  = errors.New("transação assinada inválida")
	ErrRPC                 = errors.New("falha no nó JSON-RPC")
)

// Client concentra as chamadas ao nó e aos contratos da plataforma.
type Client struct {
	backend      Backend
	market       common.Address
	pollInterval time.Duration
	waitTimeout  time.Duration
}

type Option func(*Client)

// WithPolling define o intervalo inicial e o tempo máximo de espera por recibos.
func WithPolling(interval, timeout time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = interval
		c.waitTimeout = timeout
	}
}

func NewClient(backend Backend, market common.Address, opts ...Option) *Client {
	c := &Client{
		backend:      backend,
		market:       market,
		pollInterval: 2 * time.Second,
		waitTimeout:  2 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial conecta ao nó JSON-RPC.
func Dial(rpcURL string, market common.Address, opts ...Option) (*Client, *ethclient.Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("falha ao conectar ao nó %s: %w", rpcURL, err)
	}
	return NewClient(eth, market, opts...), eth, nil
}

// Backend expõe o backend para quem precisa assinar e enviar transações.
func (c *Client) Backend() Backend {
	return c.backend
}

// Market retorna o endereço do contrato do mercado secundário.
func (c *Client) Market() common.Address {
	return c.market
}

// ParseAddress valida e converte um endereço hexadecimal.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// call executa um método de leitura e devolve as saídas decodificadas.
func (c *Client) call(ctx context.Context, contractABI abi.ABI, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("falha ao codificar %s: %w", method, err)
	}
	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, rpcError(err, "falha ao chamar %s em %s", method, to.Hex())
	}
	values, err := contractABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("falha ao decodificar %s: %w", method, err)
	}
	return values, nil
}

func (c *Client) callBig(ctx context.Context, contractABI abi.ABI, to common.Address, method string, args ...interface{}) (*big.Int, error) {
	values, err := c.call(ctx, contractABI, to, method, args...)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s não retornou valor", method)
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s retornou tipo inesperado %T", method, values[0])
	}
	return v, nil
}

// rpcError envolve err com ErrRPC, preservando o erro original para errors.Is.
func rpcError(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %w", ErrRPC, fmt.Sprintf(format, args...), err)
}

// NativeBalance retorna o saldo da moeda nativa da rede.
func (c *Client) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := c.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, rpcError(err, "falha ao obter saldo nativo de %s", account.Hex())
	}
	return balance, nil
}

// Receipt busca o recibo de uma transação sem esperar; retorna nil quando ainda não minerada.
func (c *Client) Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := c.backend.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, rpcError(err, "falha ao obter recibo de %s", hash.Hex())
	}
	return receipt, nil
}
