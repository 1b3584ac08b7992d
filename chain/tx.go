package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/sync/errgroup"

	"github.com/ferreirogomes/tpf/metrics"
)

// UnsignedTx é a transação entregue à carteira para assinatura e envio (eth_sendTransaction).
type UnsignedTx struct {
	From     common.Address  `json:"from"`
	To       common.Address  `json:"to"`
	Data     hexutil.Bytes   `json:"data"`
	Value    *hexutil.Big    `json:"value"`
	Nonce    hexutil.Uint64  `json:"nonce"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	GasLimit *hexutil.Uint64 `json:"gasLimit,omitempty"`
}

// Method retorna o nome da função do contrato chamada pela transação, segundo contractABI.
func (tx *UnsignedTx) Method(contractABI abi.ABI) string {
	if len(tx.Data) < 4 {
		return ""
	}
	m, err := contractABI.MethodById(tx.Data[:4])
	if err != nil {
		return ""
	}
	return m.Name
}

// gasMargin aplica a folga de 50% sobre a estimativa de gás.
func gasMargin(estimated uint64) uint64 {
	return estimated + estimated/2
}

type buildOptions struct {
	estimateGas bool
	gasLimit    uint64
}

type buildOption func(*buildOptions)

// withGasEstimate estima o gás e aplica a folga de 50%.
func withGasEstimate() buildOption {
	return func(o *buildOptions) { o.estimateGas = true }
}

// withGasLimit fixa o limite de gás da transação.
func withGasLimit(limit uint64) buildOption {
	return func(o *buildOptions) { o.gasLimit = limit }
}

// build codifica a chamada e busca nonce e preço do gás (e a estimativa, se pedida) em paralelo.
func (c *Client) build(ctx context.Context, contractABI abi.ABI, from, to common.Address, method string, args []interface{}, opts ...buildOption) (*UnsignedTx, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("falha ao codificar %s: %w", method, err)
	}

	var (
		nonce     uint64
		gasPrice  *big.Int
		estimated uint64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := c.backend.PendingNonceAt(gctx, from)
		if err != nil {
			return rpcError(err, "falha ao obter nonce de %s", from.Hex())
		}
		nonce = n
		return nil
	})
	g.Go(func() error {
		p, err := c.backend.SuggestGasPrice(gctx)
		if err != nil {
			return rpcError(err, "falha ao obter preço do gás")
		}
		gasPrice = p
		return nil
	})
	if o.estimateGas {
		g.Go(func() error {
			e, err := c.backend.EstimateGas(gctx, ethereum.CallMsg{From: from, To: &to, Value: big.NewInt(0), Data: data})
			if err != nil {
				return rpcError(err, "falha ao estimar gás de %s", method)
			}
			estimated = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tx := &UnsignedTx{
		From:     from,
		To:       to,
		Data:     data,
		Value:    (*hexutil.Big)(big.NewInt(0)),
		Nonce:    hexutil.Uint64(nonce),
		GasPrice: (*hexutil.Big)(gasPrice),
	}
	switch {
	case o.gasLimit > 0:
		limit := hexutil.Uint64(o.gasLimit)
		tx.GasLimit = &limit
	case o.estimateGas:
		limit := hexutil.Uint64(gasMargin(estimated))
		tx.GasLimit = &limit
	}

	metrics.TransactionsBuilt.WithLabelValues(method).Inc()
	return tx, nil
}
