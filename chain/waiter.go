package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/ferreirogomes/tpf/metrics"
)

// WaitTransaction consulta o nó até o recibo da transação ficar disponível, com espera
// exponencial limitada pelo timeout do cliente. Um recibo com status de falha retorna
// ErrTransactionReverted junto com o próprio recibo.
func (c *Client) WaitTransaction(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	start := time.Now()
	defer func() { metrics.ReceiptWaits.Observe(time.Since(start).Seconds()) }()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.pollInterval
	b.MaxInterval = 4 * c.pollInterval
	b.MaxElapsedTime = c.waitTimeout

	var receipt *types.Receipt
	operation := func() error {
		r, err := c.backend.TransactionReceipt(ctx, hash)
		if errors.Is(err, ethereum.NotFound) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		receipt = r
		return nil
	}
	notify := func(err error, next time.Duration) {
		logrus.Debugf("recibo de %s ainda indisponível, nova tentativa em %s", hash.Hex(), next)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		// Cancelamento de quem espera não é falha do nó.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("espera pela transação %s interrompida: %w", hash.Hex(), ctxErr)
		}
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWaitTimeout, hash.Hex())
		}
		return nil, rpcError(err, "falha ao aguardar transação %s", hash.Hex())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ErrTransactionReverted, hash.Hex())
	}
	return receipt, nil
}

// SendRawTransaction retransmite uma transação já assinada pela carteira.
func (c *Client) SendRawTransaction(ctx context.Context, raw string) (*types.Transaction, error) {
	data, err := hexutil.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	if err := c.backend.SendTransaction(ctx, tx); err != nil {
		return nil, rpcError(err, "falha ao enviar transação %s", tx.Hash().Hex())
	}
	return tx, nil
}
