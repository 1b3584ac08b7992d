package blockchain_listener

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/ferreirogomes/tpf/metrics"
	"github.com/ferreirogomes/tpf/models"
)

const defaultBatchSize = 100

// PendingStore é o repositório das transações acompanhadas.
type PendingStore interface {
	ListPendingTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, hash string, status models.TransactionStatus, blockNumber *int64) error
}

// ReceiptReader busca recibos sem esperar; nil indica transação ainda não minerada.
type ReceiptReader interface {
	Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// BlockchainListener consulta periodicamente os recibos das transações pendentes para manter o DB sincronizado.
type BlockchainListener struct {
	Store     PendingStore
	Chain     ReceiptReader
	Interval  time.Duration
	BatchSize int
}

// NewBlockchainListener cria uma nova instância do listener.
func NewBlockchainListener(store PendingStore, chain ReceiptReader, interval time.Duration) *BlockchainListener {
	return &BlockchainListener{
		Store:     store,
		Chain:     chain,
		Interval:  interval,
		BatchSize: defaultBatchSize,
	}
}

// StartListening consulta as transações pendentes a cada intervalo até o contexto ser cancelado.
func (l *BlockchainListener) StartListening(ctx context.Context) {
	logrus.Infof("Iniciando listener da blockchain (intervalo %s)...", l.Interval)

	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		if _, err := l.ProcessPending(ctx); err != nil && ctx.Err() == nil {
			logrus.WithError(err).Warn("falha ao processar transações pendentes")
		}

		select {
		case <-ctx.Done():
			logrus.Info("Listener da blockchain encerrado.")
			return
		case <-ticker.C:
		}
	}
}

// ProcessPending processa um lote de transações pendentes e retorna quantas foram resolvidas.
func (l *BlockchainListener) ProcessPending(ctx context.Context) (int, error) {
	pending, err := l.Store.ListPendingTransactions(ctx, l.BatchSize)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, tx := range pending {
		if ctx.Err() != nil {
			break
		}
		done, err := l.processTransaction(ctx, tx)
		if err != nil {
			logrus.WithError(err).WithField("hash", tx.Hash).Warn("falha ao atualizar transação")
			continue
		}
		if done {
			resolved++
		}
	}

	metrics.PendingTransactions.Set(float64(len(pending) - resolved))
	return resolved, nil
}

// processTransaction busca o recibo e grava o resultado; false indica que ainda está pendente.
func (l *BlockchainListener) processTransaction(ctx context.Context, tx models.Transaction) (bool, error) {
	receipt, err := l.Chain.Receipt(ctx, common.HexToHash(tx.Hash))
	if err != nil {
		return false, err
	}
	if receipt == nil {
		return false, nil
	}

	status := models.TransactionConfirmed
	if receipt.Status != types.ReceiptStatusSuccessful {
		status = models.TransactionFailed
	}
	var block *int64
	if receipt.BlockNumber != nil {
		n := receipt.BlockNumber.Int64()
		block = &n
	}

	if err := l.Store.UpdateTransactionStatus(ctx, tx.Hash, status, block); err != nil {
		return false, err
	}
	logrus.WithFields(logrus.Fields{
		"hash":   tx.Hash,
		"kind":   tx.Kind,
		"status": status,
	}).Info("Transação processada")
	return true, nil
}
