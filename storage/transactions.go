package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ferreirogomes/tpf/models"
)

// TransactionsRepository guarda as transações acompanhadas pelo listener.
type TransactionsRepository struct {
	db *sqlx.DB
}

func NewTransactionsRepository(db *sqlx.DB) *TransactionsRepository {
	return &TransactionsRepository{db: db}
}

// SaveTransaction registra a transação. Um hash já acompanhado mantém o registro existente.
func (r *TransactionsRepository) SaveTransaction(ctx context.Context, tx models.Transaction) error {
	query := `INSERT INTO transactions (hash, kind, from_address, to_address, status, block_number)
		VALUES (:hash, :kind, :from_address, :to_address, :status, :block_number)
		ON CONFLICT (hash) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		return fmt.Errorf("falha ao salvar transação %s: %w", tx.Hash, err)
	}
	return nil
}

func (r *TransactionsRepository) GetTransaction(ctx context.Context, hash string) (models.Transaction, bool, error) {
	var tx models.Transaction
	err := r.db.GetContext(ctx, &tx, `SELECT * FROM transactions WHERE hash = $1`, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, fmt.Errorf("falha ao buscar transação %s: %w", hash, err)
	}
	return tx, true, nil
}

// ListPendingTransactions retorna até limit transações pendentes, das mais antigas para as mais novas.
func (r *TransactionsRepository) ListPendingTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.SelectContext(ctx, &txs,
		`SELECT * FROM transactions WHERE status = $1 ORDER BY created_at LIMIT $2`,
		models.TransactionPending, limit)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar transações pendentes: %w", err)
	}
	return txs, nil
}

// UpdateTransactionStatus grava o resultado da transação.
func (r *TransactionsRepository) UpdateTransactionStatus(ctx context.Context, hash string, status models.TransactionStatus, blockNumber *int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = $1, block_number = $2, updated_at = now() WHERE hash = $3`,
		status, blockNumber, hash)
	if err != nil {
		return fmt.Errorf("falha ao atualizar transação %s: %w", hash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("falha ao atualizar transação %s: %w", hash, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: transação %s", ErrNotFound, hash)
	}
	return nil
}
