package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/ferreirogomes/tpf/chain"
	"github.com/ferreirogomes/tpf/metrics"
	"github.com/ferreirogomes/tpf/models"
)

// TransactionService retransmite e acompanha as transações enviadas pelas carteiras.
type TransactionService struct {
	Store TransactionStore
	Chain Chain
}

func NewTransactionService(store TransactionStore, c Chain) *TransactionService {
	return &TransactionService{Store: store, Chain: c}
}

// TrackRequest descreve uma transação enviada diretamente pela carteira do usuário.
type TrackRequest struct {
	Hash string `json:"hash" validate:"required"`
	Kind string `json:"kind" validate:"required"`
	From string `json:"from" validate:"required,eth_addr"`
	To   string `json:"to" validate:"required,eth_addr"`
}

// Record registra uma transação pendente.
func (s *TransactionService) Record(ctx context.Context, kind string, from, to common.Address, hash common.Hash) error {
	return s.Store.SaveTransaction(ctx, models.Transaction{
		Hash:   hash.Hex(),
		Kind:   kind,
		From:   from.Hex(),
		To:     to.Hex(),
		Status: models.TransactionPending,
	})
}

// Broadcast envia uma transação assinada pela carteira e passa a acompanhá-la.
func (s *TransactionService) Broadcast(ctx context.Context, raw, kind string) (models.Transaction, error) {
	if kind == "" {
		kind = "raw"
	}
	tx, err := s.Chain.SendRawTransaction(ctx, raw)
	metrics.TransactionsSent.WithLabelValues(kind, metrics.Result(err)).Inc()
	if err != nil {
		if errors.Is(err, chain.ErrInvalidTransaction) {
			return models.Transaction{}, invalidf("%v", err)
		}
		return models.Transaction{}, err
	}

	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("falha ao recuperar remetente de %s: %w", tx.Hash().Hex(), err)
	}
	var to common.Address
	if tx.To() != nil {
		to = *tx.To()
	}

	if err := s.Record(ctx, kind, from, to, tx.Hash()); err != nil {
		return models.Transaction{}, err
	}
	logrus.WithFields(logrus.Fields{"hash": tx.Hash().Hex(), "kind": kind}).Info("transação retransmitida")
	return s.Get(ctx, tx.Hash().Hex())
}

// Track passa a acompanhar uma transação já enviada pela carteira.
func (s *TransactionService) Track(ctx context.Context, req TrackRequest) (models.Transaction, error) {
	hash, err := parseHash(req.Hash)
	if err != nil {
		return models.Transaction{}, err
	}
	from, err := parseAddress("from", req.From)
	if err != nil {
		return models.Transaction{}, err
	}
	to, err := parseAddress("to", req.To)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := s.Record(ctx, req.Kind, from, to, hash); err != nil {
		return models.Transaction{}, err
	}
	return s.Get(ctx, hash.Hex())
}

// Get retorna a transação acompanhada.
func (s *TransactionService) Get(ctx context.Context, hash string) (models.Transaction, error) {
	h, err := parseHash(hash)
	if err != nil {
		return models.Transaction{}, err
	}
	tx, found, err := s.Store.GetTransaction(ctx, h.Hex())
	if err != nil {
		return models.Transaction{}, err
	}
	if !found {
		return models.Transaction{}, fmt.Errorf("%w: transação %s", ErrNotFound, h.Hex())
	}
	return tx, nil
}

// Wait aguarda o recibo e grava o resultado. Uma transação revertida retorna com status failed, sem erro.
func (s *TransactionService) Wait(ctx context.Context, hash string) (models.Transaction, error) {
	h, err := parseHash(hash)
	if err != nil {
		return models.Transaction{}, err
	}

	receipt, err := s.Chain.WaitTransaction(ctx, h)
	if err != nil && !errors.Is(err, chain.ErrTransactionReverted) {
		return models.Transaction{}, err
	}

	status := models.TransactionConfirmed
	if errors.Is(err, chain.ErrTransactionReverted) {
		status = models.TransactionFailed
	}
	var block *int64
	if receipt != nil && receipt.BlockNumber != nil {
		n := receipt.BlockNumber.Int64()
		block = &n
	}

	tx, found, err := s.Store.GetTransaction(ctx, h.Hex())
	if err != nil {
		return models.Transaction{}, err
	}
	if !found {
		return models.Transaction{Hash: h.Hex(), Status: status, BlockNumber: block, UpdatedAt: time.Now().UTC()}, nil
	}
	if err := s.Store.UpdateTransactionStatus(ctx, h.Hex(), status, block); err != nil {
		return models.Transaction{}, err
	}
	tx.Status = status
	tx.BlockNumber = block
	return tx, nil
}

func parseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, invalidf("hash de transação inválido %q", s)
	}
	return common.BytesToHash(b), nil
}
