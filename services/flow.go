package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/ferreirogomes/tpf/chain"
)

var (
	// ErrApproveFailed indica que o approve falhou e a segunda transação não foi enviada.
	ErrApproveFailed = errors.New("approve falhou")
	// ErrPartialFlow indica que o approve foi confirmado mas a segunda transação falhou.
	ErrPartialFlow = errors.New("fluxo parcialmente executado")
)

// PartialFlowError carrega o hash do approve já confirmado. A permissão concedida continua válida.
type PartialFlowError struct {
	ApproveHash string
	Err         error
}

func (e *PartialFlowError) Error() string {
	return fmt.Sprintf("%s (approve %s confirmado): %v", ErrPartialFlow, e.ApproveHash, e.Err)
}

func (e *PartialFlowError) Is(target error) bool {
	return target == ErrPartialFlow
}

func (e *PartialFlowError) Unwrap() error {
	return e.Err
}

// FlowResult traz os hashes das duas transações de um fluxo concluído.
type FlowResult struct {
	ApproveHash string `json:"approveHash"`
	Hash        string `json:"hash"`
}

// Step monta uma transação. A segunda etapa só é montada depois do approve minerado,
// para que o nonce pendente já reflita o approve.
type Step func(ctx context.Context, from common.Address) (*chain.UnsignedTx, error)

type receiptWaiter interface {
	WaitTransaction(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// FlowRunner executa approve -> aguarda recibo -> escrita -> aguarda recibo com a chave do administrador.
// Não há compensação: se a escrita falhar, o approve continua concedido e o erro é PartialFlowError.
type FlowRunner struct {
	Chain    receiptWaiter
	Signer   Signer
	Recorder TxRecorder
}

func NewFlowRunner(c receiptWaiter, signer Signer, recorder TxRecorder) *FlowRunner {
	return &FlowRunner{Chain: c, Signer: signer, Recorder: recorder}
}

func (r *FlowRunner) Run(ctx context.Context, kind string, approve, write Step) (FlowResult, error) {
	if r == nil || r.Signer == nil {
		return FlowResult{}, ErrAdminDisabled
	}
	log := logrus.WithField("flow", kind)

	approveHash, err := r.execute(ctx, "approve", approve)
	if err != nil {
		log.WithError(err).Warn("approve falhou, fluxo abortado")
		return FlowResult{}, fmt.Errorf("%w: %v", ErrApproveFailed, err)
	}
	log.WithField("approve", approveHash.Hex()).Info("approve confirmado")

	hash, err := r.execute(ctx, kind, write)
	if err != nil {
		log.WithError(err).WithField("approve", approveHash.Hex()).Error("transação falhou após approve confirmado")
		return FlowResult{ApproveHash: approveHash.Hex()}, &PartialFlowError{ApproveHash: approveHash.Hex(), Err: err}
	}
	log.WithField("hash", hash.Hex()).Info("fluxo concluído")

	return FlowResult{ApproveHash: approveHash.Hex(), Hash: hash.Hex()}, nil
}

func (r *FlowRunner) execute(ctx context.Context, kind string, step Step) (common.Hash, error) {
	from := r.Signer.Address()
	tx, err := step(ctx, from)
	if err != nil {
		return common.Hash{}, err
	}
	hash, err := r.Signer.Send(ctx, kind, tx)
	if err != nil {
		return common.Hash{}, err
	}
	if r.Recorder != nil {
		if err := r.Recorder.Record(ctx, kind, from, tx.To, hash); err != nil {
			logrus.WithError(err).Warnf("falha ao registrar transação %s", hash.Hex())
		}
	}
	if _, err := r.Chain.WaitTransaction(ctx, hash); err != nil {
		return hash, err
	}
	return hash, nil
}
