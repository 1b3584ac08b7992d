package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ferreirogomes/tpf/models"
)

const investmentsCollection = "investments"

// InvestmentsRepository guarda os títulos emitidos, indexados pelo símbolo.
type InvestmentsRepository struct {
	docs                *Collection[models.TPF]
	defaultMinimumValue string
}

func NewInvestmentsRepository(db *sqlx.DB, defaultMinimumValue string) *InvestmentsRepository {
	if defaultMinimumValue == "" {
		defaultMinimumValue = models.DefaultMinimumValue
	}
	return &InvestmentsRepository{
		docs:                NewCollection[models.TPF](db, investmentsCollection),
		defaultMinimumValue: defaultMinimumValue,
	}
}

// Create grava o título usando o símbolo como id.
func (r *InvestmentsRepository) Create(ctx context.Context, tpf models.TPF) (models.TPF, error) {
	if tpf.Symbol == "" {
		return models.TPF{}, fmt.Errorf("título sem símbolo")
	}
	tpf.ID = tpf.Symbol
	return r.docs.Create(ctx, tpf.ID, r.withDefaults(tpf))
}

func (r *InvestmentsRepository) FindByID(ctx context.Context, id string) (models.TPF, bool, error) {
	tpf, found, err := r.docs.FindByID(ctx, id)
	if err != nil || !found {
		return tpf, found, err
	}
	return r.withDefaults(tpf), true, nil
}

// FindByContractAddress busca o título pelo endereço do contrato, sem diferenciar maiúsculas.
func (r *InvestmentsRepository) FindByContractAddress(ctx context.Context, address string) (models.TPF, bool, error) {
	tpf, found, err := r.docs.FindOneBy(ctx, "contractAddress", address)
	if err != nil || !found {
		return tpf, found, err
	}
	return r.withDefaults(tpf), true, nil
}

// Update aplica patch ao título. O símbolo é a chave do registro e não pode mudar.
func (r *InvestmentsRepository) Update(ctx context.Context, id string, patch map[string]interface{}) (models.TPF, error) {
	if symbol, ok := patch["symbol"]; ok && symbol != id {
		return models.TPF{}, fmt.Errorf("%w: símbolo do título %s não pode ser alterado", ErrImmutableField, id)
	}
	tpf, err := r.docs.Update(ctx, id, patch)
	if err != nil {
		return models.TPF{}, err
	}
	return r.withDefaults(tpf), nil
}

// List retorna todos os títulos, preenchendo o valor mínimo padrão quando ausente.
func (r *InvestmentsRepository) List(ctx context.Context) ([]models.TPF, error) {
	tpfs, err := r.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tpfs {
		tpfs[i] = r.withDefaults(tpfs[i])
	}
	return tpfs, nil
}

func (r *InvestmentsRepository) withDefaults(tpf models.TPF) models.TPF {
	if tpf.MinimumValue == "" {
		tpf.MinimumValue = r.defaultMinimumValue
	}
	return tpf
}
