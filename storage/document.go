package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Collection é um repositório de documentos JSON de uma coleção nomeada.
// Não há controle de concorrência otimista: Update é um merge raso sobre o documento atual.
type Collection[T any] struct {
	db   *sqlx.DB
	name string
}

func NewCollection[T any](db *sqlx.DB, name string) *Collection[T] {
	return &Collection[T]{db: db, name: name}
}

// Create grava (ou sobrescreve) o documento com o id informado, carimbando o id no próprio documento.
func (c *Collection[T]) Create(ctx context.Context, id string, doc T) (T, error) {
	var zero T
	data, err := json.Marshal(doc)
	if err != nil {
		return zero, fmt.Errorf("falha ao serializar documento %s/%s: %w", c.name, id, err)
	}

	query := `INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb || jsonb_build_object('id', $2::text))
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		RETURNING data`
	var stored []byte
	if err := c.db.GetContext(ctx, &stored, query, c.name, id, data); err != nil {
		return zero, fmt.Errorf("falha ao salvar documento %s/%s: %w", c.name, id, err)
	}
	return c.decode(stored)
}

// FindByID busca o documento pelo id; o bool indica se foi encontrado.
func (c *Collection[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	var stored []byte
	err := c.db.GetContext(ctx, &stored, `SELECT data FROM documents WHERE collection = $1 AND id = $2`, c.name, id)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("falha ao buscar documento %s/%s: %w", c.name, id, err)
	}
	doc, err := c.decode(stored)
	if err != nil {
		return zero, false, err
	}
	return doc, true, nil
}

// FindOneBy busca o primeiro documento cujo campo field é igual a value, sem diferenciar maiúsculas.
func (c *Collection[T]) FindOneBy(ctx context.Context, field, value string) (T, bool, error) {
	var zero T
	var stored []byte
	query := `SELECT data FROM documents
		WHERE collection = $1 AND lower(data->>$2) = lower($3)
		ORDER BY created_at LIMIT 1`
	err := c.db.GetContext(ctx, &stored, query, c.name, field, value)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("falha ao buscar documento %s por %s: %w", c.name, field, err)
	}
	doc, err := c.decode(stored)
	if err != nil {
		return zero, false, err
	}
	return doc, true, nil
}

// Update faz o merge raso de patch sobre o documento existente. O id não pode ser alterado.
func (c *Collection[T]) Update(ctx context.Context, id string, patch map[string]interface{}) (T, error) {
	var zero T
	fields := make(map[string]interface{}, len(patch))
	for k, v := range patch {
		if k != "id" {
			fields[k] = v
		}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("falha ao serializar atualização %s/%s: %w", c.name, id, err)
	}

	query := `UPDATE documents SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
		RETURNING data`
	var stored []byte
	err = c.db.GetContext(ctx, &stored, query, c.name, id, data)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%w: %s/%s", ErrNotFound, c.name, id)
	}
	if err != nil {
		return zero, fmt.Errorf("falha ao atualizar documento %s/%s: %w", c.name, id, err)
	}
	return c.decode(stored)
}

// List retorna todos os documentos da coleção em ordem de criação.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var rows [][]byte
	if err := c.db.SelectContext(ctx, &rows, `SELECT data FROM documents WHERE collection = $1 ORDER BY created_at`, c.name); err != nil {
		return nil, fmt.Errorf("falha ao listar coleção %s: %w", c.name, err)
	}
	docs := make([]T, 0, len(rows))
	for _, raw := range rows {
		doc, err := c.decode(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *Collection[T]) decode(raw []byte) (T, error) {
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("documento inválido na coleção %s: %w", c.name, err)
	}
	return doc, nil
}
