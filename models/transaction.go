package models

import "time"

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionConfirmed TransactionStatus = "confirmed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction registra uma transação enviada à rede, acompanhada pelo listener até a confirmação.
type Transaction struct {
	Hash        string            `db:"hash" json:"hash"`
	Kind        string            `db:"kind" json:"kind"` // Ex: "approve", "deposit", "mint"
	From        string            `db:"from_address" json:"from"`
	To          string            `db:"to_address" json:"to"`
	Status      TransactionStatus `db:"status" json:"status"`
	BlockNumber *int64            `db:"block_number" json:"blockNumber,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updatedAt"`
}
