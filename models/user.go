package models

import "time"

// Role define o perfil de acesso de um usuário.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleCommon Role = "common"
)

// KYC guarda o resultado da aprovação da identidade on-chain do usuário.
type KYC struct {
	ClientIdentityAddress string `json:"clientIdentityAddress"`
	TransactionHash       string `json:"transactionHash"`
}

// User representa um investidor ou administrador da plataforma.
type User struct {
	ID          string    `json:"id"`
	PublicKey   string    `json:"publicKey"` // Endereço da carteira
	Name        string    `json:"name"`
	Country     int       `json:"country"` // Código ISO numérico
	TaxID       string    `json:"taxId"`
	Role        Role      `json:"role"`
	KYC         *KYC      `json:"kyc,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

// IsAdmin indica se o usuário tem perfil de administrador.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
