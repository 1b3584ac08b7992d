package models

import "time"

// DefaultMinimumValue é o valor mínimo de investimento (em BRLX) quando o título não define um.
const DefaultMinimumValue = "1000.000000"

// TPF representa um título público federal tokenizado.
// O ID do registro é sempre o próprio símbolo.
type TPF struct {
	ID                   string    `json:"id"`
	Symbol               string    `json:"symbol"`
	Name                 string    `json:"name"`
	ContractAddress      string    `json:"contractAddress"`
	Decimals             uint8     `json:"decimals"`
	StartTimestamp       time.Time `json:"startTimestamp"`
	DurationDays         int       `json:"durationDays"`
	Asset                string    `json:"asset"`        // Endereço do BRLX
	Yield                int64     `json:"yield"`        // Inteiro com duas casas implícitas (1000 = 10,00%)
	MaxAssets            int64     `json:"maxAssets"`    // Emissão máxima
	MinimumValue         string    `json:"minimumValue"` // Valor mínimo de investimento em BRLX
	BlocklistCountryCode []int     `json:"blocklistCountryCode,omitempty"`
	IdentityRegistry     string    `json:"_identityRegistry,omitempty"`
	Compliance           string    `json:"_compliance,omitempty"`
	OnchainID            string    `json:"_onchainId,omitempty"`
}

// ExpiresAt retorna a data de vencimento do título.
func (t TPF) ExpiresAt() time.Time {
	if t.StartTimestamp.IsZero() {
		return time.Time{}
	}
	return t.StartTimestamp.AddDate(0, 0, t.DurationDays)
}
