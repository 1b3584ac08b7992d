package display

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BRLXDecimals é a quantidade de casas decimais do BRLX.
const BRLXDecimals = 6

const dateLayout = "02/01/2006"

// YieldPercent formata o rendimento inteiro (duas casas implícitas) como percentual: 1000 -> "10.00%".
func YieldPercent(yield int64) string {
	return decimal.New(yield, -2).StringFixed(2) + "%"
}

// FormatBRLX formata um valor em BRLX no padrão pt-BR: 1234.5 -> "1.234,500000".
func FormatBRLX(v decimal.Decimal) string {
	return FormatPtBR(v, BRLXDecimals)
}

// FormatPtBR formata v com separador de milhar "." e decimal ",".
func FormatPtBR(v decimal.Decimal, places int32) string {
	fixed := v.StringFixed(places)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}

// ExpirationDate retorna a data de vencimento (dd/MM/yyyy) de um título iniciado em start.
func ExpirationDate(start time.Time, durationDays int) string {
	if start.IsZero() {
		return ""
	}
	return start.AddDate(0, 0, durationDays).Format(dateLayout)
}

// ShortenAddress abrevia um endereço mantendo o início e o fim: "0x1234...cdef".
func ShortenAddress(address string, startLength, endLength int) string {
	if address == "" || len(address) < startLength+endLength {
		return ""
	}
	return address[:startLength] + "..." + address[len(address)-endLength:]
}
