// Package metrics expõe os contadores Prometheus do serviço.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsBuilt conta as transações não assinadas montadas, por função do contrato.
	TransactionsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tpf",
		Name:      "transactions_built_total",
		Help:      "Transações não assinadas montadas, por função do contrato.",
	}, []string{"function"})

	// TransactionsSent conta as transações enviadas à rede pelo serviço.
	TransactionsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tpf",
		Name:      "transactions_sent_total",
		Help:      "Transações enviadas à rede, por tipo e resultado.",
	}, []string{"kind", "result"})

	// ReceiptWaits mede quanto tempo leva até o recibo de uma transação ficar disponível.
	ReceiptWaits = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tpf",
		Name:      "receipt_wait_seconds",
		Help:      "Tempo de espera pelo recibo de uma transação.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	// PendingTransactions é o número de transações ainda pendentes vistas pelo listener.
	PendingTransactions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tpf",
		Name:      "pending_transactions",
		Help:      "Transações acompanhadas que ainda não foram confirmadas.",
	})
)

// Result converte um erro no rótulo de resultado usado pelos contadores.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
