package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// InvoicesParsed counts successfully ingested invoices.
	InvoicesParsed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invoices_parsed_total",
			Help: "Invoices parsed and persisted by the ingestion worker",
		},
	)

	// InvoicesFailed counts documents rejected as malformed.
	InvoicesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invoices_failed_total",
			Help: "Ingestion jobs marked failed",
		},
	)

	// ProductsPriced counts priced line items.
	ProductsPriced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "products_priced_total",
			Help: "Line items run through the pricing pipeline",
		},
	)
)

// Start registers the collectors and serves /metrics on the given port.
func Start(port string) {
	prometheus.MustRegister(InvoicesParsed, InvoicesFailed, ProductsPriced)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
