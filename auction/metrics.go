package auction

import "github.com/eth2030/txauction/metrics"

// Auction house metrics, registered in the process-wide default registry
// and served by the HTTP /metrics endpoint.
var (
	txSubmittedCounter = metrics.DefaultRegistry.Counter("txauction_txs_submitted_total")
	txExecutedCounter  = metrics.DefaultRegistry.Counter("txauction_txs_executed_total")
	txExpiredCounter   = metrics.DefaultRegistry.Counter("txauction_txs_expired_total")
	bidsCounter        = metrics.DefaultRegistry.Counter("txauction_bids_total")
	settledCounter     = metrics.DefaultRegistry.Counter("txauction_auctions_settled_total")

	poolSizeGauge      = metrics.DefaultRegistry.Gauge("txauction_txpool_size")
	auctionsGauge      = metrics.DefaultRegistry.Gauge("txauction_open_auctions")
	settleDurationHist = metrics.DefaultRegistry.Histogram("txauction_settle_pass_seconds")
)
