// Package auction implements a private order-flow auction: searchers submit
// signed transactions, registered builders bid in per-transaction sealed-bid
// second-price auctions, and settlement runs on the beacon slot cadence.
// Unsold transactions are flushed to the public mempool before they go
// stale.
package auction

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/eth2030/txauction/txcodec"
)

// Builder is a registered block builder. Access and PendingPayment are
// mutated only under the house builder lock.
type Builder struct {
	Pubkey         hexutil.Bytes
	Access         bool
	PendingPayment *uint256.Int
}

// Transaction is a pooled order-flow transaction. Hash is the keccak of the
// canonically re-encoded raw transaction. Sold is flipped by settlement,
// Executed by cleanup when a receipt is observed.
type Transaction struct {
	Hash      common.Hash
	Data      *txcodec.TxData
	Reserve   *uint256.Int
	Submitted time.Time
	Sold      bool
	Executed  bool
}

// Bid is a builder's sealed bid on a single transaction. Immutable after
// creation.
type Bid struct {
	Builder   hexutil.Bytes
	TxHash    common.Hash
	Value     *uint256.Int
	Submitted time.Time
}

// Result is the outcome of one settled auction.
type Result struct {
	Winner  hexutil.Bytes
	TxHash  common.Hash
	Payment *uint256.Int
}

// SettledResult pairs an auction result with the full transaction body the
// winner is entitled to.
type SettledResult struct {
	Result *Result
	Data   *txcodec.TxData
}

// PoolTx is a txpool export entry: the redacted transaction body plus its
// reserve price.
type PoolTx struct {
	Data    *txcodec.TxData
	Reserve *uint256.Int
}

// BuilderResult is one entry of a builder's per-slot results query.
type BuilderResult struct {
	TxHash  common.Hash
	Payment *uint256.Int
	Data    *txcodec.TxData
}

// Status is a snapshot of a builder's standing.
type Status struct {
	Access         bool
	PendingPayment *uint256.Int
}
