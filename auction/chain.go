package auction

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainClient is the slice of the execution-layer JSON-RPC surface the
// auction house consumes. chain.Client implements it over a real endpoint;
// tests substitute a fake. No house lock is ever held across one of these
// calls.
type ChainClient interface {
	// EstimateGas runs eth_estimateGas for the given call.
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)

	// TransactionReceipt runs eth_getTransactionReceipt. A pending or
	// unknown transaction yields ethereum.NotFound.
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)

	// SendRawTransaction broadcasts a raw signed transaction to the
	// public mempool via eth_sendRawTransaction.
	SendRawTransaction(ctx context.Context, raw []byte) error

	// BlockNumber runs eth_blockNumber.
	BlockNumber(ctx context.Context) (uint64, error)
}
