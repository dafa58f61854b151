// Package chain wraps the execution-layer JSON-RPC endpoint the auction
// house depends on. It exposes exactly the four calls the core consumes:
// eth_estimateGas, eth_getTransactionReceipt, eth_sendRawTransaction, and
// eth_blockNumber.
package chain

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client talks to an Ethereum execution node. It satisfies
// auction.ChainClient.
type Client struct {
	rc  *rpc.Client
	eth *ethclient.Client
}

// Dial connects to the JSON-RPC endpoint at url.
func Dial(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		return nil, errors.New("chain: empty provider URL")
	}
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewClient(rc), nil
}

// NewClient wraps an existing RPC connection.
func NewClient(rc *rpc.Client) *Client {
	return &Client{rc: rc, eth: ethclient.NewClient(rc)}
}

// EstimateGas runs eth_estimateGas for the given call.
func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return c.eth.EstimateGas(ctx, msg)
}

// TransactionReceipt runs eth_getTransactionReceipt. Pending or unknown
// transactions yield ethereum.NotFound.
func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return c.eth.TransactionReceipt(ctx, txHash)
}

// SendRawTransaction broadcasts raw signed transaction bytes via
// eth_sendRawTransaction.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) error {
	return c.rc.CallContext(ctx, nil, "eth_sendRawTransaction", hexutil.Encode(raw))
}

// BlockNumber runs eth_blockNumber.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// Close tears down the underlying connection.
func (c *Client) Close() {
	c.rc.Close()
}
