// Package txcodec decodes raw signed Ethereum transactions into structured
// records and re-encodes stored records back into raw bytes for forwarding
// to the public mempool. Supported envelopes are legacy/EIP-155, EIP-2930
// access-list, and EIP-1559 dynamic-fee transactions.
package txcodec

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// TxData is the decoded form of a signed transaction as held in the pool.
// Fee fields are populated by transaction type: GasPrice for legacy and
// access-list transactions, GasTipCap/GasFeeCap for dynamic-fee ones.
type TxData struct {
	Hash    common.Hash
	Type    uint8
	ChainID *uint256.Int // nil for pre-EIP-155 legacy transactions

	Nonce uint64
	Gas   uint64

	GasPrice  *uint256.Int // legacy / access-list
	GasTipCap *uint256.Int // maxPriorityFeePerGas
	GasFeeCap *uint256.Int // maxFeePerGas

	To    *common.Address // nil for contract creation
	Value *uint256.Int
	Input []byte

	AccessList types.AccessList

	// Signature values, verbatim from the wire.
	V *uint256.Int
	R *uint256.Int
	S *uint256.Int

	// From is the sender address recovered from the signature.
	From common.Address
}

// Redacted returns a copy with the signature zeroed (v=0, r="", s="") so a
// transaction body handed to builders cannot be broadcast by them.
func (d *TxData) Redacted() *TxData {
	cp := *d
	cp.V = uint256.NewInt(0)
	cp.R = uint256.NewInt(0)
	cp.S = uint256.NewInt(0)
	return &cp
}

// txDataJSON is the wire form of TxData: geth-style camelCase keys with
// 0x-prefixed quantities. r and s are byte strings so the redacted form
// renders as "0x".
type txDataJSON struct {
	Hash                 common.Hash       `json:"hash"`
	Type                 hexutil.Uint64    `json:"type"`
	ChainID              *hexutil.Big      `json:"chainId,omitempty"`
	Nonce                hexutil.Uint64    `json:"nonce"`
	Gas                  hexutil.Uint64    `json:"gas"`
	GasPrice             *hexutil.Big      `json:"gasPrice,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big      `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerGas         *hexutil.Big      `json:"maxFeePerGas,omitempty"`
	To                   *common.Address   `json:"to,omitempty"`
	Value                *hexutil.Big      `json:"value"`
	Input                hexutil.Bytes     `json:"input"`
	AccessList           types.AccessList  `json:"accessList,omitempty"`
	V                    *hexutil.Big      `json:"v"`
	R                    hexutil.Bytes     `json:"r"`
	S                    hexutil.Bytes     `json:"s"`
	From                 common.Address    `json:"from"`
}

// MarshalJSON implements json.Marshaler.
func (d *TxData) MarshalJSON() ([]byte, error) {
	enc := txDataJSON{
		Hash:                 d.Hash,
		Type:                 hexutil.Uint64(d.Type),
		ChainID:              u256ToHexBig(d.ChainID),
		Nonce:                hexutil.Uint64(d.Nonce),
		Gas:                  hexutil.Uint64(d.Gas),
		GasPrice:             u256ToHexBig(d.GasPrice),
		MaxPriorityFeePerGas: u256ToHexBig(d.GasTipCap),
		MaxFeePerGas:         u256ToHexBig(d.GasFeeCap),
		To:                   d.To,
		Value:                u256ToHexBig(d.Value),
		Input:                d.Input,
		AccessList:           d.AccessList,
		V:                    u256ToHexBig(d.V),
		From:                 d.From,
	}
	if d.R != nil {
		enc.R = d.R.Bytes()
	}
	if d.S != nil {
		enc.S = d.S.Bytes()
	}
	if enc.Input == nil {
		enc.Input = hexutil.Bytes{}
	}
	if enc.R == nil {
		enc.R = hexutil.Bytes{}
	}
	if enc.S == nil {
		enc.S = hexutil.Bytes{}
	}
	return json.Marshal(&enc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *TxData) UnmarshalJSON(data []byte) error {
	var dec txDataJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	d.Hash = dec.Hash
	d.Type = uint8(dec.Type)
	d.ChainID = hexBigToU256(dec.ChainID)
	d.Nonce = uint64(dec.Nonce)
	d.Gas = uint64(dec.Gas)
	d.GasPrice = hexBigToU256(dec.GasPrice)
	d.GasTipCap = hexBigToU256(dec.MaxPriorityFeePerGas)
	d.GasFeeCap = hexBigToU256(dec.MaxFeePerGas)
	d.To = dec.To
	d.Value = hexBigToU256(dec.Value)
	d.Input = dec.Input
	d.AccessList = dec.AccessList
	d.V = hexBigToU256(dec.V)
	d.R = new(uint256.Int).SetBytes(dec.R)
	d.S = new(uint256.Int).SetBytes(dec.S)
	d.From = dec.From
	return nil
}

func u256ToHexBig(u *uint256.Int) *hexutil.Big {
	if u == nil {
		return nil
	}
	return (*hexutil.Big)(u.ToBig())
}

func hexBigToU256(h *hexutil.Big) *uint256.Int {
	if h == nil {
		return nil
	}
	u, _ := uint256.FromBig((*big.Int)(h))
	return u
}
