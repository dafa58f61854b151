package txcodec

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Codec errors.
var (
	ErrEmptyRawTx       = errors.New("txcodec: empty raw transaction")
	ErrUnknownTxType    = errors.New("txcodec: unknown transaction type")
	ErrDecode           = errors.New("txcodec: decode failed")
	ErrSenderRecovery   = errors.New("txcodec: sender recovery failed")
	ErrMissingGasPrice  = errors.New("txcodec: gasPrice required for legacy encoding")
	ErrEncodeMismatch   = errors.New("txcodec: re-encoded hash mismatch")
)

// Decode classifies a raw signed transaction by its first byte, decodes it,
// and recovers the sender. First byte > 0x7f means the whole byte string is
// an RLP list, i.e. a legacy or EIP-155 transaction. Otherwise the first
// byte is the EIP-2718 type selector: 0x01 access-list, 0x02 dynamic-fee.
// Any other selector is rejected, including types go-ethereum itself can
// parse (blob and set-code transactions have no place in this pool).
func Decode(raw []byte) (*TxData, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyRawTx
	}
	if raw[0] <= 0x7f && raw[0] != types.AccessListTxType && raw[0] != types.DynamicFeeTxType {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTxType, raw[0])
	}

	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	signer := types.LatestSignerForChainID(tx.ChainId())
	from, err := types.Sender(signer, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSenderRecovery, err)
	}

	v, r, s := tx.RawSignatureValues()
	d := &TxData{
		Hash:  tx.Hash(),
		Type:  tx.Type(),
		Nonce: tx.Nonce(),
		Gas:   tx.Gas(),
		To:    tx.To(),
		Value: u256(tx.Value()),
		Input: tx.Data(),
		V:     u256(v),
		R:     u256(r),
		S:     u256(s),
		From:  from,
	}
	// Pre-EIP-155 legacy transactions carry no chain id.
	if tx.Type() != types.LegacyTxType || tx.Protected() {
		d.ChainID = u256(tx.ChainId())
	}

	switch tx.Type() {
	case types.LegacyTxType:
		d.GasPrice = u256(tx.GasPrice())
	case types.AccessListTxType:
		d.GasPrice = u256(tx.GasPrice())
		d.AccessList = tx.AccessList()
	case types.DynamicFeeTxType:
		d.GasTipCap = u256(tx.GasTipCap())
		d.GasFeeCap = u256(tx.GasFeeCap())
		if al := tx.AccessList(); len(al) > 0 {
			d.AccessList = al
		}
	}
	return d, nil
}

// Encode reconstructs the raw transaction byte string from a stored record.
// The envelope is chosen by fee-field presence: both maxFeePerGas and
// maxPriorityFeePerGas set means EIP-1559; otherwise gasPrice is required
// and the output is an access-list transaction when an access list is
// present, a legacy transaction when not. The signature triple is attached
// verbatim. The result must hash back to the stored transaction hash.
func Encode(d *TxData) ([]byte, error) {
	var inner types.TxData
	switch {
	case d.GasFeeCap != nil && d.GasTipCap != nil:
		inner = &types.DynamicFeeTx{
			ChainID:    toBig(d.ChainID),
			Nonce:      d.Nonce,
			GasTipCap:  toBig(d.GasTipCap),
			GasFeeCap:  toBig(d.GasFeeCap),
			Gas:        d.Gas,
			To:         d.To,
			Value:      toBig(d.Value),
			Data:       d.Input,
			AccessList: d.AccessList,
			V:          toBig(d.V),
			R:          toBig(d.R),
			S:          toBig(d.S),
		}
	case d.GasPrice == nil:
		return nil, ErrMissingGasPrice
	case len(d.AccessList) > 0:
		inner = &types.AccessListTx{
			ChainID:    toBig(d.ChainID),
			Nonce:      d.Nonce,
			GasPrice:   toBig(d.GasPrice),
			Gas:        d.Gas,
			To:         d.To,
			Value:      toBig(d.Value),
			Data:       d.Input,
			AccessList: d.AccessList,
			V:          toBig(d.V),
			R:          toBig(d.R),
			S:          toBig(d.S),
		}
	default:
		inner = &types.LegacyTx{
			Nonce:    d.Nonce,
			GasPrice: toBig(d.GasPrice),
			Gas:      d.Gas,
			To:       d.To,
			Value:    toBig(d.Value),
			Data:     d.Input,
			V:        toBig(d.V),
			R:        toBig(d.R),
			S:        toBig(d.S),
		}
	}

	raw, err := types.NewTx(inner).MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("txcodec: encode: %w", err)
	}
	if got := crypto.Keccak256Hash(raw); got != d.Hash {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrEncodeMismatch, got, d.Hash)
	}
	return raw, nil
}

func u256(b *big.Int) *uint256.Int {
	if b == nil {
		return nil
	}
	u, _ := uint256.FromBig(b)
	return u
}

func toBig(u *uint256.Int) *big.Int {
	if u == nil {
		return nil
	}
	return u.ToBig()
}
