package txcodec

import (
	"github.com/ethereum/go-ethereum"
)

// CallMsg converts the record into the call form expected by
// eth_estimateGas.
func (d *TxData) CallMsg() ethereum.CallMsg {
	msg := ethereum.CallMsg{
		From:       d.From,
		To:         d.To,
		Gas:        d.Gas,
		GasPrice:   toBig(d.GasPrice),
		GasTipCap:  toBig(d.GasTipCap),
		GasFeeCap:  toBig(d.GasFeeCap),
		Value:      toBig(d.Value),
		Data:       d.Input,
		AccessList: d.AccessList,
	}
	return msg
}
