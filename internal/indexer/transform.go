package indexer

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"eventScope/internal/model"
)

func buildEntry(name string, log types.Log, info *TxInfo, args []byte) model.EventEntry {
	var to *string
	if addr := info.Tx.To(); addr != nil {
		hex := addr.Hex()
		to = &hex
	}

	return model.EventEntry{
		Timestamp:            info.Header.Time,
		BlockNumber:          log.BlockNumber,
		TxOrder:              uint64(log.TxIndex),
		TxHash:               model.NormalizeTxHash(log.TxHash.Hex()),
		TxFrom:               info.From.Hex(),
		TxTo:                 to,
		EventContractAddress: log.Address.Hex(),
		EventName:            name,
		EventArgs:            hexutil.Encode(args),
	}
}
