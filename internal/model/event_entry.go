package model

import "strings"

// EventEntry is one decoded event occurrence persisted under its transaction hash.
type EventEntry struct {
	Timestamp            uint64  `json:"timestamp"`
	BlockNumber          uint64  `json:"blockNumber"`
	TxOrder              uint64  `json:"txOrder"`
	TxHash               string  `json:"txHash"`
	TxFrom               string  `json:"txFrom"`
	TxTo                 *string `json:"txTo"`
	EventContractAddress string  `json:"eventContractAddress"`
	EventName            string  `json:"eventName"`
	EventArgs            string  `json:"eventArgs"`
}

// SameOccurrence reports whether two entries of one transaction describe the same event.
func (e EventEntry) SameOccurrence(other EventEntry) bool {
	return e.EventName == other.EventName && strings.EqualFold(e.EventArgs, other.EventArgs)
}

// NormalizeTxHash returns the 0x-prefixed lower-hex form of a transaction hash.
func NormalizeTxHash(hash string) string {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if strings.HasPrefix(hash, "0x") {
		return hash
	}
	return "0x" + hash
}
