package event

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const siloEventsABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "liquidator", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "silo", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "borrower", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "repayDebtAssets", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "withdrawCollateral", "type": "uint256"},
      {"indexed": false, "internalType": "bool", "name": "receiveSToken", "type": "bool"}
    ],
    "name": "LiquidationCall",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint32", "name": "aggregatorRoundId", "type": "uint32"},
      {"indexed": false, "internalType": "int192", "name": "answer", "type": "int192"},
      {"indexed": false, "internalType": "address", "name": "transmitter", "type": "address"},
      {"indexed": false, "internalType": "uint32", "name": "observationsTimestamp", "type": "uint32"},
      {"indexed": false, "internalType": "int192[]", "name": "observations", "type": "int192[]"},
      {"indexed": false, "internalType": "bytes", "name": "observers", "type": "bytes"},
      {"indexed": false, "internalType": "int192", "name": "juelsPerFeeCoin", "type": "int192"},
      {"indexed": false, "internalType": "bytes32", "name": "configDigest", "type": "bytes32"},
      {"indexed": false, "internalType": "uint40", "name": "epochAndRound", "type": "uint40"}
    ],
    "name": "NewTransmission",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "from", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "value", "type": "uint256"}
    ],
    "name": "Transfer",
    "type": "event"
  }
]`

var (
	siloEventsABI     abi.ABI
	siloEventsABIOnce sync.Once
	siloEventsABIErr  error
)

// SiloEventsABI returns the parsed ABI of the built-in collectable events.
func SiloEventsABI() (abi.ABI, error) {
	siloEventsABIOnce.Do(func() {
		siloEventsABI, siloEventsABIErr = abi.JSON(strings.NewReader(siloEventsABIJSON))
	})
	return siloEventsABI, siloEventsABIErr
}
