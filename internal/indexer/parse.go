package indexer

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress validates a hex contract address, with or without checksum casing.
// Mixed-case input must carry a valid checksum.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %q", input)
	}
	addr := common.HexToAddress(input)

	hex := strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
	if hex != strings.ToLower(hex) && hex != strings.ToUpper(hex) {
		if "0x"+hex != addr.Hex() {
			return common.Address{}, fmt.Errorf("invalid address checksum: %s", input)
		}
	}
	return addr, nil
}
