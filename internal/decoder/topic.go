package decoder

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var twoTo256 = new(big.Int).Lsh(big.NewInt(1), 256)

// DecodeTopic decodes one indexed value from its 32-byte topic word.
// Addresses keep the low 20 bytes; the padding is not inspected.
func DecodeTopic(typ abi.Type, topic common.Hash) (interface{}, error) {
	switch typ.T {
	case abi.AddressTy:
		return common.BytesToAddress(topic[common.HashLength-common.AddressLength:]), nil
	case abi.BoolTy:
		return new(big.Int).SetBytes(topic[:]).Sign() != 0, nil
	case abi.FixedBytesTy:
		if typ.Size != common.HashLength {
			return nil, fmt.Errorf("unsupported fixed bytes size %d", typ.Size)
		}
		var out [32]byte
		copy(out[:], topic[:])
		return out, nil
	case abi.UintTy:
		return integerValue(typ, new(big.Int).SetBytes(topic[:]))
	case abi.IntTy:
		value := new(big.Int).SetBytes(topic[:])
		if topic[0]&0x80 != 0 {
			value.Sub(value, twoTo256)
		}
		return integerValue(typ, value)
	default:
		return nil, fmt.Errorf("type %s cannot be decoded from a topic", typ.String())
	}
}

// integerValue range-checks value and converts it to the Go type the abi packer expects.
func integerValue(typ abi.Type, value *big.Int) (interface{}, error) {
	if typ.T == abi.UintTy {
		if value.Sign() < 0 || value.BitLen() > typ.Size {
			return nil, fmt.Errorf("%s overflow: %s", typ.String(), value.String())
		}
		switch typ.Size {
		case 8:
			return uint8(value.Uint64()), nil
		case 16:
			return uint16(value.Uint64()), nil
		case 32:
			return uint32(value.Uint64()), nil
		case 64:
			return value.Uint64(), nil
		}
		return value, nil
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
	min := new(big.Int).Neg(limit)
	if value.Cmp(min) < 0 || value.Cmp(limit) >= 0 {
		return nil, fmt.Errorf("%s overflow: %s", typ.String(), value.String())
	}
	switch typ.Size {
	case 8:
		return int8(value.Int64()), nil
	case 16:
		return int16(value.Int64()), nil
	case 32:
		return int32(value.Int64()), nil
	case 64:
		return value.Int64(), nil
	}
	return value, nil
}
