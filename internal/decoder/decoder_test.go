package decoder

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"eventScope/internal/event"
)

func builtin(t *testing.T, name string) *event.Schema {
	t.Helper()
	reg, err := event.BuiltinRegistry()
	require.NoError(t, err)
	schema, ok := reg.Lookup(name)
	require.True(t, ok)
	return schema
}

func mustType(t *testing.T, tag string) abi.Type {
	t.Helper()
	typ, err := abi.NewType(tag, "", nil)
	require.NoError(t, err)
	return typ
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func TestDecodeLiquidationCall(t *testing.T) {
	schema := builtin(t, "LiquidationCall")
	dec := New(schema)

	liquidator := common.HexToAddress("0x1111111111111111111111111111111111111111")
	silo := common.HexToAddress("0x6AAFD9Dd424541885fd79C06FDA96929CFD512f9")
	borrower := common.HexToAddress("0x3333333333333333333333333333333333333333")

	data, err := schema.Data.Pack(big.NewInt(1000), big.NewInt(2000), true)
	require.NoError(t, err)

	log := types.Log{
		Address: silo,
		Topics:  []common.Hash{schema.Topic0(), topicFromAddress(liquidator), topicFromAddress(silo), topicFromAddress(borrower)},
		Data:    data,
	}
	require.True(t, dec.CanDecode(log))

	decoded, err := dec.Decode(log)
	require.NoError(t, err)
	require.Equal(t, []interface{}{liquidator, silo, borrower}, decoded.Indexed)
	require.Len(t, decoded.Data, 3)
	require.Equal(t, true, decoded.Data[2])

	args, err := dec.EncodeRetained(decoded)
	require.NoError(t, err)

	want, err := abi.Arguments{
		{Type: mustType(t, "address")},
		{Type: mustType(t, "address")},
		{Type: mustType(t, "address")},
		{Type: mustType(t, "uint256")},
		{Type: mustType(t, "uint256")},
		{Type: mustType(t, "bool")},
	}.Pack(liquidator, silo, borrower, big.NewInt(1000), big.NewInt(2000), true)
	require.NoError(t, err)
	require.Equal(t, want, args)
	require.Len(t, args, 6*32)
}

func TestDecodeNewTransmissionDynamicData(t *testing.T) {
	schema := builtin(t, "NewTransmission")
	dec := New(schema)

	answer := big.NewInt(-123456789)
	data, err := schema.Data.Pack(
		answer,
		common.HexToAddress("0x4444444444444444444444444444444444444444"),
		uint32(1700000000),
		[]*big.Int{big.NewInt(1), big.NewInt(-2), big.NewInt(3)},
		[]byte{0x01, 0x02, 0x03},
		big.NewInt(77),
		[32]byte{0xaa},
		big.NewInt(513),
	)
	require.NoError(t, err)

	roundID := common.BigToHash(big.NewInt(42))
	log := types.Log{Topics: []common.Hash{schema.Topic0(), roundID}, Data: data}

	decoded, err := dec.Decode(log)
	require.NoError(t, err)
	require.Equal(t, []interface{}{uint32(42)}, decoded.Indexed)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, decoded.Data[4])
	require.Equal(t, 0, big.NewInt(77).Cmp(decoded.Data[5].(*big.Int)), "field after dynamic values")

	args, err := dec.EncodeRetained(decoded)
	require.NoError(t, err)

	want, err := abi.Arguments{{Type: mustType(t, "int192")}}.Pack(answer)
	require.NoError(t, err)
	require.Equal(t, want, args)
}

func TestDecodeTransferEventArgs(t *testing.T) {
	schema := builtin(t, "Transfer")
	dec := New(schema)

	from := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	to := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	data := common.LeftPadBytes(big.NewInt(5000).Bytes(), 32)

	args, err := dec.EventArgs(types.Log{
		Topics: []common.Hash{schema.Topic0(), topicFromAddress(from), topicFromAddress(to)},
		Data:   data,
	})
	require.NoError(t, err)

	want := append(append(topicFromAddress(from).Bytes(), topicFromAddress(to).Bytes()...), data...)
	require.Equal(t, want, args)
}

func TestDecodeErrors(t *testing.T) {
	schema := builtin(t, "LiquidationCall")
	dec := New(schema)

	addr := topicFromAddress(common.HexToAddress("0x1111111111111111111111111111111111111111"))
	good, err := schema.Data.Pack(big.NewInt(1), big.NewInt(2), false)
	require.NoError(t, err)

	tests := []struct {
		name string
		log  types.Log
	}{
		{
			name: "missing topic",
			log:  types.Log{Topics: []common.Hash{schema.Topic0(), addr, addr}, Data: good},
		},
		{
			name: "short data",
			log:  types.Log{Topics: []common.Hash{schema.Topic0(), addr, addr, addr}, Data: good[:64]},
		},
		{
			name: "trailing data",
			log:  types.Log{Topics: []common.Hash{schema.Topic0(), addr, addr, addr}, Data: append(good, make([]byte, 32)...)},
		},
		{
			name: "wrong topic0",
			log:  types.Log{Topics: []common.Hash{common.HexToHash("0x01"), addr, addr, addr}, Data: good},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dec.Decode(tt.log)
			require.Error(t, err)
		})
	}

	_, err = dec.Decode(types.Log{Topics: []common.Hash{common.HexToHash("0x01"), addr, addr, addr}, Data: good})
	require.True(t, errors.Is(err, ErrTopicMismatch))
}

func TestDecodeMalformedDynamicData(t *testing.T) {
	schema := builtin(t, "NewTransmission")
	dec := New(schema)

	// Offset word of the int192[] field points far past the end of data.
	data := make([]byte, 8*32)
	data[3*32+31] = 0xff
	data[3*32+30] = 0xff

	_, err := dec.Decode(types.Log{
		Topics: []common.Hash{schema.Topic0(), common.BigToHash(big.NewInt(1))},
		Data:   data,
	})
	require.Error(t, err)
}

func TestDecodeTopicAddressIgnoresPadding(t *testing.T) {
	want := common.HexToAddress("0x6AAFD9Dd424541885fd79C06FDA96929CFD512f9")

	var topic common.Hash
	for i := 0; i < 12; i++ {
		topic[i] = 0xff
	}
	copy(topic[12:], want.Bytes())

	got, err := DecodeTopic(mustType(t, "address"), topic)
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = DecodeTopic(mustType(t, "address"), topicFromAddress(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDecodeTopicScalars(t *testing.T) {
	negative := common.BigToHash(new(big.Int).Sub(twoTo256, big.NewInt(120)))

	tests := []struct {
		name  string
		typ   string
		topic common.Hash
		want  interface{}
	}{
		{name: "bool true", typ: "bool", topic: common.BigToHash(big.NewInt(1)), want: true},
		{name: "bool nonzero", typ: "bool", topic: common.BigToHash(big.NewInt(256)), want: true},
		{name: "bool false", typ: "bool", topic: common.Hash{}, want: false},
		{name: "uint32", typ: "uint32", topic: common.BigToHash(big.NewInt(42)), want: uint32(42)},
		{name: "int24 negative", typ: "int24", topic: negative, want: big.NewInt(-120)},
		{name: "int64 negative", typ: "int64", topic: negative, want: int64(-120)},
		{name: "uint256", typ: "uint256", topic: common.BigToHash(big.NewInt(7)), want: big.NewInt(7)},
		{name: "bytes32", typ: "bytes32", topic: common.HexToHash("0xab"), want: [32]byte(common.HexToHash("0xab"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTopic(mustType(t, tt.typ), tt.topic)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeTopicOverflow(t *testing.T) {
	_, err := DecodeTopic(mustType(t, "uint32"), common.BigToHash(big.NewInt(1<<40)))
	require.Error(t, err)

	_, err = DecodeTopic(mustType(t, "int8"), common.BigToHash(big.NewInt(200)))
	require.Error(t, err)
}
