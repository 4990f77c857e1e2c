package decoder

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"

	"eventScope/internal/event"
)

// ErrTopicMismatch is returned when a log's topic0 is not the schema signature hash.
var ErrTopicMismatch = errors.New("topic0 does not match schema")

// Decoded holds the values of one log: topic slots 1..N, then the data tuple.
type Decoded struct {
	Indexed []interface{}
	Data    []interface{}
}

// Value returns the decoded value ref points at.
func (d *Decoded) Value(ref event.FieldRef) (interface{}, error) {
	values := d.Data
	if ref.Indexed {
		values = d.Indexed
	}
	if ref.Position < 0 || ref.Position >= len(values) {
		return nil, fmt.Errorf("field %s: position %d out of range", ref.Name, ref.Position)
	}
	return values[ref.Position], nil
}

// LogDecoder decodes raw logs of a single event schema.
type LogDecoder struct {
	schema *event.Schema
}

func New(schema *event.Schema) *LogDecoder {
	return &LogDecoder{schema: schema}
}

func (d *LogDecoder) Schema() *event.Schema {
	return d.schema
}

// CanDecode checks topic0 only; Decode still validates the full layout.
func (d *LogDecoder) CanDecode(log types.Log) bool {
	return len(log.Topics) > 0 && log.Topics[0] == d.schema.Topic0()
}

// Decode splits a log into its indexed and data values.
func (d *LogDecoder) Decode(log types.Log) (*Decoded, error) {
	s := d.schema
	if len(log.Topics) != len(s.Indexed)+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", len(s.Indexed)+1, len(log.Topics))
	}
	if log.Topics[0] != s.Topic0() {
		return nil, fmt.Errorf("%w: %s", ErrTopicMismatch, log.Topics[0].Hex())
	}

	indexed := make([]interface{}, 0, len(s.Indexed))
	for i, arg := range s.Indexed {
		value, err := DecodeTopic(arg.Type, log.Topics[i+1])
		if err != nil {
			return nil, fmt.Errorf("topic %d (%s): %w", i+1, arg.Name, err)
		}
		indexed = append(indexed, value)
	}

	data, err := unpackData(s, log.Data)
	if err != nil {
		return nil, err
	}

	return &Decoded{Indexed: indexed, Data: data}, nil
}

// EncodeRetained ABI-encodes the retained fields as one tuple.
func (d *LogDecoder) EncodeRetained(decoded *Decoded) ([]byte, error) {
	if decoded == nil {
		return nil, fmt.Errorf("decoded log is nil")
	}
	values := make([]interface{}, 0, len(d.schema.Retained))
	for _, ref := range d.schema.Retained {
		value, err := decoded.Value(ref)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	encoded, err := d.schema.RetainedArguments().Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("pack %s args: %w", d.schema.Name, err)
	}
	return encoded, nil
}

// EventArgs decodes log and returns the canonical encoding of its retained fields.
func (d *LogDecoder) EventArgs(log types.Log) ([]byte, error) {
	decoded, err := d.Decode(log)
	if err != nil {
		return nil, err
	}
	return d.EncodeRetained(decoded)
}

func unpackData(s *event.Schema, data []byte) ([]interface{}, error) {
	// Every static type in the vocabulary occupies exactly one word.
	if !s.HasDynamicData() {
		if want := 32 * len(s.Data); len(data) != want {
			return nil, fmt.Errorf("data length %d, want %d", len(data), want)
		}
	}

	values, err := s.Data.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", s.Name, err)
	}
	if len(values) != len(s.Data) {
		return nil, fmt.Errorf("unexpected %s values: %d", s.Name, len(values))
	}
	return values, nil
}
