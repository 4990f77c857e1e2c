package event

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// MaxIndexed is the number of topic slots available after the signature hash.
const MaxIndexed = 3

// Param declares one event parameter in declaration order.
type Param struct {
	Name    string `mapstructure:"name"`
	Type    string `mapstructure:"type"`
	Indexed bool   `mapstructure:"indexed"`
}

// FieldRef locates one decoded value: a topic slot when Indexed, a data tuple position otherwise.
type FieldRef struct {
	Name     string
	Indexed  bool
	Position int
	Type     abi.Type
}

// Schema is the static description of one event type.
type Schema struct {
	Name      string
	Signature string
	Indexed   abi.Arguments
	Data      abi.Arguments
	Retained  []FieldRef

	topic0 common.Hash
}

// New validates params and builds a schema. An empty retain list retains every param.
func New(name string, params []Param, retain []string) (*Schema, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("event name is required")
	}

	s := &Schema{Name: name}
	typeNames := make([]string, 0, len(params))
	all := make([]FieldRef, 0, len(params))
	byName := make(map[string]FieldRef, len(params))

	for i, p := range params {
		typ, err := parseType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("%s param %d: %w", name, i, err)
		}
		if p.Indexed && isDynamic(typ) {
			return nil, fmt.Errorf("%s param %d: dynamic type %s cannot be indexed", name, i, typ.String())
		}

		ref := FieldRef{Name: p.Name, Indexed: p.Indexed, Type: typ}
		arg := abi.Argument{Name: p.Name, Type: typ, Indexed: p.Indexed}
		if p.Indexed {
			ref.Position = len(s.Indexed)
			s.Indexed = append(s.Indexed, arg)
		} else {
			ref.Position = len(s.Data)
			s.Data = append(s.Data, arg)
		}

		if p.Name != "" {
			if _, dup := byName[p.Name]; dup {
				return nil, fmt.Errorf("%s: duplicate param name %q", name, p.Name)
			}
			byName[p.Name] = ref
		}
		all = append(all, ref)
		typeNames = append(typeNames, typ.String())
	}

	if len(s.Indexed) > MaxIndexed {
		return nil, fmt.Errorf("%s: %d indexed params, at most %d allowed", name, len(s.Indexed), MaxIndexed)
	}

	if len(retain) == 0 {
		s.Retained = all
	} else {
		seen := make(map[string]struct{}, len(retain))
		for _, field := range retain {
			field = strings.TrimSpace(field)
			ref, ok := byName[field]
			if !ok {
				return nil, fmt.Errorf("%s: retained field %q is not a param", name, field)
			}
			if _, dup := seen[field]; dup {
				return nil, fmt.Errorf("%s: retained field %q listed twice", name, field)
			}
			seen[field] = struct{}{}
			s.Retained = append(s.Retained, ref)
		}
	}

	s.Signature = fmt.Sprintf("%s(%s)", name, strings.Join(typeNames, ","))
	s.topic0 = crypto.Keccak256Hash([]byte(s.Signature))
	return s, nil
}

// FromABIEvent builds a schema from a parsed ABI event.
func FromABIEvent(ev abi.Event, retain []string) (*Schema, error) {
	params := make([]Param, 0, len(ev.Inputs))
	for _, input := range ev.Inputs {
		params = append(params, Param{Name: input.Name, Type: input.Type.String(), Indexed: input.Indexed})
	}
	s, err := New(ev.Name, params, retain)
	if err != nil {
		return nil, err
	}
	if s.Signature != ev.Sig {
		return nil, fmt.Errorf("%s: signature mismatch %s != %s", ev.Name, s.Signature, ev.Sig)
	}
	return s, nil
}

// Topic0 returns keccak256 of the signature.
func (s *Schema) Topic0() common.Hash {
	return s.topic0
}

func (s *Schema) IndexedTypes() []string {
	return typeStrings(s.Indexed)
}

func (s *Schema) DataTypes() []string {
	return typeStrings(s.Data)
}

// HasDynamicData reports whether any data field shifts the offsets of later fields.
func (s *Schema) HasDynamicData() bool {
	for _, arg := range s.Data {
		if isDynamic(arg.Type) {
			return true
		}
	}
	return false
}

// RetainedArguments returns the tuple layout used to encode persisted event args.
func (s *Schema) RetainedArguments() abi.Arguments {
	args := make(abi.Arguments, 0, len(s.Retained))
	for _, ref := range s.Retained {
		args = append(args, abi.Argument{Name: ref.Name, Type: ref.Type})
	}
	return args
}

func typeStrings(args abi.Arguments) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		out = append(out, arg.Type.String())
	}
	return out
}

func parseType(tag string) (abi.Type, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return abi.Type{}, fmt.Errorf("empty type")
	}
	typ, err := abi.NewType(tag, "", nil)
	if err != nil {
		return abi.Type{}, fmt.Errorf("parse type %q: %w", tag, err)
	}
	if err := checkVocabulary(typ); err != nil {
		return abi.Type{}, err
	}
	return typ, nil
}

func checkVocabulary(typ abi.Type) error {
	switch typ.T {
	case abi.AddressTy, abi.BoolTy, abi.BytesTy:
		return nil
	case abi.UintTy, abi.IntTy:
		if typ.Size >= 8 && typ.Size <= 256 && typ.Size%8 == 0 {
			return nil
		}
	case abi.FixedBytesTy:
		if typ.Size == 32 {
			return nil
		}
	case abi.SliceTy:
		if typ.Elem != nil {
			return checkVocabulary(*typ.Elem)
		}
	}
	return fmt.Errorf("unsupported type %s", typ.String())
}

func isDynamic(typ abi.Type) bool {
	switch typ.T {
	case abi.BytesTy, abi.StringTy, abi.SliceTy:
		return true
	default:
		return false
	}
}
