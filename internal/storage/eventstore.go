package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"eventScope/internal/model"
)

// ErrCorruptStore is returned when the persisted file matches neither the current nor the legacy shape.
var ErrCorruptStore = errors.New("corrupt event store")

// EventStore maps transaction hashes to the ordered events they emitted, backed by a JSON file.
// It is not safe for concurrent writers; runs against one file must be serialized.
type EventStore struct {
	path     string
	entries  map[string][]model.EventEntry
	migrated int
}

// LoadEventStore reads the store at path. A missing file yields an empty store.
// Legacy values (one object per key, keys or txHash without 0x) are upgraded in memory.
func LoadEventStore(path string) (*EventStore, error) {
	s := &EventStore{path: path, entries: make(map[string][]model.EventEntry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read event store: %w", err)
	}

	// Decoding through the document keeps file order for keys that collide after normalization.
	raw, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, path, err)
	}

	for _, item := range raw {
		entries, legacy, err := parseValue(item.value)
		if err != nil {
			return nil, fmt.Errorf("%w: key %s: %v", ErrCorruptStore, item.key, err)
		}

		key := model.NormalizeTxHash(item.key)
		if legacy || key != item.key {
			s.migrated++
		}
		if _, ok := s.entries[key]; !ok {
			s.entries[key] = make([]model.EventEntry, 0, len(entries))
		}
		for _, entry := range entries {
			if entry.TxHash == "" {
				entry.TxHash = key
			}
			entry.TxHash = model.NormalizeTxHash(entry.TxHash)
			s.appendUnique(key, entry)
		}
	}

	return s, nil
}

// Merge appends entry under its transaction unless the same (eventName, eventArgs) is already stored.
// It reports whether the entry was added.
func (s *EventStore) Merge(entry model.EventEntry) bool {
	entry.TxHash = model.NormalizeTxHash(entry.TxHash)
	return s.appendUnique(entry.TxHash, entry)
}

func (s *EventStore) appendUnique(key string, entry model.EventEntry) bool {
	for _, existing := range s.entries[key] {
		if existing.SameOccurrence(entry) {
			return false
		}
	}
	s.entries[key] = append(s.entries[key], entry)
	return true
}

// Save writes the store sorted by the first entry's (blockNumber, txOrder).
func (s *EventStore) Save() error {
	data, err := s.marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write event store tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename event store: %w", err)
	}
	return nil
}

// Keys returns transaction hashes in persisted order.
func (s *EventStore) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		bi, oi := s.sortKey(keys[i])
		bj, oj := s.sortKey(keys[j])
		if bi != bj {
			return bi < bj
		}
		if oi != oj {
			return oi < oj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (s *EventStore) sortKey(key string) (uint64, uint64) {
	list := s.entries[key]
	if len(list) == 0 {
		return 0, 0
	}
	return list[0].BlockNumber, list[0].TxOrder
}

// Entries returns the events stored for a transaction, in log order.
func (s *EventStore) Entries(txHash string) []model.EventEntry {
	list := s.entries[model.NormalizeTxHash(txHash)]
	out := make([]model.EventEntry, len(list))
	copy(out, list)
	return out
}

func (s *EventStore) Path() string {
	return s.path
}

// Transactions returns the number of transaction keys.
func (s *EventStore) Transactions() int {
	return len(s.entries)
}

// TotalEntries returns the number of events across all transactions.
func (s *EventStore) TotalEntries() int {
	total := 0
	for _, list := range s.entries {
		total += len(list)
	}
	return total
}

// Migrated returns how many persisted keys needed a legacy upgrade on load.
func (s *EventStore) Migrated() int {
	return s.migrated
}

func (s *EventStore) marshal() ([]byte, error) {
	keys := s.Keys()
	if len(keys) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, key := range keys {
		name, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("marshal key: %w", err)
		}
		list := s.entries[key]
		if list == nil {
			list = []model.EventEntry{}
		}
		value, err := json.MarshalIndent(list, "  ", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal entries %s: %w", key, err)
		}

		buf.WriteString("  ")
		buf.Write(name)
		buf.WriteString(": ")
		buf.Write(value)
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
