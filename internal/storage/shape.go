package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"eventScope/internal/model"
)

type rawItem struct {
	key   string
	value json.RawMessage
}

// decodeObject reads a top-level JSON object keeping member order.
func decodeObject(data []byte) ([]rawItem, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("top level is not an object")
	}

	var items []rawItem
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		items = append(items, rawItem{key: key, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after object")
	}
	return items, nil
}

// parseValue accepts the current shape (array of entries) or the legacy shape (one entry object).
func parseValue(value json.RawMessage) ([]model.EventEntry, bool, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty value")
	}

	switch trimmed[0] {
	case '[':
		var entries []model.EventEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, false, err
		}
		for i, entry := range entries {
			if err := checkEntry(entry); err != nil {
				return nil, false, fmt.Errorf("entry %d: %w", i, err)
			}
		}
		return entries, false, nil
	case '{':
		var entry model.EventEntry
		if err := json.Unmarshal(trimmed, &entry); err != nil {
			return nil, true, err
		}
		if err := checkEntry(entry); err != nil {
			return nil, true, err
		}
		return []model.EventEntry{entry}, true, nil
	default:
		return nil, false, fmt.Errorf("value is neither an entry list nor an entry object")
	}
}

func checkEntry(entry model.EventEntry) error {
	if entry.EventName == "" {
		return fmt.Errorf("missing eventName")
	}
	return nil
}
