package indexer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"eventScope/internal/event"
)

// Fetcher queries the logs a contract emitted for one event schema.
type Fetcher struct {
	source LogSource
}

func NewFetcher(source LogSource) *Fetcher {
	return &Fetcher{source: source}
}

// Fetch returns the logs of contract matching schema's topic0 in [fromBlock, toBlock].
// Transport errors, including range-too-large rejections, are returned as is.
func (f *Fetcher) Fetch(ctx context.Context, contract common.Address, schema *event.Schema, fromBlock, toBlock uint64) ([]types.Log, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is nil")
	}
	if toBlock < fromBlock {
		return nil, fmt.Errorf("invalid block range: from %d > to %d", fromBlock, toBlock)
	}
	logs, err := f.source.FilterLogs(ctx, fromBlock, toBlock, contract, schema.Topic0())
	if err != nil {
		return nil, fmt.Errorf("get logs %s [%d, %d]: %w", schema.Name, fromBlock, toBlock, err)
	}
	return logs, nil
}
