package indexer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxInfo is everything an entry needs from the transaction that emitted a log.
type TxInfo struct {
	Tx      *types.Transaction
	Receipt *types.Receipt
	Header  *types.Header
	From    common.Address
}

// TxCache memoizes transaction lookups for the duration of one run.
type TxCache struct {
	source TxSource
	items  map[common.Hash]*TxInfo
}

func NewTxCache(source TxSource) *TxCache {
	return &TxCache{source: source, items: make(map[common.Hash]*TxInfo)}
}

// Get returns the cached lookup for hash, resolving it on first use.
func (c *TxCache) Get(ctx context.Context, hash common.Hash) (*TxInfo, error) {
	if info, ok := c.items[hash]; ok {
		return info, nil
	}

	tx, err := c.source.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", hash.Hex(), err)
	}
	receipt, err := c.source.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("get receipt %s: %w", hash.Hex(), err)
	}
	if receipt.BlockNumber == nil {
		return nil, fmt.Errorf("receipt %s has no block number", hash.Hex())
	}
	header, err := c.source.HeaderByNumber(ctx, receipt.BlockNumber.Uint64())
	if err != nil {
		return nil, fmt.Errorf("get block %s: %w", receipt.BlockNumber, err)
	}
	from, err := c.source.TransactionSender(ctx, tx, receipt.BlockHash, receipt.TransactionIndex)
	if err != nil {
		return nil, fmt.Errorf("get sender %s: %w", hash.Hex(), err)
	}

	info := &TxInfo{Tx: tx, Receipt: receipt, Header: header, From: from}
	c.items[hash] = info
	return info, nil
}

// Len returns the number of cached transactions.
func (c *TxCache) Len() int {
	return len(c.items)
}
