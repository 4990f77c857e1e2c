package indexer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// LogSource is the range-filtered log query used by the Fetcher.
type LogSource interface {
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, address common.Address, topic0 common.Hash) ([]types.Log, error)
}

// TxSource resolves the transaction, receipt, sender and block header behind a log.
type TxSource interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	TransactionSender(ctx context.Context, tx *types.Transaction, block common.Hash, index uint) (common.Address, error)
	HeaderByNumber(ctx context.Context, number uint64) (*types.Header, error)
}

// Chain is the RPC surface a collection run consumes. *chain.Client implements it.
type Chain interface {
	LogSource
	TxSource
	Ping(ctx context.Context) error
	LatestBlockNumber(ctx context.Context) (uint64, error)
}
