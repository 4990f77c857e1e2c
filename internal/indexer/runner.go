package indexer

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"eventScope/internal/decoder"
	"eventScope/internal/event"
	"eventScope/internal/model"
	"eventScope/internal/storage"
)

// RunConfig holds the settings of one collection run.
type RunConfig struct {
	Contract  common.Address
	Schema    *event.Schema
	FromBlock uint64
	ToBlock   uint64
}

// DiagnosticsWriter receives logs that failed to decode.
type DiagnosticsWriter interface {
	PutDecodeErrors(errs []model.DecodeError) error
}

// Result summarizes a run.
type Result struct {
	FromBlock    uint64
	ToBlock      uint64
	Fetched      int
	Decoded      int
	Skipped      int
	Added        int
	Transactions int
	Total        int
	Saved        bool
}

// Collector fetches, decodes and merges the events of one contract into an EventStore.
type Collector struct {
	cfg         RunConfig
	chain       Chain
	store       *storage.EventStore
	logger      *zap.Logger
	sinks       []storage.Sink
	diagnostics DiagnosticsWriter
}

// NewCollector builds a Collector with its dependencies.
func NewCollector(cfg RunConfig, chainClient Chain, store *storage.EventStore, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		cfg:    cfg,
		chain:  chainClient,
		store:  store,
		logger: logger,
	}
}

// AddSink registers a sink that receives newly added entries after the store is saved.
func (c *Collector) AddSink(sink storage.Sink) {
	if sink != nil {
		c.sinks = append(c.sinks, sink)
	}
}

// SetDiagnostics sets where decode failures are recorded.
func (c *Collector) SetDiagnostics(w DiagnosticsWriter) {
	c.diagnostics = w
}

// Run executes one fetch, decode, merge and save cycle.
func (c *Collector) Run(ctx context.Context) (Result, error) {
	var res Result
	if c.chain == nil {
		return res, fmt.Errorf("chain client is nil")
	}
	if c.store == nil {
		return res, fmt.Errorf("event store is nil")
	}
	if c.cfg.Schema == nil {
		return res, fmt.Errorf("event schema is nil")
	}

	if err := c.chain.Ping(ctx); err != nil {
		return res, err
	}

	from := c.cfg.FromBlock
	to := c.cfg.ToBlock
	if to == 0 {
		latest, err := c.chain.LatestBlockNumber(ctx)
		if err != nil {
			return res, fmt.Errorf("get latest block: %w", err)
		}
		to = latest
		if from > to {
			c.logger.Info("nothing to collect", zap.Uint64("from", from), zap.Uint64("latest", to))
			res.FromBlock, res.ToBlock = from, to
			res.Transactions = c.store.Transactions()
			res.Total = c.store.TotalEntries()
			return res, nil
		}
	}
	res.FromBlock, res.ToBlock = from, to

	schema := c.cfg.Schema
	c.logger.Info("fetch logs",
		zap.String("event", schema.Name),
		zap.String("contract", c.cfg.Contract.Hex()),
		zap.Uint64("from", from),
		zap.Uint64("to", to),
	)

	logs, err := NewFetcher(c.chain).Fetch(ctx, c.cfg.Contract, schema, from, to)
	if err != nil {
		return res, err
	}
	res.Fetched = len(logs)
	sortLogs(logs)

	dec := decoder.New(schema)
	txs := NewTxCache(c.chain)
	var added []model.EventEntry
	var failures []model.DecodeError

	for _, log := range logs {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		if log.Removed {
			c.logger.Debug("skip removed log", zap.String("tx_hash", log.TxHash.Hex()), zap.Uint("log_index", log.Index))
			res.Skipped++
			continue
		}

		args, err := dec.EventArgs(log)
		if err != nil {
			c.logger.Warn("decode log failed",
				zap.Error(err),
				zap.Uint64("block_number", log.BlockNumber),
				zap.String("tx_hash", log.TxHash.Hex()),
				zap.Uint("log_index", log.Index),
			)
			failures = append(failures, decodeError(schema.Name, log, err))
			res.Skipped++
			continue
		}
		res.Decoded++

		info, err := txs.Get(ctx, log.TxHash)
		if err != nil {
			return res, err
		}

		entry := buildEntry(schema.Name, log, info, args)
		if c.store.Merge(entry) {
			added = append(added, entry)
		}
	}

	res.Added = len(added)
	res.Transactions = c.store.Transactions()
	res.Total = c.store.TotalEntries()

	if res.Added > 0 {
		if err := c.store.Save(); err != nil {
			return res, fmt.Errorf("save event store: %w", err)
		}
		res.Saved = true
	}

	if len(failures) > 0 && c.diagnostics != nil {
		if err := c.diagnostics.PutDecodeErrors(failures); err != nil {
			return res, fmt.Errorf("write decode errors: %w", err)
		}
	}

	if len(added) > 0 {
		for _, sink := range c.sinks {
			if err := sink.PutEntries(ctx, added); err != nil {
				return res, fmt.Errorf("export entries: %w", err)
			}
		}
	}

	c.logger.Info("collection complete",
		zap.String("event", schema.Name),
		zap.Int("fetched", res.Fetched),
		zap.Int("decoded", res.Decoded),
		zap.Int("skipped", res.Skipped),
		zap.Int("added", res.Added),
		zap.Int("transactions", res.Transactions),
		zap.Int("total", res.Total),
		zap.Int("tx_lookups", txs.Len()),
		zap.Bool("saved", res.Saved),
	)
	return res, nil
}

// sortLogs orders logs by block, transaction index and log index.
func sortLogs(logs []types.Log) {
	sort.SliceStable(logs, func(i, j int) bool {
		a, b := logs[i], logs[j]
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber < b.BlockNumber
		}
		if a.TxIndex != b.TxIndex {
			return a.TxIndex < b.TxIndex
		}
		return a.Index < b.Index
	})
}

func decodeError(name string, log types.Log, err error) model.DecodeError {
	var topic0 string
	if len(log.Topics) > 0 {
		topic0 = log.Topics[0].Hex()
	}
	return model.DecodeError{
		BlockNumber: log.BlockNumber,
		TxHash:      model.NormalizeTxHash(log.TxHash.Hex()),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topic0:      topic0,
		EventName:   name,
		Error:       err.Error(),
	}
}
