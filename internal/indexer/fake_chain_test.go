package indexer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"eventScope/internal/model"
)

type filterCall struct {
	from, to uint64
	address  common.Address
	topic0   common.Hash
}

type fakeChain struct {
	logs     []types.Log
	txs      map[common.Hash]*types.Transaction
	receipts map[common.Hash]*types.Receipt
	senders  map[common.Hash]common.Address
	headers  map[uint64]*types.Header
	latest   uint64

	pingErr   error
	filterErr error

	filterCalls  []filterCall
	txCalls      int
	receiptCalls int
	senderCalls  int
	headerCalls  int
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		txs:      make(map[common.Hash]*types.Transaction),
		receipts: make(map[common.Hash]*types.Receipt),
		senders:  make(map[common.Hash]common.Address),
		headers:  make(map[uint64]*types.Header),
	}
}

// addTx registers a mined transaction at (block, index) with a block header at time 1000+block.
func (f *fakeChain) addTx(hash common.Hash, block uint64, index uint, from common.Address, to *common.Address) {
	f.txs[hash] = types.NewTx(&types.LegacyTx{
		Nonce:    uint64(index),
		To:       to,
		Value:    big.NewInt(0),
		Gas:      21000,
		GasPrice: big.NewInt(1),
	})
	blockHash := common.BigToHash(new(big.Int).SetUint64(block))
	f.receipts[hash] = &types.Receipt{
		TxHash:           hash,
		BlockHash:        blockHash,
		BlockNumber:      new(big.Int).SetUint64(block),
		TransactionIndex: index,
	}
	f.senders[hash] = from
	f.headers[block] = &types.Header{Number: new(big.Int).SetUint64(block), Time: 1000 + block}
}

func (f *fakeChain) Ping(context.Context) error {
	return f.pingErr
}

func (f *fakeChain) LatestBlockNumber(context.Context) (uint64, error) {
	return f.latest, nil
}

func (f *fakeChain) FilterLogs(_ context.Context, from, to uint64, address common.Address, topic0 common.Hash) ([]types.Log, error) {
	f.filterCalls = append(f.filterCalls, filterCall{from: from, to: to, address: address, topic0: topic0})
	if f.filterErr != nil {
		return nil, f.filterErr
	}
	var out []types.Log
	for _, log := range f.logs {
		if log.BlockNumber < from || log.BlockNumber > to || log.Address != address {
			continue
		}
		if len(log.Topics) == 0 || log.Topics[0] != topic0 {
			continue
		}
		out = append(out, log)
	}
	return out, nil
}

func (f *fakeChain) TransactionByHash(_ context.Context, hash common.Hash) (*types.Transaction, error) {
	f.txCalls++
	tx, ok := f.txs[hash]
	if !ok {
		return nil, errNotFound
	}
	return tx, nil
}

func (f *fakeChain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.receiptCalls++
	receipt, ok := f.receipts[hash]
	if !ok {
		return nil, errNotFound
	}
	return receipt, nil
}

func (f *fakeChain) TransactionSender(_ context.Context, tx *types.Transaction, _ common.Hash, _ uint) (common.Address, error) {
	f.senderCalls++
	for hash, candidate := range f.txs {
		if candidate == tx {
			return f.senders[hash], nil
		}
	}
	return common.Address{}, errNotFound
}

func (f *fakeChain) HeaderByNumber(_ context.Context, number uint64) (*types.Header, error) {
	f.headerCalls++
	header, ok := f.headers[number]
	if !ok {
		return nil, errNotFound
	}
	return header, nil
}

type fakeSink struct {
	batches [][]model.EventEntry
	err     error
}

func (s *fakeSink) PutEntries(_ context.Context, entries []model.EventEntry) error {
	s.batches = append(s.batches, entries)
	return s.err
}

type fakeDiagnostics struct {
	errs []model.DecodeError
}

func (d *fakeDiagnostics) PutDecodeErrors(errs []model.DecodeError) error {
	d.errs = append(d.errs, errs...)
	return nil
}
