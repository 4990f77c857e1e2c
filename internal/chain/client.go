package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	lru "github.com/hashicorp/golang-lru"
)

const defaultHeaderCacheSize = 1024

// Client wraps go-ethereum RPC and provides the lookups the collector needs.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	headers *lru.Cache
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string, headerCacheSize int) (*Client, error) {
	if headerCacheSize <= 0 {
		headerCacheSize = defaultHeaderCacheSize
	}
	headers, err := lru.New(headerCacheSize)
	if err != nil {
		return nil, fmt.Errorf("header cache: %w", err)
	}

	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		headers:   headers,
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// Ping fails when the endpoint does not answer a chain id request.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.ethClient.ChainID(ctx); err != nil {
		return fmt.Errorf("rpc not reachable: %w", err)
	}
	return nil
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// HeaderByNumber returns the block header by number, using an in-memory LRU cache.
func (c *Client) HeaderByNumber(ctx context.Context, number uint64) (*types.Header, error) {
	if cached, ok := c.headers.Get(number); ok {
		return cached.(*types.Header), nil
	}

	header, err := c.ethClient.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return nil, err
	}
	c.headers.Add(number, header)
	return header, nil
}

// FilterLogs returns logs of one address whose topic0 matches, in an inclusive block range.
func (c *Client) FilterLogs(
	ctx context.Context,
	fromBlock uint64,
	toBlock uint64,
	address common.Address,
	topic0 common.Hash,
) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{address},
		Topics:    [][]common.Hash{{topic0}},
	}
	return c.ethClient.FilterLogs(ctx, query)
}

// TransactionByHash returns a mined transaction. Pending transactions are an error.
func (c *Client) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, error) {
	tx, pending, err := c.ethClient.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("transaction %s is pending", hash.Hex())
	}
	return tx, nil
}

// TransactionReceipt returns the receipt of a mined transaction.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return c.ethClient.TransactionReceipt(ctx, hash)
}

// TransactionSender returns the sender, reusing the from field of the RPC response when cached.
func (c *Client) TransactionSender(ctx context.Context, tx *types.Transaction, block common.Hash, index uint) (common.Address, error) {
	return c.ethClient.TransactionSender(ctx, tx, block, index)
}
