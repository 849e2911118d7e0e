package chain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNoRPCURL is returned when no endpoint is configured for a chain id.
	ErrNoRPCURL = errors.New("no rpc url configured")
	// ErrChainMismatch is returned when an endpoint serves a different chain than configured.
	ErrChainMismatch = errors.New("rpc endpoint serves a different chain")
)

// DialFunc opens a client for an RPC endpoint.
type DialFunc func(ctx context.Context, rpcURL string) (*Client, error)

// Pool hands out one Client per chain id for the lifetime of the process.
// Concurrent first lookups for the same chain share a single dial, and a fresh
// connection is only kept once the node confirms it serves the expected chain.
type Pool struct {
	urls   map[uint64]string
	dial   DialFunc
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[uint64]*Client
	group   singleflight.Group
}

// NewPool builds a Pool over the per-chain endpoint map.
func NewPool(urls map[uint64]string, logger *zap.Logger) *Pool {
	return NewPoolWithDialer(urls, NewClient, logger)
}

// NewPoolWithDialer builds a Pool using a custom dial function.
func NewPoolWithDialer(urls map[uint64]string, dial DialFunc, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	copied := make(map[uint64]string, len(urls))
	for id, url := range urls {
		copied[id] = url
	}
	return &Pool{
		urls:    copied,
		dial:    dial,
		logger:  logger,
		clients: make(map[uint64]*Client),
	}
}

// Get returns the client for a chain, dialing it on first use.
func (p *Pool) Get(ctx context.Context, chainID uint64) (*Client, error) {
	p.mu.RLock()
	client, ok := p.clients[chainID]
	p.mu.RUnlock()
	if ok {
		return client, nil
	}

	rpcURL, ok := p.urls[chainID]
	if !ok || rpcURL == "" {
		return nil, fmt.Errorf("%w for chain ID %d", ErrNoRPCURL, chainID)
	}

	val, err, _ := p.group.Do(strconv.FormatUint(chainID, 10), func() (interface{}, error) {
		p.mu.RLock()
		existing, ok := p.clients[chainID]
		p.mu.RUnlock()
		if ok {
			return existing, nil
		}

		created, err := p.dial(ctx, rpcURL)
		if err != nil {
			return nil, fmt.Errorf("dial chain %d: %w", chainID, err)
		}
		if err := verifyChain(ctx, created, chainID); err != nil {
			created.Close()
			return nil, err
		}

		p.mu.Lock()
		p.clients[chainID] = created
		p.mu.Unlock()

		p.logger.Info("rpc client created", zap.Uint64("chain_id", chainID))
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*Client), nil
}

// Caller returns the client for a chain as a contract Caller.
func (p *Pool) Caller(ctx context.Context, chainID uint64) (Caller, error) {
	client, err := p.Get(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func verifyChain(ctx context.Context, client *Client, chainID uint64) error {
	reported, err := client.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id for chain %d: %w", chainID, err)
	}
	if !reported.IsUint64() || reported.Uint64() != chainID {
		return fmt.Errorf("%w: configured %d, node reports %s", ErrChainMismatch, chainID, reported)
	}
	return nil
}

// Close closes every client created so far.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, client := range p.clients {
		client.Close()
		delete(p.clients, id)
	}
}
