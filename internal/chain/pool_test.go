package chain

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
)

type fakeNode struct {
	chainID int64
	err     error
}

func (n fakeNode) ChainID(ctx context.Context) (*big.Int, error) {
	if n.err != nil {
		return nil, n.err
	}
	return big.NewInt(n.chainID), nil
}

func (n fakeNode) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return nil, nil
}

var nodeChains = map[string]int64{"http://eth": 1, "http://op": 10}

func fakeClient(rpcURL string) *Client {
	return &Client{url: rpcURL, eth: fakeNode{chainID: nodeChains[rpcURL]}}
}

func TestPoolReusesClientPerChain(t *testing.T) {
	var dials atomic.Int32
	pool := NewPoolWithDialer(map[uint64]string{1: "http://eth", 10: "http://op"}, func(ctx context.Context, rpcURL string) (*Client, error) {
		dials.Add(1)
		time.Sleep(10 * time.Millisecond)
		return fakeClient(rpcURL), nil
	}, nil)

	const workers = 16
	results := make([]*Client, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client, err := pool.Get(context.Background(), 1)
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			results[i] = client
		}(i)
	}
	wg.Wait()

	if got := dials.Load(); got != 1 {
		t.Fatalf("expected one dial, got %d", got)
	}
	for i, client := range results {
		if client != results[0] {
			t.Fatalf("worker %d got a different client", i)
		}
	}

	other, err := pool.Get(context.Background(), 10)
	if err != nil {
		t.Fatalf("get chain 10: %v", err)
	}
	if other.URL() != "http://op" {
		t.Fatalf("url mismatch: %s", other.URL())
	}
	if got := dials.Load(); got != 2 {
		t.Fatalf("expected two dials, got %d", got)
	}
}

func TestPoolUnknownChain(t *testing.T) {
	var dials atomic.Int32
	pool := NewPoolWithDialer(map[uint64]string{1: "http://eth"}, func(ctx context.Context, rpcURL string) (*Client, error) {
		dials.Add(1)
		return fakeClient(rpcURL), nil
	}, nil)

	_, err := pool.Get(context.Background(), 999)
	if !errors.Is(err, ErrNoRPCURL) {
		t.Fatalf("expected ErrNoRPCURL, got %v", err)
	}
	if dials.Load() != 0 {
		t.Fatalf("no dial expected for unknown chain")
	}
}

func TestPoolDialErrorIsNotCached(t *testing.T) {
	var dials atomic.Int32
	pool := NewPoolWithDialer(map[uint64]string{1: "http://eth"}, func(ctx context.Context, rpcURL string) (*Client, error) {
		if dials.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}
		return fakeClient(rpcURL), nil
	}, nil)

	if _, err := pool.Get(context.Background(), 1); err == nil {
		t.Fatalf("expected first dial to fail")
	}
	if _, err := pool.Get(context.Background(), 1); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if dials.Load() != 2 {
		t.Fatalf("expected a redial after failure, got %d dials", dials.Load())
	}

	pool.Close()
	if _, err := pool.Get(context.Background(), 1); err != nil {
		t.Fatalf("get after close: %v", err)
	}
	if dials.Load() != 3 {
		t.Fatalf("expected a redial after close, got %d dials", dials.Load())
	}
}

func TestPoolRejectsEndpointOnAnotherChain(t *testing.T) {
	var dials atomic.Int32
	pool := NewPoolWithDialer(map[uint64]string{137: "http://eth"}, func(ctx context.Context, rpcURL string) (*Client, error) {
		dials.Add(1)
		return fakeClient(rpcURL), nil
	}, nil)

	_, err := pool.Get(context.Background(), 137)
	if !errors.Is(err, ErrChainMismatch) {
		t.Fatalf("expected ErrChainMismatch, got %v", err)
	}
	if _, err := pool.Get(context.Background(), 137); !errors.Is(err, ErrChainMismatch) {
		t.Fatalf("mismatched client must not be kept, got %v", err)
	}
	if dials.Load() != 2 {
		t.Fatalf("expected a redial after rejection, got %d dials", dials.Load())
	}
}

func TestPoolChainIDLookupFailure(t *testing.T) {
	pool := NewPoolWithDialer(map[uint64]string{1: "http://eth"}, func(ctx context.Context, rpcURL string) (*Client, error) {
		return &Client{url: rpcURL, eth: fakeNode{err: errors.New("method not found")}}, nil
	}, nil)

	_, err := pool.Get(context.Background(), 1)
	if err == nil || errors.Is(err, ErrChainMismatch) {
		t.Fatalf("expected chain id lookup error, got %v", err)
	}
}
