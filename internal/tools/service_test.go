package tools

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"aaveLens/internal/aave"
	"aaveLens/internal/cache"
	"aaveLens/internal/model"
	"aaveLens/internal/registry"
)

const testUser = "0x1111111111111111111111111111111111111111"

type fakeMarket struct {
	reserveCalls atomic.Int32
	userCalls    atomic.Int32
	err          error

	mu       sync.Mutex
	lastUser common.Address
}

func (f *fakeMarket) ReservesHumanized(ctx context.Context, chainID uint64, market registry.MarketAddresses) (aave.ReservesResponse, error) {
	f.reserveCalls.Add(1)
	if f.err != nil {
		return aave.ReservesResponse{}, f.err
	}
	return aave.ReservesResponse{
		Reserves: []aave.ReserveData{
			{
				UnderlyingAsset:                common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
				Symbol:                         "WETH",
				Decimals:                       big.NewInt(18),
				PriceInMarketReferenceCurrency: big.NewInt(200000000000),
			},
			{
				UnderlyingAsset:                common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"),
				Symbol:                         "DAI",
				Decimals:                       big.NewInt(18),
				PriceInMarketReferenceCurrency: big.NewInt(100000000),
			},
		},
		BaseCurrency: aave.BaseCurrencyInfo{
			MarketReferenceCurrencyUnit:       big.NewInt(100000000),
			MarketReferenceCurrencyPriceInUsd: big.NewInt(100000000),
		},
	}, nil
}

func (f *fakeMarket) UserReservesHumanized(ctx context.Context, chainID uint64, market registry.MarketAddresses, user common.Address) (aave.UserReservesResponse, error) {
	f.userCalls.Add(1)
	f.mu.Lock()
	f.lastUser = user
	f.mu.Unlock()
	if f.err != nil {
		return aave.UserReservesResponse{}, f.err
	}
	return aave.UserReservesResponse{UserEmodeCategoryID: 1}, nil
}

func (f *fakeMarket) calls() int32 {
	return f.reserveCalls.Load() + f.userCalls.Load()
}

type fakePrices struct {
	calls atomic.Int32
	err   error
}

func (f *fakePrices) Prices(ctx context.Context, symbols []string) (map[string]float64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]float64)
	for _, symbol := range symbols {
		if strings.EqualFold(symbol, "DAI") {
			out[strings.ToUpper(symbol)] = 1
		}
	}
	return out, nil
}

type fakeHistory struct {
	calls atomic.Int32
}

func (f *fakeHistory) Rates(ctx context.Context, chainID uint64, asset string, days int) ([]model.RatePoint, error) {
	f.calls.Add(1)
	points := make([]model.RatePoint, days)
	for i := range points {
		points[i] = model.RatePoint{Timestamp: int64(i), SupplyAPY: 2, VariableBorrowAPY: 3}
	}
	return points, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc     *Service
	market  *fakeMarket
	prices  *fakePrices
	history *fakeHistory
	store   *cache.Store
	clock   *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, err := registry.Default()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	f := &fixture{
		market:  &fakeMarket{},
		prices:  &fakePrices{},
		history: &fakeHistory{},
		clock:   &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.store = cache.New(cache.DefaultTTL, cache.WithClock(f.clock.Now))
	svc, err := NewService(Deps{
		Registry: reg,
		Market:   f.market,
		Prices:   f.prices,
		History:  f.history,
		Cache:    f.store,
	})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	svc.now = f.clock.Now
	f.svc = svc
	return f
}

func symbols(reserves []model.Reserve) []string {
	out := make([]string, 0, len(reserves))
	for _, r := range reserves {
		out = append(out, r.Symbol)
	}
	return out
}

func TestReserveDataServedFromCacheWithinTTL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.ReserveData(ctx, ReserveDataParams{ChainID: 1})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.FromCache || first.Version != "v3" || first.Timestamp != "2024-05-01T12:00:00.000Z" {
		t.Fatalf("unexpected first result: %+v", first)
	}

	f.clock.Advance(30 * time.Second)
	second, err := f.svc.ReserveData(ctx, ReserveDataParams{ChainID: 1})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !second.FromCache {
		t.Fatalf("expected second call from cache")
	}
	if second.Timestamp != first.Timestamp || second.ChainID != 1 || second.Version != "v3" {
		t.Fatalf("cached result must keep the first stamp: %+v", second)
	}
	if got := f.market.reserveCalls.Load(); got != 1 {
		t.Fatalf("expected one fetch, got %d", got)
	}

	f.clock.Advance(cache.DefaultTTL)
	third, err := f.svc.ReserveData(ctx, ReserveDataParams{ChainID: 1})
	if err != nil {
		t.Fatalf("third call: %v", err)
	}
	if third.FromCache || third.Timestamp == first.Timestamp {
		t.Fatalf("expected a refetch after expiry: %+v", third)
	}
	if got := f.market.reserveCalls.Load(); got != 2 {
		t.Fatalf("expected two fetches, got %d", got)
	}
}

func TestReserveDataFilterDoesNotNarrowCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	filtered, err := f.svc.ReserveData(ctx, ReserveDataParams{ChainID: 1, Assets: []string{"dai"}})
	if err != nil {
		t.Fatalf("filtered call: %v", err)
	}
	if got := symbols(filtered.Reserves); len(got) != 1 || got[0] != "DAI" {
		t.Fatalf("filter mismatch: %v", got)
	}

	full, err := f.svc.ReserveData(ctx, ReserveDataParams{ChainID: 1})
	if err != nil {
		t.Fatalf("full call: %v", err)
	}
	if !full.FromCache || len(full.Reserves) != 2 {
		t.Fatalf("cache should hold the full set: fromCache=%v reserves=%v", full.FromCache, symbols(full.Reserves))
	}

	versioned, err := f.svc.ReserveData(ctx, ReserveDataParams{ChainID: 1, Version: "v2"})
	if err != nil {
		t.Fatalf("versioned call: %v", err)
	}
	if versioned.FromCache || versioned.Version != "v2" {
		t.Fatalf("versions must not share cache entries: %+v", versioned)
	}
}

func TestReserveDataAttachesExternalPrice(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.ReserveData(context.Background(), ReserveDataParams{ChainID: 1})
	if err != nil {
		t.Fatalf("reserve data: %v", err)
	}
	for _, reserve := range result.Reserves {
		switch reserve.Symbol {
		case "DAI":
			if reserve.PriceUSD == nil || *reserve.PriceUSD != 1 {
				t.Fatalf("DAI external price missing")
			}
			if reserve.PriceInUSD != "1" {
				t.Fatalf("oracle price must be kept: %s", reserve.PriceInUSD)
			}
		case "WETH":
			if reserve.PriceUSD != nil {
				t.Fatalf("WETH has no external price")
			}
			if reserve.PriceInUSD != "2000" {
				t.Fatalf("oracle price mismatch: %s", reserve.PriceInUSD)
			}
		}
	}
}

func TestReserveDataResultsDoNotAliasCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, assets := range [][]string{nil, {"dai", "weth"}} {
		first, err := f.svc.ReserveData(ctx, ReserveDataParams{ChainID: 1, Assets: assets})
		if err != nil {
			t.Fatalf("first call: %v", err)
		}
		for i := range first.Reserves {
			first.Reserves[i].Symbol = "MUTATED"
			if first.Reserves[i].PriceUSD != nil {
				*first.Reserves[i].PriceUSD = 999
			}
		}

		second, err := f.svc.ReserveData(ctx, ReserveDataParams{ChainID: 1})
		if err != nil {
			t.Fatalf("second call: %v", err)
		}
		if !second.FromCache {
			t.Fatalf("expected cached result")
		}
		if got := symbols(second.Reserves); len(got) != 2 || got[0] == "MUTATED" || got[1] == "MUTATED" {
			t.Fatalf("cached reserves were modified through a result: %v", got)
		}
		for _, reserve := range second.Reserves {
			if reserve.PriceUSD != nil && *reserve.PriceUSD != 1 {
				t.Fatalf("cached price was modified through a result: %v", *reserve.PriceUSD)
			}
		}
	}
}

func TestReserveDataFailuresAreNotCached(t *testing.T) {
	f := newFixture(t)
	f.market.err = errors.New("connection refused")

	_, err := f.svc.ReserveData(context.Background(), ReserveDataParams{ChainID: 1})
	if err == nil {
		t.Fatalf("expected error")
	}
	want := "failed to fetch Aave reserve data for chain 1, version v3: connection refused"
	if err.Error() != want {
		t.Fatalf("error mismatch:\n got %s\nwant %s", err.Error(), want)
	}
	if f.store.Len() != 0 {
		t.Fatalf("failed fetch must not be cached")
	}
}

func TestReserveDataFailsWhenPricesFail(t *testing.T) {
	f := newFixture(t)
	f.prices.err = errors.New("rate limited")

	if _, err := f.svc.ReserveData(context.Background(), ReserveDataParams{ChainID: 1}); err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected price failure, got %v", err)
	}
	if f.store.Len() != 0 {
		t.Fatalf("failed enrichment must not be cached")
	}
}

func TestFilterReserves(t *testing.T) {
	reserves := []model.Reserve{{Symbol: "WETH"}, {Symbol: "DAI"}, {Symbol: "USDC"}}

	once := FilterReserves(reserves, []string{"usdc", "Weth"})
	if got := symbols(once); len(got) != 2 || got[0] != "WETH" || got[1] != "USDC" {
		t.Fatalf("filter mismatch: %v", got)
	}
	twice := FilterReserves(once, []string{"usdc", "Weth"})
	if len(twice) != len(once) {
		t.Fatalf("filter is not idempotent: %v vs %v", symbols(twice), symbols(once))
	}
	if got := FilterReserves(reserves, nil); len(got) != 3 {
		t.Fatalf("empty filter must keep everything")
	}
	if got := FilterReserves(reserves, []string{"AAVE"}); len(got) != 0 {
		t.Fatalf("unknown asset must match nothing")
	}
}

func TestReserveDataKey(t *testing.T) {
	if got := ReserveDataKey(137, "v3"); got != "reserveData_137_v3_extPrice" {
		t.Fatalf("key mismatch: %s", got)
	}
}

func TestUserDataRejectsMalformedAddress(t *testing.T) {
	f := newFixture(t)
	bad := []string{
		"",
		"1111111111111111111111111111111111111111",
		"0x111",
		"0x11111111111111111111111111111111111111111",
		"0xZZ11111111111111111111111111111111111111",
		"1x1111111111111111111111111111111111111111",
	}
	for _, addr := range bad {
		_, err := f.svc.UserData(context.Background(), UserDataParams{ChainID: 999, UserAddress: addr})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("address %q: expected invalid input, got %v", addr, err)
		}
	}
	if f.market.calls() != 0 {
		t.Fatalf("no market reads expected, got %d", f.market.calls())
	}
}

func TestUserDataFetchesBothInParallel(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.UserData(context.Background(), UserDataParams{ChainID: 1, UserAddress: testUser})
	if err != nil {
		t.Fatalf("user data: %v", err)
	}
	if f.market.reserveCalls.Load() != 1 || f.market.userCalls.Load() != 1 {
		t.Fatalf("expected one read of each kind")
	}
	if f.market.lastUser != common.HexToAddress(testUser) {
		t.Fatalf("user mismatch: %s", f.market.lastUser.Hex())
	}
	if result.UserAddress != testUser || result.Summary.HealthFactor != "-1" || result.Summary.UserEmodeCategoryID != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if f.store.Len() != 0 {
		t.Fatalf("user data must not be cached")
	}
}

func TestUserDataWrapsUpstreamErrors(t *testing.T) {
	f := newFixture(t)
	f.market.err = errors.New("timeout")
	_, err := f.svc.UserData(context.Background(), UserDataParams{ChainID: 1, UserAddress: testUser})
	if err == nil || !strings.HasPrefix(err.Error(), "failed to fetch Aave user data for "+testUser+" on chain 1:") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTokenInfo(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.TokenInfo(context.Background(), TokenInfoParams{ChainID: 1, Tokens: []string{"dai", "NOPE", "wbtc"}})
	if err != nil {
		t.Fatalf("token info: %v", err)
	}
	if len(result.Tokens) != 2 || result.Tokens[0].Symbol != "DAI" || result.Tokens[1].Symbol != "WBTC" {
		t.Fatalf("unexpected tokens: %+v", result.Tokens)
	}
	if result.Tokens[1].Decimals != 8 {
		t.Fatalf("WBTC decimals mismatch: %d", result.Tokens[1].Decimals)
	}

	all, err := f.svc.TokenInfo(context.Background(), TokenInfoParams{ChainID: 1})
	if err != nil {
		t.Fatalf("all token info: %v", err)
	}
	want := []string{"WETH", "WBTC", "USDC", "DAI"}
	if len(all.Tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(all.Tokens))
	}
	for i, symbol := range want {
		if all.Tokens[i].Symbol != symbol {
			t.Fatalf("token %d: got %s want %s", i, all.Tokens[i].Symbol, symbol)
		}
	}
}

func TestStrategyForAsset(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.InterestRateStrategies(context.Background(), StrategiesParams{ChainID: 1, Asset: "dai"})
	if err != nil {
		t.Fatalf("strategy: %v", err)
	}
	single, ok := result.(model.StrategyResult)
	if !ok {
		t.Fatalf("unexpected result type %T", result)
	}
	if single.Asset != "DAI" {
		t.Fatalf("asset mismatch: %s", single.Asset)
	}
	if single.Strategy["address"] != "0x694d4cFdaeE639239df949b6E24Ff8576A00d1f2" {
		t.Fatalf("address mismatch: %s", single.Strategy["address"])
	}
	if single.Strategy["OPTIMAL_USAGE_RATIO"] != "920000000000000000000000000" {
		t.Fatalf("params missing: %v", single.Strategy)
	}

	if _, err := f.svc.InterestRateStrategies(context.Background(), StrategiesParams{ChainID: 1, Asset: "NOPE"}); err == nil {
		t.Fatalf("expected error for unknown asset")
	}
}

func TestAllStrategies(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.InterestRateStrategies(context.Background(), StrategiesParams{ChainID: 1})
	if err != nil {
		t.Fatalf("strategies: %v", err)
	}
	all, ok := result.(model.StrategiesResult)
	if !ok {
		t.Fatalf("unexpected result type %T", result)
	}
	stable, ok := all.Strategies["0x694d4cFdaeE639239df949b6E24Ff8576A00d1f2"]
	if !ok {
		t.Fatalf("stablecoin strategy missing: %v", all.Strategies)
	}
	assets, _ := stable["assets"].([]string)
	if len(assets) != 2 || assets[0] != "USDC" || assets[1] != "DAI" {
		t.Fatalf("assets mismatch: %v", stable["assets"])
	}
	if stable["VARIABLE_RATE_SLOPE_1"] != "55000000000000000000000000" {
		t.Fatalf("params mismatch: %v", stable)
	}
}

func TestHistoricalRates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, days := range []int{0, -1, 366} {
		if _, err := f.svc.HistoricalRates(ctx, HistoricalRatesParams{ChainID: 1, Asset: "DAI", Days: days}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("days %d: expected invalid input, got %v", days, err)
		}
	}

	result, err := f.svc.HistoricalRates(ctx, HistoricalRatesParams{ChainID: 1, Asset: "DAI", Days: 5})
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if len(result.Rates) != 5 || result.Days != 5 || result.Asset != "DAI" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestUnknownChainFailsWithoutIO(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	checks := map[string]func() error{
		"reserve": func() error {
			_, err := f.svc.ReserveData(ctx, ReserveDataParams{ChainID: 999})
			return err
		},
		"user": func() error {
			_, err := f.svc.UserData(ctx, UserDataParams{ChainID: 999, UserAddress: testUser})
			return err
		},
		"tokens": func() error {
			_, err := f.svc.TokenInfo(ctx, TokenInfoParams{ChainID: 999})
			return err
		},
		"strategies": func() error {
			_, err := f.svc.InterestRateStrategies(ctx, StrategiesParams{ChainID: 999})
			return err
		},
		"strategy": func() error {
			_, err := f.svc.InterestRateStrategies(ctx, StrategiesParams{ChainID: 999, Asset: "DAI"})
			return err
		},
		"history": func() error {
			_, err := f.svc.HistoricalRates(ctx, HistoricalRatesParams{ChainID: 999, Asset: "DAI", Days: 3})
			return err
		},
	}
	for name, check := range checks {
		err := check()
		if !errors.Is(err, registry.ErrUnsupportedChain) {
			t.Fatalf("%s: expected unsupported chain, got %v", name, err)
		}
		if !strings.Contains(err.Error(), "999") {
			t.Fatalf("%s: error should name the chain: %v", name, err)
		}
	}
	if f.market.calls() != 0 || f.prices.calls.Load() != 0 || f.history.calls.Load() != 0 {
		t.Fatalf("no upstream calls expected for an unknown chain")
	}
}
