package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

//go:embed addressbook.yaml
var defaultAddressBook []byte

var (
	// ErrUnsupportedChain is returned for chain ids absent from the address book.
	ErrUnsupportedChain = errors.New("unsupported chain")
	// ErrIncompleteMarket is returned when a market entry lacks a required address.
	ErrIncompleteMarket = errors.New("incomplete market")
)

// MarketAddresses holds the core contract addresses of one Aave market.
type MarketAddresses struct {
	Pool                    string `yaml:"pool" json:"pool"`
	PoolAddressesProvider   string `yaml:"pool_addresses_provider" json:"poolAddressesProvider"`
	UIPoolDataProvider      string `yaml:"ui_pool_data_provider" json:"uiPoolDataProvider"`
	UIIncentiveDataProvider string `yaml:"ui_incentive_data_provider" json:"uiIncentiveDataProvider"`
	Oracle                  string `yaml:"oracle" json:"oracle"`
}

// Asset describes one listed reserve and its token contracts.
type Asset struct {
	Symbol               string `yaml:"symbol"`
	Underlying           string `yaml:"underlying"`
	AToken               string `yaml:"a_token"`
	VariableDebtToken    string `yaml:"variable_debt_token"`
	StableDebtToken      string `yaml:"stable_debt_token"`
	Decimals             uint8  `yaml:"decimals"`
	InterestRateStrategy string `yaml:"interest_rate_strategy"`
}

// Strategy is an interest rate strategy contract and its parameter set.
type Strategy struct {
	Address string            `yaml:"address"`
	Params  map[string]string `yaml:"params"`
}

// Market is the address book entry for one chain.
type Market struct {
	ChainID    uint64          `yaml:"chain_id"`
	Name       string          `yaml:"name"`
	Addresses  MarketAddresses `yaml:"market"`
	Assets     []Asset         `yaml:"assets"`
	Strategies []Strategy      `yaml:"strategies"`

	assetIndex    map[string]int
	strategyIndex map[string]int
}

type addressBook struct {
	Chains []Market `yaml:"chains"`
}

// Registry is an immutable, validated view of the address book.
type Registry struct {
	markets map[uint64]*Market
}

// Default loads the embedded address book.
func Default() (*Registry, error) {
	return Load(defaultAddressBook)
}

// Load parses and validates a YAML address book.
func Load(data []byte) (*Registry, error) {
	var book addressBook
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("decode address book: %w", err)
	}

	reg := &Registry{markets: make(map[uint64]*Market, len(book.Chains))}
	for i := range book.Chains {
		market := book.Chains[i]
		if market.ChainID == 0 {
			return nil, fmt.Errorf("address book entry %d: chain_id is required", i)
		}
		if _, dup := reg.markets[market.ChainID]; dup {
			return nil, fmt.Errorf("address book: duplicate chain ID %d", market.ChainID)
		}
		if err := market.index(); err != nil {
			return nil, err
		}
		reg.markets[market.ChainID] = &market
	}
	return reg, nil
}

// ChainIDs returns the supported chain ids in ascending order.
func (r *Registry) ChainIDs() []uint64 {
	ids := make([]uint64, 0, len(r.markets))
	for id := range r.markets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Supports reports whether the chain id has an address book entry.
func (r *Registry) Supports(chainID uint64) bool {
	_, ok := r.markets[chainID]
	return ok
}

// Market returns the address book entry for a chain.
func (r *Registry) Market(chainID uint64) (*Market, error) {
	market, ok := r.markets[chainID]
	if !ok {
		return nil, fmt.Errorf("no address book available for chain ID %d: %w", chainID, ErrUnsupportedChain)
	}
	return market, nil
}

// MarketAddresses returns the five core contract addresses for a chain.
func (r *Registry) MarketAddresses(chainID uint64) (MarketAddresses, error) {
	market, err := r.Market(chainID)
	if err != nil {
		return MarketAddresses{}, err
	}
	if err := market.Addresses.validate(chainID); err != nil {
		return MarketAddresses{}, err
	}
	return market.Addresses, nil
}

// Asset looks up an asset by symbol, case-insensitively.
func (m *Market) Asset(symbol string) (Asset, bool) {
	idx, ok := m.assetIndex[strings.ToUpper(symbol)]
	if !ok {
		return Asset{}, false
	}
	return m.Assets[idx], true
}

// Strategy looks up a strategy by contract address, case-insensitively.
func (m *Market) Strategy(address string) (Strategy, bool) {
	idx, ok := m.strategyIndex[strings.ToLower(address)]
	if !ok {
		return Strategy{}, false
	}
	return m.Strategies[idx], true
}

// AssetsUsing lists the symbols of assets referencing the strategy address, in book order.
func (m *Market) AssetsUsing(strategy string) []string {
	out := make([]string, 0)
	for _, asset := range m.Assets {
		if strings.EqualFold(asset.InterestRateStrategy, strategy) {
			out = append(out, asset.Symbol)
		}
	}
	return out
}

func (m *Market) index() error {
	if err := m.Addresses.validate(m.ChainID); err != nil {
		return err
	}

	m.assetIndex = make(map[string]int, len(m.Assets))
	for i := range m.Assets {
		asset := &m.Assets[i]
		asset.Symbol = strings.ToUpper(strings.TrimSpace(asset.Symbol))
		if asset.Symbol == "" {
			return fmt.Errorf("address book for chain ID %d: asset %d has no symbol", m.ChainID, i)
		}
		if _, dup := m.assetIndex[asset.Symbol]; dup {
			return fmt.Errorf("address book for chain ID %d: duplicate asset %s", m.ChainID, asset.Symbol)
		}
		if !common.IsHexAddress(asset.Underlying) {
			return fmt.Errorf("address book for chain ID %d: asset %s has invalid underlying %q", m.ChainID, asset.Symbol, asset.Underlying)
		}
		m.assetIndex[asset.Symbol] = i
	}

	m.strategyIndex = make(map[string]int, len(m.Strategies))
	for i, strategy := range m.Strategies {
		if !common.IsHexAddress(strategy.Address) {
			return fmt.Errorf("address book for chain ID %d: invalid strategy address %q", m.ChainID, strategy.Address)
		}
		m.strategyIndex[strings.ToLower(strategy.Address)] = i
	}
	return nil
}

func (a MarketAddresses) validate(chainID uint64) error {
	fields := []struct {
		name  string
		value string
	}{
		{"POOL", a.Pool},
		{"POOL_ADDRESSES_PROVIDER", a.PoolAddressesProvider},
		{"UI_POOL_DATA_PROVIDER", a.UIPoolDataProvider},
		{"UI_INCENTIVE_DATA_PROVIDER", a.UIIncentiveDataProvider},
		{"ORACLE", a.Oracle},
	}
	for _, field := range fields {
		if field.value == "" {
			return fmt.Errorf("address book for chain ID %d is missing %s: %w", chainID, field.name, ErrIncompleteMarket)
		}
		if !common.IsHexAddress(field.value) {
			return fmt.Errorf("address book for chain ID %d has invalid %s %q: %w", chainID, field.name, field.value, ErrIncompleteMarket)
		}
	}
	return nil
}
