package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ChainRPC names the environment variable and fallback endpoint of one chain.
type ChainRPC struct {
	ChainID  uint64
	Key      string
	Env      string
	Fallback string
}

// ChainRPCs lists the chains with a known RPC endpoint setting.
var ChainRPCs = []ChainRPC{
	{ChainID: 1, Key: "rpc.ethereum", Env: "ETHEREUM_RPC_URL", Fallback: "https://mainnet.infura.io/v3/YOUR_API_KEY"},
	{ChainID: 42161, Key: "rpc.arbitrum", Env: "ARBITRUM_RPC_URL", Fallback: "https://arb1.arbitrum.io/rpc"},
	{ChainID: 10, Key: "rpc.optimism", Env: "OPTIMISM_RPC_URL", Fallback: "https://mainnet.optimism.io"},
	{ChainID: 137, Key: "rpc.polygon", Env: "POLYGON_RPC_URL", Fallback: "https://polygon-rpc.com"},
	{ChainID: 43114, Key: "rpc.avalanche", Env: "AVALANCHE_RPC_URL", Fallback: "https://api.avax.network/ext/bc/C/rpc"},
	{ChainID: 8453, Key: "rpc.base", Env: "BASE_RPC_URL", Fallback: "https://mainnet.base.org"},
}

// ServeConfig holds configuration for the serve and call commands.
type ServeConfig struct {
	RPCURLs      map[uint64]string
	CacheTTL     time.Duration
	PriceDelay   time.Duration
	HistoryDelay time.Duration
	PgDSN        string
	MetricsAddr  string
	LogLevel     string
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("cache-ttl", 60*time.Second)
		v.SetDefault("price-delay", 100*time.Millisecond)
		v.SetDefault("history-delay", 150*time.Millisecond)
	})
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		RPCURLs:      rpcURLs(v),
		CacheTTL:     v.GetDuration("cache-ttl"),
		PriceDelay:   v.GetDuration("price-delay"),
		HistoryDelay: v.GetDuration("history-delay"),
		PgDSN:        v.GetString("pg-dsn"),
		MetricsAddr:  v.GetString("metrics-addr"),
		LogLevel:     v.GetString("log-level"),
	}
	if cfg.CacheTTL <= 0 {
		return ServeConfig{}, fmt.Errorf("cache-ttl must be positive, got %s", cfg.CacheTTL)
	}
	return cfg, nil
}

// SnapshotConfig holds configuration for the snapshot command.
type SnapshotConfig struct {
	RPCURLs    map[uint64]string
	ChainIDs   []uint64
	Assets     []string
	Out        string
	PgDSN      string
	Interval   time.Duration
	PriceDelay time.Duration
	LogLevel   string
}

// LoadSnapshot merges config file, environment variables, and flags into SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("out", "./data/rate_snapshots.jsonl")
		v.SetDefault("chain", []string{"1"})
		v.SetDefault("interval", time.Duration(0))
		v.SetDefault("price-delay", 100*time.Millisecond)
	})
	if err != nil {
		return SnapshotConfig{}, err
	}

	chainIDs, err := getUint64Slice(v, "chain")
	if err != nil {
		return SnapshotConfig{}, err
	}
	cfg := SnapshotConfig{
		RPCURLs:    rpcURLs(v),
		ChainIDs:   chainIDs,
		Assets:     getStringSlice(v, "asset"),
		Out:        v.GetString("out"),
		PgDSN:      v.GetString("pg-dsn"),
		Interval:   v.GetDuration("interval"),
		PriceDelay: v.GetDuration("price-delay"),
		LogLevel:   v.GetString("log-level"),
	}
	if len(cfg.ChainIDs) == 0 {
		return SnapshotConfig{}, fmt.Errorf("at least one chain is required")
	}
	if cfg.Out == "" && cfg.PgDSN == "" {
		return SnapshotConfig{}, fmt.Errorf("either out or pg-dsn is required")
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults func(*viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("AAVEMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	for _, chain := range ChainRPCs {
		v.SetDefault(chain.Key, chain.Fallback)
		if err := v.BindEnv(chain.Key, chain.Env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", chain.Env, err)
		}
	}
	if defaults != nil {
		defaults(v)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func rpcURLs(v *viper.Viper) map[uint64]string {
	urls := make(map[uint64]string, len(ChainRPCs))
	for _, chain := range ChainRPCs {
		if url := strings.TrimSpace(v.GetString(chain.Key)); url != "" {
			urls[chain.ChainID] = url
		}
	}
	return urls
}

func getUint64Slice(v *viper.Viper, key string) ([]uint64, error) {
	items := getStringSlice(v, key)
	out := make([]uint64, 0, len(items))
	for _, item := range items {
		id, err := strconv.ParseUint(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", key, item, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return splitAndClean(strings.Join(typed, ","))
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
