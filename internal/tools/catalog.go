package tools

import "encoding/json"

// Tool names.
const (
	GetReserveData            = "get_reserve_data"
	GetUserData               = "get_user_data"
	GetTokenInfo              = "get_token_info"
	GetInterestRateStrategies = "get_interest_rate_strategies"
	GetHistoricalRates        = "get_historical_rates"
)

// Descriptor advertises one tool and the JSON schema of its arguments.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// Catalog lists every tool in presentation order.
func Catalog() []Descriptor {
	return []Descriptor{
		{
			Name:        GetReserveData,
			Description: "Fetches Aave reserve data for a specific chain, with caching and optional external price enrichment.",
			InputSchema: json.RawMessage(`{
	"type": "object",
	"properties": {
		"chain_id": {"type": "integer", "description": "The numerical ID of the blockchain network."},
		"assets": {"type": "array", "items": {"type": "string"}, "description": "Optional array of asset symbols to filter."},
		"version": {"type": "string", "description": "Optional Aave version (e.g., 'v3')."}
	},
	"required": ["chain_id"]
}`),
		},
		{
			Name:        GetUserData,
			Description: "Fetches user-specific Aave data including positions and health factor for a specific chain.",
			InputSchema: json.RawMessage(`{
	"type": "object",
	"properties": {
		"chain_id": {"type": "integer", "description": "Blockchain network ID."},
		"user_address": {"type": "string", "description": "The Ethereum address of the user."}
	},
	"required": ["chain_id", "user_address"]
}`),
		},
		{
			Name:        GetTokenInfo,
			Description: "Fetches detailed information about tokens in the Aave market for a given chain.",
			InputSchema: json.RawMessage(`{
	"type": "object",
	"properties": {
		"chain_id": {"type": "integer", "description": "Blockchain network ID."},
		"tokens": {"type": "array", "items": {"type": "string"}, "description": "Optional array of token symbols."}
	},
	"required": ["chain_id"]
}`),
		},
		{
			Name:        GetInterestRateStrategies,
			Description: "Fetches interest rate strategy parameters for Aave assets on a given chain.",
			InputSchema: json.RawMessage(`{
	"type": "object",
	"properties": {
		"chain_id": {"type": "integer", "description": "Blockchain network ID."},
		"asset": {"type": "string", "description": "Optional asset symbol."}
	},
	"required": ["chain_id"]
}`),
		},
		{
			Name:        GetHistoricalRates,
			Description: "Fetches historical supply and borrow APYs for an asset.",
			InputSchema: json.RawMessage(`{
	"type": "object",
	"properties": {
		"chain_id": {"type": "integer", "description": "Blockchain network ID."},
		"asset": {"type": "string", "description": "Asset symbol."},
		"days": {"type": "integer", "minimum": 1, "maximum": 365, "description": "Number of past days for historical data."}
	},
	"required": ["chain_id", "asset", "days"]
}`),
		},
	}
}
