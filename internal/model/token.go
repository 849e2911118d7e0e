package model

// TokenInfo describes the token contracts of one listed asset.
type TokenInfo struct {
	Symbol               string `json:"symbol"`
	Underlying           string `json:"underlying"`
	AToken               string `json:"aToken"`
	VariableDebtToken    string `json:"variableDebtToken"`
	StableDebtToken      string `json:"stableDebtToken"`
	Decimals             uint8  `json:"decimals"`
	InterestRateStrategy string `json:"interestRateStrategy,omitempty"`
}
