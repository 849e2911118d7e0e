package aave

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"aaveLens/internal/chain"
	"aaveLens/internal/registry"
)

// CallerSource resolves a contract caller for a chain id.
type CallerSource interface {
	Caller(ctx context.Context, chainID uint64) (chain.Caller, error)
}

// ReservesResponse is the decoded getReservesData result.
type ReservesResponse struct {
	Reserves     []ReserveData
	BaseCurrency BaseCurrencyInfo
}

// UserReservesResponse is the decoded getUserReservesData result.
type UserReservesResponse struct {
	UserReserves        []UserReserveData
	UserEmodeCategoryID uint8
}

// Provider reads market state through a chain's UiPoolDataProvider contract.
type Provider struct {
	callers CallerSource
}

func NewProvider(callers CallerSource) *Provider {
	return &Provider{callers: callers}
}

// ReservesHumanized fetches every reserve of the market together with the base currency info.
func (p *Provider) ReservesHumanized(ctx context.Context, chainID uint64, market registry.MarketAddresses) (ReservesResponse, error) {
	parsed, err := UIPoolDataProviderABI()
	if err != nil {
		return ReservesResponse{}, fmt.Errorf("parse ui pool data provider abi: %w", err)
	}

	values, err := p.call(ctx, chainID, market.UIPoolDataProvider, parsed, "getReservesData", common.HexToAddress(market.PoolAddressesProvider))
	if err != nil {
		return ReservesResponse{}, err
	}
	if len(values) != 2 {
		return ReservesResponse{}, fmt.Errorf("getReservesData return size %d", len(values))
	}

	var resp ReservesResponse
	if err := convert(values[0], &resp.Reserves); err != nil {
		return ReservesResponse{}, fmt.Errorf("decode reserves: %w", err)
	}
	if err := convert(values[1], &resp.BaseCurrency); err != nil {
		return ReservesResponse{}, fmt.Errorf("decode base currency: %w", err)
	}
	return resp, nil
}

// UserReservesHumanized fetches the user's per-reserve positions.
func (p *Provider) UserReservesHumanized(ctx context.Context, chainID uint64, market registry.MarketAddresses, user common.Address) (UserReservesResponse, error) {
	parsed, err := UIPoolDataProviderABI()
	if err != nil {
		return UserReservesResponse{}, fmt.Errorf("parse ui pool data provider abi: %w", err)
	}

	values, err := p.call(ctx, chainID, market.UIPoolDataProvider, parsed, "getUserReservesData", common.HexToAddress(market.PoolAddressesProvider), user)
	if err != nil {
		return UserReservesResponse{}, err
	}
	if len(values) != 2 {
		return UserReservesResponse{}, fmt.Errorf("getUserReservesData return size %d", len(values))
	}

	var resp UserReservesResponse
	if err := convert(values[0], &resp.UserReserves); err != nil {
		return UserReservesResponse{}, fmt.Errorf("decode user reserves: %w", err)
	}
	category, ok := values[1].(uint8)
	if !ok {
		return UserReservesResponse{}, fmt.Errorf("emode category unexpected type %T", values[1])
	}
	resp.UserEmodeCategoryID = category
	return resp, nil
}

func (p *Provider) call(ctx context.Context, chainID uint64, contract string, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if p.callers == nil {
		return nil, fmt.Errorf("caller source is nil")
	}
	caller, err := p.callers.Caller(ctx, chainID)
	if err != nil {
		return nil, err
	}

	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	to := common.HexToAddress(contract)
	resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

// convert copies an anonymous ABI tuple value into its named mirror type.
func convert[T any](value interface{}, out *T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("convert %T: %v", value, r)
		}
	}()
	converted, ok := abi.ConvertType(value, new(T)).(*T)
	if !ok {
		return fmt.Errorf("convert %T: unexpected result", value)
	}
	*out = *converted
	return nil
}
