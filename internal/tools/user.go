package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"aaveLens/internal/aave"
	"aaveLens/internal/format"
	"aaveLens/internal/model"
)

// UserDataParams are the arguments of get_user_data.
type UserDataParams struct {
	ChainID     uint64 `json:"chain_id"`
	UserAddress string `json:"user_address"`
}

// UserData returns a user's positions and account summary. Results are never cached.
func (s *Service) UserData(ctx context.Context, params UserDataParams) (model.UserDataResult, error) {
	if !validAddress(params.UserAddress) {
		return model.UserDataResult{}, fmt.Errorf("%w: invalid user address %q", ErrInvalidInput, params.UserAddress)
	}

	result, err := s.userData(ctx, params)
	if err != nil {
		return model.UserDataResult{}, fmt.Errorf("failed to fetch Aave user data for %s on chain %d: %w", params.UserAddress, params.ChainID, err)
	}
	return result, nil
}

func (s *Service) userData(ctx context.Context, params UserDataParams) (model.UserDataResult, error) {
	addresses, err := s.registry.MarketAddresses(params.ChainID)
	if err != nil {
		return model.UserDataResult{}, err
	}
	user := common.HexToAddress(params.UserAddress)

	var (
		userResp     aave.UserReservesResponse
		reservesResp aave.ReservesResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := s.market.UserReservesHumanized(gctx, params.ChainID, addresses, user)
		if err != nil {
			return fmt.Errorf("user reserves: %w", err)
		}
		userResp = resp
		return nil
	})
	g.Go(func() error {
		resp, err := s.market.ReservesHumanized(gctx, params.ChainID, addresses)
		if err != nil {
			return fmt.Errorf("reserves: %w", err)
		}
		reservesResp = resp
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.UserDataResult{}, err
	}

	now := s.now()
	return model.UserDataResult{
		ChainID:      params.ChainID,
		UserAddress:  params.UserAddress,
		Timestamp:    s.timestamp(now),
		Summary:      format.UserSummary(reservesResp, userResp, now.Unix()),
		UserReserves: format.Positions(userResp),
	}, nil
}

// validAddress accepts 0x-prefixed, 42 character hex addresses.
func validAddress(addr string) bool {
	return len(addr) == 42 && strings.HasPrefix(addr, "0x") && common.IsHexAddress(addr)
}
