package mcpserver

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"aaveLens/internal/aave"
	"aaveLens/internal/registry"
)

type noMarket struct{}

func (noMarket) ReservesHumanized(context.Context, uint64, registry.MarketAddresses) (aave.ReservesResponse, error) {
	return aave.ReservesResponse{}, errors.New("offline")
}

func (noMarket) UserReservesHumanized(context.Context, uint64, registry.MarketAddresses, common.Address) (aave.UserReservesResponse, error) {
	return aave.UserReservesResponse{}, errors.New("offline")
}
