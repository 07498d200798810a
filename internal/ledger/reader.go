package ledger

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"PerpScope/internal/account"
	"PerpScope/internal/pda"
)

// GetPosition derives owner's position address, fetches it and decodes
// it. Returns ErrAccountAbsent when the position has never been
// initialized; decode and transport failures come back as themselves.
func GetPosition(
	ctx context.Context,
	fetcher AccountFetcher,
	programID, owner solana.PublicKey,
) (account.Position, error) {
	addr, _, err := pda.Position(programID, owner)
	if err != nil {
		return account.Position{}, err
	}

	data, err := fetcher.FetchAccountBytes(ctx, addr)
	if err != nil {
		return account.Position{}, err
	}

	pos, err := account.DecodePosition(data)
	if err != nil {
		return account.Position{}, fmt.Errorf("position %s: %w", addr, err)
	}
	return pos, nil
}

// GetMarketState fetches and decodes the program's market state.
func GetMarketState(
	ctx context.Context,
	fetcher AccountFetcher,
	programID solana.PublicKey,
) (account.MarketState, error) {
	addr, _, err := pda.Market(programID)
	if err != nil {
		return account.MarketState{}, err
	}

	data, err := fetcher.FetchAccountBytes(ctx, addr)
	if err != nil {
		return account.MarketState{}, err
	}

	state, err := account.DecodeMarketState(data)
	if err != nil {
		return account.MarketState{}, fmt.Errorf("market state %s: %w", addr, err)
	}
	return state, nil
}
