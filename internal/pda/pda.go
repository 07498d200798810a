// Package pda derives the program's canonical account addresses.
// Derivation is a pure function of (program id, seeds): identical inputs
// always yield the identical (address, bump) pair.
package pda

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Canonical seed prefixes defined by the on-chain program.
var (
	SeedAuthority = []byte("perps")
	SeedPosition  = []byte("position")
	SeedMarket    = []byte("market")
)

// Authority returns the program authority address, which owns the
// collateral vault.
func Authority(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress([][]byte{SeedAuthority}, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive authority: %w", err)
	}
	return addr, bump, nil
}

// Position returns the position account address for a holder.
func Position(programID, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(
		[][]byte{SeedPosition, owner.Bytes()}, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive position for %s: %w", owner, err)
	}
	return addr, bump, nil
}

// Market returns the market state account address.
func Market(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress([][]byte{SeedMarket}, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive market: %w", err)
	}
	return addr, bump, nil
}
