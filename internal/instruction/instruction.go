// Package instruction builds the command payloads the on-chain
// perpetuals program executes. The program indexes accounts
// positionally, so the account order in each builder is load-bearing:
// reordering silently corrupts execution without a type error.
package instruction

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"PerpScope/internal/pda"
)

// Instruction tags, first byte of every payload.
const (
	OpOpenPosition  uint8 = 0
	OpUpdateFunding uint8 = 1
	OpLiquidate     uint8 = 2
	OpClosePosition uint8 = 3
)

// OpenPositionLen is the full payload size of an open-position
// instruction: tag + base_delta:i64 + collateral_delta:u64 +
// entry_price:u64.
const OpenPositionLen = 25

// Builder assembles instructions against one deployment of the
// program. The vault and market addresses are derived once at
// construction; per-owner position addresses are derived per call.
type Builder struct {
	programID solana.PublicKey
	vault     solana.PublicKey
	market    solana.PublicKey
}

// NewBuilder derives the shared vault and market addresses for
// programID. The only failure mode is derivation exhaustion, which
// signals a programming error rather than a runtime condition.
func NewBuilder(programID solana.PublicKey) (*Builder, error) {
	vault, _, err := pda.Authority(programID)
	if err != nil {
		return nil, err
	}
	market, _, err := pda.Market(programID)
	if err != nil {
		return nil, err
	}
	return &Builder{
		programID: programID,
		vault:     vault,
		market:    market,
	}, nil
}

// Vault returns the derived vault (program authority) address.
func (b *Builder) Vault() solana.PublicKey { return b.vault }

// Market returns the derived market state address.
func (b *Builder) Market() solana.PublicKey { return b.market }

// OpenPosition builds the instruction that opens or modifies the
// payer's position. baseDelta is signed exposure change,
// collateralDelta additional collateral to post, entryPrice the
// fixed-point execution price.
func (b *Builder) OpenPosition(
	payer solana.PublicKey,
	payerTokenAccount solana.PublicKey,
	baseDelta int64,
	collateralDelta uint64,
	entryPrice uint64,
) (*solana.GenericInstruction, error) {
	position, _, err := pda.Position(b.programID, payer)
	if err != nil {
		return nil, fmt.Errorf("open position: %w", err)
	}

	data := make([]byte, OpenPositionLen)
	data[0] = OpOpenPosition
	binary.LittleEndian.PutUint64(data[1:9], uint64(baseDelta))
	binary.LittleEndian.PutUint64(data[9:17], collateralDelta)
	binary.LittleEndian.PutUint64(data[17:25], entryPrice)

	accounts := solana.AccountMetaSlice{
		solana.Meta(payer).SIGNER(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(payerTokenAccount).WRITE(),
		solana.Meta(b.vault).WRITE(),
		solana.Meta(position).WRITE(),
		solana.Meta(b.market).WRITE(),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(solana.SystemProgramID),
	}

	return solana.NewInstruction(b.programID, accounts, data), nil
}

// UpdateFunding builds the instruction that rolls the market's
// cumulative funding index forward. Permissionless; anyone may crank it.
func (b *Builder) UpdateFunding() *solana.GenericInstruction {
	accounts := solana.AccountMetaSlice{
		solana.Meta(b.market).WRITE(),
		solana.Meta(solana.SysVarClockPubkey),
	}
	return solana.NewInstruction(b.programID, accounts, []byte{OpUpdateFunding})
}

// Liquidate builds the instruction that liquidates positionOwner's
// undercollateralized position, paying the penalty to the liquidator's
// token account. The program re-checks eligibility authoritatively.
func (b *Builder) Liquidate(
	liquidator solana.PublicKey,
	liquidatorTokenAccount solana.PublicKey,
	positionOwner solana.PublicKey,
) (*solana.GenericInstruction, error) {
	position, _, err := pda.Position(b.programID, positionOwner)
	if err != nil {
		return nil, fmt.Errorf("liquidate: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(liquidator).SIGNER(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(liquidatorTokenAccount).WRITE(),
		solana.Meta(b.vault).WRITE(),
		solana.Meta(position).WRITE(),
		solana.Meta(b.market).WRITE(),
		solana.Meta(solana.SysVarClockPubkey),
	}

	return solana.NewInstruction(b.programID, accounts, []byte{OpLiquidate}), nil
}

// ClosePosition builds the instruction that voluntarily closes the
// owner's position and returns the remaining collateral to their token
// account.
func (b *Builder) ClosePosition(
	owner solana.PublicKey,
	ownerTokenAccount solana.PublicKey,
) (*solana.GenericInstruction, error) {
	position, _, err := pda.Position(b.programID, owner)
	if err != nil {
		return nil, fmt.Errorf("close position: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(owner).SIGNER(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(ownerTokenAccount).WRITE(),
		solana.Meta(b.vault).WRITE(),
		solana.Meta(position).WRITE(),
		solana.Meta(b.market).WRITE(),
	}

	return solana.NewInstruction(b.programID, accounts, []byte{OpClosePosition}), nil
}
