package account

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Fixed wire sizes of the program's account layouts. Accounts may be
// allocated with slack space, so decoders accept longer buffers and
// ignore the tail; shorter buffers are always an error.
const (
	PositionLen    = 64
	MarketStateLen = 41
)

// ErrInvalidBufferLength is returned when a decode input is shorter
// than the record's fixed width. Recoverable: the caller can re-fetch
// or report the account as corrupt.
var ErrInvalidBufferLength = errors.New("invalid buffer length")

// Position is a user's position account. Read-only snapshot from the
// client's perspective: all mutation happens inside the program.
//
// Layout (little-endian, 64 bytes):
//
//	owner              [0:32]  pubkey
//	base_amount        [32:40] i64   positive = long, negative = short
//	collateral         [40:48] u64   fixed-point quote amount
//	last_funding_index [48:56] i64
//	entry_price        [56:64] u64   fixed-point
type Position struct {
	Owner            solana.PublicKey
	BaseAmount       int64
	Collateral       uint64
	LastFundingIndex int64
	EntryPrice       uint64
}

// IsFlat returns true if the position has no exposure. A flat position
// is economically inert regardless of its other fields.
func (p Position) IsFlat() bool {
	return p.BaseAmount == 0
}

// SideSign returns +1 for long, -1 for short, 0 for flat
func (p Position) SideSign() int64 {
	switch {
	case p.BaseAmount > 0:
		return 1
	case p.BaseAmount < 0:
		return -1
	default:
		return 0
	}
}

// DecodePosition parses a raw account buffer into a Position. Buffers
// longer than PositionLen are accepted; trailing bytes are ignored.
func DecodePosition(data []byte) (Position, error) {
	if len(data) < PositionLen {
		return Position{}, fmt.Errorf("decode position: got %d bytes, want %d: %w",
			len(data), PositionLen, ErrInvalidBufferLength)
	}

	var p Position
	copy(p.Owner[:], data[0:32])
	p.BaseAmount = int64(binary.LittleEndian.Uint64(data[32:40]))
	p.Collateral = binary.LittleEndian.Uint64(data[40:48])
	p.LastFundingIndex = int64(binary.LittleEndian.Uint64(data[48:56]))
	p.EntryPrice = binary.LittleEndian.Uint64(data[56:64])

	return p, nil
}

// EncodePosition serializes a Position into its exact 64-byte wire form.
func EncodePosition(p Position) []byte {
	data := make([]byte, PositionLen)
	copy(data[0:32], p.Owner[:])
	binary.LittleEndian.PutUint64(data[32:40], uint64(p.BaseAmount))
	binary.LittleEndian.PutUint64(data[40:48], p.Collateral)
	binary.LittleEndian.PutUint64(data[48:56], uint64(p.LastFundingIndex))
	binary.LittleEndian.PutUint64(data[56:64], p.EntryPrice)
	return data
}

// MarketState is the program's single global market account.
//
// Layout (little-endian, 41 bytes):
//
//	funding_index         [0:8]   i64  cumulative funding index
//	funding_rate_per_slot [8:16]  i64
//	open_interest         [16:24] u64  sum of |base_amount|
//	bump                  [24]    u8   authority PDA bump, stored for reuse
//	last_funding_slot     [25:33] u64
//	mark_price            [33:41] u64  fixed-point
type MarketState struct {
	FundingIndex       int64
	FundingRatePerSlot int64
	OpenInterest       uint64
	Bump               uint8
	LastFundingSlot    uint64
	MarkPrice          uint64
}

// DecodeMarketState parses a raw account buffer into a MarketState.
// Buffers longer than MarketStateLen are accepted; the tail is ignored.
func DecodeMarketState(data []byte) (MarketState, error) {
	if len(data) < MarketStateLen {
		return MarketState{}, fmt.Errorf("decode market state: got %d bytes, want %d: %w",
			len(data), MarketStateLen, ErrInvalidBufferLength)
	}

	var m MarketState
	m.FundingIndex = int64(binary.LittleEndian.Uint64(data[0:8]))
	m.FundingRatePerSlot = int64(binary.LittleEndian.Uint64(data[8:16]))
	m.OpenInterest = binary.LittleEndian.Uint64(data[16:24])
	m.Bump = data[24]
	m.LastFundingSlot = binary.LittleEndian.Uint64(data[25:33])
	m.MarkPrice = binary.LittleEndian.Uint64(data[33:41])

	return m, nil
}

// EncodeMarketState serializes a MarketState into its exact 41-byte
// wire form.
func EncodeMarketState(m MarketState) []byte {
	data := make([]byte, MarketStateLen)
	binary.LittleEndian.PutUint64(data[0:8], uint64(m.FundingIndex))
	binary.LittleEndian.PutUint64(data[8:16], uint64(m.FundingRatePerSlot))
	binary.LittleEndian.PutUint64(data[16:24], m.OpenInterest)
	data[24] = m.Bump
	binary.LittleEndian.PutUint64(data[25:33], m.LastFundingSlot)
	binary.LittleEndian.PutUint64(data[33:41], m.MarkPrice)
	return data
}
