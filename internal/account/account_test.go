package account_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"PerpScope/internal/account"
)

func testOwner() solana.PublicKey {
	var b [32]byte
	for i := range b {
		b[i] = byte(i + 1)
	}
	return solana.PublicKeyFromBytes(b[:])
}

// ============================================================================
// Test: Position codec
// ============================================================================

func TestPosition_RoundTrip(t *testing.T) {
	p := account.Position{
		Owner:            testOwner(),
		BaseAmount:       1_000_000_000,
		Collateral:       150_000_000_000,
		LastFundingIndex: 12345,
		EntryPrice:       100_500_000_000,
	}

	data := account.EncodePosition(p)
	if len(data) != account.PositionLen {
		t.Fatalf("encoded length = %d, want %d", len(data), account.PositionLen)
	}

	got, err := account.DecodePosition(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != p {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestPosition_RoundTripShort(t *testing.T) {
	p := account.Position{
		Owner:            testOwner(),
		BaseAmount:       -5_000_000_000,
		Collateral:       200_000_000_000,
		LastFundingIndex: -99,
		EntryPrice:       99_000_000_000,
	}

	got, err := account.DecodePosition(account.EncodePosition(p))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != p {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestDecodePosition_FixedOffsets(t *testing.T) {
	owner := testOwner()

	// Pack the layout by hand, independent of the encoder.
	baseAmount := int64(-2_000_000_000)
	fundingIndex := int64(-50_000)
	data := make([]byte, 64)
	copy(data[0:32], owner[:])
	binary.LittleEndian.PutUint64(data[32:40], uint64(baseAmount))
	binary.LittleEndian.PutUint64(data[40:48], 150_000_000_000)
	binary.LittleEndian.PutUint64(data[48:56], uint64(fundingIndex))
	binary.LittleEndian.PutUint64(data[56:64], 100_500_000_000)

	p, err := account.DecodePosition(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Owner != owner {
		t.Errorf("owner = %s, want %s", p.Owner, owner)
	}
	if p.BaseAmount != -2_000_000_000 {
		t.Errorf("base_amount = %d, want -2_000_000_000", p.BaseAmount)
	}
	if p.Collateral != 150_000_000_000 {
		t.Errorf("collateral = %d, want 150_000_000_000", p.Collateral)
	}
	if p.LastFundingIndex != -50_000 {
		t.Errorf("last_funding_index = %d, want -50_000", p.LastFundingIndex)
	}
	if p.EntryPrice != 100_500_000_000 {
		t.Errorf("entry_price = %d, want 100_500_000_000", p.EntryPrice)
	}
}

func TestDecodePosition_ShortBuffer(t *testing.T) {
	for _, n := range []int{0, 1, 32, 63} {
		_, err := account.DecodePosition(make([]byte, n))
		if !errors.Is(err, account.ErrInvalidBufferLength) {
			t.Errorf("decode %d bytes: err = %v, want ErrInvalidBufferLength", n, err)
		}
	}
}

func TestDecodePosition_SlackSpaceIgnored(t *testing.T) {
	p := account.Position{Owner: testOwner(), BaseAmount: 7, Collateral: 8, EntryPrice: 9}

	// Accounts may be allocated larger than the layout.
	data := append(account.EncodePosition(p), bytes.Repeat([]byte{0xFF}, 100)...)

	got, err := account.DecodePosition(data)
	if err != nil {
		t.Fatalf("decode with slack: %v", err)
	}
	if got != p {
		t.Errorf("got %+v, want %+v", got, p)
	}
}

func TestPosition_FlatAndSide(t *testing.T) {
	if !(account.Position{}).IsFlat() {
		t.Error("zero position should be flat")
	}
	if (account.Position{BaseAmount: 1}).IsFlat() {
		t.Error("long position should not be flat")
	}

	cases := []struct {
		base int64
		want int64
	}{
		{1_000_000_000, 1},
		{-1_000_000_000, -1},
		{0, 0},
	}
	for _, c := range cases {
		if got := (account.Position{BaseAmount: c.base}).SideSign(); got != c.want {
			t.Errorf("SideSign(%d) = %d, want %d", c.base, got, c.want)
		}
	}
}

// ============================================================================
// Test: MarketState codec
// ============================================================================

func TestMarketState_RoundTrip(t *testing.T) {
	m := account.MarketState{
		FundingIndex:       -50_000,
		FundingRatePerSlot: 10_000,
		OpenInterest:       1_000_000_000_000,
		Bump:               254,
		LastFundingSlot:    12_345_678,
		MarkPrice:          101_000_000_000,
	}

	data := account.EncodeMarketState(m)
	if len(data) != account.MarketStateLen {
		t.Fatalf("encoded length = %d, want %d", len(data), account.MarketStateLen)
	}

	got, err := account.DecodeMarketState(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != m {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, m)
	}
}

func TestDecodeMarketState_FixedOffsets(t *testing.T) {
	// The bump byte at offset 24 shifts everything after it off 8-byte
	// alignment; decode must follow the wire offsets, not Go alignment.
	fundingIndex := int64(-1)
	data := make([]byte, 41)
	binary.LittleEndian.PutUint64(data[0:8], uint64(fundingIndex))
	binary.LittleEndian.PutUint64(data[8:16], 10_000)
	binary.LittleEndian.PutUint64(data[16:24], 5_000_000_000)
	data[24] = 255
	binary.LittleEndian.PutUint64(data[25:33], 98_765)
	binary.LittleEndian.PutUint64(data[33:41], 100_000_000_000)

	m, err := account.DecodeMarketState(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.FundingIndex != -1 {
		t.Errorf("funding_index = %d, want -1", m.FundingIndex)
	}
	if m.FundingRatePerSlot != 10_000 {
		t.Errorf("funding_rate_per_slot = %d, want 10_000", m.FundingRatePerSlot)
	}
	if m.OpenInterest != 5_000_000_000 {
		t.Errorf("open_interest = %d, want 5_000_000_000", m.OpenInterest)
	}
	if m.Bump != 255 {
		t.Errorf("bump = %d, want 255", m.Bump)
	}
	if m.LastFundingSlot != 98_765 {
		t.Errorf("last_funding_slot = %d, want 98_765", m.LastFundingSlot)
	}
	if m.MarkPrice != 100_000_000_000 {
		t.Errorf("mark_price = %d, want 100_000_000_000", m.MarkPrice)
	}
}

func TestDecodeMarketState_ShortBuffer(t *testing.T) {
	for _, n := range []int{0, 24, 40} {
		_, err := account.DecodeMarketState(make([]byte, n))
		if !errors.Is(err, account.ErrInvalidBufferLength) {
			t.Errorf("decode %d bytes: err = %v, want ErrInvalidBufferLength", n, err)
		}
	}
}

func TestDecodeMarketState_SlackSpaceIgnored(t *testing.T) {
	m := account.MarketState{MarkPrice: 42, Bump: 7}
	data := append(account.EncodeMarketState(m), 1, 2, 3)

	got, err := account.DecodeMarketState(data)
	if err != nil {
		t.Fatalf("decode with slack: %v", err)
	}
	if got != m {
		t.Errorf("got %+v, want %+v", got, m)
	}
}
