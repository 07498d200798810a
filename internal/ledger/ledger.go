// Package ledger is the boundary with the chain: fetching raw account
// bytes and submitting signed instruction bundles. The client never
// holds authoritative state, only the last fetched copy.
package ledger

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrAccountAbsent means the ledger reports no account at the address.
// Not a failure: it is the expected state for accounts the program has
// not initialized yet. Distinct from an account that exists but is too
// short to decode, which is the codec's ErrInvalidBufferLength.
var ErrAccountAbsent = errors.New("account absent")

// AccountFetcher fetches the raw byte content of an account.
// Implementations must return ErrAccountAbsent for a missing account
// and surface transport failures unchanged; the two must never be
// conflated.
type AccountFetcher interface {
	FetchAccountBytes(ctx context.Context, addr solana.PublicKey) ([]byte, error)
}

// SignerFunc resolves the private key for a required signer, or nil if
// the key is unknown. Matches solana.Transaction.Sign.
type SignerFunc func(key solana.PublicKey) *solana.PrivateKey

// Submitter submits a built instruction as a signed transaction and
// returns the transaction signature. Retries, timeouts and finality
// confirmation belong to the implementation, not to callers.
type Submitter interface {
	Submit(ctx context.Context, inst solana.Instruction, feePayer solana.PublicKey,
		sign SignerFunc) (solana.Signature, error)
}
