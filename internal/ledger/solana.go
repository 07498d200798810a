package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client implements AccountFetcher and Submitter over a Solana JSON-RPC
// endpoint. Reads use confirmed commitment, matching what the program's
// own clients use.
type Client struct {
	rpc *rpc.Client
}

// NewClient connects to the given RPC endpoint. The underlying client
// owns its own timeout and retry policy.
func NewClient(rpcURL string) *Client {
	return &Client{rpc: rpc.New(rpcURL)}
}

// FetchAccountBytes returns the raw content of the account at addr, or
// ErrAccountAbsent if the ledger has no account there. An account that
// exists with empty data is returned as an empty slice: length
// validation is the codec's concern, not an absence.
func (c *Client) FetchAccountBytes(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	res, err := c.rpc.GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, ErrAccountAbsent
		}
		return nil, fmt.Errorf("fetch account %s: %w", addr, err)
	}
	if res == nil || res.Value == nil {
		return nil, ErrAccountAbsent
	}
	return res.Value.Data.GetBinary(), nil
}

// Submit wraps inst in a transaction paid by feePayer, signs it via the
// supplied resolver and sends it. Rejections from the endpoint are
// surfaced verbatim.
func (c *Client) Submit(
	ctx context.Context,
	inst solana.Instruction,
	feePayer solana.PublicKey,
	sign SignerFunc,
) (solana.Signature, error) {
	recent, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{inst},
		recent.Value.Blockhash,
		solana.TransactionPayer(feePayer),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		return sign(key)
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	return sig, nil
}
