// Package portal talks to the GIF portal program on behalf of the connected
// wallet. Every call targets the single account addressed by the bootstrap
// keypair.
package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"

	"github.com/0naama/gifportal/internal/idl"
)

const (
	InstructionInitialize = "startStuffOff"
	InstructionAddItem    = "addGif"
	AccountName           = "BaseAccount"

	defaultConfirmInterval = 500 * time.Millisecond
)

var (
	ErrEmptyItem         = errors.New("empty item")
	ErrTransactionFailed = errors.New("transaction failed")
)

// RPC is the part of *rpc.Client the gateway uses.
type RPC interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

// Signer authorizes transactions for the connected wallet.
type Signer interface {
	SignTransaction(ctx context.Context, tx *solana.Transaction, cosigners ...solana.PrivateKey) error
}

type Config struct {
	ProgramID  solana.PublicKey
	Account    solana.PrivateKey
	IDL        *idl.IDL
	Commitment rpc.CommitmentType
	// Timeout bounds each gateway call. Zero means no timeout.
	Timeout         time.Duration
	ConfirmInterval time.Duration
}

type Gateway struct {
	cfg    Config
	rpc    RPC
	logger *slog.Logger
}

func New(cfg Config, client RPC, logger *slog.Logger) *Gateway {
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentProcessed
	}
	if cfg.ConfirmInterval == 0 {
		cfg.ConfirmInterval = defaultConfirmInterval
	}
	return &Gateway{cfg: cfg, rpc: client, logger: logger}
}

// AccountAddress is the address of the account holding the list.
func (g *Gateway) AccountAddress() solana.PublicKey {
	return g.cfg.Account.PublicKey()
}

// InitializeAccount creates the list account, paid for by user, and returns
// the refreshed list. It does not check whether the account already exists;
// the program rejects a second initialization.
func (g *Gateway) InitializeAccount(ctx context.Context, user solana.PublicKey, signer Signer) (ItemList, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	logger := g.logger.With("op", uuid.NewString(), "instruction", InstructionInitialize)

	data, err := g.cfg.IDL.EncodeInstruction(InstructionInitialize)
	if err != nil {
		return ItemList{}, err
	}
	sig, err := g.send(ctx, InstructionInitialize, data, user, signer, g.cfg.Account)
	if err != nil {
		return ItemList{}, fmt.Errorf("create account %s: %w", g.AccountAddress(), err)
	}
	logger.Info("Created list account", "account", g.AccountAddress(), "sig", sig)

	return g.refresh(ctx, logger)
}

// SubmitItem appends value to the list and returns the refreshed list. An
// empty value is rejected with ErrEmptyItem before anything is sent.
func (g *Gateway) SubmitItem(ctx context.Context, user solana.PublicKey, signer Signer, value string) (ItemList, error) {
	if value == "" {
		return ItemList{}, ErrEmptyItem
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	logger := g.logger.With("op", uuid.NewString(), "instruction", InstructionAddItem)

	data, err := g.cfg.IDL.EncodeInstruction(InstructionAddItem, value)
	if err != nil {
		return ItemList{}, err
	}
	sig, err := g.send(ctx, InstructionAddItem, data, user, signer)
	if err != nil {
		return ItemList{}, fmt.Errorf("add item: %w", err)
	}
	logger.Info("Item sent to program", "link", value, "sig", sig)

	return g.refresh(ctx, logger)
}

// FetchList reads the account. Any failure, including an account that does
// not exist yet, yields Uninitialized together with the error.
func (g *Gateway) FetchList(ctx context.Context) (ItemList, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return g.fetch(ctx)
}

func (g *Gateway) refresh(ctx context.Context, logger *slog.Logger) (ItemList, error) {
	list, err := g.fetch(ctx)
	if err != nil {
		logger.Error("Refresh after write failed", "err", err)
	}
	return list, nil
}

func (g *Gateway) fetch(ctx context.Context) (ItemList, error) {
	res, err := g.rpc.GetAccountInfoWithOpts(ctx, g.AccountAddress(), &rpc.GetAccountInfoOpts{
		Commitment: g.cfg.Commitment,
	})
	if err != nil {
		return Uninitialized(), fmt.Errorf("read account %s: %w", g.AccountAddress(), err)
	}
	if res == nil || res.Value == nil || res.Value.Data == nil {
		return Uninitialized(), fmt.Errorf("read account %s: %w", g.AccountAddress(), rpc.ErrNotFound)
	}

	fields, err := g.cfg.IDL.DecodeAccount(AccountName, res.Value.Data.GetBinary())
	if err != nil {
		return Uninitialized(), fmt.Errorf("decode account %s: %w", g.AccountAddress(), err)
	}
	items, err := itemsFromAccount(fields)
	if err != nil {
		return Uninitialized(), err
	}

	g.logger.Debug("Fetched list", "account", g.AccountAddress(), "count", len(items))
	return Loaded(items), nil
}

func (g *Gateway) send(ctx context.Context, name string, data []byte, user solana.PublicKey, signer Signer, cosigners ...solana.PrivateKey) (solana.Signature, error) {
	accounts, err := g.accountMetas(name, user)
	if err != nil {
		return solana.Signature{}, err
	}

	recent, err := g.rpc.GetLatestBlockhash(ctx, g.cfg.Commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(g.cfg.ProgramID, accounts, data)},
		recent.Value.Blockhash,
		solana.TransactionPayer(user),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	if err := signer.SignTransaction(ctx, tx, cosigners...); err != nil {
		return solana.Signature{}, err
	}

	sig, err := g.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: g.cfg.Commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	return sig, g.confirm(ctx, sig)
}

// confirm polls until sig reaches the configured commitment.
func (g *Gateway) confirm(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(g.cfg.ConfirmInterval)
	defer ticker.Stop()

	for {
		res, err := g.rpc.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			return fmt.Errorf("confirm %s: %w", sig, err)
		}
		if res != nil && len(res.Value) > 0 && res.Value[0] != nil {
			status := res.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %s: %v", ErrTransactionFailed, sig, status.Err)
			}
			if reached(status.ConfirmationStatus, g.cfg.Commitment) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirm %s: %w", sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

func reached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	rank := map[string]int{
		string(rpc.ConfirmationStatusProcessed): 1,
		string(rpc.ConfirmationStatusConfirmed): 2,
		string(rpc.ConfirmationStatusFinalized): 3,
	}
	return rank[string(status)] >= rank[string(want)] && rank[string(status)] > 0
}

// accountMetas resolves the accounts an instruction lists in the IDL.
func (g *Gateway) accountMetas(name string, user solana.PublicKey) (solana.AccountMetaSlice, error) {
	ix, err := g.cfg.IDL.Instruction(name)
	if err != nil {
		return nil, err
	}

	metas := make(solana.AccountMetaSlice, 0, len(ix.Accounts))
	for _, acc := range ix.Accounts {
		var pk solana.PublicKey
		switch idl.SnakeCase(acc.Name) {
		case "base_account":
			pk = g.AccountAddress()
		case "user":
			pk = user
		case "system_program":
			pk = solana.SystemProgramID
		default:
			return nil, fmt.Errorf("instruction %s: unknown account %q", name, acc.Name)
		}
		metas = append(metas, solana.NewAccountMeta(pk, acc.IsMut, acc.IsSigner))
	}
	return metas, nil
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, g.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func itemsFromAccount(fields map[string]any) ([]Item, error) {
	raw, ok := lookup(fields, "gif_list")
	if !ok {
		return nil, fmt.Errorf("account %s has no gif list", AccountName)
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("account %s: gif list is %T", AccountName, raw)
	}

	items := make([]Item, 0, len(entries))
	for i, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("gif list element %d is %T", i, e)
		}
		link, _ := lookup(entry, "gif_link")
		s, ok := link.(string)
		if !ok {
			return nil, fmt.Errorf("gif list element %d has no link", i)
		}
		item := Item{Link: s}
		if v, ok := lookup(entry, "user_address"); ok {
			if pk, ok := v.(solana.PublicKey); ok {
				item.Submitter = &pk
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func lookup(m map[string]any, snake string) (any, bool) {
	for k, v := range m {
		if idl.SnakeCase(k) == snake {
			return v, true
		}
	}
	return nil, false
}
