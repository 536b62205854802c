// Package wallet provides the signing wallet the client authorizes against.
//
// A wallet is injected as an Availability: either Available, carrying a
// Wallet that can connect and sign, or Unavailable with the reason it could
// not be found. Connecting mirrors a browser wallet extension: a silent
// connect only succeeds for an origin the user approved earlier, and an
// explicit connect records the approval.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrWalletUnavailable = errors.New("wallet not found")
	ErrNotTrusted        = errors.New("origin is not trusted by the wallet")
	ErrNotConnected      = errors.New("wallet is not connected")
)

type ConnectOptions struct {
	// OnlyIfTrusted fails with ErrNotTrusted instead of asking the user.
	OnlyIfTrusted bool
}

// Wallet holds the user's key and authorizes the client to use it.
type Wallet interface {
	Connect(ctx context.Context, opts ConnectOptions) (solana.PublicKey, error)
	// SignTransaction signs tx with the wallet key. cosigners are additional
	// keys the transaction requires, such as a freshly created account.
	SignTransaction(ctx context.Context, tx *solana.Transaction, cosigners ...solana.PrivateKey) error
}

// Availability is the result of probing for a wallet.
type Availability interface {
	availability()
}

type Available struct {
	Wallet Wallet
	Name   string
}

type Unavailable struct {
	Reason string
}

func (Available) availability()   {}
func (Unavailable) availability() {}

// Probe looks for a Solana CLI keygen file at walletPath.
func Probe(walletPath, trustPath, origin string, logger *slog.Logger) Availability {
	if walletPath == "" {
		return Unavailable{Reason: "no wallet path configured"}
	}
	if _, err := os.Stat(walletPath); err != nil {
		logger.Debug("Wallet probe failed", "path", walletPath, "err", err)
		return Unavailable{Reason: fmt.Sprintf("no wallet at %s", walletPath)}
	}

	key, err := solana.PrivateKeyFromSolanaKeygenFile(walletPath)
	if err != nil {
		logger.Warn("Wallet file unreadable", "path", walletPath, "err", err)
		return Unavailable{Reason: fmt.Sprintf("unreadable wallet at %s", walletPath)}
	}

	trust, err := OpenTrustStore(trustPath)
	if err != nil {
		logger.Warn("Trust store unreadable", "path", trustPath, "err", err)
		return Unavailable{Reason: fmt.Sprintf("unreadable trust store at %s", trustPath)}
	}

	logger.Info("Wallet found", "path", walletPath)
	return Available{Wallet: NewKeyfileWallet(key, trust, origin), Name: walletPath}
}

// KeyfileWallet signs with a key held on local disk.
type KeyfileWallet struct {
	key    solana.PrivateKey
	trust  *TrustStore
	origin string

	mu        sync.Mutex
	connected bool
}

func NewKeyfileWallet(key solana.PrivateKey, trust *TrustStore, origin string) *KeyfileWallet {
	return &KeyfileWallet{key: key, trust: trust, origin: origin}
}

func (w *KeyfileWallet) Connect(ctx context.Context, opts ConnectOptions) (solana.PublicKey, error) {
	if err := ctx.Err(); err != nil {
		return solana.PublicKey{}, err
	}

	if opts.OnlyIfTrusted {
		if !w.trust.IsTrusted(w.origin) {
			return solana.PublicKey{}, ErrNotTrusted
		}
	} else if err := w.trust.Trust(w.origin); err != nil {
		return solana.PublicKey{}, fmt.Errorf("record trusted origin: %w", err)
	}

	w.mu.Lock()
	w.connected = true
	w.mu.Unlock()

	return w.key.PublicKey(), nil
}

func (w *KeyfileWallet) SignTransaction(ctx context.Context, tx *solana.Transaction, cosigners ...solana.PrivateKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	connected := w.connected
	w.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.key.PublicKey()) {
			return &w.key
		}
		for i := range cosigners {
			if key.Equals(cosigners[i].PublicKey()) {
				return &cosigners[i]
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	return nil
}

// CheckExistingSession connects without prompting. It succeeds only when a
// wallet is present and already trusts this origin.
func CheckExistingSession(ctx context.Context, a Availability) (solana.PublicKey, error) {
	switch a := a.(type) {
	case Available:
		return a.Wallet.Connect(ctx, ConnectOptions{OnlyIfTrusted: true})
	case Unavailable:
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrWalletUnavailable, a.Reason)
	}
	return solana.PublicKey{}, ErrWalletUnavailable
}

// RequestConnection is the explicit, user-approved connect.
func RequestConnection(ctx context.Context, a Availability) (solana.PublicKey, error) {
	switch a := a.(type) {
	case Available:
		return a.Wallet.Connect(ctx, ConnectOptions{})
	case Unavailable:
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrWalletUnavailable, a.Reason)
	}
	return solana.PublicKey{}, ErrWalletUnavailable
}
