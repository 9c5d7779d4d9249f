package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"chain_chat/internal/cryptographic/signature"
	"chain_chat/internal/model"
	apperrors "chain_chat/pkg/errors"
)

type (
	// LocalWallet is an in-process signing oracle over ed25519 keys. The
	// account id is derived from the public key, so a signed request also
	// proves ownership of the account to the ledger node.
	LocalWallet struct {
		mu   sync.RWMutex
		keys map[model.Account]ed25519.PrivateKey
	}

	walletFile struct {
		Seeds map[string]string `json:"seeds"`
	}
)

func NewLocalWallet() *LocalWallet {
	return &LocalWallet{
		keys: make(map[model.Account]ed25519.PrivateKey),
	}
}

// AccountFromWalletPub maps a wallet public key to its account: the last 20
// bytes of SHA-256 over the public key.
func AccountFromWalletPub(pub []byte) model.Account {
	sum := sha256.Sum256(pub)
	var a model.Account
	copy(a[:], sum[len(sum)-model.AccountSize:])
	return a
}

// CreateAccount generates a fresh keypair and returns its account.
func (w *LocalWallet) CreateAccount() (model.Account, error) {
	pub, priv, err := signature.NewEd25519Keypair()
	if err != nil {
		return model.Account{}, fmt.Errorf("generate keypair: %w", err)
	}

	account := AccountFromWalletPub(pub)
	w.mu.Lock()
	w.keys[account] = priv
	w.mu.Unlock()
	return account, nil
}

// ImportSeed restores an account from a 32-byte ed25519 seed.
func (w *LocalWallet) ImportSeed(seed []byte) (model.Account, error) {
	if len(seed) != ed25519.SeedSize {
		return model.Account{}, fmt.Errorf("seed must be %d bytes", ed25519.SeedSize)
	}
	pub, priv := signature.NewEd25519KeypairFromSeed(seed)
	account := AccountFromWalletPub(pub)
	w.mu.Lock()
	w.keys[account] = priv
	w.mu.Unlock()
	return account, nil
}

// PublicKey returns the wallet (signing) public key for an account.
func (w *LocalWallet) PublicKey(account model.Account) ([]byte, error) {
	w.mu.RLock()
	priv, ok := w.keys[account]
	w.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrOracleUnavailable
	}
	return priv.Public().(ed25519.PublicKey), nil
}

func (w *LocalWallet) Sign(ctx context.Context, account model.Account, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.RLock()
	priv, ok := w.keys[account]
	w.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrOracleUnavailable
	}
	return signature.ED25519Sign(priv, message), nil
}

// SaveTo writes all seeds to path. Demo tooling only; a production wallet
// lives behind its own process boundary.
func (w *LocalWallet) SaveTo(path string) error {
	w.mu.RLock()
	f := walletFile{Seeds: make(map[string]string, len(w.keys))}
	for account, priv := range w.keys {
		f.Seeds[account.Hex()] = hex.EncodeToString(priv.Seed())
	}
	w.mu.RUnlock()

	data, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func LoadWallet(path string) (*LocalWallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f walletFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse wallet file: %w", err)
	}

	w := NewLocalWallet()
	for _, seedHex := range f.Seeds {
		seed, err := hex.DecodeString(seedHex)
		if err != nil {
			return nil, fmt.Errorf("decode seed: %w", err)
		}
		if _, err := w.ImportSeed(seed); err != nil {
			return nil, err
		}
	}
	return w, nil
}
