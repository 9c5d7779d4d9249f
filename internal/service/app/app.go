// Package app is the protocol client: it derives keys through the signing
// oracle, encrypts and submits messages, and assembles decrypted transcripts
// from the ledger's event log.
package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"chain_chat/internal/model"
	"chain_chat/internal/wallet"
	apperrors "chain_chat/pkg/errors"
)

type (
	// Wallet is what the client needs from the signing side: the oracle
	// plus access to the wallet public key that authenticates transactions.
	Wallet interface {
		wallet.SigningOracle
		PublicKey(account model.Account) ([]byte, error)
	}

	Config struct {
		// Endpoints is the ranked list of node base URLs, e.g.
		// "http://localhost:9090". Reads fall back across them according
		// to Policy.
		Endpoints []string
		// Policy defaults to Sequential.
		Policy FallbackPolicy
		// StartOffset is the event-log position conversation loads begin
		// from.
		StartOffset int64
		// HTTPClient defaults to a client with a 15s timeout.
		HTTPClient *http.Client
	}

	App struct {
		endpoints   []string
		policy      FallbackPolicy
		startOffset int64
		httpClient  *http.Client

		wallet Wallet
		keys   *wallet.KeyCache
	}

	SendReceipt struct {
		TxID           string
		MessageID      model.Hash
		ConversationID model.Hash
		Timestamp      int64
		Seq            uint64
	}
)

func NewApp(cfg Config, w Wallet) *App {
	policy := cfg.Policy
	if policy == nil {
		policy = &Sequential{}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &App{
		endpoints:   cfg.Endpoints,
		policy:      policy,
		startOffset: cfg.StartOffset,
		httpClient:  httpClient,
		wallet:      w,
		keys:        wallet.NewKeyCache(w),
	}
}

// Register derives the account's messaging keys and registers the public
// half on the ledger. Calling again after a wallet change rotates the key.
func (a *App) Register(ctx context.Context, self model.Account) (string, error) {
	keys, err := a.keys.Get(ctx, self)
	if err != nil {
		return "", err
	}

	walletPub, err := a.wallet.PublicKey(self)
	if err != nil {
		return "", err
	}
	sig, err := a.wallet.Sign(ctx, self, wallet.RegisterDigest(self, keys.Pub))
	if err != nil {
		return "", err
	}

	req := &registerRequest{
		Account:   self,
		PublicKey: keys.Pub,
		WalletPub: hexEncode(walletPub),
		Signature: hexEncode(sig),
	}

	var resp txResponse
	err = a.firstSuccess(ctx, func(ctx context.Context, endpoint string) error {
		return a.postJSON(ctx, endpoint, "/register", req, &resp)
	})
	if err != nil {
		return "", err
	}
	return resp.TxID, nil
}

// SendMessage encrypts plaintext under the pair's conversation key and
// submits it. The recipient must have registered; without their public key
// there is nothing to encrypt to.
func (a *App) SendMessage(ctx context.Context, self, recipient model.Account, plaintext string, makePermanent bool, feePaid uint64) (*SendReceipt, error) {
	recipientKey, err := a.fetchPublicKey(ctx, recipient)
	if err != nil {
		return nil, err
	}
	if recipientKey.IsZero() {
		return nil, apperrors.ErrRecipientNotRegistered
	}

	keys, err := a.keys.Get(ctx, self)
	if err != nil {
		return nil, err
	}
	convKey, err := keys.ConversationKey(recipientKey)
	if err != nil {
		return nil, err
	}

	payload, err := encrypt(plaintext, convKey)
	if err != nil {
		return nil, err
	}
	content, err := payload.Serialize()
	if err != nil {
		return nil, err
	}

	walletPub, err := a.wallet.PublicKey(self)
	if err != nil {
		return nil, err
	}
	sig, err := a.wallet.Sign(ctx, self, wallet.SendDigest(self, recipient, content, makePermanent, feePaid))
	if err != nil {
		return nil, err
	}

	req := &sendRequest{
		Sender:           self,
		Recipient:        recipient,
		EncryptedContent: content,
		MakePermanent:    makePermanent,
		FeePaid:          feePaid,
		WalletPub:        hexEncode(walletPub),
		Signature:        hexEncode(sig),
	}

	var resp sendResponse
	err = a.firstSuccess(ctx, func(ctx context.Context, endpoint string) error {
		return a.postJSON(ctx, endpoint, "/messages", req, &resp)
	})
	if err != nil {
		return nil, err
	}

	return &SendReceipt{
		TxID:           resp.TxID,
		MessageID:      resp.MessageID,
		ConversationID: resp.ConversationID,
		Timestamp:      resp.Timestamp,
		Seq:            resp.Seq,
	}, nil
}

// PermanentMessages lists the account's permanent message ids in insertion
// order.
func (a *App) PermanentMessages(ctx context.Context, account model.Account) ([]model.Hash, error) {
	var (
		ids []model.Hash
		ok  bool
	)
	err := a.fanRead(ctx, func(ctx context.Context, endpoint string) (func(), error) {
		got, err := a.getPermanentIndex(ctx, endpoint, account)
		if err != nil {
			return nil, err
		}
		return func() { ids, ok = got, true }, nil
	})
	if err != nil && !ok {
		return nil, err
	}
	return ids, nil
}

// GetPermanentMessage fetches one permanent record (sender or recipient
// only) and decrypts it.
func (a *App) GetPermanentMessage(ctx context.Context, self model.Account, id model.Hash) (*model.DecryptedMessage, error) {
	walletPub, err := a.wallet.PublicKey(self)
	if err != nil {
		return nil, err
	}
	sig, err := a.wallet.Sign(ctx, self, wallet.ReadDigest(self, id))
	if err != nil {
		return nil, err
	}

	var (
		msg *model.Message
		ok  bool
	)
	err = a.fanRead(ctx, func(ctx context.Context, endpoint string) (func(), error) {
		got, err := a.getMessage(ctx, endpoint, self, id, hexEncode(walletPub), hexEncode(sig))
		if err != nil {
			return nil, err
		}
		return func() { msg, ok = got, true }, nil
	})
	if err != nil && !ok {
		return nil, err
	}

	other := msg.Recipient
	if msg.Sender != self && msg.Recipient == self {
		other = msg.Sender
	}
	convKey, keyErr := a.conversationKey(ctx, self, other)

	out := &model.DecryptedMessage{
		ID:          id,
		Sender:      msg.Sender,
		Recipient:   msg.Recipient,
		Timestamp:   msg.Timestamp,
		IsPermanent: msg.IsPermanent,
		IsFromMe:    msg.Sender == self,
	}
	if keyErr != nil {
		out.Text = UndecryptablePlaceholder
		out.Undecryptable = true
		return out, nil
	}
	out.Text, out.Undecryptable = decryptContent(msg.EncryptedContent, convKey)
	return out, nil
}

func (a *App) conversationKey(ctx context.Context, self, other model.Account) ([]byte, error) {
	otherKey, err := a.fetchPublicKey(ctx, other)
	if err != nil {
		return nil, err
	}
	if otherKey.IsZero() {
		return nil, apperrors.ErrRecipientNotRegistered
	}

	keys, err := a.keys.Get(ctx, self)
	if err != nil {
		return nil, err
	}
	return keys.ConversationKey(otherKey)
}

func (a *App) fetchPublicKey(ctx context.Context, account model.Account) (model.PublicKey, error) {
	var (
		key model.PublicKey
		ok  bool
	)
	err := a.fanRead(ctx, func(ctx context.Context, endpoint string) (func(), error) {
		info, err := a.getPublicKey(ctx, endpoint, account)
		if err != nil {
			return nil, err
		}
		return func() { key, ok = info.PublicKey, true }, nil
	})
	if err != nil && !ok {
		return model.PublicKey{}, err
	}
	return key, nil
}

// firstSuccess runs a write against the endpoints in ranked order; writes
// are not fanned out so a transaction is only ever submitted once.
func (a *App) firstSuccess(ctx context.Context, call func(ctx context.Context, endpoint string) error) error {
	seq := &Sequential{}
	return seq.Do(ctx, a.endpoints, call)
}

// fanRead runs an idempotent read through the configured policy. The commit
// closure returned by call is applied under the policy's result lock, so
// concurrent fan-out attempts never interleave partial results.
func (a *App) fanRead(ctx context.Context, call func(ctx context.Context, endpoint string) (func(), error)) error {
	var mu sync.Mutex
	done := false
	return a.policy.Do(ctx, a.endpoints, func(ctx context.Context, endpoint string) error {
		commit, err := call(ctx, endpoint)
		if err != nil {
			return err
		}
		mu.Lock()
		if !done {
			done = true
			commit()
		}
		mu.Unlock()
		return nil
	})
}
