package app

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"chain_chat/internal/addressing"
	"chain_chat/internal/ledger"
	"chain_chat/internal/model"
	"chain_chat/internal/repository/eventlog"
	messageRepo "chain_chat/internal/repository/message"
	registryRepo "chain_chat/internal/repository/registry"
	"chain_chat/internal/service/server"
	"chain_chat/internal/wallet"
	apperrors "chain_chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	node   *httptest.Server
	wallet *wallet.LocalWallet
	events *eventlog.MemoryLog

	owner, alice, bob model.Account
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	w := wallet.NewLocalWallet()
	owner, err := w.CreateAccount()
	require.NoError(t, err)
	alice, err := w.CreateAccount()
	require.NoError(t, err)
	bob, err := w.CreateAccount()
	require.NoError(t, err)

	events := eventlog.NewMemoryLog()
	l, err := ledger.New(context.Background(), ledger.Config{
		Owner:               owner,
		PermanentMessageFee: 100,
	}, registryRepo.NewMemoryStore(), messageRepo.NewMemoryStore(), events)
	require.NoError(t, err)

	node := httptest.NewServer(server.NewHttpServer(l).Router())
	t.Cleanup(node.Close)

	return &harness{
		node:   node,
		wallet: w,
		events: events,
		owner:  owner,
		alice:  alice,
		bob:    bob,
	}
}

func (h *harness) app() *App {
	return NewApp(Config{Endpoints: []string{h.node.URL}}, h.wallet)
}

func registerAll(t *testing.T, a *App, accounts ...model.Account) {
	t.Helper()
	for _, account := range accounts {
		txID, err := a.Register(context.Background(), account)
		require.NoError(t, err)
		require.NotEmpty(t, txID)
	}
}

func TestSendAndLoadConversation(t *testing.T) {
	h := newHarness(t)
	a := h.app()
	ctx := context.Background()
	registerAll(t, a, h.alice, h.bob)

	receipt, err := a.SendMessage(ctx, h.alice, h.bob, "hello bob", false, 0)
	require.NoError(t, err)
	assert.Equal(t, addressing.ConversationID(h.alice, h.bob), receipt.ConversationID)

	// Alice's perspective.
	conv, err := a.LoadConversation(ctx, h.alice, h.bob)
	require.NoError(t, err)
	assert.False(t, conv.Unavailable)
	require.Len(t, conv.Messages, 1)
	msg := conv.Messages[0]
	assert.Equal(t, "hello bob", msg.Text)
	assert.True(t, msg.IsFromMe)
	assert.False(t, msg.Undecryptable)
	assert.Equal(t, receipt.MessageID, msg.ID)

	// Bob derives the same conversation key from his own wallet and reads
	// the same plaintext, attributed to the other party.
	conv, err = a.LoadConversation(ctx, h.bob, h.alice)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "hello bob", conv.Messages[0].Text)
	assert.False(t, conv.Messages[0].IsFromMe)

	// The ledger only ever saw ciphertext.
	events, err := h.events.Range(ctx, receipt.ConversationID, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotContains(t, events[0].EncryptedContent, "hello bob")
}

func TestSendToUnregisteredRecipient(t *testing.T) {
	h := newHarness(t)
	a := h.app()
	ctx := context.Background()
	registerAll(t, a, h.alice)

	_, err := a.SendMessage(ctx, h.alice, h.bob, "anyone there", false, 0)
	require.ErrorIs(t, err, apperrors.ErrRecipientNotRegistered)
}

func TestPermanentMessageFlow(t *testing.T) {
	h := newHarness(t)
	a := h.app()
	ctx := context.Background()
	registerAll(t, a, h.alice, h.bob)

	t.Run("insufficient fee leaves no trace", func(t *testing.T) {
		_, err := a.SendMessage(ctx, h.alice, h.bob, "cheap", true, 99)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInsufficientFee, apperrors.CodeOf(err))

		for _, account := range []model.Account{h.alice, h.bob} {
			ids, err := a.PermanentMessages(ctx, account)
			require.NoError(t, err)
			assert.Empty(t, ids)
		}
	})

	receipt, err := a.SendMessage(ctx, h.alice, h.bob, "for the record", true, 100)
	require.NoError(t, err)

	for _, account := range []model.Account{h.alice, h.bob} {
		ids, err := a.PermanentMessages(ctx, account)
		require.NoError(t, err)
		require.Len(t, ids, 1)
		assert.Equal(t, receipt.MessageID, ids[0])

		msg, err := a.GetPermanentMessage(ctx, account, receipt.MessageID)
		require.NoError(t, err)
		assert.Equal(t, "for the record", msg.Text)
		assert.True(t, msg.IsPermanent)
		assert.Equal(t, account == h.alice, msg.IsFromMe)
	}

	t.Run("third party is refused", func(t *testing.T) {
		carol, err := h.wallet.CreateAccount()
		require.NoError(t, err)
		registerAll(t, a, carol)

		_, err = a.GetPermanentMessage(ctx, carol, receipt.MessageID)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeUnauthorizedAccess, apperrors.CodeOf(err))
	})
}

func TestUndecryptableMessageIsIsolated(t *testing.T) {
	h := newHarness(t)
	a := h.app()
	ctx := context.Background()
	registerAll(t, a, h.alice, h.bob)

	_, err := a.SendMessage(ctx, h.alice, h.bob, "readable one", false, 0)
	require.NoError(t, err)

	// A corrupt event in the middle of the log, as if written by a buggy
	// or hostile client.
	conversation := addressing.ConversationID(h.alice, h.bob)
	seq, err := h.events.NextSeq(ctx)
	require.NoError(t, err)
	require.NoError(t, h.events.Append(ctx, &model.MessageEvent{
		Seq:              seq,
		MessageID:        model.Hash{0xbb},
		ConversationID:   conversation,
		Sender:           h.alice,
		Recipient:        h.bob,
		EncryptedContent: "not a payload at all",
		Timestamp:        time.Now().Unix(),
	}))

	_, err = a.SendMessage(ctx, h.alice, h.bob, "readable two", false, 0)
	require.NoError(t, err)

	conv, err := a.LoadConversation(ctx, h.bob, h.alice)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 3)

	var placeholders, readable int
	for _, msg := range conv.Messages {
		if msg.Undecryptable {
			placeholders++
			assert.Equal(t, UndecryptablePlaceholder, msg.Text)
		} else {
			readable++
		}
	}
	assert.Equal(t, 1, placeholders)
	assert.Equal(t, 2, readable)
}

func TestLoadConversationDegradesWhenUnreachable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	registerAll(t, h.app(), h.alice, h.bob)

	dead := httptest.NewServer(nil)
	dead.Close()
	a := NewApp(Config{Endpoints: []string{dead.URL}}, h.wallet)

	conv, err := a.LoadConversation(ctx, h.alice, h.bob)
	require.NoError(t, err)
	assert.True(t, conv.Unavailable)
	assert.Empty(t, conv.Messages)

	// Point reads have no degraded mode; they fail loudly.
	_, err = a.PermanentMessages(ctx, h.alice)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnavailable, apperrors.CodeOf(err))
}

func TestSubscribeDeliversLiveMessages(t *testing.T) {
	h := newHarness(t)
	a := h.app()
	registerAll(t, a, h.alice, h.bob)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan model.DecryptedMessage, 8)
	done := make(chan error, 1)
	go func() {
		done <- a.Subscribe(ctx, h.bob, h.alice, func(m model.DecryptedMessage) {
			received <- m
		})
	}()

	// The subscription registers asynchronously on the node; keep sending
	// until a push lands so the test never races the handshake.
	var got model.DecryptedMessage
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
waiting:
	for {
		select {
		case got = <-received:
			break waiting
		case <-deadline:
			t.Fatal("no live message received")
		case err := <-done:
			t.Fatalf("subscription ended early: %v", err)
		case <-tick.C:
			_, err := a.SendMessage(ctx, h.alice, h.bob, "live hello", false, 0)
			require.NoError(t, err)
		}
	}

	assert.Equal(t, "live hello", got.Text)
	assert.Equal(t, h.alice, got.Sender)
	assert.False(t, got.IsFromMe)
	assert.False(t, got.Undecryptable)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not stop on cancel")
	}
}

func TestFallbackAcrossEndpoints(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	registerAll(t, h.app(), h.alice, h.bob)

	dead := httptest.NewServer(nil)
	dead.Close()

	for name, policy := range map[string]FallbackPolicy{
		"sequential": &Sequential{},
		"fanout":     &FanOut{},
	} {
		t.Run(name, func(t *testing.T) {
			a := NewApp(Config{
				Endpoints: []string{dead.URL, h.node.URL},
				Policy:    policy,
			}, h.wallet)

			_, err := a.SendMessage(ctx, h.alice, h.bob, "via fallback", false, 0)
			require.NoError(t, err)

			conv, err := a.LoadConversation(ctx, h.alice, h.bob)
			require.NoError(t, err)
			assert.False(t, conv.Unavailable)
			require.NotEmpty(t, conv.Messages)
			assert.Equal(t, "via fallback", conv.Messages[len(conv.Messages)-1].Text)
		})
	}
}
