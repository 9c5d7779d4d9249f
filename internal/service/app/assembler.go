package app

import (
	"context"
	"sort"

	"chain_chat/internal/addressing"
	"chain_chat/internal/cryptographic/encryption"
	"chain_chat/internal/model"
	"chain_chat/internal/utils/log"

	"go.uber.org/zap"
)

// UndecryptablePlaceholder is rendered in place of a message that could not
// be decrypted. Explicit placeholder, never silent omission.
const UndecryptablePlaceholder = "[undecryptable message]"

type (
	// Conversation is an assembled transcript. Unavailable is set when
	// every read endpoint failed; the transcript is then empty rather than
	// the load erroring out, and the caller can offer a retry.
	Conversation struct {
		ConversationID model.Hash
		Messages       []model.DecryptedMessage
		Unavailable    bool
	}
)

// LoadConversation replays the conversation's event log and decrypts each
// entry. A message that fails to decrypt becomes a placeholder; it never
// aborts its siblings.
func (a *App) LoadConversation(ctx context.Context, self, other model.Account) (*Conversation, error) {
	conversation := addressing.ConversationID(self, other)

	var (
		events []model.MessageEvent
		ok     bool
	)
	err := a.fanRead(ctx, func(ctx context.Context, endpoint string) (func(), error) {
		got, err := a.getEvents(ctx, endpoint, conversation, a.startOffset)
		if err != nil {
			return nil, err
		}
		return func() { events, ok = got, true }, nil
	})
	if err != nil && !ok {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("conversation load degraded, no endpoint reachable",
			zap.String("conversation", conversation.Hex()), zap.Error(err))
		return &Conversation{ConversationID: conversation, Unavailable: true}, nil
	}

	// One interactive derivation per session; the cache keeps reloads and
	// concurrent loads from prompting again.
	convKey, keyErr := a.conversationKey(ctx, self, other)
	if keyErr != nil {
		log.Warn("conversation key unavailable, transcript will be placeholders",
			zap.String("conversation", conversation.Hex()), zap.Error(keyErr))
	}

	messages := make([]model.DecryptedMessage, 0, len(events))
	for _, ev := range events {
		dm := model.DecryptedMessage{
			ID:          ev.MessageID,
			Sender:      ev.Sender,
			Recipient:   ev.Recipient,
			Timestamp:   ev.Timestamp,
			IsPermanent: ev.IsPermanent,
			IsFromMe:    ev.Sender == self,
		}
		if keyErr != nil {
			dm.Text = UndecryptablePlaceholder
			dm.Undecryptable = true
		} else {
			dm.Text, dm.Undecryptable = decryptContent(ev.EncryptedContent, convKey)
		}
		messages = append(messages, dm)
	}

	// The log is normally already ordered, but interleaved fallback reads
	// make ordering worth re-establishing.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})

	return &Conversation{
		ConversationID: conversation,
		Messages:       messages,
	}, nil
}

func decryptContent(encryptedContent string, key []byte) (text string, undecryptable bool) {
	payload, err := model.ParsePayload(encryptedContent)
	if err != nil {
		return UndecryptablePlaceholder, true
	}
	plain, err := encryption.Decrypt(payload, key)
	if err != nil {
		return UndecryptablePlaceholder, true
	}
	return plain, false
}

func encrypt(plaintext string, key []byte) (*model.EncryptedPayload, error) {
	return encryption.Encrypt(plaintext, key)
}
