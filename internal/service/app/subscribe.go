package app

import (
	"context"
	"net/url"
	"strings"

	"chain_chat/internal/addressing"
	"chain_chat/internal/model"
	"chain_chat/internal/utils/log"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Subscribe streams new messages for a conversation as they land on the
// ledger, decrypted the same way LoadConversation decrypts history. Blocks
// until ctx is cancelled or the connection drops.
func (a *App) Subscribe(ctx context.Context, self, other model.Account, handler func(model.DecryptedMessage)) error {
	conversation := addressing.ConversationID(self, other)

	conn, err := a.dialSubscribe(ctx, conversation)
	if err != nil {
		return err
	}
	defer conn.Close()

	convKey, keyErr := a.conversationKey(ctx, self, other)
	if keyErr != nil {
		log.Warn("conversation key unavailable, live messages will be placeholders", zap.Error(keyErr))
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var ev model.MessageEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Debug("subscription closed", zap.Error(err))
			return err
		}

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
		handler(dm)
	}
}

func (a *App) dialSubscribe(ctx context.Context, conversation model.Hash) (*websocket.Conn, error) {
	var lastErr error
	for _, endpoint := range a.endpoints {
		u, err := url.Parse(endpoint)
		if err != nil {
			lastErr = err
			continue
		}
		u.Scheme = wsScheme(u.Scheme)
		u.Path = "/subscribe"
		u.RawQuery = url.Values{
			"conversation": []string{conversation.Hex()},
		}.Encode()

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
		if err != nil {
			lastErr = err
			continue
		}
		return conn, nil
	}
	return nil, lastErr
}

func wsScheme(httpScheme string) string {
	if strings.EqualFold(httpScheme, "https") {
		return "wss"
	}
	return "ws"
}
