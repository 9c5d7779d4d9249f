// Package ledger implements the on-ledger state machine: the public key
// registry and the message ledger. Every mutating call is validated and
// applied atomically under one lock, so no partial effects are ever
// observable and calls serialize the way contract calls do.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"time"

	"chain_chat/internal/addressing"
	"chain_chat/internal/model"
	"chain_chat/internal/repository/eventlog"
	"chain_chat/internal/repository/message"
	"chain_chat/internal/repository/registry"
	"chain_chat/internal/utils/log"
	apperrors "chain_chat/pkg/errors"

	"go.uber.org/zap"
)

type (
	Config struct {
		// Owner is the privileged identity for fee administration.
		Owner model.Account
		// PermanentMessageFee seeds the fee on first boot; afterwards the
		// persisted value wins.
		PermanentMessageFee uint64
	}

	Ledger struct {
		mu sync.Mutex

		owner    model.Account
		meta     message.Meta
		registry registry.Store
		messages message.Store
		events   eventlog.Log

		now func() time.Time

		subMu   sync.Mutex
		subs    map[uint64]*subscriber
		nextSub uint64
	}

	SendResult struct {
		MessageID      model.Hash `json:"message_id"`
		ConversationID model.Hash `json:"conversation_id"`
		Timestamp      int64      `json:"timestamp"`
		Seq            uint64     `json:"seq"`
	}

	subscriber struct {
		conversation model.Hash
		ch           chan model.MessageEvent
	}
)

func New(ctx context.Context, cfg Config, reg registry.Store, msgs message.Store, events eventlog.Log) (*Ledger, error) {
	meta, err := msgs.LoadMeta(ctx)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		meta = &message.Meta{PermanentMessageFee: cfg.PermanentMessageFee}
		if err := msgs.SaveMeta(ctx, meta); err != nil {
			return nil, err
		}
	}

	return &Ledger{
		owner:    cfg.Owner,
		meta:     *meta,
		registry: reg,
		messages: msgs,
		events:   events,
		now:      time.Now,
		subs:     make(map[uint64]*subscriber),
	}, nil
}

// RegisterPublicKey always succeeds and overwrites unconditionally, which is
// how keys rotate. No revocation event is emitted: past correspondents get no
// on-chain signal that the key changed (known protocol gap).
func (l *Ledger) RegisterPublicKey(ctx context.Context, account model.Account, key model.PublicKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.registry.Put(ctx, account, key)
}

func (l *Ledger) GetPublicKey(ctx context.Context, account model.Account) (model.PublicKey, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.registry.Get(ctx, account)
}

func (l *Ledger) IsRegistered(ctx context.Context, account model.Account) (bool, error) {
	key, err := l.GetPublicKey(ctx, account)
	if err != nil {
		return false, err
	}
	return !key.IsZero(), nil
}

// SendMessage validates, then applies all effects of one send: counter
// increment, conversation event, and for permanent messages the durable
// record, both permanent indexes and the stored event. Validation failures
// leave every piece of state untouched, including the counter.
func (l *Ledger) SendMessage(ctx context.Context, sender, recipient model.Account, encryptedContent string, makePermanent bool, feePaid uint64) (*SendResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	senderKey, err := l.registry.Get(ctx, sender)
	if err != nil {
		return nil, err
	}
	if senderKey.IsZero() {
		return nil, apperrors.ErrSenderNotRegistered
	}

	recipientKey, err := l.registry.Get(ctx, recipient)
	if err != nil {
		return nil, err
	}
	if recipientKey.IsZero() {
		return nil, apperrors.ErrRecipientNotRegistered
	}

	if makePermanent && feePaid < l.meta.PermanentMessageFee {
		return nil, apperrors.ErrInsufficientFee
	}

	// Counter and fee updates of one send stand or fall together with its
	// storage writes: any failure past this point restores the snapshot so
	// a failed send never skips the counter or collects its fee.
	snapshot := l.meta
	l.meta.Counter++
	l.meta.CollectedFees += feePaid
	timestamp := l.now().Unix()
	id := computeMessageID(sender, recipient, encryptedContent, timestamp, l.meta.Counter)
	conversation := addressing.ConversationID(sender, recipient)

	if err := l.messages.SaveMeta(ctx, &l.meta); err != nil {
		l.meta = snapshot
		return nil, err
	}
	rollback := func() {
		l.meta = snapshot
		if err := l.messages.SaveMeta(ctx, &l.meta); err != nil {
			log.Error("meta rollback failed", zap.Error(err))
		}
	}

	// Sequence numbers come from the event log and are not rolled back;
	// gaps in seq are acceptable, gaps in the counter are not.
	seq, err := l.events.NextSeq(ctx)
	if err != nil {
		rollback()
		return nil, err
	}

	ev := model.MessageEvent{
		Seq:              seq,
		MessageID:        id,
		ConversationID:   conversation,
		Sender:           sender,
		Recipient:        recipient,
		EncryptedContent: encryptedContent,
		Timestamp:        timestamp,
		IsPermanent:      makePermanent,
	}
	if err := l.events.Append(ctx, &ev); err != nil {
		rollback()
		return nil, err
	}

	if makePermanent {
		msg := &model.Message{
			Sender:           sender,
			Recipient:        recipient,
			EncryptedContent: encryptedContent,
			Timestamp:        timestamp,
			IsPermanent:      true,
		}
		if err := l.messages.Put(ctx, id, msg); err != nil {
			rollback()
			return nil, err
		}
		if err := l.messages.AppendIndex(ctx, sender, id); err != nil {
			rollback()
			return nil, err
		}
		if err := l.messages.AppendIndex(ctx, recipient, id); err != nil {
			rollback()
			return nil, err
		}

		storedSeq, err := l.events.NextSeq(ctx)
		if err != nil {
			rollback()
			return nil, err
		}
		stored := model.StoredEvent{
			Seq:       storedSeq,
			MessageID: id,
			Sender:    sender,
			Recipient: recipient,
			Timestamp: timestamp,
		}
		if err := l.events.AppendStored(ctx, &stored); err != nil {
			rollback()
			return nil, err
		}
	}

	l.notify(ev)
	log.Debug("message accepted",
		zap.String("conversation", conversation.Hex()),
		zap.Uint64("seq", seq),
		zap.Bool("permanent", makePermanent))

	return &SendResult{
		MessageID:      id,
		ConversationID: conversation,
		Timestamp:      timestamp,
		Seq:            seq,
	}, nil
}

// GetMessage serves permanent records. The data sits in globally readable
// ledger state; access is gated here, at the call level, to the two parties
// of the message.
func (l *Ledger) GetMessage(ctx context.Context, caller model.Account, id model.Hash) (*model.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg, err := l.messages.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, apperrors.ErrMessageNotFound
	}
	if caller != msg.Sender && caller != msg.Recipient {
		return nil, apperrors.ErrUnauthorizedAccess
	}
	return msg, nil
}

func (l *Ledger) GetUserPermanentMessages(ctx context.Context, account model.Account) ([]model.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.messages.Index(ctx, account)
}

func (l *Ledger) Events(ctx context.Context, conversation model.Hash, from, limit int64) ([]model.MessageEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events.Range(ctx, conversation, from, limit)
}

func (l *Ledger) StoredEvents(ctx context.Context, from, limit int64) ([]model.StoredEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events.StoredEvents(ctx, from, limit)
}

func (l *Ledger) PermanentMessageFee() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.meta.PermanentMessageFee
}

func (l *Ledger) SetPermanentMessageFee(ctx context.Context, caller model.Account, fee uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return apperrors.ErrUnauthorized
	}
	old := l.meta.PermanentMessageFee
	l.meta.PermanentMessageFee = fee
	if err := l.messages.SaveMeta(ctx, &l.meta); err != nil {
		l.meta.PermanentMessageFee = old
		return err
	}
	log.Info("permanent message fee updated", zap.Uint64("fee", fee))
	return nil
}

// WithdrawFees zeroes the collected balance and returns the amount withdrawn.
func (l *Ledger) WithdrawFees(ctx context.Context, caller model.Account) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return 0, apperrors.ErrUnauthorized
	}
	amount := l.meta.CollectedFees
	l.meta.CollectedFees = 0
	if err := l.messages.SaveMeta(ctx, &l.meta); err != nil {
		l.meta.CollectedFees = amount
		return 0, err
	}
	return amount, nil
}

// Subscribe streams new events for one conversation. The returned cancel
// function must be called; slow subscribers drop events rather than block
// the ledger.
func (l *Ledger) Subscribe(conversation model.Hash) (<-chan model.MessageEvent, func()) {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	l.nextSub++
	id := l.nextSub
	sub := &subscriber{
		conversation: conversation,
		ch:           make(chan model.MessageEvent, 64),
	}
	l.subs[id] = sub

	cancel := func() {
		l.subMu.Lock()
		defer l.subMu.Unlock()
		if s, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, cancel
}

func (l *Ledger) notify(ev model.MessageEvent) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for _, sub := range l.subs {
		if sub.conversation != ev.ConversationID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// computeMessageID hashes the message fields together with the monotonic
// counter, so two identical sends in the same second still get distinct ids.
func computeMessageID(sender, recipient model.Account, encryptedContent string, timestamp int64, counter uint64) model.Hash {
	h := sha256.New()
	h.Write(sender[:])
	h.Write(recipient[:])
	h.Write([]byte(encryptedContent))

	var nums [16]byte
	binary.BigEndian.PutUint64(nums[:8], uint64(timestamp))
	binary.BigEndian.PutUint64(nums[8:], counter)
	h.Write(nums[:])

	var id model.Hash
	copy(id[:], h.Sum(nil))
	return id
}
