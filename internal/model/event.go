package model

type (
	// MessageEvent is the conversation-indexed log entry emitted for every
	// accepted send. It is the primary read path for ephemeral and
	// permanent messages alike.
	MessageEvent struct {
		Seq              uint64  `json:"seq"`
		MessageID        Hash    `json:"message_id"`
		ConversationID   Hash    `json:"conversation_id"`
		Sender           Account `json:"sender"`
		Recipient        Account `json:"recipient"`
		EncryptedContent string  `json:"encrypted_content"`
		Timestamp        int64   `json:"timestamp"`
		IsPermanent      bool    `json:"is_permanent"`
	}

	// StoredEvent is the secondary event emitted when a message is
	// additionally written to durable storage.
	StoredEvent struct {
		Seq       uint64  `json:"seq"`
		MessageID Hash    `json:"message_id"`
		Sender    Account `json:"sender"`
		Recipient Account `json:"recipient"`
		Timestamp int64   `json:"timestamp"`
	}
)
