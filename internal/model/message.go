package model

type (
	// Message is the on-ledger message record. EncryptedContent is the
	// serialized EncryptedPayload; the ledger never sees plaintext.
	Message struct {
		Sender           Account `json:"sender" bson:"sender"`
		Recipient        Account `json:"recipient" bson:"recipient"`
		EncryptedContent string  `json:"encrypted_content" bson:"encrypted_content"`
		Timestamp        int64   `json:"timestamp" bson:"timestamp"`
		IsPermanent      bool    `json:"is_permanent" bson:"is_permanent"`
	}

	// DecryptedMessage is a transcript entry produced by the client after
	// decryption. Undecryptable entries keep their placeholder text so a
	// single corrupt message never hides the rest of the conversation.
	DecryptedMessage struct {
		ID            Hash    `json:"id"`
		Sender        Account `json:"sender"`
		Recipient     Account `json:"recipient"`
		Text          string  `json:"text"`
		Timestamp     int64   `json:"timestamp"`
		IsPermanent   bool    `json:"is_permanent"`
		IsFromMe      bool    `json:"is_from_me"`
		Undecryptable bool    `json:"undecryptable,omitempty"`
	}
)
