package errors

var (
	// Ledger validation errors. Rejected atomically, no state change.
	ErrSenderNotRegistered    = New(CodeSenderNotRegistered, "sender has not registered an encryption key")
	ErrRecipientNotRegistered = New(CodeRecipientNotRegistered, "recipient has not registered an encryption key")
	ErrInsufficientFee        = New(CodeInsufficientFee, "fee paid is below the permanent message fee")
	ErrMessageNotFound        = New(CodeMessageNotFound, "no permanent message stored under this id")
	ErrUnauthorizedAccess     = New(CodeUnauthorizedAccess, "caller is neither sender nor recipient of this message")
	ErrUnauthorized           = New(CodeUnauthorized, "caller is not the ledger owner")

	// Client-side cryptographic errors.
	ErrOracleUnavailable = New(CodeOracleUnavailable, "no signing oracle bound to this account")
	ErrSigningRejected   = New(CodeSigningRejected, "signing request was rejected")
	// ErrDecryptionFailed deliberately carries no detail: wrong key and
	// tampered ciphertext must be indistinguishable to callers.
	ErrDecryptionFailed = New(CodeDecryptionFailed, "decryption failed")
	ErrInvalidPayload   = New(CodeInvalidPayload, "invalid encrypted payload")

	// All read endpoints are unreachable; loads degrade to empty results.
	ErrUnavailable = New(CodeUnavailable, "no read endpoint reachable")
)
