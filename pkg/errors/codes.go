package errors

type Code string

const (
	CodeUnknown                Code = "UNKNOWN"
	CodeInvalidArgument        Code = "INVALID_ARGUMENT"
	CodeSenderNotRegistered    Code = "SENDER_NOT_REGISTERED"
	CodeRecipientNotRegistered Code = "RECIPIENT_NOT_REGISTERED"
	CodeInsufficientFee        Code = "INSUFFICIENT_FEE"
	CodeMessageNotFound        Code = "MESSAGE_NOT_FOUND"
	CodeUnauthorizedAccess     Code = "UNAUTHORIZED_ACCESS"
	CodeUnauthorized           Code = "UNAUTHORIZED"
	CodeOracleUnavailable      Code = "ORACLE_UNAVAILABLE"
	CodeSigningRejected        Code = "SIGNING_REJECTED"
	CodeDecryptionFailed       Code = "DECRYPTION_FAILED"
	CodeInvalidPayload         Code = "INVALID_PAYLOAD"
	CodeUnavailable            Code = "UNAVAILABLE"
	CodeInternal               Code = "INTERNAL"
)
