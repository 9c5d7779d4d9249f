package model

import (
	"encoding/json"
	"fmt"

	apperrors "chain_chat/pkg/errors"
)

type PayloadScheme int

const (
	// SchemeUnknown is a payload that matched neither variant.
	SchemeUnknown PayloadScheme = iota
	// SchemeGCM is the current wire format: {"iv":[...],"data":[...]}.
	SchemeGCM
	// SchemeLegacy is the historical dual-ciphertext format with
	// independent per-party ciphertexts: {"recipient":[...],"sender":[...]}.
	// Decoded for backward compatibility, never written.
	SchemeLegacy
)

type (
	// EncryptedPayload is the wire/storage representation of ciphertext.
	// Exactly one variant is populated; Scheme reports which.
	EncryptedPayload struct {
		// Current scheme.
		IV   []byte
		Data []byte

		// Legacy scheme, decode only.
		LegacyRecipient []byte
		LegacySender    []byte
	}

	// byteSeq marshals as a JSON array of byte values rather than the
	// default base64 string, matching the wire format.
	byteSeq []byte

	payloadWire struct {
		IV        *byteSeq `json:"iv,omitempty"`
		Data      *byteSeq `json:"data,omitempty"`
		Recipient *byteSeq `json:"recipient,omitempty"`
		Sender    *byteSeq `json:"sender,omitempty"`
	}
)

func (b byteSeq) MarshalJSON() ([]byte, error) {
	vals := make([]uint16, len(b))
	for i, v := range b {
		vals[i] = uint16(v)
	}
	return json.Marshal(vals)
}

func (b *byteSeq) UnmarshalJSON(data []byte) error {
	var vals []int
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	out := make([]byte, len(vals))
	for i, v := range vals {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte value out of range: %d", v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

func (p *EncryptedPayload) Scheme() PayloadScheme {
	switch {
	case p.IV != nil && p.Data != nil:
		return SchemeGCM
	case p.LegacyRecipient != nil || p.LegacySender != nil:
		return SchemeLegacy
	default:
		return SchemeUnknown
	}
}

// MarshalJSON writes the current scheme only; legacy payloads exist solely on
// the decode path.
func (p *EncryptedPayload) MarshalJSON() ([]byte, error) {
	if p.Scheme() != SchemeGCM {
		return nil, apperrors.ErrInvalidPayload
	}
	iv := byteSeq(p.IV)
	data := byteSeq(p.Data)
	return json.Marshal(&payloadWire{IV: &iv, Data: &data})
}

func (p *EncryptedPayload) UnmarshalJSON(data []byte) error {
	var w payloadWire
	if err := json.Unmarshal(data, &w); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidPayload, "invalid encrypted payload", err)
	}

	*p = EncryptedPayload{}
	switch {
	case w.IV != nil && w.Data != nil:
		p.IV = *w.IV
		p.Data = *w.Data
	case w.Recipient != nil || w.Sender != nil:
		if w.Recipient != nil {
			p.LegacyRecipient = *w.Recipient
		}
		if w.Sender != nil {
			p.LegacySender = *w.Sender
		}
	default:
		return apperrors.ErrInvalidPayload
	}
	return nil
}

// ParsePayload decodes the serialized form carried in
// Message.EncryptedContent.
func ParsePayload(s string) (*EncryptedPayload, error) {
	var p EncryptedPayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Serialize is the inverse of ParsePayload.
func (p *EncryptedPayload) Serialize() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
