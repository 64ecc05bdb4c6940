package credential

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// inputJSON is the file form of CredentialInput. Byte fields are 0x-prefixed hex.
type inputJSON struct {
	Subject        string `json:"subject"`
	CredentialType uint32 `json:"credential_type"`
	CredentialData string `json:"credential_data"`
	Signature      string `json:"signature"`
	IssuerPubKey   string `json:"issuer_pubkey"`
	IssuedAt       uint64 `json:"issued_at"`
	ExpiresAt      uint64 `json:"expires_at"`
	CurrentTime    uint64 `json:"current_time"`
}

type outputJSON struct {
	Subject        string `json:"subject"`
	CredentialType uint32 `json:"credential_type"`
	CredentialHash string `json:"credential_hash"`
	IssuedAt       uint64 `json:"issued_at"`
	ExpiresAt      uint64 `json:"expires_at"`
}

func (in CredentialInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(inputJSON{
		Subject:        in.Subject.String(),
		CredentialType: in.CredentialType,
		CredentialData: encodeHex(in.CredentialData),
		Signature:      encodeHex(in.Signature),
		IssuerPubKey:   encodeHex(in.IssuerPubKey),
		IssuedAt:       in.IssuedAt,
		ExpiresAt:      in.ExpiresAt,
		CurrentTime:    in.CurrentTime,
	})
}

func (in *CredentialInput) UnmarshalJSON(b []byte) error {
	var raw inputJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	subject, err := ParseSubject(raw.Subject)
	if err != nil {
		return err
	}
	data, err := decodeHex("credential_data", raw.CredentialData)
	if err != nil {
		return err
	}
	sig, err := decodeHex("signature", raw.Signature)
	if err != nil {
		return err
	}
	pub, err := decodeHex("issuer_pubkey", raw.IssuerPubKey)
	if err != nil {
		return err
	}
	*in = CredentialInput{
		Subject:        subject,
		CredentialType: raw.CredentialType,
		CredentialData: data,
		Signature:      sig,
		IssuerPubKey:   pub,
		IssuedAt:       raw.IssuedAt,
		ExpiresAt:      raw.ExpiresAt,
		CurrentTime:    raw.CurrentTime,
	}
	return nil
}

func (o PublicOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(outputJSON{
		Subject:        o.Subject.String(),
		CredentialType: o.CredentialType,
		CredentialHash: o.HashHex(),
		IssuedAt:       o.IssuedAt,
		ExpiresAt:      o.ExpiresAt,
	})
}

func encodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func decodeHex(field, s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return b, nil
}
