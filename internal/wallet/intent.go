package wallet

import (
	"crypto/ed25519"
	"encoding/base64"

	"golang.org/x/crypto/blake2b"
)

// IntentScope is the first byte of a Sui intent message.
type IntentScope byte

const (
	IntentTransactionData IntentScope = 0
	IntentPersonalMessage IntentScope = 3
)

// intentDigest hashes scope || version(0) || app id(0) || payload.
func intentDigest(scope IntentScope, payload []byte) [32]byte {
	msg := make([]byte, 0, 3+len(payload))
	msg = append(msg, byte(scope), 0, 0)
	msg = append(msg, payload...)
	return blake2b.Sum256(msg)
}

// bcsBytes encodes msg as a BCS vector<u8>.
func bcsBytes(msg []byte) []byte {
	out := uleb128(uint64(len(msg)))
	return append(out, msg...)
}

func uleb128(n uint64) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if n == 0 {
			return out
		}
	}
}

// ParsedSignature is a decoded serialized signature.
type ParsedSignature struct {
	Flag      byte
	Signature []byte
	PublicKey ed25519.PublicKey
}

// ParseSignature decodes base64(flag || sig || pubkey).
func ParseSignature(serialized string) (*ParsedSignature, error) {
	raw, err := base64.StdEncoding.DecodeString(serialized)
	if err != nil || len(raw) == 0 {
		return nil, ErrInvalidSignature
	}
	if raw[0] != FlagEd25519 {
		return nil, ErrUnsupportedScheme
	}
	if len(raw) != serializedSignatureLen {
		return nil, ErrInvalidSignature
	}
	return &ParsedSignature{
		Flag:      raw[0],
		Signature: raw[1 : 1+ed25519.SignatureSize],
		PublicKey: ed25519.PublicKey(raw[1+ed25519.SignatureSize:]),
	}, nil
}

// VerifyPersonalMessage checks that serialized is a personal-message signature over msg
// made by the key behind address.
func VerifyPersonalMessage(msg []byte, serialized, address string) error {
	want, err := NormalizeAddress(address)
	if err != nil {
		return err
	}
	sig, err := ParseSignature(serialized)
	if err != nil {
		return err
	}
	if AddressFromPublicKey(sig.PublicKey) != want {
		return ErrAddressMismatch
	}
	digest := intentDigest(IntentPersonalMessage, bcsBytes(msg))
	if !ed25519.Verify(sig.PublicKey, digest[:], sig.Signature) {
		return ErrInvalidSignature
	}
	return nil
}
