// Package wallet implements Sui ed25519 keys, addresses and the intent-signing
// scheme used by Sui wallets for transactions and personal messages.
package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// FlagEd25519 is the Sui signature scheme flag for ed25519.
const FlagEd25519 byte = 0x00

const serializedSignatureLen = 1 + ed25519.SignatureSize + ed25519.PublicKeySize

var (
	ErrInvalidKey        = errors.New("invalid private key")
	ErrInvalidAddress    = errors.New("invalid sui address")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrUnsupportedScheme = errors.New("unsupported signature scheme")
	ErrAddressMismatch   = errors.New("signature was not produced by the given address")
)

// Keypair is an ed25519 Sui account key.
type Keypair struct {
	priv ed25519.PrivateKey
}

// NewKeypair generates a random keypair.
func NewKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Keypair{priv: priv}, nil
}

// KeypairFromSeed builds a keypair from a 32-byte ed25519 seed.
func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidKey
	}
	return &Keypair{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// ParseKeystoreEntry decodes a sui.keystore entry: base64(flag || seed).
func ParseKeystoreEntry(entry string) (*Keypair, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(entry))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(raw) != 1+ed25519.SeedSize {
		return nil, ErrInvalidKey
	}
	if raw[0] != FlagEd25519 {
		return nil, ErrUnsupportedScheme
	}
	return KeypairFromSeed(raw[1:])
}

// Export encodes the keypair as a sui.keystore entry.
func (k *Keypair) Export() string {
	return base64.StdEncoding.EncodeToString(append([]byte{FlagEd25519}, k.priv.Seed()...))
}

// PublicKey returns the ed25519 public key.
func (k *Keypair) PublicKey() ed25519.PublicKey {
	return k.priv.Public().(ed25519.PublicKey)
}

// Address returns the Sui address of the keypair.
func (k *Keypair) Address() string {
	return AddressFromPublicKey(k.PublicKey())
}

// SignTransaction signs BCS transaction bytes and returns the serialized signature.
func (k *Keypair) SignTransaction(txBytes []byte) string {
	return k.sign(IntentTransactionData, txBytes)
}

// SignPersonalMessage signs an arbitrary message the way wallets do for signPersonalMessage.
func (k *Keypair) SignPersonalMessage(msg []byte) string {
	return k.sign(IntentPersonalMessage, bcsBytes(msg))
}

func (k *Keypair) sign(scope IntentScope, payload []byte) string {
	digest := intentDigest(scope, payload)
	sig := ed25519.Sign(k.priv, digest[:])

	out := make([]byte, 0, serializedSignatureLen)
	out = append(out, FlagEd25519)
	out = append(out, sig...)
	out = append(out, k.PublicKey()...)
	return base64.StdEncoding.EncodeToString(out)
}

// AddressFromPublicKey derives 0x-prefixed blake2b-256(flag || pubkey).
func AddressFromPublicKey(pub ed25519.PublicKey) string {
	h := blake2b.Sum256(append([]byte{FlagEd25519}, pub...))
	return "0x" + hex.EncodeToString(h[:])
}

// NormalizeAddress lowercases and left-pads an address to 32 bytes.
func NormalizeAddress(addr string) (string, error) {
	a := strings.ToLower(strings.TrimSpace(addr))
	if !strings.HasPrefix(a, "0x") {
		return "", fmt.Errorf("%w: must start with 0x", ErrInvalidAddress)
	}
	h := a[2:]
	if h == "" || len(h) > 64 {
		return "", fmt.Errorf("%w: bad length", ErrInvalidAddress)
	}
	h = strings.Repeat("0", 64-len(h)) + h
	if _, err := hex.DecodeString(h); err != nil {
		return "", fmt.Errorf("%w: not hex", ErrInvalidAddress)
	}
	return "0x" + h, nil
}
