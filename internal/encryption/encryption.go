// Package encryption implements identity-based envelope encryption for document
// blobs. Each identity is an allowlist object id plus a random suffix; the key for
// an identity is derived from the server master key and decryption is only
// performed for requesters the on-chain allowlist admits.
package encryption

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"suidoc/internal/wallet"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	magic        = "SDOC"
	version byte = 1

	keySize    = 32
	nonceSize  = 24
	policySize = 32
	// IdentitySuffixLen is the number of random bytes appended to the policy id.
	IdentitySuffixLen = 5
)

var (
	ErrAccessDenied = errors.New("requester is not on the document allowlist")
	ErrMalformed    = errors.New("malformed encrypted object")
	ErrDecrypt      = errors.New("decryption failed")
	ErrInvalidKey   = errors.New("master key must be 32 bytes, base64 encoded")
)

// AccessPolicy decides whether address may decrypt data under policyID.
type AccessPolicy interface {
	IsAllowed(ctx context.Context, policyID, address string) (bool, error)
}

// Cipher encrypts and decrypts document blobs.
type Cipher interface {
	Encrypt(ctx context.Context, packageID, id string, data []byte) ([]byte, error)
	Decrypt(ctx context.Context, requester string, object []byte) ([]byte, error)
}

// Client is the default Cipher.
type Client struct {
	master    []byte
	policy    AccessPolicy
	threshold byte
}

// NewClient builds a Client from a base64 master key.
func NewClient(masterKey string, policy AccessPolicy, threshold int) (*Client, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(masterKey))
	if err != nil || len(key) != keySize {
		return nil, ErrInvalidKey
	}
	if threshold < 1 || threshold > 255 {
		threshold = 1
	}
	return &Client{master: key, policy: policy, threshold: byte(threshold)}, nil
}

// NewIdentity returns hex(policy id bytes || 5 random bytes).
func NewIdentity(policyID string) (string, error) {
	policy, err := objectBytes(policyID)
	if err != nil {
		return "", err
	}
	suffix := make([]byte, IdentitySuffixLen)
	if _, err := io.ReadFull(rand.Reader, suffix); err != nil {
		return "", fmt.Errorf("identity nonce: %w", err)
	}
	return hex.EncodeToString(append(policy, suffix...)), nil
}

func objectBytes(id string) ([]byte, error) {
	n, err := wallet.NormalizeAddress(id)
	if err != nil {
		return nil, fmt.Errorf("object id %q: %w", id, err)
	}
	return hex.DecodeString(n[2:])
}

func (c *Client) deriveKey(pkg, id []byte) (*[keySize]byte, error) {
	var key [keySize]byte
	r := hkdf.New(sha256.New, c.master, pkg, id)
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &key, nil
}

// Encrypt seals data for identity id under packageID.
func (c *Client) Encrypt(ctx context.Context, packageID, id string, data []byte) ([]byte, error) {
	pkg, err := objectBytes(packageID)
	if err != nil {
		return nil, err
	}
	idBytes, err := hex.DecodeString(id)
	if err != nil || len(idBytes) < policySize || len(idBytes) > 255 {
		return nil, fmt.Errorf("%w: identity", ErrMalformed)
	}
	key, err := c.deriveKey(pkg, idBytes)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(magic)+2+policySize+1+len(idBytes)+nonceSize+len(data)+secretbox.Overhead)
	out = append(out, magic...)
	out = append(out, version, c.threshold)
	out = append(out, pkg...)
	out = append(out, byte(len(idBytes)))
	out = append(out, idBytes...)
	return secretbox.Seal(append(out, nonce[:]...), data, &nonce, key), nil
}

// Decrypt opens object for requester after checking the allowlist.
func (c *Client) Decrypt(ctx context.Context, requester string, object []byte) ([]byte, error) {
	obj, err := Parse(object)
	if err != nil {
		return nil, err
	}

	allowed, err := c.policy.IsAllowed(ctx, obj.PolicyID(), requester)
	if err != nil {
		return nil, fmt.Errorf("check access policy: %w", err)
	}
	if !allowed {
		return nil, ErrAccessDenied
	}

	key, err := c.deriveKey(obj.pkg, obj.id)
	if err != nil {
		return nil, err
	}
	plain, ok := secretbox.Open(nil, obj.box, &obj.nonce, key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}

// EncryptedObject is a parsed ciphertext frame.
type EncryptedObject struct {
	Version   byte
	Threshold byte
	pkg       []byte
	id        []byte
	nonce     [nonceSize]byte
	box       []byte
}

// Parse decodes magic | version | threshold | package | len(id) | id | nonce | box.
func Parse(b []byte) (*EncryptedObject, error) {
	if len(b) < len(magic)+2+policySize+1 || string(b[:len(magic)]) != magic {
		return nil, ErrMalformed
	}
	b = b[len(magic):]
	obj := &EncryptedObject{Version: b[0], Threshold: b[1]}
	if obj.Version != version {
		return nil, fmt.Errorf("%w: version %d", ErrMalformed, obj.Version)
	}
	b = b[2:]
	obj.pkg, b = b[:policySize], b[policySize:]

	idLen := int(b[0])
	b = b[1:]
	if idLen < policySize || len(b) < idLen+nonceSize+secretbox.Overhead {
		return nil, ErrMalformed
	}
	obj.id, b = b[:idLen], b[idLen:]
	copy(obj.nonce[:], b[:nonceSize])
	obj.box = b[nonceSize:]
	return obj, nil
}

func (o *EncryptedObject) PackageID() string { return "0x" + hex.EncodeToString(o.pkg) }
func (o *EncryptedObject) ID() string        { return hex.EncodeToString(o.id) }

// PolicyID is the allowlist object id embedded in the identity.
func (o *EncryptedObject) PolicyID() string {
	return "0x" + hex.EncodeToString(o.id[:policySize])
}
