// Package cryptox masks short string fields with deterministic symmetric
// encryption.
//
// Two modes are available. ModeECB encrypts space-padded plaintext block by
// block with AES-256 and no IV: identical plaintexts always produce identical
// ciphertexts, which keeps masked values linkable but also exposes equality
// patterns to anyone holding the table. ModeSIV (AES-SIV) keeps the same
// determinism but authenticates the ciphertext.
//
// Keys are derived once from a passphrase with PBKDF2-HMAC-SHA256 over a fixed
// salt, so the same passphrase yields the same masks across runs.
package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/loginetl/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySalt is fixed: changing it changes every mask ever produced.
	KeySalt       = "1234567890123456"
	KeyIterations = 100000

	// BlockWidth is the padding unit; plaintexts are space-padded to a
	// non-zero multiple of it.
	BlockWidth = 16

	// MaxCiphertextLen bounds the encoded ciphertext. Longer output is cut.
	MaxCiphertextLen = 256
)

// Mode names a masking algorithm.
type Mode string

const (
	ModeECB Mode = "ecb"
	ModeSIV Mode = "siv"
)

// Cipher encrypts and decrypts string fields. Implementations are safe for
// concurrent use and hold their key for the life of the process.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Key is derived key material. Its String method never reveals the bytes.
type Key struct {
	b []byte
}

func (k Key) String() string { return "cryptox.Key(redacted)" }

// Len returns the key size in bytes.
func (k Key) Len() int { return len(k.b) }

// DeriveKey derives a size-byte key from passphrase.
func DeriveKey(passphrase string, size int) (Key, error) {
	if size <= 0 {
		return Key{}, fmt.Errorf("%w: key size %d", common.ErrKeyDerivation, size)
	}
	pw := []byte(passphrase)
	defer wipe(pw)

	return Key{b: deriveKey(pw, []byte(KeySalt), KeyIterations, size)}, nil
}

// wipe zeroes b so the passphrase copy does not outlive derivation.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func deriveKey(password, salt []byte, iterations, size int) []byte {
	return pbkdf2.Key(password, salt, iterations, size, sha256.New)
}

// New derives a key of the size mode requires and returns the matching Cipher.
func New(mode Mode, passphrase string) (Cipher, error) {
	switch mode {
	case ModeECB, "":
		key, err := DeriveKey(passphrase, ecbKeySize)
		if err != nil {
			return nil, err
		}
		return NewECBCipher(key)
	case ModeSIV:
		key, err := DeriveKey(passphrase, sivKeySize)
		if err != nil {
			return nil, err
		}
		return NewSIVCipher(key)
	default:
		return nil, fmt.Errorf("%w: unknown cipher mode %q", common.ErrKeyDerivation, mode)
	}
}

// pad right-pads s with spaces to a non-zero multiple of BlockWidth.
func pad(s string) []byte {
	n := len(s)
	size := BlockWidth
	if n > BlockWidth {
		size = (n + BlockWidth - 1) / BlockWidth * BlockWidth
	}
	out := make([]byte, size)
	copy(out, s)
	for i := n; i < size; i++ {
		out[i] = ' '
	}
	return out
}

func unpad(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: plaintext is not utf-8", common.ErrInvalidCiphertext)
	}
	return strings.TrimRightFunc(string(b), unicode.IsSpace), nil
}

func encode(ct []byte) string {
	s := base64.StdEncoding.EncodeToString(ct)
	if len(s) > MaxCiphertextLen {
		s = s[:MaxCiphertextLen]
	}
	return s
}

func decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidCiphertext, err)
	}
	return b, nil
}

func checkPlaintext(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("plaintext is not valid utf-8")
	}
	return nil
}
