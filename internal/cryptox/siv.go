package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/loginetl/internal/common"
	"github.com/google/tink/go/daead/subtle"
)

const sivKeySize = subtle.AESSIVKeySize

// SIVCipher is deterministic authenticated encryption (RFC 5297).
type SIVCipher struct {
	siv *subtle.AESSIV
}

func NewSIVCipher(key Key) (*SIVCipher, error) {
	siv, err := subtle.NewAESSIV(key.b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyDerivation, err)
	}
	return &SIVCipher{siv: siv}, nil
}

func (c *SIVCipher) Encrypt(plaintext string) (string, error) {
	if err := checkPlaintext(plaintext); err != nil {
		return "", err
	}

	ct, err := c.siv.EncryptDeterministically(pad(plaintext), nil)
	if err != nil {
		return "", err
	}
	return encode(ct), nil
}

func (c *SIVCipher) Decrypt(ciphertext string) (string, error) {
	src, err := decode(ciphertext)
	if err != nil {
		return "", err
	}

	pt, err := c.siv.DecryptDeterministically(src, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidCiphertext, err)
	}
	return unpad(pt)
}
