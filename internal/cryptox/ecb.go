package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/dmitrijs2005/loginetl/internal/common"
)

const ecbKeySize = 32

// ECBCipher is AES-256 applied independently to each block.
type ECBCipher struct {
	block cipher.Block
}

func NewECBCipher(key Key) (*ECBCipher, error) {
	block, err := aes.NewCipher(key.b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyDerivation, err)
	}
	return &ECBCipher{block: block}, nil
}

func (c *ECBCipher) Encrypt(plaintext string) (string, error) {
	if err := checkPlaintext(plaintext); err != nil {
		return "", err
	}

	src := pad(plaintext)
	dst := make([]byte, len(src))
	for i := 0; i < len(src); i += aes.BlockSize {
		c.block.Encrypt(dst[i:i+aes.BlockSize], src[i:i+aes.BlockSize])
	}

	return encode(dst), nil
}

func (c *ECBCipher) Decrypt(ciphertext string) (string, error) {
	src, err := decode(ciphertext)
	if err != nil {
		return "", err
	}
	if len(src) == 0 || len(src)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: length %d is not a multiple of %d", common.ErrInvalidCiphertext, len(src), aes.BlockSize)
	}

	dst := make([]byte, len(src))
	for i := 0; i < len(src); i += aes.BlockSize {
		c.block.Decrypt(dst[i:i+aes.BlockSize], src[i:i+aes.BlockSize])
	}

	return unpad(dst)
}
