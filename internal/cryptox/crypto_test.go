package cryptox

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/loginetl/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_KnownVector(t *testing.T) {
	// RFC 7914 section 11, PBKDF2-HMAC-SHA256.
	got := deriveKey([]byte("passwd"), []byte("salt"), 1, 64)
	want := "55ac046e56e3089fec1691c22544b605f94185216dde0465e68b9d57c20dacbc" +
		"49ca9cccf179b645991664b39d77ef317c71b845b1e30bd509112041d3a19783"
	assert.Equal(t, want, hex.EncodeToString(got))
}

func TestDeriveKey_Deterministic(t *testing.T) {
	k1, err := DeriveKey("secret-password", 32)
	require.NoError(t, err)
	k2, err := DeriveKey("secret-password", 32)
	require.NoError(t, err)
	k3, err := DeriveKey("other-password", 32)
	require.NoError(t, err)

	assert.Equal(t, k1.b, k2.b)
	assert.NotEqual(t, k1.b, k3.b)
	assert.Equal(t, 32, k1.Len())
}

func TestDeriveKey_InvalidSize(t *testing.T) {
	_, err := DeriveKey("x", 0)
	assert.True(t, errors.Is(err, common.ErrKeyDerivation))
}

func TestKey_StringIsRedacted(t *testing.T) {
	k, err := DeriveKey("secret-password", 32)
	require.NoError(t, err)
	assert.NotContains(t, k.String(), hex.EncodeToString(k.b))
	assert.Contains(t, k.String(), "redacted")
}

func TestNew_UnknownMode(t *testing.T) {
	_, err := New(Mode("cbc"), "pw")
	assert.True(t, errors.Is(err, common.ErrKeyDerivation))
}

func TestNewECBCipher_BadKey(t *testing.T) {
	_, err := NewECBCipher(Key{b: []byte("short")})
	assert.True(t, errors.Is(err, common.ErrKeyDerivation))
}

func TestNewSIVCipher_BadKey(t *testing.T) {
	_, err := NewSIVCipher(Key{b: make([]byte, 32)})
	assert.True(t, errors.Is(err, common.ErrKeyDerivation))
}

func ciphers(t *testing.T) map[Mode]Cipher {
	t.Helper()
	out := map[Mode]Cipher{}
	for _, m := range []Mode{ModeECB, ModeSIV} {
		c, err := New(m, "aes-password")
		require.NoError(t, err)
		out[m] = c
	}
	return out
}

func TestCipher_RoundTrip(t *testing.T) {
	inputs := []string{
		"1.2.3.4",
		"d1",
		"exactly16bytes!!",
		"seventeen bytes!!",
		"2001:0db8:85a3:0000:0000:8a2e:0370:7334",
		"52-AD-A7-32-C1-40",
		"ünïcödé",
		"trailing  ",
		"",
	}

	for mode, c := range ciphers(t) {
		for _, in := range inputs {
			t.Run(string(mode)+"/"+in, func(t *testing.T) {
				ct, err := c.Encrypt(in)
				require.NoError(t, err)
				assert.NotEqual(t, in, ct)

				pt, err := c.Decrypt(ct)
				require.NoError(t, err)
				assert.Equal(t, strings.TrimRight(in, " "), pt)
			})
		}
	}
}

func TestCipher_Deterministic(t *testing.T) {
	for mode, c := range ciphers(t) {
		t.Run(string(mode), func(t *testing.T) {
			a, err := c.Encrypt("52-AD-A7-32-C1-40")
			require.NoError(t, err)
			b, err := c.Encrypt("52-AD-A7-32-C1-40")
			require.NoError(t, err)
			other, err := c.Encrypt("52-AD-A7-32-C1-41")
			require.NoError(t, err)

			assert.Equal(t, a, b)
			assert.NotEqual(t, a, other)
		})
	}
}

func TestCipher_SamePassphraseAcrossInstances(t *testing.T) {
	c1, err := New(ModeECB, "pw")
	require.NoError(t, err)
	c2, err := New(ModeECB, "pw")
	require.NoError(t, err)

	a, err := c1.Encrypt("1.2.3.4")
	require.NoError(t, err)
	b, err := c2.Encrypt("1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestECB_BlockAlignedOutput(t *testing.T) {
	c, err := New(ModeECB, "pw")
	require.NoError(t, err)

	short, err := c.Encrypt("ip")
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(short)
	require.NoError(t, err)
	assert.Len(t, raw, BlockWidth)

	long, err := c.Encrypt(strings.Repeat("x", 17))
	require.NoError(t, err)
	raw, err = base64.StdEncoding.DecodeString(long)
	require.NoError(t, err)
	assert.Len(t, raw, 2*BlockWidth)
}

func TestCipher_TruncatesLongOutput(t *testing.T) {
	for mode, c := range ciphers(t) {
		t.Run(string(mode), func(t *testing.T) {
			ct, err := c.Encrypt(strings.Repeat("a", 1000))
			require.NoError(t, err)
			assert.Len(t, ct, MaxCiphertextLen)
		})
	}
}

func TestCipher_RejectsInvalidUTF8(t *testing.T) {
	for mode, c := range ciphers(t) {
		t.Run(string(mode), func(t *testing.T) {
			_, err := c.Encrypt("\xff\xfe")
			assert.Error(t, err)
		})
	}
}

func TestCipher_DecryptErrors(t *testing.T) {
	for mode, c := range ciphers(t) {
		t.Run(string(mode), func(t *testing.T) {
			_, err := c.Decrypt("%%% not base64")
			assert.True(t, errors.Is(err, common.ErrInvalidCiphertext))

			_, err = c.Decrypt(base64.StdEncoding.EncodeToString([]byte("abc")))
			assert.True(t, errors.Is(err, common.ErrInvalidCiphertext))
		})
	}
}

func TestSIV_DetectsTampering(t *testing.T) {
	c, err := New(ModeSIV, "pw")
	require.NoError(t, err)

	ct, err := c.Encrypt("1.2.3.4")
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(ct)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(raw))
	assert.True(t, errors.Is(err, common.ErrInvalidCiphertext))
}

func TestPad(t *testing.T) {
	assert.Len(t, pad(""), 16)
	assert.Len(t, pad("abc"), 16)
	assert.Len(t, pad(strings.Repeat("a", 16)), 16)
	assert.Len(t, pad(strings.Repeat("a", 33)), 48)
	assert.Equal(t, "abc"+strings.Repeat(" ", 13), string(pad("abc")))
}

func TestWipe(t *testing.T) {
	b := []byte("secret")
	wipe(b)
	assert.Equal(t, make([]byte, 6), b)
	wipe(nil)
}
