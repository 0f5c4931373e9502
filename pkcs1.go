package bleichenbacher

import (
	"fmt"
	"io"
	"math/big"
)

// minPaddingLen is the minimum number of nonzero padding bytes in an encryption block
const minPaddingLen = 8

// PadPKCS1v15 returns the k-byte encryption block EM = 0x00 || 0x02 || PS || 0x00 || msg,
// where PS is at least 8 random nonzero bytes
func PadPKCS1v15(random io.Reader, msg []byte, k int) ([]byte, error) {
	if len(msg) > k-3-minPaddingLen {
		return nil, ErrMessageTooLong
	}

	em := make([]byte, k)
	em[1] = 2
	ps, mm := em[2:k-len(msg)-1], em[k-len(msg):]
	if err := nonZeroRandomBytes(random, ps); err != nil {
		return nil, fmt.Errorf("failed to generate padding: %s", err)
	}
	copy(mm, msg)

	return em, nil
}

// UnpadPKCS1v15 returns the message carried by a k-byte encryption block
func UnpadPKCS1v15(em []byte) ([]byte, error) {
	if len(em) < 3+minPaddingLen || em[0] != 0x00 || em[1] != 0x02 {
		return nil, ErrInvalidPadding
	}

	for i := 2; i < len(em); i++ {
		if em[i] != 0x00 {
			continue
		}
		if i-2 < minPaddingLen {
			return nil, ErrInvalidPadding
		}
		return em[i+1:], nil
	}
	return nil, ErrInvalidPadding
}

// EncryptPKCS1v15 pads msg to the size of pub and encrypts it
func EncryptPKCS1v15(random io.Reader, pub *PublicKey, msg []byte) (*big.Int, error) {
	em, err := PadPKCS1v15(random, msg, pub.Size())
	if err != nil {
		return nil, err
	}
	return Encrypt(pub, new(big.Int).SetBytes(em))
}

// ExtractMessage returns the message carried by a padded plaintext integer, where k is the modulus size in bytes.
// Only the 00 02 prefix and the separator are required, so any conformant value recovered by the attack can be read
func ExtractMessage(padded *big.Int, k int) ([]byte, error) {
	if padded.Sign() < 0 || byteLen(padded) > k {
		return nil, ErrInvalidPadding
	}
	em := padded.FillBytes(make([]byte, k))
	if !hasPrefix(em) {
		return nil, ErrInvalidPadding
	}

	for i := 2; i < len(em); i++ {
		if em[i] == 0x00 {
			return em[i+1:], nil
		}
	}
	return nil, ErrInvalidPadding
}

// hasPrefix reports whether em starts 00 02
func hasPrefix(em []byte) bool {
	return len(em) >= 2 && em[0] == 0x00 && em[1] == 0x02
}

// isConformant reports whether em is a complete encryption block: 00 02, at least 8 nonzero bytes, then a 00
func isConformant(em []byte) bool {
	_, err := UnpadPKCS1v15(em)
	return err == nil
}

// nonZeroRandomBytes fills s with random nonzero bytes
func nonZeroRandomBytes(random io.Reader, s []byte) error {
	if _, err := io.ReadFull(random, s); err != nil {
		return err
	}

	for i := range s {
		for s[i] == 0 {
			if _, err := io.ReadFull(random, s[i:i+1]); err != nil {
				return err
			}
		}
	}
	return nil
}
