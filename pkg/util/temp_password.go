package util

import (
	"crypto/rand"
	"math/big"
)

const (
	tempPasswordLength = 10

	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	digitChars   = "0123456789"
	specialChars = "!@#$%^&*()_+="
)

// GenerateTempPassword builds a temporary password for auto-provisioned store
// owner accounts: at least one character from each class, padded to length
// from the full set, then shuffled so the class characters are not positional.
func GenerateTempPassword() (string, error) {
	all := upperChars + lowerChars + digitChars + specialChars

	chars := make([]byte, 0, tempPasswordLength)
	for _, set := range []string{upperChars, lowerChars, digitChars, specialChars} {
		c, err := pickChar(set)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for len(chars) < tempPasswordLength {
		c, err := pickChar(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Fisher-Yates shuffle
	for i := len(chars) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		j := int(n.Int64())
		chars[i], chars[j] = chars[j], chars[i]
	}

	return string(chars), nil
}

func pickChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}
