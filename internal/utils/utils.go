package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	// AffiliateIDPrefix starts every affiliate identifier.
	AffiliateIDPrefix = "AFF-"
	// AffiliateIDLength is the total length, prefix included.
	AffiliateIDLength = 12

	affiliateCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenCharset     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RandomString draws n characters from charset using crypto/rand.
func RandomString(charset string, n int) (string, error) {
	result := make([]byte, n)
	max := big.NewInt(int64(len(charset)))
	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}

// NewAffiliateID generates an identifier of the form AFF-XXXXXXXX.
func NewAffiliateID() (string, error) {
	suffix, err := RandomString(affiliateCharset, AffiliateIDLength-len(AffiliateIDPrefix))
	if err != nil {
		return "", err
	}
	return AffiliateIDPrefix + suffix, nil
}

// IsValidAffiliateID reports whether id is AFF- followed by 8 characters of [A-Z0-9].
func IsValidAffiliateID(id string) bool {
	if len(id) != AffiliateIDLength || !strings.HasPrefix(id, AffiliateIDPrefix) {
		return false
	}
	for _, c := range id[len(AffiliateIDPrefix):] {
		if !strings.ContainsRune(affiliateCharset, c) {
			return false
		}
	}
	return true
}

// NewToken returns a random alphanumeric token used for e-mail links.
func NewToken() (string, error) {
	return RandomString(tokenCharset, 40)
}
