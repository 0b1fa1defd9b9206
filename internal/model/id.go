package model

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Base36 character set (lowercase)
const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

// IDLength is the length of the random part of a generated ID
const IDLength = 4

// InventoryPrefix is the prefix used for generated inventory item IDs.
const InventoryPrefix = "inv-"

// Prefix validation:
// - 2-4 lowercase letters followed by a dash
// - Examples: ab-, inv-, abcd-
var prefixRegex = regexp.MustCompile(`^[a-z]{2,4}-$`)

// Generated ID format: prefix-xxxx
var generatedIDRegex = regexp.MustCompile(`^[a-z]{2,4}-[0-9a-z]{4}$`)

// GenerateID creates a new random ID with the given prefix.
// Format: <prefix><4-char-base36>
// Example: inv-ex4j
func GenerateID(prefix string) (string, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return "", err
	}

	random, err := randomBase36(IDLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}

	// Prefix already includes the dash
	return prefix + random, nil
}

// NewOrderID returns an ID for an order that arrived without one.
func NewOrderID() string {
	return uuid.NewString()
}

// ValidatePrefix checks if a prefix is valid.
func ValidatePrefix(prefix string) error {
	if !prefixRegex.MatchString(prefix) {
		return fmt.Errorf("%w: must be 2-4 lowercase letters followed by dash (e.g., inv-, ab-, abcd-)", ErrInvalidPrefix)
	}
	return nil
}

// IsGeneratedID reports whether id has the shape produced by GenerateID.
func IsGeneratedID(id string) bool {
	return generatedIDRegex.MatchString(id)
}

// ValidateID checks that an ID can be used as a primary key.
// Imported records keep their upstream IDs, so any non-empty token
// without whitespace is accepted.
func ValidateID(id string) error {
	if id == "" || strings.ContainsAny(id, " \t\r\n") {
		return ErrInvalidID
	}
	return nil
}

// randomBase36 generates a random base36 string of the given length.
func randomBase36(length int) (string, error) {
	result := make([]byte, length)
	max := big.NewInt(int64(len(base36Chars)))

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = base36Chars[n.Int64()]
	}

	return string(result), nil
}
