package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// AlgoBcrypt is the default credential hashing algorithm.
	AlgoBcrypt = "bcrypt"
	// AlgoSHA256 is the fast secondary algorithm. Not used for new hashes by
	// default; kept for compatibility with records migrated from it.
	AlgoSHA256 = "sha256"
)

// ErrUnsupportedAlgo indicates the stored algorithm tag has no implementation.
var ErrUnsupportedAlgo = errors.New("security: unsupported hash algorithm")

// Hasher salts and hashes credentials with a fixed service-wide salt prefix.
//
// The prefix is prepended before hashing; bcrypt additionally applies its own
// per-hash salt, so bcrypt output is double-salted. Stored hashes are only
// portable across deployments sharing the same salt prefix.
type Hasher struct {
	saltPrefix string
	cost       int
}

// NewHasher builds a Hasher from the configured salt prefix and bcrypt cost.
func NewHasher(saltPrefix string, cost int) (*Hasher, error) {
	if saltPrefix == "" {
		return nil, fmt.Errorf("security: salt prefix is required")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("security: bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	// bcrypt rejects inputs over 72 bytes; the password length cap plus a
	// short salt prefix must stay under that.
	if len(saltPrefix) > 8 {
		return nil, fmt.Errorf("security: salt prefix longer than 8 bytes")
	}
	return &Hasher{saltPrefix: saltPrefix, cost: cost}, nil
}

// Hash computes the salted hash of password using the requested algorithm.
func (h *Hasher) Hash(password, algo string) (string, error) {
	salted := h.saltPrefix + password

	switch algo {
	case AlgoBcrypt:
		sum, err := bcrypt.GenerateFromPassword([]byte(salted), h.cost)
		if err != nil {
			return "", fmt.Errorf("bcrypt hash: %w", err)
		}
		return string(sum), nil
	case AlgoSHA256:
		sum := sha256.Sum256([]byte(salted))
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgo, algo)
	}
}

// Verify reports whether password matches the stored hash. A mismatch is a
// false return, never an error; only an unknown algorithm tag errors.
func (h *Hasher) Verify(password, stored, algo string) (bool, error) {
	salted := h.saltPrefix + password

	switch algo {
	case AlgoBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(salted))
		if err != nil {
			return false, nil
		}
		return true, nil
	case AlgoSHA256:
		sum := sha256.Sum256([]byte(salted))
		computed := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnsupportedAlgo, algo)
	}
}
