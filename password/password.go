// Package password hashes and verifies user credentials.
//
// Digests are self-describing: the salt and work factor live inside the
// digest, so two hashes of the same password never compare equal and a
// digest produced under an older configuration still verifies.
package password

import (
	"errors"
	"strings"
)

const (
	AlgorithmBcrypt = "bcrypt"
	AlgorithmArgon2 = "argon2id"
)

// ErrUnknownAlgorithm reports an unsupported hashing algorithm.
var ErrUnknownAlgorithm = errors.New("unknown password algorithm")

// Hasher hashes passwords and verifies them against stored digests.
//
// Verify reports false for a malformed digest instead of failing.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// Config selects the algorithm and its work factor.
type Config struct {
	// Algorithm is AlgorithmBcrypt or AlgorithmArgon2, lowercase. Empty
	// selects bcrypt.
	Algorithm  string
	BcryptCost int
	Argon2     Argon2Config
}

// Dispatcher hashes with one algorithm and verifies digests of any
// supported algorithm.
type Dispatcher struct {
	primary Hasher
	bcrypt  Hasher
	argon2  Hasher
}

// New builds a Dispatcher from cfg.
func New(cfg Config) (*Dispatcher, error) {
	bcryptHasher, err := NewBcrypt(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	argonCfg := cfg.Argon2
	if argonCfg == (Argon2Config{}) {
		argonCfg = DefaultArgon2Config()
	}
	argonHasher, err := NewArgon2(argonCfg)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{bcrypt: bcryptHasher, argon2: argonHasher}
	switch cfg.Algorithm {
	case "", AlgorithmBcrypt:
		d.primary = bcryptHasher
	case AlgorithmArgon2:
		d.primary = argonHasher
	default:
		return nil, ErrUnknownAlgorithm
	}
	return d, nil
}

// Hash hashes with the configured algorithm.
func (d *Dispatcher) Hash(password string) (string, error) {
	return d.primary.Hash(password)
}

// Verify picks the algorithm from the digest prefix.
func (d *Dispatcher) Verify(password, digest string) bool {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		return d.argon2.Verify(password, digest)
	case strings.HasPrefix(digest, "$2a$"), strings.HasPrefix(digest, "$2b$"), strings.HasPrefix(digest, "$2y$"):
		return d.bcrypt.Verify(password, digest)
	default:
		return false
	}
}
