// Package passwords hashes and verifies local account passwords.
//
// New hashes use argon2id with the configured parameters. Hashes produced
// with other argon2id parameters, and legacy bcrypt hashes, still verify but
// report NeedsRehash so callers can upgrade them after a successful login.
package passwords

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"

	"github.com/gogotex/admin-service/internal/config"
)

// ErrUnknownHash is returned when a stored hash matches no supported scheme.
var ErrUnknownHash = errors.New("unknown password hash format")

const (
	saltLength = 16
	keyLength  = 32
)

// Hasher implements the hashing primitive used by the account store.
type Hasher struct {
	params *argon2id.Params
}

func NewHasher(cfg config.PasswordConfig) *Hasher {
	return &Hasher{params: &argon2id.Params{
		Memory:      cfg.Memory,
		Iterations:  cfg.Iterations,
		Parallelism: cfg.Parallelism,
		SaltLength:  saltLength,
		KeyLength:   keyLength,
	}}
}

// Hash returns an encoded argon2id hash of plain using the current parameters.
func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := argon2id.CreateHash(plain, h.params)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Verify compares plain against hash in constant time.
func (h *Hasher) Verify(plain, hash string) (bool, error) {
	if isBcrypt(hash) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("verify bcrypt hash: %w", err)
		}
		return true, nil
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		return false, ErrUnknownHash
	}
	match, err := argon2id.ComparePasswordAndHash(plain, hash)
	if err != nil {
		return false, fmt.Errorf("verify argon2id hash: %w", err)
	}
	return match, nil
}

// NeedsRehash reports whether hash was produced by anything other than the
// current scheme and parameters.
func (h *Hasher) NeedsRehash(hash string) bool {
	if isBcrypt(hash) {
		return true
	}
	p, _, _, err := argon2id.DecodeHash(hash)
	if err != nil {
		return true
	}
	return p.Memory != h.params.Memory ||
		p.Iterations != h.params.Iterations ||
		p.Parallelism != h.params.Parallelism ||
		p.SaltLength != h.params.SaltLength ||
		p.KeyLength != h.params.KeyLength
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}
