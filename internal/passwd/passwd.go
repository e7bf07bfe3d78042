// Package passwd verifies offered passwords against stored hashes.
package passwd

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const pbkdf2Scheme = "pbkdf2-sha256"

// Schemes accepted by HashScheme.
const (
	SchemeBcrypt = "bcrypt"
	SchemePBKDF2 = pbkdf2Scheme

	DefaultPBKDF2Iterations = 600000
	pbkdf2SaltSize          = 16
)

// Verifier checks a plaintext password against a stored hash.
type Verifier interface {
	// Verify reports whether password matches hash. ok is false when no hash
	// is stored for the account, in which case Verify returns false.
	Verify(password, hash string, ok bool) bool
}

type verifier struct{}

// NewVerifier returns a Verifier that understands bcrypt, PBKDF2-SHA256 and
// legacy plaintext hashes.
func NewVerifier() Verifier {
	return verifier{}
}

func (verifier) Verify(password, hash string, ok bool) bool {
	if !ok || hash == "" {
		return false
	}

	switch {
	case isBcrypt(hash):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	case strings.HasPrefix(hash, "$"+pbkdf2Scheme+"$"):
		return verifyPBKDF2(password, hash)
	case strings.HasPrefix(hash, "$"):
		return false
	default:
		return subtle.ConstantTimeCompare([]byte(password), []byte(hash)) == 1
	}
}

// Hash produces a bcrypt hash suitable for user.<name>.password.
func Hash(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// HashScheme hashes password with the named scheme. cost is the bcrypt cost
// or the PBKDF2 iteration count; 0 selects the default.
func HashScheme(scheme, password string, cost int) (string, error) {
	switch scheme {
	case "", SchemeBcrypt:
		return Hash(password, cost)
	case SchemePBKDF2:
		if password == "" {
			return "", fmt.Errorf("password is required")
		}
		if cost < 0 {
			return "", fmt.Errorf("invalid iteration count %d", cost)
		}
		if cost == 0 {
			cost = DefaultPBKDF2Iterations
		}
		salt := make([]byte, pbkdf2SaltSize)
		if _, err := rand.Read(salt); err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		return hashPBKDF2(password, salt, cost), nil
	default:
		return "", fmt.Errorf("unknown hash scheme %q", scheme)
	}
}

// hashPBKDF2 encodes password as $pbkdf2-sha256$<iterations>$<salt>$<key>.
func hashPBKDF2(password string, salt []byte, iterations int) string {
	key := pbkdf2.Key([]byte(password), salt, iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("$%s$%d$%s$%s",
		pbkdf2Scheme,
		iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}

func verifyPBKDF2(password, hash string) bool {
	// "", scheme, iterations, salt, key
	parts := strings.Split(hash, "$")
	if len(parts) != 5 {
		return false
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(password), salt, iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
