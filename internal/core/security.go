// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var ErrMalformedHash = errors.New("malformed password hash")

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

// currentArgon is what new hashes use. Stored hashes made with anything
// else are upgraded on the next successful login.
var currentArgon = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

const saltLength = 16

var b64 = base64.RawStdEncoding

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

// encode produces the PHC string format, $argon2id$v=19$m=..,t=..,p=..$salt$key.
func (p argonParams) encode(salt, key []byte) string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	)
}

func parseArgon(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	fields := strings.Split(strings.TrimPrefix(encoded, "$"), "$")
	if len(fields) != 5 || fields[0] != "argon2id" {
		return p, nil, nil, ErrMalformedHash
	}

	if fields[1] != fmt.Sprintf("v=%d", argon2.Version) {
		return p, nil, nil, fmt.Errorf("%w: version %s", ErrMalformedHash, fields[1])
	}

	if _, err := fmt.Sscanf(fields[2], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	salt, err := b64.DecodeString(fields[3])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt", ErrMalformedHash)
	}
	key, err := b64.DecodeString(fields[4])
	if err != nil || len(key) == 0 {
		return p, nil, nil, fmt.Errorf("%w: key", ErrMalformedHash)
	}

	//nolint:gosec // G115: argon2 keys are a few dozen bytes
	p.keyLen = uint32(len(key))
	return p, salt, key, nil
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return currentArgon.encode(salt, currentArgon.derive(password, salt)), nil
}

func VerifyPassword(password, encoded string) (bool, error) {
	p, salt, key, err := parseArgon(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key, p.derive(password, salt)) == 1, nil
}

var decoyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("facilitypass-decoy")
	if err != nil {
		panic(fmt.Sprintf("security: decoy hash: %v", err))
	}
	return hash
})

// CheckPassword verifies password against encoded and, when the stored
// parameters are outdated, returns a replacement hash. An empty encoded
// hash still costs one derivation so absent accounts and accounts without
// a password answer in the same time as wrong passwords.
func CheckPassword(password, encoded string) (ok bool, rehash string, err error) {
	if encoded == "" {
		_, _ = VerifyPassword(password, decoyHash())
		return false, "", nil
	}

	ok, err = VerifyPassword(password, encoded)
	if err != nil || !ok {
		return false, "", err
	}

	if p, _, _, _ := parseArgon(encoded); p == currentArgon {
		return true, "", nil
	}

	rehash, err = HashPassword(password)
	if err != nil {
		//nolint:nilerr // the password matched; the upgrade can wait
		return true, "", nil
	}
	return true, rehash, nil
}

// GenerateRefreshToken returns 32 random bytes, URL-safe encoded.
func GenerateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// HashToken is the lookup key stored in place of a refresh token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SecretsEqual compares two non-empty secrets in constant time.
func SecretsEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// GenerateCode returns a random integer in [0, upper) from crypto/rand.
func GenerateCode(upper int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(upper))
	if err != nil {
		return 0, fmt.Errorf("generate code: %w", err)
	}
	return n.Int64(), nil
}
