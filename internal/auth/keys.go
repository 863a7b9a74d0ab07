// AngelaMos | 2026
// keys.go

package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"os"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// loadSigningKey reads a PEM private key and tags it for ES256. The kid is
// the RFC 7638 thumbprint, so every replica sharing the key advertises the
// same id and restarts do not invalidate cached JWKS.
func loadSigningKey(path string) (jwk.Key, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	key, err := jwk.ParseKey(pemBytes, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	if err := key.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
		return nil, fmt.Errorf("set algorithm: %w", err)
	}
	if err := jwk.AssignKeyID(key); err != nil {
		return nil, fmt.Errorf("assign key id: %w", err)
	}
	return key, nil
}

func publicSet(private jwk.Key) (jwk.Key, jwk.Set, error) {
	public, err := private.PublicKey()
	if err != nil {
		return nil, nil, fmt.Errorf("derive public key: %w", err)
	}
	if err := public.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, nil, fmt.Errorf("set key usage: %w", err)
	}

	set := jwk.NewSet()
	if err := set.AddKey(public); err != nil {
		return nil, nil, fmt.Errorf("add key to set: %w", err)
	}
	return public, set, nil
}

// GenerateKeyPair writes a fresh P-256 key pair as PEM. Used by cmd/keygen
// and by tests that need a signing key.
func GenerateKeyPair(privatePath, publicPath string) error {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	private, err := jwk.Import(raw)
	if err != nil {
		return fmt.Errorf("import private key: %w", err)
	}
	public, err := private.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	for _, out := range []struct {
		path string
		key  jwk.Key
		mode os.FileMode
	}{
		{privatePath, private, 0o600},
		{publicPath, public, 0o644},
	} {
		encoded, err := jwk.Pem(out.key)
		if err != nil {
			return fmt.Errorf("encode %s: %w", out.path, err)
		}
		if err := os.WriteFile(out.path, encoded, out.mode); err != nil {
			return fmt.Errorf("write %s: %w", out.path, err)
		}
	}
	return nil
}
