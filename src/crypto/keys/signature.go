package keys

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/mosaicnetworks/txbench/src/crypto"
)

// Sign hashes data with SHA256 and signs the digest with the private key.
func Sign(priv *ecdsa.PrivateKey, data []byte) (string, error) {
	r, s, err := ecdsa.Sign(rand.Reader, priv, crypto.SHA256(data))
	if err != nil {
		return "", err
	}
	return EncodeSignature(r, s), nil
}

// Verify checks a signature produced by Sign against the public key.
func Verify(pub *ecdsa.PublicKey, data []byte, sig string) bool {
	if pub == nil {
		return false
	}
	r, s, err := DecodeSignature(sig)
	if err != nil {
		return false
	}
	return ecdsa.Verify(pub, crypto.SHA256(data), r, s)
}

// EncodeSignature returns a string representation of a signature.
func EncodeSignature(r, s *big.Int) string {
	return fmt.Sprintf("%s|%s", r.Text(36), s.Text(36))
}

// DecodeSignature parses a string representation of a signature as produced by
// EncodeSignature.
func DecodeSignature(sig string) (r, s *big.Int, err error) {
	values := strings.Split(sig, "|")
	if len(values) != 2 {
		return nil, nil, fmt.Errorf("wrong number of values in signature: got %d, want 2", len(values))
	}
	r, ok := new(big.Int).SetString(values[0], 36)
	if !ok {
		return nil, nil, fmt.Errorf("malformed signature r value")
	}
	s, ok = new(big.Int).SetString(values[1], 36)
	if !ok {
		return nil, nil, fmt.Errorf("malformed signature s value")
	}
	return r, s, nil
}
