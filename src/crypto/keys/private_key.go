package keys

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// privateKeySize is the length in bytes of a raw secp256k1 scalar.
const privateKeySize = 32

// GenerateECDSAKey creates a new secp256k1 private key.
func GenerateECDSAKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(Curve(), rand.Reader)
}

// DumpPrivateKey returns the scalar D of priv as exactly privateKeySize
// big-endian bytes, left-padded with zeros.
func DumpPrivateKey(priv *ecdsa.PrivateKey) []byte {
	if priv == nil || priv.D == nil {
		return nil
	}
	return priv.D.FillBytes(make([]byte, privateKeySize))
}

// ParsePrivateKey rebuilds a key from the output of DumpPrivateKey. The
// scalar must be exactly privateKeySize bytes and lie in [1, N-1], N being
// the order of the curve: zero is not a key, and N or above would alias a
// smaller scalar. The public point is derived from it.
func ParsePrivateKey(d []byte) (*ecdsa.PrivateKey, error) {
	if len(d) != privateKeySize {
		return nil, fmt.Errorf("private key has %d bytes, want %d", len(d), privateKeySize)
	}

	scalar := new(big.Int).SetBytes(d)
	switch {
	case scalar.Sign() == 0:
		return nil, errors.New("private key is zero")
	case scalar.Cmp(secp256k1N) >= 0:
		return nil, errors.New("private key is not below the curve order")
	}

	priv := &ecdsa.PrivateKey{D: scalar}
	priv.Curve = Curve()
	priv.X, priv.Y = priv.Curve.ScalarBaseMult(d)
	if priv.X == nil {
		return nil, errors.New("private key yields no public point")
	}

	return priv, nil
}

// PrivateKeyHex is the lowercase hex form of DumpPrivateKey, as written to
// key files.
func PrivateKeyHex(key *ecdsa.PrivateKey) string {
	return hex.EncodeToString(DumpPrivateKey(key))
}

// ParsePrivateKeyHex is the inverse of PrivateKeyHex.
func ParsePrivateKeyHex(s string) (*ecdsa.PrivateKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKey(raw)
}
