// Package signature provides the hashing and CRT based signing support used
// to authenticate coins, transactions and blocks.
package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// ErrSignatureInconsistent is returned when a freshly produced signature does
// not verify against the key material that produced it. Nodes treat this as
// a fatal condition.
var ErrSignatureInconsistent = errors.New("signature check value does not match message digest")

// =============================================================================

// Hash returns the SHA-256 digest of the value as 64 lower case hex characters.
func Hash(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:])
}

// HashInt returns the SHA-256 digest of the value as an integer.
func HashInt(value string) *big.Int {
	hash := sha256.Sum256([]byte(value))
	return new(big.Int).SetBytes(hash[:])
}

// Sign produces the signature for the message using the Chinese Remainder
// Theorem over the prime factors of the modulus. The final sum is not reduced
// modulo n. Verification is unaffected since s^e mod n only depends on
// s mod n, and signatures already on the wire depend on this form.
func (km *KeyMaterial) Sign(message string) (string, error) {
	m := HashInt(message)

	vp := new(big.Int).Exp(m, km.D, km.P)
	vq := new(big.Int).Exp(m, km.D, km.Q)

	sp := new(big.Int).Mul(vp, km.Xp)
	sp.Mod(sp, km.N)

	sq := new(big.Int).Mul(vq, km.Xq)
	sq.Mod(sq, km.N)

	s := new(big.Int).Add(sp, sq)

	// Check the signature decodes back to the digest before it leaves
	// this node.
	checkval := new(big.Int).Exp(s, km.E, km.N)
	if checkval.Cmp(m) != 0 {
		return "", fmt.Errorf("sign: %w", ErrSignatureInconsistent)
	}

	return s.Text(16), nil
}

// Verify checks the hex encoded signature against the message using the
// canonical public key string of the signer.
func Verify(message string, sig string, pubKey string) bool {
	pk, err := ParsePublicKey(pubKey)
	if err != nil {
		return false
	}

	return pk.Verify(message, sig)
}

// Verify checks the hex encoded signature against the message.
func (pk PublicKey) Verify(message string, sig string) bool {
	s, ok := new(big.Int).SetString(sig, 16)
	if !ok || s.Sign() < 0 {
		return false
	}

	checkval := new(big.Int).Exp(s, pk.E, pk.N)
	return checkval.Cmp(HashInt(message)) == 0
}
