package signature

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
)

// PublicExponent is the fixed public exponent used by every node.
const PublicExponent = 65537

// minModulusBits is the smallest modulus able to carry a SHA-256 digest
// as the message representative.
const minModulusBits = 257

// =============================================================================

// PublicKey represents the public half of the key material.
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// ParsePublicKey converts the canonical public key string back into a key.
func ParsePublicKey(s string) (PublicKey, error) {
	mod, exp, found := strings.Cut(s, ",e=")
	if !found {
		return PublicKey{}, fmt.Errorf("public key %q missing exponent", s)
	}

	n, ok := new(big.Int).SetString(mod, 16)
	if !ok || n.Sign() <= 0 {
		return PublicKey{}, fmt.Errorf("public key modulus %q is not hex", mod)
	}

	e, ok := new(big.Int).SetString(exp, 16)
	if !ok || e.Sign() <= 0 {
		return PublicKey{}, fmt.Errorf("public key exponent %q is not hex", exp)
	}

	return PublicKey{N: n, E: e}, nil
}

// String returns the canonical form, <modulus-hex>,e=<exponent-hex>.
func (pk PublicKey) String() string {
	return pk.N.Text(16) + ",e=" + pk.E.Text(16)
}

// ID returns the identity of the owner of this key.
func (pk PublicKey) ID() string {
	return Hash(pk.String())
}

// =============================================================================

// KeyMaterial holds everything a node needs to sign. It is never mutated
// after construction.
type KeyMaterial struct {
	N       *big.Int
	E       *big.Int
	D       *big.Int
	P       *big.Int
	Q       *big.Int
	Totient *big.Int
	Xp      *big.Int // q * (q^-1 mod p)
	Xq      *big.Int // p * (p^-1 mod q)
}

// GeneratePrime returns a random prime of the given bit length.
func GeneratePrime(bits int) (*big.Int, error) {
	return rand.Prime(rand.Reader, bits)
}

// GenerateKeys builds new key material whose modulus is made from two primes
// of half the requested size.
func GenerateKeys(bits int) (*KeyMaterial, error) {
	if bits < minModulusBits+1 {
		return nil, fmt.Errorf("key size %d too small, need at least %d bits", bits, minModulusBits+1)
	}

	e := big.NewInt(PublicExponent)

	for {
		p, err := GeneratePrime(bits / 2)
		if err != nil {
			return nil, fmt.Errorf("generating p: %w", err)
		}

		q, err := GeneratePrime(bits - bits/2)
		if err != nil {
			return nil, fmt.Errorf("generating q: %w", err)
		}

		km, err := NewKeyMaterial(p, q, e)
		if err != nil {
			continue
		}

		return km, nil
	}
}

// NewKeyMaterial derives the full key material from the two primes and the
// public exponent.
func NewKeyMaterial(p, q, e *big.Int) (*KeyMaterial, error) {
	if p.Cmp(q) == 0 {
		return nil, errors.New("primes must be distinct")
	}

	one := big.NewInt(1)

	n := new(big.Int).Mul(p, q)
	if n.BitLen() < minModulusBits {
		return nil, fmt.Errorf("modulus has %d bits, need at least %d", n.BitLen(), minModulusBits)
	}

	totient := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))

	d := new(big.Int).ModInverse(e, totient)
	if d == nil {
		return nil, errors.New("public exponent is not invertible modulo the totient")
	}

	qInv := new(big.Int).ModInverse(q, p)
	pInv := new(big.Int).ModInverse(p, q)
	if qInv == nil || pInv == nil {
		return nil, errors.New("primes are not coprime")
	}

	km := KeyMaterial{
		N:       n,
		E:       new(big.Int).Set(e),
		D:       d,
		P:       new(big.Int).Set(p),
		Q:       new(big.Int).Set(q),
		Totient: totient,
		Xp:      new(big.Int).Mul(q, qInv),
		Xq:      new(big.Int).Mul(p, pInv),
	}

	return &km, nil
}

// PublicKey returns the public half of the key material.
func (km *KeyMaterial) PublicKey() PublicKey {
	return PublicKey{
		N: new(big.Int).Set(km.N),
		E: new(big.Int).Set(km.E),
	}
}

// ID returns the node identity for this key material.
func (km *KeyMaterial) ID() string {
	return km.PublicKey().ID()
}

// =============================================================================

// keyFile is what is written to disk. Everything else is derived.
type keyFile struct {
	P string `json:"p"`
	Q string `json:"q"`
	E string `json:"e"`
}

// SaveKeys writes the key material to the specified file.
func (km *KeyMaterial) SaveKeys(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	kf := keyFile{
		P: km.P.Text(16),
		Q: km.Q.Text(16),
		E: km.E.Text(16),
	}

	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// LoadKeys reads the key material from the specified file.
func LoadKeys(path string) (*KeyMaterial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("decoding key file: %w", err)
	}

	p, ok1 := new(big.Int).SetString(kf.P, 16)
	q, ok2 := new(big.Int).SetString(kf.Q, 16)
	e, ok3 := new(big.Int).SetString(kf.E, 16)
	if !ok1 || !ok2 || !ok3 {
		return nil, errors.New("key file holds invalid hex values")
	}

	return NewKeyMaterial(p, q, e)
}
