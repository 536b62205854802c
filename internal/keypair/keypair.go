// Package keypair generates and persists the account keypair every client
// run addresses. The file is written once per deployment; writing a new one
// moves the account and leaves items stored under the old address behind.
package keypair

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/gagliardetto/solana-go"
)

var ErrMalformed = errors.New("malformed keypair file")

// fileFormat mirrors a serialized web3.js Keypair: byte arrays are written as
// objects keyed by index.
type fileFormat struct {
	Keypair struct {
		PublicKey map[string]uint8 `json:"publicKey"`
		SecretKey map[string]uint8 `json:"secretKey"`
	} `json:"_keypair"`
}

// Generate returns a fresh ed25519 keypair.
func Generate() (solana.PrivateKey, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return key, nil
}

// Save writes key to path, replacing any existing file.
func Save(path string, key solana.PrivateKey) error {
	if len(key) != ed25519.PrivateKeySize {
		return fmt.Errorf("%w: secret key is %d bytes", ErrMalformed, len(key))
	}

	var doc fileFormat
	pub := key.PublicKey()
	doc.Keypair.PublicKey = indexed(pub[:])
	doc.Keypair.SecretKey = indexed(key)

	out, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0600)
}

// Load reads a keypair written by Save, or a Solana CLI keygen file (a bare
// JSON array of the 64 secret key bytes).
func Load(path string) (solana.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (solana.PrivateKey, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raw []int
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		secret := make([]byte, len(raw))
		for i, v := range raw {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("%w: byte %d out of range", ErrMalformed, i)
			}
			secret[i] = byte(v)
		}
		return validate(secret, nil)
	}

	var doc fileFormat
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	secret, err := ordered(doc.Keypair.SecretKey)
	if err != nil {
		return nil, err
	}
	var pub []byte
	if len(doc.Keypair.PublicKey) > 0 {
		if pub, err = ordered(doc.Keypair.PublicKey); err != nil {
			return nil, err
		}
	}
	return validate(secret, pub)
}

func validate(secret, pub []byte) (solana.PrivateKey, error) {
	if len(secret) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: secret key is %d bytes", ErrMalformed, len(secret))
	}
	derived := ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize]).Public().(ed25519.PublicKey)
	if !bytes.Equal(derived, secret[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("%w: secret key halves do not match", ErrMalformed)
	}
	if pub != nil && !bytes.Equal(pub, derived) {
		return nil, fmt.Errorf("%w: public key does not match secret key", ErrMalformed)
	}
	return solana.PrivateKey(secret), nil
}

func indexed(b []byte) map[string]uint8 {
	out := make(map[string]uint8, len(b))
	for i, v := range b {
		out[strconv.Itoa(i)] = v
	}
	return out
}

// ordered turns an index-keyed object back into bytes. Object key order in
// the file is irrelevant.
func ordered(m map[string]uint8) ([]byte, error) {
	idx := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q", ErrMalformed, k)
		}
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]byte, len(idx))
	for pos, i := range idx {
		if i != pos {
			return nil, fmt.Errorf("%w: missing byte %d", ErrMalformed, pos)
		}
		out[pos] = m[strconv.Itoa(i)]
	}
	return out, nil
}
