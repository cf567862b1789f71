package crypto

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"strings"

	"github.com/cavelabs/cave/errors"
	"golang.org/x/crypto/ed25519"
)

// SaveKey writes the private key hex encoded to the given path. An
// existing file is never overwritten.
func SaveKey(path string, key *PrivateKey) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Wrapf(errors.ErrDuplicate, "key file %s exists", path)
	}
	data := hex.EncodeToString(key.Ed25519)
	if err := ioutil.WriteFile(path, []byte(data+"\n"), 0600); err != nil {
		return errors.Wrap(err, "cannot write key file")
	}
	return nil
}

// LoadKey reads a private key written by SaveKey.
func LoadKey(path string) (*PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read key file")
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "malformed key file: %s", err)
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "invalid key length %d", len(key))
	}
	return &PrivateKey{Ed25519: key}, nil
}
