package binary

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// KeyStore holds public keys the user trusts for specific tools:
//
//	{dir}/{tool}.asc  armored PGP keyring
//	{dir}/{tool}.gpg  binary PGP keyring
//	{dir}/{tool}.pub  minisign public key
type KeyStore struct {
	dir string
}

// NewKeyStore returns a key store rooted at dir. The directory need not exist.
func NewKeyStore(dir string) *KeyStore {
	return &KeyStore{dir: dir}
}

// Dir returns the key directory.
func (k *KeyStore) Dir() string {
	return k.dir
}

// PGPKeyring loads the tool's PGP keyring. ok is false when none is configured.
func (k *KeyStore) PGPKeyring(tool string) (keyring openpgp.EntityList, ok bool, err error) {
	if k == nil || k.dir == "" {
		return nil, false, nil
	}
	for _, ext := range []string{".asc", ".gpg"} {
		path := filepath.Join(k.dir, tool+ext)
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("open keyring: %w", err)
		}

		if ext == ".asc" {
			keyring, err = openpgp.ReadArmoredKeyRing(f)
		} else {
			keyring, err = openpgp.ReadKeyRing(f)
		}
		f.Close()
		if err != nil {
			return nil, false, fmt.Errorf("read keyring %s: %w", path, err)
		}
		if len(keyring) == 0 {
			return nil, false, fmt.Errorf("keyring %s is empty", path)
		}
		return keyring, true, nil
	}
	return nil, false, nil
}

// MinisignKey returns the path of the tool's minisign public key.
func (k *KeyStore) MinisignKey(tool string) (string, bool) {
	if k == nil || k.dir == "" {
		return "", false
	}
	path := filepath.Join(k.dir, tool+".pub")
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return path, true
	}
	return "", false
}
