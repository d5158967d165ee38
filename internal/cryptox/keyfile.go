package cryptox

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vitaltrack/vitaltrack/internal/common"
)

// LoadOrCreateKeyFile reads the install secret and salt from path,
// creating them on first run. The file holds secret||salt and is written
// with 0600 permissions; it stands in for a platform keychain.
func LoadOrCreateKeyFile(path string) (secret, salt []byte, err error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != secretSize+saltSize {
			return nil, nil, fmt.Errorf("key file %s is corrupt", path)
		}
		return data[:secretSize], data[secretSize:], nil
	}
	if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("read key file: %w", err)
	}

	secret = common.GenerateRandByteArray(secretSize)
	salt = common.GenerateRandByteArray(saltSize)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("create key dir: %w", err)
		}
	}

	data = append(append([]byte{}, secret...), salt...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, nil, fmt.Errorf("write key file: %w", err)
	}
	return secret, salt, nil
}

// NewSealerFromKeyFile wires LoadOrCreateKeyFile, DeriveStorageKey and
// NewSealer together; this is the constructor the app uses.
func NewSealerFromKeyFile(path string) (*Sealer, error) {
	secret, salt, err := LoadOrCreateKeyFile(path)
	if err != nil {
		return nil, err
	}
	key := DeriveStorageKey(secret, salt)
	defer common.WipeByteArray(secret)
	defer common.WipeByteArray(key)
	return NewSealer(key)
}
