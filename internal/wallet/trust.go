package wallet

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// TrustStore records the origins a wallet has approved. It is the wallet's
// memory of earlier explicit connects, so a later silent connect can succeed.
type TrustStore struct {
	path string

	mu      sync.Mutex
	origins []string
}

type trustFile struct {
	Origins []string `yaml:"Origins"`
}

// OpenTrustStore loads the store at path. A missing file is an empty store.
func OpenTrustStore(path string) (*TrustStore, error) {
	ts := &TrustStore{path: path}

	fh, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ts, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = fh.Close()
	}()

	var doc trustFile
	if err := yaml.NewDecoder(fh).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode trust store %s: %w", path, err)
	}
	ts.origins = doc.Origins
	return ts, nil
}

func (ts *TrustStore) IsTrusted(origin string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return slices.Contains(ts.origins, origin)
}

// Trust adds origin and persists the store.
func (ts *TrustStore) Trust(origin string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if slices.Contains(ts.origins, origin) {
		return nil
	}
	ts.origins = append(ts.origins, origin)

	out, err := yaml.Marshal(trustFile{Origins: ts.origins})
	if err != nil {
		return err
	}
	if dir := filepath.Dir(ts.path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return os.WriteFile(ts.path, out, 0600)
}
