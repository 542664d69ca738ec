package savegame

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// FileStore writes saves as YAML files. Relative names resolve against Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore { return &FileStore{Dir: dir} }

func (st *FileStore) path(name string) string {
	if filepath.IsAbs(name) || strings.TrimSpace(st.Dir) == "" {
		return name
	}
	return filepath.Join(st.Dir, name)
}

// Save writes s to name. Existing files are never overwritten.
func (st *FileStore) Save(name string, s Save) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	p := st.path(name)
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create save dir: %w", err)
		}
	}
	err := writeExclusive(p, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return "", err
	}
	return p, nil
}

// writeExclusive creates p, refusing to replace an existing file, and
// removes it again when encode or close fails.
func writeExclusive(p string, encode func(io.Writer) error) error {
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s", ErrSaveExists, p)
	}
	if err != nil {
		return fmt.Errorf("open save: %w", err)
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return fmt.Errorf("encode save: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return fmt.Errorf("close save: %w", err)
	}
	return nil
}

// Load reads the save stored under name.
func (st *FileStore) Load(name string) (Save, error) {
	p := st.path(name)
	raw, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return Save{}, fmt.Errorf("%w: %s", ErrSaveNotFound, p)
	}
	if err != nil {
		return Save{}, fmt.Errorf("read save: %w", err)
	}
	var s Save
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Save{}, fmt.Errorf("decode save %s: %w", p, err)
	}
	if err := s.Validate(); err != nil {
		return Save{}, err
	}
	return s, nil
}
