package savegame

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/chessrules/internal/testutil"
)

func TestFileStoreRoundTrip(t *testing.T) {
	st := NewFileStore(filepath.Join(t.TempDir(), "saves"))

	path, err := st.Save("game1.yaml", sampleSave())
	testutil.RequireNoError(t, err)

	raw, err := os.ReadFile(path)
	testutil.RequireNoError(t, err)
	if !strings.Contains(string(raw), "width: 8") || !strings.Contains(string(raw), "column: 1") {
		t.Fatalf("unexpected yaml:\n%s", raw)
	}

	got, err := st.Load("game1.yaml")
	testutil.RequireNoError(t, err)
	testutil.AssertEqual(t, got, sampleSave())
}

func TestFileStoreRefusesOverwrite(t *testing.T) {
	st := NewFileStore(t.TempDir())
	_, err := st.Save("x.yaml", sampleSave())
	testutil.RequireNoError(t, err)

	_, err = st.Save("x.yaml", Save{Width: 8, Height: 8})
	testutil.AssertErrorIs(t, err, ErrSaveExists)

	got, err := st.Load("x.yaml")
	testutil.RequireNoError(t, err)
	testutil.AssertEqual(t, len(got.Moves), 5)
}

func TestFileStoreLoadErrors(t *testing.T) {
	dir := t.TempDir()
	st := NewFileStore(dir)

	_, err := st.Load("missing.yaml")
	testutil.AssertErrorIs(t, err, ErrSaveNotFound)

	testutil.RequireNoError(t, os.WriteFile(filepath.Join(dir, "junk.yaml"), []byte("width: [1"), 0o644))
	if _, err := st.Load("junk.yaml"); err == nil {
		t.Fatalf("malformed yaml should fail")
	}

	testutil.RequireNoError(t, os.WriteFile(filepath.Join(dir, "small.yaml"), []byte("width: 4\nheight: 4\n"), 0o644))
	_, err = st.Load("small.yaml")
	testutil.AssertErrorIs(t, err, ErrInvalidSave)
}

func TestFailedWriteLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "partial.yaml")
	flushErr := errors.New("flush failed")

	err := writeExclusive(p, func(w io.Writer) error {
		if _, err := io.WriteString(w, "width: 8\nheight:"); err != nil {
			return err
		}
		return flushErr
	})
	testutil.AssertErrorIs(t, err, flushErr)
	if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("partial save left behind: %v", err)
	}

	st := NewFileStore(dir)
	_, err = st.Save("partial.yaml", sampleSave())
	testutil.RequireNoError(t, err)
}
