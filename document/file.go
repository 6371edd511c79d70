package document

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brettbedarf/vtree/filesystem"
	"github.com/brettbedarf/vtree/internal/util"
)

// ReadFile parses the document at path, choosing the format by extension.
// A missing file returns the underlying fs.ErrNotExist error.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return Unmarshal(data, FormatFor(path))
}

// LoadFile reads the document at path and decodes it into detached roots
func LoadFile(path string, icons filesystem.IconRegistry) ([]*filesystem.Node, error) {
	logger := util.GetLogger("Document.Load")

	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	roots := Decode(doc, icons)
	logger.Debug().Str("path", path).Int("roots", len(roots)).Msg("Loaded tree document")
	return roots, nil
}

// SaveFile encodes roots and replaces the document at path. The new content
// is written to a temporary file in the same directory and renamed over path,
// so a failed save leaves the previous document intact.
func SaveFile(path string, roots []*filesystem.Node, icons filesystem.IconRegistry) error {
	logger := util.GetLogger("Document.Save")

	data, err := Marshal(Encode(roots, icons), FormatFor(path))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp document: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to replace tree document")
		return err
	}
	logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("Saved tree document")
	return nil
}
