package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/arbor/errors"
	"github.com/grovetools/arbor/logging"
)

// DocumentRelPath is the location of the metadata document inside a worktree.
const DocumentRelPath = ".arbor/worktree.yml"

// Store loads and saves per-worktree metadata documents.
type Store struct {
	validator *Validator
	log       *logrus.Entry
}

// NewStore creates a Store with the embedded schema validator.
func NewStore() (*Store, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}

	return &Store{
		validator: validator,
		log:       logging.NewLogger("metadata"),
	}, nil
}

// DocumentPath returns the metadata document path for a worktree root.
func DocumentPath(worktreePath string) string {
	return filepath.Join(worktreePath, DocumentRelPath)
}

// Load reads the metadata document for worktreePath. An absent document
// returns (nil, nil): the worktree is uninitialized. A present but
// unparsable or invalid document is an error, never treated as absent.
func (s *Store) Load(worktreePath string) (*WorktreeMetadata, error) {
	raw, data, err := s.loadRaw(worktreePath)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	migrated := migrate(raw)

	if err := s.validator.Validate(raw); err != nil {
		return nil, errors.MetadataValidation(worktreePath, err)
	}

	var md WorktreeMetadata
	if migrated {
		// Re-encode so the typed decode sees the migrated shape, and
		// rewrite the document once so migration never runs again.
		data, err = yaml.Marshal(raw)
		if err != nil {
			return nil, errors.MetadataParse(worktreePath, err)
		}
		if err := writeAtomic(DocumentPath(worktreePath), data); err != nil {
			return nil, err
		}
		s.log.WithField("worktree", worktreePath).Info("Migrated metadata document")
	}

	if err := yaml.Unmarshal(data, &md); err != nil {
		return nil, errors.MetadataParse(worktreePath, err)
	}

	return &md, nil
}

// Save serializes the full document and overwrites it durably. The write
// goes to a temporary file in the same directory followed by a rename, so a
// crash mid-write leaves either the old or the new content.
func (s *Store) Save(worktreePath string, md *WorktreeMetadata) error {
	md.Version = SchemaVersion

	data, err := yaml.Marshal(md)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to serialize metadata document").
			WithDetail("worktreePath", worktreePath)
	}

	return writeAtomic(DocumentPath(worktreePath), data)
}

// MergeField shallow-merges updates into one named top-level field of the
// existing document. Fails with METADATA_MISSING when no document exists.
// The merge operates on the raw document so unrelated fields, including
// caller-supplied ones, are written back untouched.
func (s *Store) MergeField(worktreePath, field string, updates map[string]interface{}) error {
	raw, _, err := s.loadRaw(worktreePath)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.MetadataMissing(worktreePath)
	}

	section, _ := raw[field].(map[string]interface{})
	if section == nil {
		section = make(map[string]interface{})
	}
	for k, v := range updates {
		section[k] = v
	}
	raw[field] = section

	data, err := yaml.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to serialize metadata document").
			WithDetail("worktreePath", worktreePath)
	}

	return writeAtomic(DocumentPath(worktreePath), data)
}

// loadRaw reads and decodes the document as a generic map. Absence is
// (nil, nil, nil); an unparsable document is a METADATA_PARSE error.
func (s *Store) loadRaw(worktreePath string) (map[string]interface{}, []byte, error) {
	path := DocumentPath(worktreePath)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read metadata document").
			WithDetail("path", path)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, errors.MetadataParse(worktreePath, err)
	}
	if raw == nil {
		raw = make(map[string]interface{})
	}

	return raw, data, nil
}

// writeAtomic writes data to path via a temp file and rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, fmt.Sprintf("failed to create directory %s", dir))
	}

	tmp, err := os.CreateTemp(dir, ".worktree-*.yml")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create temporary metadata file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write temporary metadata file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to close temporary metadata file")
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to set metadata file permissions")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to replace metadata document")
	}

	return nil
}
