package metadata

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/grovetools/arbor/errors"
)

// Discover scans the immediate children of root for worktree metadata
// documents and returns the loaded documents sorted by name. Children
// without a document are skipped; children with a broken document fail
// loudly rather than being dropped.
func (s *Store) Discover(root string) ([]*WorktreeMetadata, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan worktrees directory").
			WithDetail("root", root)
	}

	var found []*WorktreeMetadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		worktreePath := filepath.Join(root, entry.Name())
		md, err := s.Load(worktreePath)
		if err != nil {
			return nil, err
		}
		if md != nil {
			found = append(found, md)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}

// Lookup resolves a worktree by identifier under root. The identifier may be
// a worktree id, a worktree name, or a path containing a metadata document.
// Returns WORKTREE_NOT_FOUND when nothing matches.
func (s *Store) Lookup(root, identifier string) (*WorktreeMetadata, error) {
	// A direct path wins over discovery.
	if info, err := os.Stat(identifier); err == nil && info.IsDir() {
		md, err := s.Load(identifier)
		if err != nil {
			return nil, err
		}
		if md != nil {
			return md, nil
		}
	}

	worktrees, err := s.Discover(root)
	if err != nil {
		return nil, err
	}

	for _, md := range worktrees {
		if md.ID == identifier || md.Name == identifier {
			return md, nil
		}
	}

	return nil, errors.WorktreeNotFound(identifier)
}
