package postfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/revision"
	infrafs "github.com/kokoromi/redraft/internal/infra/fs"
)

type revisionRepository struct {
	s *Store
}

func (r *revisionRepository) Append(ctx context.Context, rev *revision.Revision) error {
	lock := r.s.lockFor(rev.PostID)
	lock.Lock()
	defer lock.Unlock()

	path := r.s.revisionPath(rev.PostID, rev.ID)
	if exists, err := afero.Exists(r.s.fs, path); err != nil {
		return fmt.Errorf("append revision %s: %w", rev.ID, err)
	} else if exists {
		// Revision ids are never reused; refusing here keeps the log
		// append-only even against buggy callers.
		return fmt.Errorf("append revision %s: record already exists", rev.ID)
	}
	if err := infrafs.WriteJSONAtomic(r.s.fs, path, rev); err != nil {
		return fmt.Errorf("append revision %s: %w", rev.ID, err)
	}
	return nil
}

func (r *revisionRepository) List(ctx context.Context, postID model.PostID) ([]*revision.Revision, error) {
	infos, err := afero.ReadDir(r.s.fs, r.s.revisionsDir(postID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list revisions %s: %w", postID, err)
	}

	var revs []*revision.Revision
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			continue
		}
		data, err := afero.ReadFile(r.s.fs, filepath.Join(r.s.revisionsDir(postID), info.Name()))
		if err != nil {
			continue
		}
		var rev revision.Revision
		if err := json.Unmarshal(data, &rev); err != nil {
			continue
		}
		revs = append(revs, &rev)
	}
	// ULIDs embed the mint time, so the id order is the creation order.
	sort.Slice(revs, func(i, j int) bool { return revs[i].ID < revs[j].ID })
	return revs, nil
}
