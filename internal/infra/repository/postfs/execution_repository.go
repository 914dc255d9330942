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
	"github.com/kokoromi/redraft/internal/domain/model/execution"
	infrafs "github.com/kokoromi/redraft/internal/infra/fs"
)

type executionRepository struct {
	s *Store
}

func (r *executionRepository) Open(ctx context.Context, postID model.PostID, source execution.Source) (*execution.Execution, error) {
	lock := r.s.lockFor(postID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := r.list(postID)
	if err != nil {
		return nil, fmt.Errorf("open execution %s: %w", postID, err)
	}
	attempt := 0
	for _, e := range existing {
		if e.IsOpen() {
			return nil, model.ErrExecutionConflict.WithMessage("execution %s is in flight", e.ID)
		}
		if e.Attempt > attempt {
			attempt = e.Attempt
		}
	}

	now := r.s.now().UTC()
	exec := execution.Open(model.NewExecutionID(now, r.s.entropy), postID, attempt+1, source, now)

	// The opening write is flushed before the attempt starts: a crash
	// mid-attempt leaves a detectable orphaned in-flight record rather
	// than silent loss.
	if err := infrafs.WriteJSONAtomic(r.s.fs, r.s.executionPath(postID, exec.ID), exec); err != nil {
		return nil, fmt.Errorf("open execution %s: %w", postID, err)
	}
	return exec, nil
}

func (r *executionRepository) Close(ctx context.Context, exec *execution.Execution) error {
	lock := r.s.lockFor(exec.PostID)
	lock.Lock()
	defer lock.Unlock()

	path := r.s.executionPath(exec.PostID, exec.ID)
	data, err := afero.ReadFile(r.s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.ErrNotFound.WithMessage("execution %s", exec.ID)
		}
		return fmt.Errorf("close execution %s: %w", exec.ID, err)
	}
	var stored execution.Execution
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("close execution %s: corrupt record: %w", exec.ID, err)
	}
	// Re-check on the stored record so a double close across processes
	// cannot overwrite a recorded outcome.
	if !stored.IsOpen() {
		return model.ErrExecutionAlreadyClosed.WithMessage("execution %s", exec.ID)
	}
	if exec.IsOpen() {
		return fmt.Errorf("close execution %s: entity is still open", exec.ID)
	}

	if err := infrafs.WriteJSONAtomic(r.s.fs, path, exec); err != nil {
		return fmt.Errorf("close execution %s: %w", exec.ID, err)
	}
	return nil
}

func (r *executionRepository) FindOpen(ctx context.Context, postID model.PostID) (*execution.Execution, error) {
	execs, err := r.list(postID)
	if err != nil {
		return nil, fmt.Errorf("find open execution %s: %w", postID, err)
	}
	for _, e := range execs {
		if e.IsOpen() {
			return e, nil
		}
	}
	return nil, nil
}

func (r *executionRepository) List(ctx context.Context, postID model.PostID) ([]*execution.Execution, error) {
	execs, err := r.list(postID)
	if err != nil {
		return nil, fmt.Errorf("list executions %s: %w", postID, err)
	}
	return execs, nil
}

func (r *executionRepository) EvidenceDir(postID model.PostID, execID model.ExecutionID) (string, error) {
	dir := r.s.evidenceDir(postID, execID)
	if err := r.s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("evidence dir %s: %w", execID, err)
	}
	return dir, nil
}

func (r *executionRepository) list(postID model.PostID) ([]*execution.Execution, error) {
	infos, err := afero.ReadDir(r.s.fs, r.s.executionsDir(postID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var execs []*execution.Execution
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			continue
		}
		data, err := afero.ReadFile(r.s.fs, filepath.Join(r.s.executionsDir(postID), info.Name()))
		if err != nil {
			continue
		}
		var e execution.Execution
		if err := json.Unmarshal(data, &e); err != nil {
			continue
		}
		execs = append(execs, &e)
	}
	sort.Slice(execs, func(i, j int) bool {
		if execs[i].Attempt != execs[j].Attempt {
			return execs[i].Attempt < execs[j].Attempt
		}
		return execs[i].ID < execs[j].ID
	})
	return execs, nil
}
