package post

import (
	"context"

	"github.com/kokoromi/redraft/internal/domain/model/execution"
	"github.com/kokoromi/redraft/internal/domain/model/post"
)

// AutoUseCase chains create, validate, approve and execute into one
// unattended traversal. Each stage still goes through the normal state
// machine; nothing is skipped, only un-prompted.
type AutoUseCase struct {
	Create   *CreateDraftUseCase
	Validate *ValidateUseCase
	Approve  *ApproveUseCase
	Run      *ExecuteUseCase
}

// AutoResult reports how far one post got.
type AutoResult struct {
	Post      *post.Post
	Execution *execution.Execution
	Err       error
}

// Execute runs the traversal for count posts. A post that fails a stage
// stops there; the remaining posts of the batch still proceed.
func (uc *AutoUseCase) Execute(ctx context.Context, in CreateDraftInput, count int, dryRun bool) ([]AutoResult, error) {
	created, err := uc.Create.ExecuteBatch(ctx, in, count)
	if err != nil && len(created) == 0 {
		return nil, err
	}

	var results []AutoResult
	for _, p := range created {
		results = append(results, uc.advance(ctx, p, dryRun))
	}
	return results, nil
}

func (uc *AutoUseCase) advance(ctx context.Context, p *post.Post, dryRun bool) AutoResult {
	res := AutoResult{Post: p}

	vout, err := uc.Validate.Execute(ctx, p.ID)
	if err != nil {
		res.Err = err
		if vout != nil {
			res.Post = vout.Post
		}
		return res
	}
	res.Post = vout.Post

	ap, err := uc.Approve.Execute(ctx, p.ID)
	if err != nil {
		res.Err = err
		return res
	}
	res.Post = ap

	eout, err := uc.Run.Execute(ctx, ExecuteInput{
		PostID: p.ID,
		DryRun: dryRun,
		Source: execution.SourceAuto,
	})
	if eout != nil {
		res.Post = eout.Post
		res.Execution = eout.Execution
	}
	res.Err = err
	return res
}
