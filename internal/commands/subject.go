package commands

import (
	"context"
	"fmt"

	"github.com/lenslet/lens/internal/ai"
	"github.com/lenslet/lens/internal/core/logging"
	"github.com/lenslet/lens/internal/vcs"
)

// buildSubject assembles the prompt subject for a revision argument: one
// commit, a range, or the working tree when refArg is empty.
func buildSubject(ctx context.Context, backend vcs.Backend, refArg string, staged bool) (ai.Subject, error) {
	ctx = logging.WithBackend(ctx, backend.Name().String())
	if refArg == "" {
		diff, err := backend.WorkingTreeDiff(ctx, staged)
		if err != nil {
			return ai.Subject{}, fmt.Errorf("working tree diff: %w", err)
		}
		return ai.WorkingTreeSubject(diff, staged), nil
	}

	ctx = logging.WithRef(ctx, refArg)
	ref, err := vcs.ParseRef(refArg, backend.WorkingCopySymbol())
	if err != nil {
		return ai.Subject{}, err
	}

	switch ref.Kind {
	case vcs.RefRange, vcs.RefTripleDot:
		diff, err := backend.RangeDiff(ctx, ref.From, ref.To, ref.Kind == vcs.RefTripleDot)
		if err != nil {
			return ai.Subject{}, fmt.Errorf("range diff: %w", err)
		}
		return ai.RangeSubject(diff, ref.From, ref.To), nil
	default:
		info, err := backend.Commit(ctx, ref.Single)
		if err != nil {
			return ai.Subject{}, err
		}
		return ai.CommitSubject(info), nil
	}
}
