package workflow

import (
	"context"

	"github.com/BaSui01/agentflow/types"
)

// NodeExecutor runs one TaskNode's input against whichever strategy
// handles that TaskKind. It mirrors the dispatcher's own Handler shape
// one level down: the workflow engine never imports the strategy package
// directly (that would cycle, since strategy registers the engine as its
// multi-intent handler), so the caller wiring the engine together adapts
// its dispatcher into this narrow interface instead.
type NodeExecutor interface {
	Execute(ctx context.Context, kind types.TaskKind, input string) (any, error)
}
