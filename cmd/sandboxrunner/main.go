// Command sandboxrunner executes one Layer1+Layer2 sandboxed code request
// and prints the resulting sandbox.ExecutionResult as JSON to stdout. It is
// the process that sandbox.ContainerBackend bakes into a container image
// and sandbox.ProcessBackend runs as a subprocess — the same request
// validation and yaegi interpretation path runs in both, with the
// container adding OS-level isolation (no network, read-only root, caps)
// around it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/BaSui01/agentflow/sandbox"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: sandboxrunner <request.json>")
		os.Exit(2)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read request: %v\n", err)
		os.Exit(1)
	}

	var req sandbox.ExecutionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		fmt.Fprintf(os.Stderr, "decode request: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	result := sandbox.RunInProcess(ctx, &req, sandbox.DefaultImportPolicy())

	out, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
