// Package graph serializes a resolved task graph to Graphviz dot text and
// hands it to an external renderer.
package graph

import (
	"fmt"
	"strings"

	"github.com/weftlabs/weft/internal/task"
)

// Build renders the dependency graph as dot text. Node and edge emission
// strictly follows task declaration order, then each task's dependency
// declaration order, so output is deterministic and diffs stay stable.
//
// Node styling encodes the task's role: shape box for tasks with
// dependencies, ellipse for leaves; outline solid for tasks with a body,
// dashed for pure barrier tasks.
func Build(tasks []task.Snapshot) string {
	var b strings.Builder
	b.WriteString("digraph weft {\n")

	for _, t := range tasks {
		shape := "ellipse"
		if len(t.Deps) > 0 {
			shape = "box"
		}
		style := "dashed"
		if t.HasBody {
			style = "solid"
		}
		fmt.Fprintf(&b, "  %q [shape=%s, style=%s];\n", t.Name, shape, style)
	}

	for _, t := range tasks {
		for _, dep := range t.Deps {
			fmt.Fprintf(&b, "  %q -> %q;\n", t.Name, dep)
		}
	}

	b.WriteString("}\n")
	return b.String()
}
