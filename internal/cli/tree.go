package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/7c/goproc/internal/display"
	"github.com/7c/goproc/proctree"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree [pid]",
	Short: "Render the process tree",
	Example: `  # The whole tree, from init down
  goproc tree

  # Just one daemon and its workers
  goproc tree 1234

  # Nested JSON
  goproc tree --json`,
	Args: cobra.MaximumNArgs(1),
	Run:  runTree,
}

func runTree(cmd *cobra.Command, args []string) {
	t, err := proctree.BuildFrom(newEnumerator())
	if err != nil {
		exitError(err.Error())
	}

	if len(args) == 1 {
		pid, err := strconv.Atoi(args[0])
		if err != nil {
			exitError(fmt.Sprintf("invalid PID: %q", args[0]))
		}
		node := t.Find(pid, true)
		if node == nil {
			exitError(fmt.Sprintf("no process with PID %d", pid))
		}
		if jsonOutput {
			outputJSON(treeNode(node))
			return
		}
		display.RenderSubtree(os.Stdout, node)
		return
	}

	if jsonOutput {
		roots := make([]treeInfo, 0, len(t.Roots()))
		for _, n := range t.Roots() {
			roots = append(roots, treeNode(n))
		}
		outputJSON(roots)
		return
	}
	display.RenderTree(os.Stdout, t)
}

// treeInfo is processInfo plus nested children.
type treeInfo struct {
	processInfo
	Children []treeInfo `json:"children,omitempty"`
}

func treeNode(n *proctree.Node) treeInfo {
	info := treeInfo{processInfo: newProcessInfo(n.Process, false)}
	for _, c := range n.Children {
		info.Children = append(info.Children, treeNode(c))
	}
	return info
}
