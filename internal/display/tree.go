package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/7c/goproc/proctree"
)

// RenderTree renders the full process hierarchy with box-drawing
// connectors, one root per orphaned subtree.
func RenderTree(w io.Writer, t *proctree.Tree) {
	for _, root := range t.Roots() {
		renderNode(w, root, "", "")
	}
}

// RenderSubtree renders one node and everything below it.
func RenderSubtree(w io.Writer, n *proctree.Node) {
	renderNode(w, n, "", "")
}

func renderNode(w io.Writer, n *proctree.Node, lead, childLead string) {
	fmt.Fprintf(w, "%s%s\n", Dim(lead), nodeLabel(n))
	for i, c := range n.Children {
		if i < len(n.Children)-1 {
			renderNode(w, c, childLead+"├─ ", childLead+"│  ")
		} else {
			renderNode(w, c, childLead+"└─ ", childLead+"   ")
		}
	}
}

// nodeLabel is "name(pid) cmdline" with noteworthy states marked.
func nodeLabel(n *proctree.Node) string {
	a := n.Process.Attributes()
	label := Bold(a.ExeName()) + Dim(fmt.Sprintf("(%d)", n.PID()))
	switch a.StateName {
	case "zombie", "dead":
		label += " " + Red("<"+a.StateName+">")
	case "stopped", "tracing stop":
		label += " " + Yellow("<"+a.StateName+">")
	}
	if cmd := strings.Join(a.Cmdline, " "); cmd != "" && cmd != a.ExeName() {
		label += " " + Dim(Truncate(cmd, 70))
	}
	return label
}
