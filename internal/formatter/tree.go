package formatter

import (
	"sort"
	"strings"

	"github.com/harrison/repoquill/internal/models"
)

const (
	branch     = "├── "
	lastBranch = "└── "
	vertical   = "│   "
	blank      = "    "

	// TreeOnlyMarker follows the name of every TreeOnly file in the tree
	TreeOnlyMarker = "  [tree-only]"
)

type treeNode struct {
	name     string
	isDir    bool
	entry    *models.FileEntry
	children []*treeNode
}

func (n *treeNode) dir(name string) *treeNode {
	for _, c := range n.children {
		if c.isDir && c.name == name {
			return c
		}
	}
	d := &treeNode{name: name, isDir: true}
	n.children = append(n.children, d)
	return d
}

func (n *treeNode) sort() {
	sort.SliceStable(n.children, func(i, j int) bool {
		a, b := n.children[i], n.children[j]
		if a.isDir != b.isDir {
			return a.isDir
		}
		la, lb := strings.ToLower(a.name), strings.ToLower(b.name)
		if la != lb {
			return la < lb
		}
		return a.name < b.name
	})
	for _, c := range n.children {
		if c.isDir {
			c.sort()
		}
	}
}

// RenderTree draws the directory tree implied by files' relative paths.
// Directories come before files at each level and names are ordered
// case-insensitively. The result has no trailing newline; an empty list renders
// as "".
func RenderTree(files []models.FileEntry) string {
	if len(files) == 0 {
		return ""
	}

	root := &treeNode{isDir: true}
	for i := range files {
		parts := splitPath(files[i].RelativePath)
		if len(parts) == 0 {
			continue
		}
		cur := root
		for _, p := range parts[:len(parts)-1] {
			cur = cur.dir(p)
		}
		cur.children = append(cur.children, &treeNode{name: parts[len(parts)-1], entry: &files[i]})
	}
	root.sort()

	var sb strings.Builder
	for i, c := range root.children {
		renderNode(&sb, c, "", i == len(root.children)-1)
	}
	return strings.TrimRight(sb.String(), " \n")
}

func renderNode(sb *strings.Builder, n *treeNode, prefix string, last bool) {
	sb.WriteString(prefix)
	if last {
		sb.WriteString(lastBranch)
	} else {
		sb.WriteString(branch)
	}

	if !n.isDir {
		sb.WriteString(n.name)
		if n.entry != nil && n.entry.Disposition == models.TreeOnly {
			sb.WriteString(TreeOnlyMarker)
		}
		sb.WriteByte('\n')
		return
	}

	sb.WriteString(n.name)
	sb.WriteString("/\n")

	childPrefix := prefix + vertical
	if last {
		childPrefix = prefix + blank
	}
	for i, c := range n.children {
		renderNode(sb, c, childPrefix, i == len(n.children)-1)
	}
}

func splitPath(rel string) []string {
	var parts []string
	for _, p := range strings.Split(rel, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
