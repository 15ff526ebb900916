package code_analyzer

import (
	"sort"
	"strings"
)

type treeNode struct {
	name     string
	children map[string]*treeNode
}

// GetFileTree renders forward-slash relative paths as an indented tree.
// Directories are listed before files, each group alphabetically.
func GetFileTree(rootName string, paths []string) string {
	root := &treeNode{name: rootName, children: map[string]*treeNode{}}
	for _, p := range paths {
		node := root
		segments := strings.Split(strings.Trim(p, "/"), "/")
		for _, segment := range segments {
			if segment == "" {
				continue
			}
			child, ok := node.children[segment]
			if !ok {
				child = &treeNode{name: segment, children: map[string]*treeNode{}}
				node.children[segment] = child
			}
			node = child
		}
	}

	var sb strings.Builder
	sb.WriteString(root.name)
	sb.WriteString("/\n")
	writeTree(&sb, root, "")
	return sb.String()
}

func writeTree(sb *strings.Builder, node *treeNode, prefix string) {
	children := make([]*treeNode, 0, len(node.children))
	for _, child := range node.children {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		iDir, jDir := len(children[i].children) > 0, len(children[j].children) > 0
		if iDir != jDir {
			return iDir
		}
		return children[i].name < children[j].name
	})

	for i, child := range children {
		connector, nextPrefix := "├── ", prefix+"│   "
		if i == len(children)-1 {
			connector, nextPrefix = "└── ", prefix+"    "
		}
		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(child.name)
		if len(child.children) > 0 {
			sb.WriteString("/")
		}
		sb.WriteString("\n")
		writeTree(sb, child, nextPrefix)
	}
}
