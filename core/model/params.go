package model

import (
	"strconv"
	"strings"
)

// NodesPlaceholder is replaced by the configured node count in input and
// output paths, e.g. "{nodes}NodeData.json".
const NodesPlaceholder = "{nodes}"

// ExpandNodes substitutes NodesPlaceholder in path with the node count.
func ExpandNodes(path string, nodes int) string {
	return strings.ReplaceAll(path, NodesPlaceholder, strconv.Itoa(nodes))
}
