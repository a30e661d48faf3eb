package section

// Flatten walks the document's heading tree in pre-order and returns its
// subsections in source order. The root body is always emitted under
// path=[title], even when the title appears in the ignore set. A non-root
// node whose stripped title is in the ignore set contributes nothing, and
// neither do any of its descendants.
func Flatten(doc Document, ignore IgnoreSet) []Subsection {
	if doc.Root == nil {
		return nil
	}
	path := []string{doc.Title}
	out := []Subsection{{Path: path, Text: doc.Root.Body}}
	for _, child := range doc.Root.Children {
		out = flattenNode(child, path, ignore, out)
	}
	return out
}

func flattenNode(node *HeadingNode, parentPath []string, ignore IgnoreSet, out []Subsection) []Subsection {
	if ignore.Has(StripDecoration(node.Title)) {
		return out
	}
	path := appendPath(parentPath, node.Title)
	out = append(out, Subsection{Path: path, Text: node.Body})
	for _, child := range node.Children {
		out = flattenNode(child, path, ignore, out)
	}
	return out
}

// appendPath copies before appending so sibling paths never share backing
// arrays.
func appendPath(parent []string, title string) []string {
	path := make([]string, 0, len(parent)+1)
	path = append(path, parent...)
	return append(path, title)
}
