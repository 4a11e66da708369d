package nfe

import "encoding/xml"

// node is a generic XML tree element. Decoding into a tree instead of fixed
// structs keeps the parser tolerant of the structural variation between
// invoice producers: new envelope shapes only need another entry in
// bodyPaths, and tax groups are located by name wherever they nest.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []node     `xml:",any"`
	Text     string     `xml:",chardata"`
}

// attr returns the value of a named attribute, ignoring namespace.
func (n *node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// child returns the first direct child with the given local name.
func (n *node) child(name string) *node {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return &n.Children[i]
		}
	}
	return nil
}

// children returns all direct children with the given local name, in
// document order.
func (n *node) children(name string) []*node {
	var out []*node
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// descend walks a path of child names and returns the node at its end.
func (n *node) descend(path ...string) *node {
	current := n
	for _, name := range path {
		current = current.child(name)
		if current == nil {
			return nil
		}
	}
	return current
}

// findDescendant searches the subtree depth-first for the first element with
// the given local name. Used for tax fields whose grouping element varies
// (ICMS00, ICMS10, ICMSSN102 and the like).
func (n *node) findDescendant(name string) *node {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == name {
			return c
		}
		if found := c.findDescendant(name); found != nil {
			return found
		}
	}
	return nil
}

// text returns the trimmed character data of a direct child, or empty string
// when the child is absent.
func (n *node) childText(name string) string {
	c := n.child(name)
	if c == nil {
		return ""
	}
	return trimText(c.Text)
}
