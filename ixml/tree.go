package ixml

// Tree is a minimal in-memory implementation of Node, used by this
// module's own test suites to exercise the compiler without a real
// runtime tree. It mirrors the shape of the teacher's own *xml.Element/
// *xml.Text/*xml.Attribute family (parent pointer + ordered children)
// but keeps only what the compiler core needs: kind, name, value,
// navigation and an optional schema-type annotation.
type Tree struct {
	kind     NodeKind
	name     ExpandedName
	hasName  bool
	value    string
	parent   *Tree
	children []*Tree
	attrs    []*Tree
	order    int
	typ      SchemaType
}

var orderCounter int

// NewElement builds a detached element node. Use Append to build a tree.
func NewElement(name ExpandedName) *Tree {
	orderCounter++
	return &Tree{kind: KindElement, name: name, hasName: true, order: orderCounter}
}

// NewRoot builds a document-root node.
func NewRoot() *Tree {
	orderCounter++
	return &Tree{kind: KindRoot, order: orderCounter}
}

// NewText builds a text node carrying value.
func NewText(value string) *Tree {
	orderCounter++
	return &Tree{kind: KindText, value: value, order: orderCounter}
}

// NewComment builds a comment node.
func NewComment(value string) *Tree {
	orderCounter++
	return &Tree{kind: KindComment, value: value, order: orderCounter}
}

// NewInstruction builds a processing-instruction node with the given
// target (its Name local part) and value.
func NewInstruction(target, value string) *Tree {
	orderCounter++
	return &Tree{kind: KindInstruction, name: Name(target), hasName: true, value: value, order: orderCounter}
}

// NewAttribute builds an attribute node; Append it onto an element with
// AppendAttr, not Append.
func NewAttribute(name ExpandedName, value string) *Tree {
	orderCounter++
	return &Tree{kind: KindAttribute, name: name, hasName: true, value: value, order: orderCounter}
}

// Append adds child as the last child of t.
func (t *Tree) Append(child *Tree) *Tree {
	child.parent = t
	t.children = append(t.children, child)
	return t
}

// AppendAttr adds attr to t's attribute set.
func (t *Tree) AppendAttr(attr *Tree) *Tree {
	attr.parent = t
	t.attrs = append(t.attrs, attr)
	return t
}

// WithType attaches a schema-type annotation and returns t for chaining.
func (t *Tree) WithType(typ SchemaType) *Tree {
	t.typ = typ
	return t
}

func (t *Tree) Kind() NodeKind { return t.kind }

func (t *Tree) Name() (ExpandedName, bool) {
	return t.name, t.hasName
}

func (t *Tree) StringValue() string {
	if t.kind == KindElement || t.kind == KindRoot {
		var s string
		for _, c := range t.children {
			s += c.StringValue()
		}
		return s
	}
	return t.value
}

func (t *Tree) Parent() Node {
	if t.parent == nil {
		return nil
	}
	return t.parent
}

func (t *Tree) Children() []Node {
	out := make([]Node, len(t.children))
	for i, c := range t.children {
		out[i] = c
	}
	return out
}

func (t *Tree) Attributes() []Node {
	out := make([]Node, len(t.attrs))
	for i, a := range t.attrs {
		out[i] = a
	}
	return out
}

func (t *Tree) PrecedingSiblings() []Node {
	return t.siblings(true)
}

func (t *Tree) FollowingSiblings() []Node {
	return t.siblings(false)
}

func (t *Tree) siblings(preceding bool) []Node {
	if t.parent == nil {
		return nil
	}
	siblings := t.parent.children
	idx := -1
	for i, c := range siblings {
		if c == t {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	var out []Node
	if preceding {
		for i := 0; i < idx; i++ {
			out = append(out, siblings[i])
		}
	} else {
		for i := idx + 1; i < len(siblings); i++ {
			out = append(out, siblings[i])
		}
	}
	return out
}

func (t *Tree) DocumentOrder() int { return t.order }

func (t *Tree) Type() (SchemaType, bool) {
	if t.typ == nil {
		return nil, false
	}
	return t.typ, true
}

// Attr looks up an attribute by local name with no namespace -- a test
// convenience mirroring the teacher's getAttribute helper.
func (t *Tree) Attr(local string) (string, bool) {
	for _, a := range t.attrs {
		if a.name.Local == local && a.name.URI == "" {
			return a.value, true
		}
	}
	return "", false
}
