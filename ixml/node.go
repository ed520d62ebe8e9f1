package ixml

// NodeKind enumerates the seven XDM node kinds the compiler reasons
// about. It is a bitset so NodeTest catalog entries (nodetest package)
// can express "any of these kinds" compactly.
type NodeKind uint16

const (
	KindRoot NodeKind = 1 << iota
	KindElement
	KindAttribute
	KindText
	KindComment
	KindInstruction
	KindNamespace
)

// KindChildAxis is the set of kinds reachable on the child axis (and
// matched by the any-node `node()` test on that axis): elements, text,
// comments and processing instructions -- not root, not attributes.
const KindChildAxis = KindElement | KindText | KindComment | KindInstruction

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindElement:
		return "element"
	case KindAttribute:
		return "attribute"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindInstruction:
		return "processing-instruction"
	case KindNamespace:
		return "namespace"
	default:
		return "node"
	}
}

// SchemaType is the read-only handle an injected XSD schema library
// attaches to a validated node. The compiler never constructs one itself;
// it only inspects the type name and asks the collaborator whether it
// derives from another named type (spec.md §4.1.1).
type SchemaType interface {
	Name() ExpandedName
	DerivesFrom(ExpandedName) bool
}

// Node is the abstract tree interface the compiler core depends on as an
// external collaborator (spec.md §3, "Node (external)"). A real runtime
// supplies a concrete implementation; the compiler only ever reads it.
type Node interface {
	Kind() NodeKind
	// Name is the expanded name of this node; ok is false for kinds that
	// carry none (text, comment, root, and untargeted processing
	// instructions all report ok==false).
	Name() (name ExpandedName, ok bool)
	StringValue() string

	Parent() Node
	Children() []Node
	Attributes() []Node

	// PrecedingSibling/FollowingSibling support the axis walk performed by
	// PatternStep predicates (position()/last() within the matching
	// sibling set).
	PrecedingSiblings() []Node
	FollowingSiblings() []Node

	// DocumentOrder is a monotonically increasing key usable to compare
	// node order within one document; it has no meaning across documents.
	DocumentOrder() int

	// Type returns the schema-type annotation, if the node was validated.
	Type() (SchemaType, bool)
}

// IsDocumentRoot reports whether node has no parent, i.e. it is the root
// of its tree -- the Root pattern variant's match condition (spec.md §4.3).
func IsDocumentRoot(node Node) bool {
	return node != nil && node.Parent() == nil
}

// Ancestors yields node's ancestors, closest first, not including node
// itself.
func Ancestors(node Node) []Node {
	var out []Node
	for p := node.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}
