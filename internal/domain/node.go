package domain

// NodeType is a free-form classification of a node
type NodeType string

const (
	NodeTypeDefault NodeType = ""
)

// Node is a vertex of a directed graph
type Node struct {
	ID         string            `json:"id" yaml:"id" msgpack:"id"`
	Label      string            `json:"label,omitempty" yaml:"label,omitempty" msgpack:"label,omitempty"`
	Type       NodeType          `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty" msgpack:"attributes,omitempty"`
}

// NewNode creates a new node with initialized attributes
func NewNode(id string, nodeType NodeType, label string) *Node {
	return &Node{
		ID:         id,
		Type:       nodeType,
		Label:      label,
		Attributes: make(map[string]string),
	}
}

// SetAttribute sets an attribute value
func (n *Node) SetAttribute(key, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[key] = value
}

// GetAttribute gets an attribute value
func (n *Node) GetAttribute(key string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[key]
	return val, ok
}

// clone returns a copy that shares no attribute map with n
func (n Node) clone() Node {
	n.Attributes = cloneAttributes(n.Attributes)
	return n
}

func cloneAttributes(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
