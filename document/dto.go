// Package document converts between the in-memory tree and its persisted
// document form: {"items": [<node>, ...]}.
package document

// Document is the persisted representation of the root collection
type Document struct {
	Items []NodeDTO `json:"items" yaml:"items"`
}

// NodeDTO is the persisted representation of [filesystem.Node].
//
// Path, Icon and Children are omitted when empty so documents written by
// earlier versions and this one are interchangeable.
type NodeDTO struct {
	Name     string    `json:"name" yaml:"name"`
	Type     string    `json:"type" yaml:"type"`                     // Type label; also selects the node kind
	Path     string    `json:"path,omitempty" yaml:"path,omitempty"` // Backing file path
	Icon     string    `json:"icon,omitempty" yaml:"icon,omitempty"` // Icon registry key
	Children []NodeDTO `json:"children,omitempty" yaml:"children,omitempty"`
}
