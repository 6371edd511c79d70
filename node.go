package vtree

// NodeInfo provides read-only access to node information for external consumers
type NodeInfo interface {
	// Name returns the node's display name
	Name() string

	// NodeID returns the session-unique node identifier; 0 if unregistered
	NodeID() uint64

	// Label returns the free-form type label shown next to the name
	Label() string

	// RealPath returns the backing file path or "" if the node has none
	RealPath() string

	// IconKey returns the symbolic icon registry key
	IconKey() string
}
