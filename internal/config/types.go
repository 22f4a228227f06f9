package config

// Document is one parsed layer: the raw declarations of every category the
// file contains, keyed by category name. Declarations are not interpreted
// until aggregation.
type Document struct {
	Level Level
	// Path is the file the document was read from, or a "builtin:" name for
	// the embedded default.
	Path       string
	Categories map[string][]any
}

// HierarchicalOptions controls which layers LoadHierarchical reads.
type HierarchicalOptions struct {
	DiscoverOptions
}

// HierarchicalResult holds the documents that were loaded, lowest
// precedence first, together with the status of every candidate layer.
type HierarchicalResult struct {
	Documents []*Document
	Layers    []ConfigLayerInfo
}
