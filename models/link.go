package models

// DocumentRef is the slash-separated path of one document relative to the
// root of the tree being processed.
type DocumentRef string

// LinkReference is one anchor (or image) extracted from a document.
type LinkReference struct {
	Source      DocumentRef
	RawTarget   string
	DisplayText string
}

// LinkKind is the category a raw link target falls into.
type LinkKind int

const (
	LinkInternal LinkKind = iota // anchors, mailto, empty
	LinkRemote                   // http(s)
	LinkLocal                    // a file in the tree
)

func (k LinkKind) String() string {
	switch k {
	case LinkInternal:
		return "internal"
	case LinkRemote:
		return "remote"
	case LinkLocal:
		return "local"
	}
	return "unknown"
}

// LinkClass is the classification of a raw target. Target holds the URL for
// remote links and the cleaned relative path for local links.
type LinkClass struct {
	Kind   LinkKind
	Target string
}

// ResolutionResult is the outcome of verifying a single link.
type ResolutionResult struct {
	Valid  bool
	Detail string
}
