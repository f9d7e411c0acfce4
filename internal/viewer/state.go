package viewer

import "fmt"

// Kind is the controller's lifecycle state.
type Kind int

const (
	Empty Kind = iota
	Ready
	Error
)

func (k Kind) String() string {
	switch k {
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "empty"
	}
}

// State is a snapshot of the controller.
type State struct {
	Kind Kind
	// Index is the page on screen while Ready. In Error it is the last page
	// shown successfully, or -1.
	Index   int
	Count   int
	Name    string
	Message string
	Path    string
}

func (s State) String() string {
	switch s.Kind {
	case Ready:
		return fmt.Sprintf("ready(%d)", s.Index)
	case Error:
		return fmt.Sprintf("error(%s)", s.Message)
	default:
		return "empty"
	}
}
