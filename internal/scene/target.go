package scene

// TargetKind distinguishes the background from reference layers.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetBackground
	TargetReference
)

// Target addresses one layer. The background has no id and is identified
// structurally, since at most one exists.
type Target struct {
	Kind TargetKind
	ID   string // Reference id; empty for the background
}

// BackgroundTarget addresses the background layer.
var BackgroundTarget = Target{Kind: TargetBackground}

// ReferenceTarget addresses the reference layer with the given id.
func ReferenceTarget(id string) Target {
	return Target{Kind: TargetReference, ID: id}
}

// IsBackground reports whether t addresses the background.
func (t Target) IsBackground() bool { return t.Kind == TargetBackground }

// IsZero reports whether t addresses nothing.
func (t Target) IsZero() bool { return t.Kind == TargetNone }

func (t Target) String() string {
	switch t.Kind {
	case TargetBackground:
		return "background"
	case TargetReference:
		return "reference:" + t.ID
	default:
		return "none"
	}
}
