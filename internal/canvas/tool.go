package canvas

// Tool identifies a drawing tool.
type Tool uint8

const (
	// ToolNone indicates no tool.
	ToolNone Tool = iota
	// ToolPencil writes the active color at the target pixel.
	ToolPencil
	// ToolEraser clears the alpha channel at the target pixel.
	ToolEraser
	// ToolFill flood-fills the contiguous region around the target pixel.
	ToolFill
	// ToolMagicWand selects the contiguous region around the target pixel.
	ToolMagicWand
	// ToolEyedropper samples the color at the target pixel.
	ToolEyedropper
	// ToolPan drags the viewport instead of painting.
	ToolPan
)

// String returns a string representation of the tool.
func (t Tool) String() string {
	switch t {
	case ToolPencil:
		return "pencil"
	case ToolEraser:
		return "eraser"
	case ToolFill:
		return "fill"
	case ToolMagicWand:
		return "magic-wand"
	case ToolEyedropper:
		return "eyedropper"
	case ToolPan:
		return "pan"
	default:
		return "none"
	}
}

// ParseTool parses a tool name. Unknown names return ToolNone.
func ParseTool(s string) Tool {
	switch s {
	case "pencil":
		return ToolPencil
	case "eraser":
		return ToolEraser
	case "fill":
		return ToolFill
	case "magic-wand", "magicwand", "wand":
		return ToolMagicWand
	case "eyedropper", "picker":
		return ToolEyedropper
	case "pan":
		return ToolPan
	default:
		return ToolNone
	}
}

// Mutates reports whether applying the tool writes to the pixel buffer.
func (t Tool) Mutates() bool {
	switch t {
	case ToolPencil, ToolEraser, ToolFill:
		return true
	default:
		return false
	}
}

// ToolState is a read-only per-event snapshot of the host's active tool.
// Changing it mid-gesture is undefined behavior; the classifier captures
// the snapshot at gesture start.
type ToolState struct {
	Tool      Tool
	Color     Color
	BrushSize int
}
