// Package keymap maps single-key keyboard shortcuts onto named actions.
// Bindings are stored as JSON so user overrides can be loaded from and
// saved back to a settings file.
package keymap

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Action names the registry can bind keys to.
const (
	ActionToolPencil    = "tool.pencil"
	ActionToolEraser    = "tool.eraser"
	ActionToolFill      = "tool.fill"
	ActionToolMagicWand = "tool.magic-wand"
	ActionToolEyedrop   = "tool.eyedropper"
	ActionToolPan       = "tool.pan"
	ActionUndo          = "history.undo"
	ActionRedo          = "history.redo"
)

// Binding errors.
var (
	// ErrUnknownAction indicates an action name the registry does not accept.
	ErrUnknownAction = errors.New("keymap: unknown action")

	// ErrBadJSON indicates a bindings document that does not parse.
	ErrBadJSON = errors.New("keymap: invalid bindings JSON")
)

// knownActions is the closed set of bindable actions.
var knownActions = map[string]bool{
	ActionToolPencil:    true,
	ActionToolEraser:    true,
	ActionToolFill:      true,
	ActionToolMagicWand: true,
	ActionToolEyedrop:   true,
	ActionToolPan:       true,
	ActionUndo:          true,
	ActionRedo:          true,
}

// Binding pairs one key with one action.
type Binding struct {
	Key    rune
	Action string
}

// Registry holds the active key bindings.
type Registry struct {
	mu       sync.RWMutex
	bindings map[rune]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[rune]string)}
}

// LoadDefaults installs the built-in bindings, replacing any conflicts.
func LoadDefaults(r *Registry) {
	defaults := []Binding{
		{'p', ActionToolPencil},
		{'e', ActionToolEraser},
		{'b', ActionToolFill},
		{'w', ActionToolMagicWand},
		{'i', ActionToolEyedrop},
		{'h', ActionToolPan},
		{'u', ActionUndo},
		{'r', ActionRedo},
	}
	for _, b := range defaults {
		_ = r.Bind(b.Key, b.Action)
	}
}

// Bind associates a key with an action, replacing any existing binding.
func (r *Registry) Bind(key rune, action string) error {
	if !knownActions[action] {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[key] = action
	return nil
}

// Unbind removes the binding for a key, if any.
func (r *Registry) Unbind(key rune) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings, key)
}

// Lookup returns the action bound to a key.
func (r *Registry) Lookup(key rune) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	action, ok := r.bindings[key]
	return action, ok
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

// LoadJSON merges bindings from a document of the form
//
//	{"bindings": [{"key": "p", "action": "tool.pencil"}, ...]}
//
// Entries with unknown actions or non-single-rune keys are skipped;
// valid entries override existing bindings.
func (r *Registry) LoadJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrBadJSON
	}
	entries := gjson.GetBytes(data, "bindings")
	if !entries.IsArray() {
		return fmt.Errorf("%w: missing bindings array", ErrBadJSON)
	}

	entries.ForEach(func(_, entry gjson.Result) bool {
		key := entry.Get("key").String()
		action := entry.Get("action").String()
		runes := []rune(key)
		if len(runes) != 1 {
			return true
		}
		_ = r.Bind(runes[0], action)
		return true
	})
	return nil
}

// SaveJSON serializes the current bindings into the LoadJSON document
// format, sorted for stable output.
func (r *Registry) SaveJSON() ([]byte, error) {
	r.mu.RLock()
	snapshot := make(map[rune]string, len(r.bindings))
	keys := make([]rune, 0, len(r.bindings))
	for k, a := range r.bindings {
		snapshot[k] = a
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	slices.Sort(keys)

	data := []byte(`{"bindings":[]}`)
	for i, k := range keys {
		var err error
		data, err = sjson.SetBytes(data, fmt.Sprintf("bindings.%d.key", i), string(k))
		if err != nil {
			return nil, err
		}
		data, err = sjson.SetBytes(data, fmt.Sprintf("bindings.%d.action", i), snapshot[k])
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}
