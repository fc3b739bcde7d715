// Package keymap maps keys to named commands per input context.
package keymap

import (
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
)

// Binding maps a key to a command within a context.
type Binding struct {
	Key     string
	Command string
	Context string
	// Help is the short footer label. Empty bindings stay out of the footer.
	Help string
}

// Registry resolves keys to commands. Context bindings shadow global ones.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]map[string]Binding // context -> key -> binding
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]map[string]Binding)}
}

// RegisterBinding adds or replaces a binding.
func (r *Registry) RegisterBinding(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx := r.bindings[b.Context]
	if ctx == nil {
		ctx = make(map[string]Binding)
		r.bindings[b.Context] = ctx
	}
	ctx[b.Key] = b
}

// ApplyOverrides rebinds keys in the list context. An override key may carry
// a context prefix ("confirm:y"). An empty command unbinds the key.
func (r *Registry) ApplyOverrides(overrides map[string]string) {
	for k, command := range overrides {
		context := ContextList
		if c, rest, ok := strings.Cut(k, ":"); ok && rest != "" {
			context, k = c, rest
		}
		if command == "" {
			r.unbind(context, k)
			continue
		}
		help := r.helpFor(context, command)
		r.RegisterBinding(Binding{Key: k, Command: command, Context: context, Help: help})
	}
}

func (r *Registry) unbind(context, k string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings[context], k)
}

func (r *Registry) helpFor(context, command string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bindings[context] {
		if b.Command == command && b.Help != "" {
			return b.Help
		}
	}
	return ""
}

// Lookup returns the command bound to k in context, falling back to global.
func (r *Registry) Lookup(k, context string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.bindings[context][k]; ok {
		return b.Command, true
	}
	if b, ok := r.bindings[ContextGlobal][k]; ok {
		return b.Command, true
	}
	return "", false
}

// KeysFor returns the keys bound to command in context, sorted.
func (r *Registry) KeysFor(command, context string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var keys []string
	for k, b := range r.bindings[context] {
		if b.Command == command {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// HelpBindings returns footer entries for context, one per command that has a
// help label, ordered by command name.
func (r *Registry) HelpBindings(context string) []key.Binding {
	r.mu.RLock()
	byCommand := make(map[string][]string)
	help := make(map[string]string)
	for _, ctx := range []string{context, ContextGlobal} {
		for k, b := range r.bindings[ctx] {
			if b.Help == "" {
				continue
			}
			if _, seen := help[b.Command]; seen && ctx == ContextGlobal {
				continue
			}
			byCommand[b.Command] = append(byCommand[b.Command], k)
			help[b.Command] = b.Help
		}
	}
	r.mu.RUnlock()

	commands := make([]string, 0, len(help))
	for c := range help {
		commands = append(commands, c)
	}
	sort.Strings(commands)

	out := make([]key.Binding, 0, len(commands))
	for _, c := range commands {
		keys := byCommand[c]
		sort.Strings(keys)
		out = append(out, key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(displayKey(keys[0]), help[c]),
		))
	}
	return out
}

func displayKey(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
