// Package receiver binds command kinds to the live objects they act on.
package receiver

import (
	"sort"

	"github.com/openrails/openrails-sub024/internal/command"
)

// Registry maps each command kind to at most one live target.
//
// A Registry is session-scoped mutable state and is not safe for concurrent
// use: it must only be touched from the goroutine that drives the replay
// tick. Sessions running side by side need their own registries.
type Registry struct {
	targets map[command.Kind]any
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{targets: make(map[command.Kind]any)}
}

// Bind makes target the receiver for kind, replacing any previous binding.
// Binding nil, or a typed nil such as a nil pointer, removes the kind.
func (r *Registry) Bind(kind command.Kind, target any) {
	if command.IsNilTarget(target) {
		r.Unbind(kind)
		return
	}
	if r.targets == nil {
		r.targets = make(map[command.Kind]any)
	}
	r.targets[kind] = target
}

// BindAll binds target to every kind in kinds.
func (r *Registry) BindAll(target any, kinds ...command.Kind) {
	for _, k := range kinds {
		r.Bind(k, target)
	}
}

// Resolve returns the target bound to kind.
func (r *Registry) Resolve(kind command.Kind) (any, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.targets[kind]
	return t, ok
}

// Unbind removes the binding for kind. Unbinding an unbound kind is a no-op.
func (r *Registry) Unbind(kind command.Kind) {
	delete(r.targets, kind)
}

// Kinds returns the bound kinds in ascending order.
func (r *Registry) Kinds() []command.Kind {
	out := make([]command.Kind, 0, len(r.targets))
	for k := range r.targets {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Mismatched returns the bound kinds whose target cannot receive that
// kind's shape. Commands of these kinds apply as no-ops.
func (r *Registry) Mismatched() []command.Kind {
	var out []command.Kind
	for _, k := range r.Kinds() {
		if !command.Accepts(k, r.targets[k]) {
			out = append(out, k)
		}
	}
	return out
}

// Len returns the number of bound kinds.
func (r *Registry) Len() int {
	return len(r.targets)
}

// Reset removes every binding.
func (r *Registry) Reset() {
	r.targets = make(map[command.Kind]any)
}
