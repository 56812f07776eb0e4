// Package prompt maps template identifiers to fixed system prompts.
package prompt

import (
	"sort"
	"strings"
)

type Registry struct {
	templates map[string]string
	suffix    string
}

type Option func(*Registry)

// WithSuffix appends ConversationSuffix to every resolved prompt, including the fallback.
func WithSuffix() Option {
	return func(r *Registry) {
		r.suffix = ConversationSuffix
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		templates: map[string]string{
			Girlfriend: girlfriendPrompt,
			Therapist:  therapistPrompt,
			Trainer:    trainerPrompt,
			Default:    defaultPrompt,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the system prompt for templateID. Unknown or empty
// identifiers resolve to the default prompt. Matching is exact.
func (r *Registry) Resolve(templateID string) string {
	text, ok := r.templates[templateID]
	if !ok {
		text = r.templates[Default]
	}
	return text + r.suffix
}

// Known reports whether templateID names a template of its own.
func (r *Registry) Known(templateID string) bool {
	_, ok := r.templates[templateID]
	return ok
}

// Templates returns the known identifiers in sorted order.
func (r *Registry) Templates() []string {
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Fill substitutes the history and input placeholders of a suffixed prompt.
func Fill(prompt, history, input string) string {
	return strings.NewReplacer("{history}", history, "{input}", input).Replace(prompt)
}
