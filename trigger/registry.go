// Package trigger matches compiled regular expressions against freshly
// written terminal output lines and resolves the ordered action list
// attached to each match, substituting $1..$N capture references.
package trigger

import (
	"regexp"
	"sync"
	"unicode/utf8"
)

// ActionKind enumerates what a trigger action does once its pattern
// matches. The registry only resolves the action's value; executing
// RunCommand/PlaySound/SendText/Notify/MarkLine against the outside world
// is the caller's responsibility.
type ActionKind int

const (
	ActionHighlight ActionKind = iota
	ActionSetVariable
	ActionStopPropagation
	ActionNotify
	ActionMarkLine
	ActionRunCommand
	ActionPlaySound
	ActionSendText
)

// Action is one step of a pattern's action list. Param is interpreted
// according to Kind (e.g. "name=$1" for SetVariable) and may reference
// capture groups via $1..$N, expanded at match time.
type Action struct {
	Kind  ActionKind
	Param string
}

// Pattern is one registered trigger: a compiled regex with an enable flag
// and an ordered action list.
type Pattern struct {
	ID      string
	Regexp  *regexp.Regexp
	Enabled bool
	Actions []Action
}

// Match reports where a pattern matched, in rune-column coordinates within
// the scanned line.
type Match struct {
	PatternID string
	Row       int
	Col       int
	EndCol    int
	Text      string
	Captures  []string
}

// ResolvedAction is an Action with its Param's capture references expanded
// against the specific match that triggered it.
type ResolvedAction struct {
	Kind  ActionKind
	Value string
}

// Result pairs a Match with its pattern's resolved actions, in order.
// A StopPropagation action truncates the list at that point.
type Result struct {
	Match   Match
	Actions []ResolvedAction
}

// Registry holds the ordered set of trigger patterns active for one
// terminal session.
type Registry struct {
	mu       sync.RWMutex
	patterns []*Pattern
}

// NewRegistry returns an empty trigger registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends or replaces (by ID) a pattern.
func (r *Registry) Register(p Pattern) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.patterns {
		if existing.ID == p.ID {
			r.patterns[i] = &p
			return
		}
	}
	r.patterns = append(r.patterns, &p)
}

// Remove deletes a pattern by ID; a no-op if absent.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.patterns {
		if p.ID == id {
			r.patterns = append(r.patterns[:i], r.patterns[i+1:]...)
			return
		}
	}
}

// SetEnabled toggles a pattern without losing its position in the ordered
// list; a no-op if id is unknown.
func (r *Registry) SetEnabled(id string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patterns {
		if p.ID == id {
			p.Enabled = enabled
			return
		}
	}
}

// Patterns returns a snapshot of the registered patterns in match order.
func (r *Registry) Patterns() []Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Pattern, len(r.patterns))
	for i, p := range r.patterns {
		out[i] = *p
	}
	return out
}

// Scan runs every enabled pattern against one output line in registration
// order and returns every match with its actions resolved. Column offsets
// are rune counts, not cell counts; callers needing exact grid columns for
// wide or combining characters must adjust via their own cell map.
func (r *Registry) Scan(row int, line string) []Result {
	r.mu.RLock()
	patterns := make([]*Pattern, len(r.patterns))
	copy(patterns, r.patterns)
	r.mu.RUnlock()

	var results []Result
	for _, p := range patterns {
		if !p.Enabled || p.Regexp == nil {
			continue
		}
		for _, loc := range p.Regexp.FindAllStringSubmatchIndex(line, -1) {
			match := Match{
				PatternID: p.ID,
				Row:       row,
				Col:       utf8.RuneCountInString(line[:loc[0]]),
				EndCol:    utf8.RuneCountInString(line[:loc[1]]),
				Text:      line[loc[0]:loc[1]],
			}
			for i := 2; i < len(loc); i += 2 {
				if loc[i] < 0 {
					match.Captures = append(match.Captures, "")
					continue
				}
				match.Captures = append(match.Captures, line[loc[i]:loc[i+1]])
			}

			var actions []ResolvedAction
			for _, a := range p.Actions {
				value := string(p.Regexp.ExpandString(nil, a.Param, line, loc))
				actions = append(actions, ResolvedAction{Kind: a.Kind, Value: value})
				if a.Kind == ActionStopPropagation {
					break
				}
			}
			results = append(results, Result{Match: match, Actions: actions})
		}
	}
	return results
}
