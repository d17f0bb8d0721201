package reply

import (
	"strings"
	"sync"
)

// DefaultGreeting is the canonical introduction spoken on the first
// turn of every session.
const DefaultGreeting = "Hola, soy Chapi, tu compañero de apoyo emocional."

// Gate decides, once per conversation session, whether the canonical
// greeting must be prefixed to the first reply. Construct one per
// process and share it across requests; the zero value is not usable.
//
// The seen-session set and the default-session flag guard disjoint
// data, so each has its own mutex. Both decisions are atomic
// check-and-set: under concurrent first-turn requests for the same
// identity, exactly one caller observes "not yet greeted".
type Gate struct {
	greeting string
	prefix   string

	mu   sync.Mutex
	seen map[string]struct{}

	defaultMu   sync.Mutex
	defaultSent bool
}

// NewGate creates a greeting gate. An empty greeting selects
// DefaultGreeting.
func NewGate(greeting string) *Gate {
	greeting = strings.TrimSpace(greeting)
	if greeting == "" {
		greeting = DefaultGreeting
	}
	return &Gate{
		greeting: greeting,
		prefix:   greetingPrefix(greeting),
		seen:     make(map[string]struct{}),
	}
}

// ShouldGreet reports whether this turn is the first for its session
// and, when it is, records the session as greeted. A non-empty history
// means the turn cannot be a first turn, regardless of session state.
// Sessions are never un-marked; the set only grows.
func (g *Gate) ShouldGreet(history []string, sessionID string) bool {
	if len(history) > 0 {
		return false
	}
	if sessionID == "" {
		// Un-identified callers share a single default session: only
		// the very first such call process-wide gets the greeting.
		g.defaultMu.Lock()
		defer g.defaultMu.Unlock()
		if g.defaultSent {
			return false
		}
		g.defaultSent = true
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen[sessionID]; ok {
		return false
	}
	g.seen[sessionID] = struct{}{}
	return true
}

// Apply prefixes the greeting to reply. If the reply already opens
// with the greeting's first words (case-insensitive), it is returned
// unchanged so a model-produced greeting is never doubled.
func (g *Gate) Apply(reply string) string {
	if strings.HasPrefix(strings.ToLower(reply), g.prefix) {
		return reply
	}
	return strings.TrimSpace(g.greeting + " " + reply)
}

// Greeting returns the canonical greeting text.
func (g *Gate) Greeting() string {
	return g.greeting
}

// greetingPrefix returns the lower-cased opening of the greeting, up
// to its second comma when present. For the default greeting this is
// "hola, soy chapi".
func greetingPrefix(greeting string) string {
	lower := strings.ToLower(greeting)
	if i := strings.Index(lower, ","); i >= 0 {
		if j := strings.Index(lower[i+1:], ","); j >= 0 {
			return lower[:i+1+j]
		}
	}
	return strings.TrimSuffix(lower, ".")
}
