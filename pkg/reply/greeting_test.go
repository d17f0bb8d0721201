package reply

import (
	"fmt"
	"sync"
	"testing"
)

func TestGateShouldGreet(t *testing.T) {
	t.Run("first call per session greets once", func(t *testing.T) {
		gate := NewGate("")

		if !gate.ShouldGreet(nil, "robot-1") {
			t.Error("expected first call to greet")
		}
		if gate.ShouldGreet(nil, "robot-1") {
			t.Error("expected second call not to greet")
		}
		if !gate.ShouldGreet(nil, "robot-2") {
			t.Error("expected a new session to greet")
		}
	})

	t.Run("default session greets exactly once process-wide", func(t *testing.T) {
		gate := NewGate("")

		if !gate.ShouldGreet(nil, "") {
			t.Error("expected first anonymous call to greet")
		}
		if gate.ShouldGreet(nil, "") {
			t.Error("expected second anonymous call not to greet")
		}
	})

	t.Run("history always wins", func(t *testing.T) {
		gate := NewGate("")

		if gate.ShouldGreet([]string{"hola"}, "robot-1") {
			t.Error("expected history to suppress greeting")
		}
		// The session was not consumed by the history turn.
		if !gate.ShouldGreet(nil, "robot-1") {
			t.Error("expected first history-free call to greet")
		}
		if gate.ShouldGreet([]string{"hola"}, "") {
			t.Error("expected history to suppress default greeting too")
		}
	})
}

func TestGateShouldGreetConcurrent(t *testing.T) {
	const callers = 64

	run := func(t *testing.T, sessionID string) {
		gate := NewGate("")
		var wg sync.WaitGroup
		var start sync.WaitGroup
		start.Add(1)

		results := make(chan bool, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				start.Wait()
				results <- gate.ShouldGreet(nil, sessionID)
			}()
		}
		start.Done()
		wg.Wait()
		close(results)

		greeted := 0
		for r := range results {
			if r {
				greeted++
			}
		}
		if greeted != 1 {
			t.Errorf("expected exactly one greeted caller, got %d", greeted)
		}
		if gate.ShouldGreet(nil, sessionID) {
			t.Error("expected subsequent call not to greet")
		}
	}

	t.Run("same session", func(t *testing.T) { run(t, "robot-1") })
	t.Run("default session", func(t *testing.T) { run(t, "") })
}

func TestGateConcurrentDistinctSessions(t *testing.T) {
	gate := NewGate("")
	const sessions = 32

	var wg sync.WaitGroup
	greeted := make(chan string, sessions*2)
	for i := 0; i < sessions; i++ {
		id := fmt.Sprintf("robot-%d", i)
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if gate.ShouldGreet(nil, id) {
					greeted <- id
				}
			}()
		}
	}
	wg.Wait()
	close(greeted)

	counts := make(map[string]int)
	for id := range greeted {
		counts[id]++
	}
	if len(counts) != sessions {
		t.Errorf("expected %d greeted sessions, got %d", sessions, len(counts))
	}
	for id, n := range counts {
		if n != 1 {
			t.Errorf("session %s greeted %d times", id, n)
		}
	}
}

func TestGateApply(t *testing.T) {
	gate := NewGate("")

	t.Run("prefixes the greeting", func(t *testing.T) {
		got := gate.Apply("¿En qué te ayudo?")
		want := DefaultGreeting + " ¿En qué te ayudo?"
		if got != want {
			t.Errorf("Apply = %q, want %q", got, want)
		}
	})

	t.Run("idempotent when model already greeted", func(t *testing.T) {
		in := "Hola, soy Chapi, listo para ayudar"
		if got := gate.Apply(in); got != in {
			t.Errorf("Apply = %q, want unchanged input", got)
		}
	})

	t.Run("case-insensitive prefix match", func(t *testing.T) {
		in := "HOLA, SOY CHAPI, aquí estoy"
		if got := gate.Apply(in); got != in {
			t.Errorf("Apply = %q, want unchanged input", got)
		}
	})

	t.Run("result is trimmed", func(t *testing.T) {
		if got := gate.Apply(""); got != DefaultGreeting {
			t.Errorf("Apply(\"\") = %q, want bare greeting", got)
		}
	})

	t.Run("custom greeting", func(t *testing.T) {
		custom := NewGate("Buenas, soy Otto, a tus órdenes.")
		if got := custom.Apply("buenas, soy otto, aquí sigo"); got != "buenas, soy otto, aquí sigo" {
			t.Errorf("expected custom prefix match, got %q", got)
		}
	})
}
