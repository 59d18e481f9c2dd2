package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionGrid(t *testing.T) {
	allowed := map[State][]State{
		Idle:                  {CardPresent},
		CardPresent:           {PinEntry, Idle},
		PinEntry:              {Authenticated, Failed, Idle},
		Authenticated:         {TransactionInProgress, Idle},
		TransactionInProgress: {Dispensing, Completed, Failed},
		Dispensing:            {Completed, Failed},
		Completed:             {Idle},
		Failed:                {Idle},
	}

	for _, from := range States() {
		for _, to := range States() {
			expected := false
			for _, a := range allowed[from] {
				if a == to {
					expected = true
				}
			}

			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				m := &Machine{state: from}
				err := m.Transition(to)
				if expected {
					require.NoError(t, err)
					assert.Equal(t, to, m.Current())
				} else {
					require.ErrorIs(t, err, ErrInvalidTransition)
					assert.Equal(t, from, m.Current())
				}
			})
		}
	}
}

func TestTransitionRejectsUnknownTarget(t *testing.T) {
	m := NewMachine()
	err := m.Transition(State(42))
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Idle, m.Current())
}

func TestResetFromEveryState(t *testing.T) {
	for _, s := range States() {
		m := &Machine{state: s}
		m.Reset()
		assert.Equal(t, Idle, m.Current(), "reset from %s", s)
	}
}

func TestAllowedTargets(t *testing.T) {
	assert.ElementsMatch(t, []State{Authenticated, Failed, Idle}, AllowedTargets(PinEntry))
	assert.Equal(t, []State{CardPresent}, AllowedTargets(Idle))
	assert.Empty(t, AllowedTargets(State(99)))
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "IDLE", NameOf(Idle))
	assert.Equal(t, "TRANSACTION", NameOf(TransactionInProgress))
	assert.Equal(t, "FAILED", Failed.String())
	assert.Equal(t, UnknownStateName, NameOf(State(8)))
	assert.False(t, State(200).Valid())
	for _, s := range States() {
		assert.True(t, s.Valid())
		assert.NotEqual(t, UnknownStateName, NameOf(s))
	}
}

func TestObserver(t *testing.T) {
	var edges [][2]State
	m := NewMachine().WithObserver(func(from, to State) {
		edges = append(edges, [2]State{from, to})
	})

	require.NoError(t, m.Transition(CardPresent))
	require.Error(t, m.Transition(Dispensing))
	m.Reset()
	m.Reset()

	assert.Equal(t, [][2]State{{Idle, CardPresent}, {CardPresent, Idle}}, edges)
}

func TestConcurrentTransitionsOnlyOneWins(t *testing.T) {
	for i := 0; i < 50; i++ {
		m := &Machine{state: PinEntry}

		var wg sync.WaitGroup
		results := make(chan error, 2)
		for _, target := range []State{Authenticated, Failed} {
			wg.Add(1)
			go func(target State) {
				defer wg.Done()
				results <- m.Transition(target)
			}(target)
		}
		wg.Wait()
		close(results)

		succeeded := 0
		for err := range results {
			if err == nil {
				succeeded++
			}
		}
		assert.Equal(t, 1, succeeded)
	}
}

func TestMaskCard(t *testing.T) {
	assert.Equal(t, "****3456", MaskCard("1234567890123456"))
	assert.Equal(t, "****", MaskCard("12"))
	s := &Session{CardNumber: "4111111111111111"}
	assert.Equal(t, "****1111", s.MaskedCard())
}

func TestSessionExpired(t *testing.T) {
	start := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	s := &Session{StartedAt: start, ExpiresAt: start.Add(time.Minute)}

	assert.False(t, s.Expired(start))
	assert.False(t, s.Expired(start.Add(time.Minute)))
	assert.True(t, s.Expired(start.Add(time.Minute+time.Nanosecond)))

	assert.False(t, (&Session{}).Expired(start), "no deadline set")
	var missing *Session
	assert.False(t, missing.Expired(start))
}
