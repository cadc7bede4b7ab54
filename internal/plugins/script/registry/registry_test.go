package registry

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingScript struct {
	name string
}

func (s *countingScript) Run(runtime.Record) error { return nil }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := New()

	script := &countingScript{name: "a"}
	id := reg.Register(script)
	assert.Equal(t, "GoScript1", id)

	got, err := reg.Lookup(id)
	require.NoError(t, err)
	assert.Same(t, script, got)

	_, err = reg.Lookup("GoScript999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_IdentifiersAreStrictlyIncreasing(t *testing.T) {
	reg := New()
	first := reg.Register(&countingScript{})
	second := reg.Register(&countingScript{})

	n1, err := strconv.Atoi(first[len(IDPrefix):])
	require.NoError(t, err)
	n2, err := strconv.Atoi(second[len(IDPrefix):])
	require.NoError(t, err)
	assert.Greater(t, n2, n1)
}

func TestRegistry_ConcurrentRegistrationsGetDistinctIDs(t *testing.T) {
	const n = 1000
	reg := New()

	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- reg.Register(&countingScript{})
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, n)
	for id := range ids {
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, reg.Len())
}

func TestRegistry_LookupSurvivesManyRegistrations(t *testing.T) {
	reg := New()
	target := &countingScript{name: "target"}
	id := reg.Register(target)

	for i := 0; i < 10000; i++ {
		reg.Register(&countingScript{})
	}

	got, err := reg.Lookup(id)
	require.NoError(t, err)
	assert.Same(t, target, got)
}

func TestRegistry_ConcurrentLookupsDuringRegistration(t *testing.T) {
	reg := New()
	target := &countingScript{name: "target"}
	id := reg.Register(target)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				reg.Register(&countingScript{})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				got, err := reg.Lookup(id)
				if assert.NoError(t, err) {
					assert.Same(t, target, got)
				}
			}
		}()
	}
	wg.Wait()
}

func TestRegistry_Unregister(t *testing.T) {
	reg := New()
	id := reg.Register(&countingScript{})
	require.Equal(t, 1, reg.Len())

	reg.Unregister(id)
	reg.Unregister(id)
	reg.Unregister("GoScript404")
	assert.Equal(t, 0, reg.Len())

	_, err := reg.Lookup(id)
	assert.ErrorIs(t, err, ErrNotFound)

	next := reg.Register(&countingScript{})
	assert.NotEqual(t, id, next, "identifiers are never reused")
}

func TestIsGenerated(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"GoScript1", true},
		{"GoScript12345", true},
		{"GoScript", false},
		{"GoScriptX", false},
		{"goscript1", false},
		{"myProperty", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGenerated(tt.id))
		})
	}
}

func TestMissing(t *testing.T) {
	t.Run("embedded miss is a plain not found", func(t *testing.T) {
		err := Missing("GoScript7", runtime.ModeEmbedded)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, errors.Is(err, ErrEmbeddedOnly))
	})

	t.Run("remote miss on a generated id names the limitation", func(t *testing.T) {
		err := Missing("GoScript7", runtime.ModeRemote)
		assert.ErrorIs(t, err, ErrEmbeddedOnly)
		assert.False(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "defined in Go code")
		assert.Contains(t, err.Error(), "remote execution")
	})

	t.Run("remote miss on a typo stays a not found", func(t *testing.T) {
		err := Missing("GoScrpt7", runtime.ModeRemote)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
