package registry_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/registry"
)

type kind string

func TestFirstRegistrationWins(t *testing.T) {
	r := registry.New[kind, string]()

	assert.True(t, r.Register("damage", "first"))
	assert.True(t, r.Register("heal", "heal"))
	assert.False(t, r.Register("damage", "second"))

	h, ok := r.Lookup("damage")
	assert.True(t, ok)
	assert.Equal(t, "first", h)

	_, ok = r.Lookup("animation")
	assert.False(t, ok)

	assert.Equal(t, []kind{"damage", "heal"}, r.Types())
	assert.Equal(t, []registry.Entry[kind, string]{
		{Type: "damage", Handler: "first"},
		{Type: "heal", Handler: "heal"},
	}, r.Entries())
}

func TestEntriesIsASnapshot(t *testing.T) {
	r := registry.New[kind, int]()
	r.Register("a", 1)

	entries := r.Entries()
	r.Register("b", 2)

	assert.Len(t, entries, 1)
	assert.Len(t, r.Entries(), 2)
}

func TestConcurrentRegister(t *testing.T) {
	r := registry.New[kind, int]()

	var wg sync.WaitGroup
	wins := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins <- r.Register("same", i)
		}(i)
	}
	wg.Wait()
	close(wins)

	count := 0
	for won := range wins {
		if won {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, r.Entries(), 1)
}
