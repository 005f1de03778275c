package testutils

import (
	"fmt"
	"sync"
)

// ScriptedRoller implements the rpg-toolkit dice.Roller interface by handing
// out pre-seeded faces in order. It fails once the script runs out so a test
// that rolls more than it planned is caught.
type ScriptedRoller struct {
	mu    sync.Mutex
	faces []int
	calls [][2]int
}

// NewScriptedRoller creates a roller that yields faces in order
func NewScriptedRoller(faces ...int) *ScriptedRoller {
	return &ScriptedRoller{faces: faces}
}

// Push appends more faces to the script
func (r *ScriptedRoller) Push(faces ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faces = append(r.faces, faces...)
}

// Roll returns the next scripted face
func (r *ScriptedRoller) Roll(size int) (int, error) {
	faces, err := r.RollN(1, size)
	if err != nil {
		return 0, err
	}
	return faces[0], nil
}

// RollN returns the next count scripted faces
func (r *ScriptedRoller) RollN(count, size int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, [2]int{count, size})
	if len(r.faces) < count {
		return nil, fmt.Errorf("scripted roller: wanted %dd%d, %d face(s) left", count, size, len(r.faces))
	}
	out := append([]int(nil), r.faces[:count]...)
	r.faces = r.faces[count:]
	for _, face := range out {
		if face < 1 || face > size {
			return nil, fmt.Errorf("scripted roller: face %d out of range for d%d", face, size)
		}
	}
	return out, nil
}

// Remaining reports how many scripted faces have not been consumed
func (r *ScriptedRoller) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.faces)
}

// Calls returns the (count, size) pairs requested so far
func (r *ScriptedRoller) Calls() [][2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][2]int(nil), r.calls...)
}
