// Package pose stores transform records in an indexed arena. Components hold
// Index values instead of pointers, and renderers read world poses by index.
package pose

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Index addresses a record inside an Arena.
type Index int

// None marks a missing parent or reference.
const None Index = -1

var (
	// ErrBadParent indicates a parent index that is not already in the arena.
	ErrBadParent = errors.New("pose: parent index out of range")

	// ErrDuplicateName indicates two records registered under the same name.
	ErrDuplicateName = errors.New("pose: duplicate record name")
)

// Record is one transform. Parent always precedes the child in the arena.
type Record struct {
	Name          string
	Parent        Index
	LocalPosition mgl64.Vec3
	LocalRotation mgl64.Quat
}

// Arena owns every Record of a scene.
type Arena struct {
	records []Record
	byName  map[string]Index
}

func NewArena() *Arena {
	return &Arena{byName: make(map[string]Index)}
}

// Add appends a record and returns its index.
func (a *Arena) Add(name string, parent Index, localPos mgl64.Vec3, localRot mgl64.Quat) (Index, error) {
	if parent != None && !a.Valid(parent) {
		return None, fmt.Errorf("%w: %d for %q", ErrBadParent, parent, name)
	}
	if name != "" {
		if _, ok := a.byName[name]; ok {
			return None, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}
	if localRot == (mgl64.Quat{}) {
		localRot = mgl64.QuatIdent()
	}

	idx := Index(len(a.records))
	a.records = append(a.records, Record{
		Name:          name,
		Parent:        parent,
		LocalPosition: localPos,
		LocalRotation: localRot.Normalize(),
	})
	if name != "" {
		a.byName[name] = idx
	}
	return idx, nil
}

func (a *Arena) Len() int { return len(a.records) }

func (a *Arena) Valid(i Index) bool { return i >= 0 && int(i) < len(a.records) }

// Find looks a record up by name.
func (a *Arena) Find(name string) (Index, bool) {
	i, ok := a.byName[name]
	return i, ok
}

// Record returns a copy of the record at i.
func (a *Arena) Record(i Index) Record { return a.records[i] }

func (a *Arena) Name(i Index) string { return a.records[i].Name }

func (a *Arena) Parent(i Index) Index { return a.records[i].Parent }

func (a *Arena) LocalPosition(i Index) mgl64.Vec3 { return a.records[i].LocalPosition }

func (a *Arena) LocalRotation(i Index) mgl64.Quat { return a.records[i].LocalRotation }

func (a *Arena) SetLocalPosition(i Index, p mgl64.Vec3) { a.records[i].LocalPosition = p }

func (a *Arena) SetLocalRotation(i Index, q mgl64.Quat) { a.records[i].LocalRotation = q.Normalize() }

// WorldPosition resolves the position of i through its parent chain.
func (a *Arena) WorldPosition(i Index) mgl64.Vec3 {
	r := a.records[i]
	if r.Parent == None {
		return r.LocalPosition
	}
	return a.WorldPosition(r.Parent).Add(a.WorldRotation(r.Parent).Rotate(r.LocalPosition))
}

// WorldRotation resolves the rotation of i through its parent chain.
func (a *Arena) WorldRotation(i Index) mgl64.Quat {
	r := a.records[i]
	if r.Parent == None {
		return r.LocalRotation
	}
	return a.WorldRotation(r.Parent).Mul(r.LocalRotation).Normalize()
}

// SetWorldPosition moves i so its world position becomes p.
func (a *Arena) SetWorldPosition(i Index, p mgl64.Vec3) {
	r := &a.records[i]
	if r.Parent == None {
		r.LocalPosition = p
		return
	}
	parentPos := a.WorldPosition(r.Parent)
	parentRot := a.WorldRotation(r.Parent)
	r.LocalPosition = parentRot.Inverse().Rotate(p.Sub(parentPos))
}

// SetWorldRotation rotates i so its world rotation becomes q.
func (a *Arena) SetWorldRotation(i Index, q mgl64.Quat) {
	r := &a.records[i]
	if r.Parent == None {
		r.LocalRotation = q.Normalize()
		return
	}
	r.LocalRotation = a.WorldRotation(r.Parent).Inverse().Mul(q).Normalize()
}

// TransformDirection rotates a local-space direction of i into world space.
// Scale is not applied. None is treated as the world origin.
func (a *Arena) TransformDirection(i Index, v mgl64.Vec3) mgl64.Vec3 {
	if i == None {
		return v
	}
	return a.WorldRotation(i).Rotate(v)
}

// Snapshot copies every world position, in index order.
func (a *Arena) Snapshot() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(a.records))
	for i := range a.records {
		out[i] = a.WorldPosition(Index(i))
	}
	return out
}
