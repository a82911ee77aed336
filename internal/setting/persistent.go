package setting

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ChangeState tells listeners why a persistent value changed.
type ChangeState int

const (
	// ChangeLoad: the value was restored from storage.
	ChangeLoad ChangeState = iota
	// ChangeSave: the value was written to storage.
	ChangeSave
	// ChangeSet: the value was edited at runtime.
	ChangeSet
)

func (s ChangeState) String() string {
	switch s {
	case ChangeLoad:
		return "load"
	case ChangeSave:
		return "save"
	case ChangeSet:
		return "set"
	default:
		return fmt.Sprintf("ChangeState(%d)", int(s))
	}
}

// Persistent is a yaml-serialisable value stored under one object/property
// key pair. Every Load, Save and Set is announced on Changed.
type Persistent[T any] struct {
	object   string
	property string
	value    T
	def      T

	Changed Bus[ChangeState]
}

func NewPersistent[T any](object, property string, def T) *Persistent[T] {
	return &Persistent[T]{object: object, property: property, value: def, def: def}
}

func (p *Persistent[T]) Get() T { return p.value }

func (p *Persistent[T]) Set(v T) {
	p.value = v
	p.Changed.Publish(ChangeSet)
}

// Load restores the value. A nil store or a missing property resets to the
// default; both still count as a load.
func (p *Persistent[T]) Load(store Store) error {
	defer p.Changed.Publish(ChangeLoad)

	if store == nil || !store.ObjectPropExists(p.object, p.property) {
		p.value = p.def
		return nil
	}
	data, err := store.LoadObjectProp(p.object, p.property)
	if err != nil {
		p.value = p.def
		return fmt.Errorf("setting: load %s/%s: %w", p.object, p.property, err)
	}
	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		p.value = p.def
		return fmt.Errorf("setting: decode %s/%s: %w", p.object, p.property, err)
	}
	p.value = v
	return nil
}

// Save writes the value. A nil store is not an error.
func (p *Persistent[T]) Save(store Store) error {
	if store == nil {
		return nil
	}
	data, err := yaml.Marshal(p.value)
	if err != nil {
		return fmt.Errorf("setting: encode %s/%s: %w", p.object, p.property, err)
	}
	if err := store.SaveObjectProp(p.object, p.property, data); err != nil {
		return fmt.Errorf("setting: save %s/%s: %w", p.object, p.property, err)
	}
	p.Changed.Publish(ChangeSave)
	return nil
}
