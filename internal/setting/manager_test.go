package setting

import (
	"errors"
	"reflect"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

type memStore struct {
	props   map[string][]byte
	failErr error
}

func newMemStore() *memStore { return &memStore{props: map[string][]byte{}} }

func (s *memStore) ObjectPropExists(obj, prop string) bool {
	_, ok := s.props[obj+"/"+prop]
	return ok
}

func (s *memStore) LoadObjectProp(obj, prop string) ([]byte, error) {
	if s.failErr != nil {
		return nil, s.failErr
	}
	return s.props[obj+"/"+prop], nil
}

func (s *memStore) SaveObjectProp(obj, prop string, data []byte) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.props[obj+"/"+prop] = append([]byte(nil), data...)
	return nil
}

func TestManagerDefaultsInDegradedMode(t *testing.T) {
	m := NewCommonSettingManager(nil)
	if !m.Degraded() {
		t.Error("expected degraded mode without a store")
	}
	if got := m.Settings(); got != DefaultCommonSettings() {
		t.Errorf("got %+v, want defaults", got)
	}
	if err := m.Save(); err != nil {
		t.Errorf("save in degraded mode should not fail: %v", err)
	}
	if m.Scale() != 1 {
		t.Errorf("expected scale 1, got %v", m.Scale())
	}
}

func TestManagerCursorSizeNotifications(t *testing.T) {
	m := NewCommonSettingManager(nil)
	var sizes []float64
	m.CursorSizeChanged.Subscribe(func(v float64) { sizes = append(sizes, v) })

	if err := m.SetCursorSize(2); err != nil {
		t.Fatal(err)
	}
	if err := m.SetCursorSize(2); err != nil {
		t.Fatal(err)
	}
	if err := m.SetCursorSize(0); !errors.Is(err, ErrCursorSize) {
		t.Errorf("expected ErrCursorSize, got %v", err)
	}

	if !reflect.DeepEqual(sizes, []float64{2}) {
		t.Errorf("expected a single notification, got %v", sizes)
	}
	if m.Scale() != 2 {
		t.Errorf("scale should follow cursor size, got %v", m.Scale())
	}
}

func TestManagerPersistsThroughStore(t *testing.T) {
	store := newMemStore()
	m := NewCommonSettingManager(store)
	if err := m.SetCursorSize(1.5); err != nil {
		t.Fatal(err)
	}
	m.SetAliveCursorActive(false)
	if err := m.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded := NewCommonSettingManager(store)
	want := CommonSettings{CursorSize: 1.5, IsAliveCursorActive: false}
	if got := reloaded.Settings(); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestManagerLoadFailureFallsBack(t *testing.T) {
	store := newMemStore()
	store.props["settings/common"] = []byte("cursor_size: [not a number")
	m := NewCommonSettingManager(store)
	if got := m.Settings(); got != DefaultCommonSettings() {
		t.Errorf("expected defaults after bad data, got %+v", got)
	}

	store.props["settings/common"] = []byte("cursor_size: 500\n")
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if m.CursorSize() != 1 {
		t.Errorf("out of range size should be reset, got %v", m.CursorSize())
	}
}

func TestManagerWithGData(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	gm, err := gdata.Open(gdata.Config{AppName: "creepersim_test"})
	if err != nil {
		t.Skipf("gdata unavailable: %v", err)
	}

	m := NewCommonSettingManagerGData(gm)
	if err := m.SetCursorSize(3); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if got := NewCommonSettingManagerGData(gm).CursorSize(); got != 3 {
		t.Errorf("expected reloaded cursor size 3, got %v", got)
	}
	if !NewCommonSettingManagerGData(nil).Degraded() {
		t.Error("nil gdata manager should give degraded mode")
	}
}

func TestPersistentChangeStates(t *testing.T) {
	store := newMemStore()
	p := NewPersistent("obj", "prop", 7)
	var states []ChangeState
	p.Changed.Subscribe(func(s ChangeState) { states = append(states, s) })

	if err := p.Load(store); err != nil {
		t.Fatal(err)
	}
	p.Set(9)
	if err := p.Save(store); err != nil {
		t.Fatal(err)
	}

	q := NewPersistent("obj", "prop", 0)
	if err := q.Load(store); err != nil {
		t.Fatal(err)
	}
	if q.Get() != 9 {
		t.Errorf("expected 9, got %d", q.Get())
	}

	want := []ChangeState{ChangeLoad, ChangeSet, ChangeSave}
	if !reflect.DeepEqual(states, want) {
		t.Errorf("got %v, want %v", states, want)
	}

	store.failErr = errors.New("disk gone")
	if err := q.Save(store); err == nil {
		t.Error("expected save error")
	}
}

func TestBehaviourForwardsAliveCursorActive(t *testing.T) {
	m := NewCommonSettingManager(nil)
	var b CommonSettingBehaviour
	var got []bool
	b.OnAliveCursorActiveDeactive.Subscribe(func(v bool) { got = append(got, v) })

	b.Attach(m)
	m.SetAliveCursorActive(false)
	m.SetAliveCursorActive(true)
	b.Detach()
	m.SetAliveCursorActive(false)

	if want := []bool{false, true}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if m.IsAliveCursorActiveChanged.Len() != 0 {
		t.Error("detach should unsubscribe")
	}
}
