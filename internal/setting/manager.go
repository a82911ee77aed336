package setting

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"github.com/san-kum/creepersim/internal/logger"
	"go.uber.org/zap"
)

// Store is the persistence backend. *gdata.Manager satisfies it.
type Store interface {
	ObjectPropExists(objectKey, propKey string) bool
	LoadObjectProp(objectKey, propKey string) ([]byte, error)
	SaveObjectProp(objectKey, propKey string, data []byte) error
}

// OpenStore opens the per-user gdata storage for appName.
func OpenStore(appName string) (*gdata.Manager, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("setting: open store: %w", err)
	}
	return m, nil
}

const (
	commonObject   = "settings"
	commonProperty = "common"

	MinCursorSize = 0.1
	MaxCursorSize = 10
)

var ErrCursorSize = errors.New("setting: cursor size out of range")

// CommonSettings are shared by every cursor component.
type CommonSettings struct {
	// CursorSize is the global scale factor applied to distances and speeds.
	CursorSize          float64 `yaml:"cursor_size"`
	IsAliveCursorActive bool    `yaml:"is_alive_cursor_active"`
}

func DefaultCommonSettings() CommonSettings {
	return CommonSettings{CursorSize: 1, IsAliveCursorActive: true}
}

// WindowStage marks whether a window event fires before or after the change.
type WindowStage int

const (
	WindowBefore WindowStage = iota
	WindowAfter
)

// WindowEvent reports a monitor/resolution change of the host window.
type WindowEvent struct {
	Stage  WindowStage
	Width  int
	Height int
}

// CommonSettingManager owns CommonSettings and announces changes on typed
// buses. Without a store it runs in memory only.
type CommonSettingManager struct {
	mu       sync.RWMutex
	store    Store
	settings *Persistent[CommonSettings]
	log      *zap.Logger

	CursorSizeChanged          Bus[float64]
	IsAliveCursorActiveChanged Bus[bool]
	WindowChanged              Bus[WindowEvent]
}

// NewCommonSettingManager loads saved settings. A load failure is logged and
// defaults are used; the manager is still returned.
func NewCommonSettingManager(store Store) *CommonSettingManager {
	m := &CommonSettingManager{
		store:    store,
		settings: NewPersistent(commonObject, commonProperty, DefaultCommonSettings()),
		log:      logger.Named("setting"),
	}
	if err := m.Load(); err != nil {
		m.log.Warn("failed to load settings, using defaults", zap.Error(err))
	}
	return m
}

// NewCommonSettingManagerGData avoids a typed-nil Store when m is nil.
func NewCommonSettingManagerGData(m *gdata.Manager) *CommonSettingManager {
	if m == nil {
		return NewCommonSettingManager(nil)
	}
	return NewCommonSettingManager(m)
}

func (m *CommonSettingManager) Degraded() bool { return m.store == nil }

func (m *CommonSettingManager) Load() error {
	m.mu.Lock()
	err := m.settings.Load(m.store)
	s := m.settings.Get()
	if s.CursorSize < MinCursorSize || s.CursorSize > MaxCursorSize || math.IsNaN(s.CursorSize) {
		s.CursorSize = DefaultCommonSettings().CursorSize
		m.settings.value = s
	}
	m.mu.Unlock()
	if err == nil {
		m.log.Debug("settings loaded", zap.Float64("cursor_size", s.CursorSize), zap.Bool("alive_cursor_active", s.IsAliveCursorActive))
	}
	return err
}

func (m *CommonSettingManager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings.Save(m.store)
}

func (m *CommonSettingManager) Settings() CommonSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings.Get()
}

func (m *CommonSettingManager) CursorSize() float64 { return m.Settings().CursorSize }

// Scale lets the manager act as the frame clock's scale provider.
func (m *CommonSettingManager) Scale() float64 { return m.CursorSize() }

func (m *CommonSettingManager) IsAliveCursorActive() bool { return m.Settings().IsAliveCursorActive }

// SetCursorSize publishes on CursorSizeChanged only when the value changes.
func (m *CommonSettingManager) SetCursorSize(size float64) error {
	if math.IsNaN(size) || size < MinCursorSize || size > MaxCursorSize {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrCursorSize, size, MinCursorSize, MaxCursorSize)
	}
	m.mu.Lock()
	s := m.settings.Get()
	changed := s.CursorSize != size
	if changed {
		s.CursorSize = size
		m.settings.Set(s)
	}
	m.mu.Unlock()

	if changed {
		m.CursorSizeChanged.Publish(size)
	}
	return nil
}

// SetAliveCursorActive publishes on IsAliveCursorActiveChanged only when the
// value changes.
func (m *CommonSettingManager) SetAliveCursorActive(active bool) {
	m.mu.Lock()
	s := m.settings.Get()
	changed := s.IsAliveCursorActive != active
	if changed {
		s.IsAliveCursorActive = active
		m.settings.Set(s)
	}
	m.mu.Unlock()

	if changed {
		m.IsAliveCursorActiveChanged.Publish(active)
	}
}

// NotifyWindowChanged relays a host window event to subscribers.
func (m *CommonSettingManager) NotifyWindowChanged(ev WindowEvent) {
	m.WindowChanged.Publish(ev)
}
