package setting

// CommonSettingBehaviour re-raises common setting changes on its own event
// lists so scene objects can react without knowing the manager.
type CommonSettingBehaviour struct {
	OnAliveCursorActiveDeactive Bus[bool]

	detach func()
}

// Attach subscribes to m, replacing any earlier attachment.
func (b *CommonSettingBehaviour) Attach(m *CommonSettingManager) {
	b.Detach()
	b.detach = m.IsAliveCursorActiveChanged.Subscribe(b.OnIsAliveCursorActiveChanged)
}

func (b *CommonSettingBehaviour) Detach() {
	if b.detach != nil {
		b.detach()
		b.detach = nil
	}
}

func (b *CommonSettingBehaviour) OnIsAliveCursorActiveChanged(active bool) {
	b.OnAliveCursorActiveDeactive.Publish(active)
}
