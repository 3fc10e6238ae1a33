package sync

// Running reports whether m is tracking.
func Running(m *Manager) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}
