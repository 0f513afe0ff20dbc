package server

import "sync"

// AppContext carries process-wide UI state, initialized once at startup and
// passed explicitly to the components that need it.
type AppContext struct {
	mu    sync.RWMutex
	theme string
}

func NewAppContext(theme string) *AppContext {
	return &AppContext{theme: theme}
}

func (a *AppContext) Theme() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.theme
}

func (a *AppContext) SetTheme(theme string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.theme = theme
}
