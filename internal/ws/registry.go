// Package ws serves the live camera guidance endpoint: each websocket text
// frame carries one image, each reply one stream-mode validation result.
package ws

import (
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Registry tracks open stream connections so shutdown can close them
// instead of leaving clients hanging.
type Registry struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[*websocket.Conn]struct{})}
}

func (r *Registry) add(c *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = struct{}{}
}

func (r *Registry) remove(c *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
}

// Count returns the number of open stream connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// CloseAll closes every open connection.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.conns {
		_ = c.Close()
	}
	r.conns = make(map[*websocket.Conn]struct{})
}
