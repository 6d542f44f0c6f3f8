package store

import (
	"sync"

	"github.com/ArmandoYairZJ/FrontEnd/internal/apiclient"
	"github.com/ArmandoYairZJ/FrontEnd/internal/session"
)

// Stores is the pair of resource state holders one session owns.
type Stores struct {
	Products *ProductStore
	Users    *UserStore
}

// Registry hands each session its stores, creating them on first use and
// tearing them down at logout.
type Registry struct {
	mu       sync.Mutex
	api      *apiclient.Client
	sessions map[string]*Stores
}

func NewRegistry(api *apiclient.Client) *Registry {
	return &Registry{
		api:      api,
		sessions: make(map[string]*Stores),
	}
}

func (r *Registry) For(sid string, ident session.Identity) *Stores {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sid]; ok {
		return s
	}
	s := &Stores{
		Products: NewProductStore(r.api, ident),
		Users:    NewUserStore(r.api, ident),
	}
	r.sessions[sid] = s
	return s
}

func (r *Registry) Drop(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
}
