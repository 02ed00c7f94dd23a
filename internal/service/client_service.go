package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/authflow"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/userstate"
)

// Client is the auth flow machinery of one client device.
type Client struct {
	ID          string
	Auth        *ClientAuth
	Coordinator *authflow.Coordinator
	Store       *userstate.Store
}

type clientEntry struct {
	client   *Client
	lastUsed time.Time
}

// ClientService keeps one Client per client id. Clients unused for longer
// than the idle timeout are closed and dropped; a later request rebuilds
// them from the session store.
type ClientService struct {
	ctx         context.Context
	auth        *AuthService
	profiles    repository.ProfileRepository
	idleTimeout time.Duration
	now         func() time.Time

	mu      sync.Mutex
	clients map[string]*clientEntry
	closed  bool

	evictTicker *time.Ticker
	stopEvict   chan struct{}
	stopOnce    sync.Once
}

// NewClientService creates a ClientService. Flows of every client run on ctx.
// A positive idleTimeout starts a background task evicting idle clients.
func NewClientService(ctx context.Context, auth *AuthService, profiles repository.ProfileRepository, idleTimeout time.Duration) *ClientService {
	s := &ClientService{
		ctx:         ctx,
		auth:        auth,
		profiles:    profiles,
		idleTimeout: idleTimeout,
		now:         time.Now,
		clients:     make(map[string]*clientEntry),
		stopEvict:   make(chan struct{}),
	}
	if idleTimeout > 0 {
		s.evictTicker = time.NewTicker(idleTimeout / 2)
		go s.startEviction()
	}
	return s
}

func (s *ClientService) startEviction() {
	for {
		select {
		case <-s.evictTicker.C:
			s.evictIdle()
		case <-s.stopEvict:
			s.evictTicker.Stop()
			return
		}
	}
}

// evictIdle closes and drops every client not used within the idle timeout.
func (s *ClientService) evictIdle() int {
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	var idle []*Client
	for id, e := range s.clients {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e.client)
			delete(s.clients, id)
		}
	}
	s.mu.Unlock()

	for _, c := range idle {
		c.Coordinator.Close()
	}
	if len(idle) > 0 {
		log.Debug().Int("clients", len(idle)).Msg("Evicted idle clients")
	}
	return len(idle)
}

// Client returns the client for id, creating it on first use. A new client
// immediately checks for a session left over from an earlier visit. After
// CloseAll the returned client's coordinator is already closed.
func (s *ClientService) Client(id string) *Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.clients[id]; ok {
		e.lastUsed = s.now()
		return e.client
	}

	auth := s.auth.ForClient(id)
	store := userstate.NewStore()
	coordinator := authflow.NewCoordinator(s.ctx, auth, s.profiles, store)
	store.ContinueSignUpWith(coordinator)
	c := &Client{ID: id, Auth: auth, Coordinator: coordinator, Store: store}
	if s.closed {
		coordinator.Close()
		return c
	}
	s.clients[id] = &clientEntry{client: c, lastUsed: s.now()}

	log.Debug().Str("clientId", id).Msg("Client created")
	coordinator.Dispatch(authflow.CheckSession())
	return c
}

// CloseAll stops eviction and closes every client's coordinator, waiting for
// running flows.
func (s *ClientService) CloseAll() {
	s.stopOnce.Do(func() { close(s.stopEvict) })

	s.mu.Lock()
	s.closed = true
	clients := make([]*Client, 0, len(s.clients))
	for _, e := range s.clients {
		clients = append(clients, e.client)
	}
	s.clients = make(map[string]*clientEntry)
	s.mu.Unlock()

	for _, c := range clients {
		c.Coordinator.Close()
	}
	log.Info().Int("clients", len(clients)).Msg("Closed all clients")
}
