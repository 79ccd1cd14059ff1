package livestore

import (
	"sort"
	"sync"
	"time"
)

// Role is the side a participant takes in a live session
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Other returns the opposite side of a session
func (r Role) Other() Role {
	if r == RoleAgent {
		return RoleUser
	}
	return RoleAgent
}

// Conn is a live bidirectional channel to one client.
// ID must be unique per underlying connection for the lifetime of the process.
type Conn interface {
	ID() string
	Send(event string, payload any) error
}

// Participant is a registered identity bound to its current connection
type Participant struct {
	Identity    string
	DisplayName string
	Role        Role
	Conn        Conn
	ConnectedAt time.Time
}

// Presence tracks which users and agents currently hold a live connection.
// A second registration of the same identity and role replaces the first.
type Presence struct {
	mu     sync.RWMutex
	users  map[string]Participant
	agents map[string]Participant
	now    func() time.Time
}

func NewPresence() *Presence {
	return &Presence{
		users:  make(map[string]Participant),
		agents: make(map[string]Participant),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (p *Presence) roleMap(role Role) map[string]Participant {
	if role == RoleAgent {
		return p.agents
	}
	return p.users
}

// Register binds identity to conn under role and returns the participant it evicted, if any.
func (p *Presence) Register(identity, displayName string, role Role, conn Conn) (Participant, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := p.roleMap(role)
	previous, replaced := m[identity]
	m[identity] = Participant{
		Identity:    identity,
		DisplayName: displayName,
		Role:        role,
		Conn:        conn,
		ConnectedAt: p.now(),
	}
	if replaced && previous.Conn.ID() == conn.ID() {
		replaced = false
	}
	return previous, replaced
}

// Unregister removes every entry bound to conn and returns what was removed.
// Entries of the same identity that were re-registered on another connection are untouched.
func (p *Presence) Unregister(conn Conn) []Participant {
	p.mu.Lock()
	defer p.mu.Unlock()

	var removed []Participant
	for _, m := range []map[string]Participant{p.users, p.agents} {
		for identity, participant := range m {
			if participant.Conn.ID() == conn.ID() {
				delete(m, identity)
				removed = append(removed, participant)
			}
		}
	}
	return removed
}

// Lookup finds identity among users first, then agents.
func (p *Presence) Lookup(identity string) (Participant, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if participant, ok := p.users[identity]; ok {
		return participant, true
	}
	participant, ok := p.agents[identity]
	return participant, ok
}

// LookupRole finds identity in one role's map only
func (p *Presence) LookupRole(identity string, role Role) (Participant, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	participant, ok := p.roleMap(role)[identity]
	return participant, ok
}

// ListOnlineAgents returns the identities of connected agents in lexicographic order
func (p *Presence) ListOnlineAgents() []string {
	return p.list(RoleAgent)
}

// ListOnlineUsers returns the identities of connected users in lexicographic order
func (p *Presence) ListOnlineUsers() []string {
	return p.list(RoleUser)
}

func (p *Presence) list(role Role) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m := p.roleMap(role)
	identities := make([]string, 0, len(m))
	for identity := range m {
		identities = append(identities, identity)
	}
	sort.Strings(identities)
	return identities
}
