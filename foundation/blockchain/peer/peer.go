// Package peer maintains the peer related information such as the set
// of connected peers, the wire protocol spoken with them and the server
// accepting their connections.
package peer

import (
	"math/rand/v2"
	"sync"
)

// Peer represents information about a Node in the network.
type Peer struct {
	Host string
}

// New contructs a new info value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// String implements the fmt.Stringer interface.
func (p Peer) String() string {
	return p.Host
}

// =============================================================================

// PeerSet represents the set of established outbound peer connections.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]*Conn
}

// NewPeerSet constructs a new set to manage peer connections.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]*Conn),
	}
}

// Add adds a new connection to the set. It returns false if the peer
// already has a connection.
func (ps *PeerSet) Add(conn *Conn) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[conn.Peer()]
	if !exists {
		ps.set[conn.Peer()] = conn
		return true
	}

	return false
}

// Remove removes a peer from the set and closes its connection.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if conn, exists := ps.set[peer]; exists {
		conn.Close()
		delete(ps.set, peer)
	}
}

// Copy returns a list of the connections.
func (ps *PeerSet) Copy() []*Conn {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	conns := make([]*Conn, 0, len(ps.set))
	for _, conn := range ps.set {
		conns = append(conns, conn)
	}

	return conns
}

// Peers returns the list of connected peers.
func (ps *PeerSet) Peers() []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		peers = append(peers, peer)
	}

	return peers
}

// Random returns one connection picked at random.
func (ps *PeerSet) Random() (*Conn, bool) {
	conns := ps.Copy()
	if len(conns) == 0 {
		return nil, false
	}

	return conns[rand.IntN(len(conns))], true
}

// Len returns the number of connections in the set.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Close closes every connection and empties the set.
func (ps *PeerSet) Close() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for peer, conn := range ps.set {
		conn.Close()
		delete(ps.set, peer)
	}
}
