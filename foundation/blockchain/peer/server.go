package peer

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
)

// Handler represents the node behavior the receive side of the protocol
// dispatches to.
type Handler interface {
	PublicKey() string
	ProcessTransaction(literal string) error
	ProcessProposedBlock(literal string) error
}

// Server accepts inbound peer connections and runs the receive side of the
// protocol for each of them.
type Server struct {
	host      string
	handler   Handler
	evHandler func(v string, args ...any)
	listener  net.Listener
	wg        sync.WaitGroup
	mu        sync.Mutex
	conns     map[net.Conn]struct{}
	shut      chan struct{}
}

// NewServer constructs a server for the host that dispatches to the handler.
func NewServer(host string, handler Handler, evHandler func(v string, args ...any)) *Server {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	return &Server{
		host:      host,
		handler:   handler,
		evHandler: evHandler,
		conns:     make(map[net.Conn]struct{}),
		shut:      make(chan struct{}),
	}
}

// Start binds the host and accepts connections in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.host)
	if err != nil {
		return err
	}
	s.listener = listener

	s.evHandler("peer: server: listening: host[%s]", listener.Addr())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptConnections()
	}()

	return nil
}

// Addr returns the address the server is bound to.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Shutdown stops accepting connections, closes the open ones and waits
// for every handler to return.
func (s *Server) Shutdown() {
	s.evHandler("peer: server: shutdown: started")
	defer s.evHandler("peer: server: shutdown: completed")

	close(s.shut)
	s.listener.Close()

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// =============================================================================

// acceptConnections spawns one handler per inbound connection.
func (s *Server) acceptConnections() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shut:
				return
			default:
			}

			if errors.Is(err, net.ErrClosed) {
				return
			}

			s.evHandler("peer: server: accept: ERROR: %s", err)
			continue
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer func() {
				s.mu.Lock()
				delete(s.conns, conn)
				s.mu.Unlock()

				conn.Close()
				s.wg.Done()
			}()

			s.handleConnection(conn)
		}()
	}
}

// handleConnection runs the receive loop for one peer until the
// connection goes away.
func (s *Server) handleConnection(conn net.Conn) {
	from := conn.RemoteAddr().String()

	s.evHandler("peer: handleConnection: started: peer[%s]", from)
	defer s.evHandler("peer: handleConnection: completed: peer[%s]", from)

	session := NewSession(conn)

	for {
		line, err := session.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.evHandler("peer: handleConnection: peer[%s]: ERROR: %s", from, err)
			}
			return
		}

		if err := s.dispatch(session, line); err != nil {
			s.evHandler("peer: handleConnection: peer[%s]: ERROR: %s", from, err)
			return
		}
	}
}

// dispatch handles one message. Only I/O failures are returned. Malformed
// messages are logged and discarded so the connection stays open.
func (s *Server) dispatch(session Session, line string) error {
	switch {
	case line == "":
		return nil

	case line == MsgRequestPubKey:
		return session.WriteLine(BuyerKeyReply(s.handler.PublicKey()))

	case strings.HasPrefix(line, database.TxBegin):
		if err := s.handler.ProcessTransaction(line); err != nil {
			s.evHandler("peer: dispatch: transaction discarded: %s", err)
		}
		return nil

	case line == MsgNewBlock:
		if err := session.WriteLine(MsgBlockOK); err != nil {
			return err
		}

		literal, err := session.ReadLine()
		if err != nil {
			return err
		}

		if err := s.handler.ProcessProposedBlock(literal); err != nil {
			s.evHandler("peer: dispatch: block discarded: %s", err)
		}
		return nil

	default:
		s.evHandler("peer: dispatch: unknown message discarded: %.48q", line)
		return nil
	}
}
