package state

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/peer"
)

// NetRequestBuyerKey asks the peer for the public key a new transaction
// should be made out to. A connection that fails is dropped.
func (s *State) NetRequestBuyerKey(conn *peer.Conn) (string, error) {
	s.evHandler("state: NetRequestBuyerKey: started: peer[%s]", conn.Peer())
	defer s.evHandler("state: NetRequestBuyerKey: completed: peer[%s]", conn.Peer())

	var key string
	err := conn.Do(func(session peer.Session) error {
		var err error
		key, err = peer.RequestBuyerKey(session)
		return err
	})
	if err != nil {
		s.dropPeer(conn, err)
		return "", fmt.Errorf("%s: %w", conn.Peer(), err)
	}

	return key, nil
}

// NetSendTransaction sends the signed transaction to the peer.
func (s *State) NetSendTransaction(conn *peer.Conn, tx database.Transaction) error {
	s.evHandler("state: NetSendTransaction: started: tx[%s]: peer[%s]", tx.ID, conn.Peer())
	defer s.evHandler("state: NetSendTransaction: completed: tx[%s]", tx.ID)

	err := conn.Do(func(session peer.Session) error {
		return session.WriteLine(tx.String())
	})
	if err != nil {
		s.dropPeer(conn, err)
		return fmt.Errorf("%s: %w", conn.Peer(), err)
	}

	return nil
}

// NetSendBlockToPeers sends the block to every peer. A failing peer is
// logged and skipped.
func (s *State) NetSendBlockToPeers(block database.Block) {
	s.evHandler("state: NetSendBlockToPeers: started: block[%s]", block.ID)
	defer s.evHandler("state: NetSendBlockToPeers: completed: block[%s]", block.ID)

	literal := block.String()

	for _, conn := range s.peers.Copy() {
		err := conn.Do(func(session peer.Session) error {
			return peer.SendBlock(session, literal)
		})
		if err != nil {
			s.evHandler("state: NetSendBlockToPeers: WARNING: peer[%s]: %s", conn.Peer(), err)
			s.dropPeer(conn, err)
			continue
		}

		s.evHandler("state: NetSendBlockToPeers: sent to peer[%s]", conn.Peer())
	}
}

// NetConnectPeer dials a peer that was not reachable at startup and adds it
// to the peer set.
func (s *State) NetConnectPeer(ctx context.Context, host string, timeout time.Duration) error {
	s.evHandler("state: NetConnectPeer: started: peer[%s]", host)
	defer s.evHandler("state: NetConnectPeer: completed: peer[%s]", host)

	conn, err := peer.Dial(ctx, host, timeout)
	if err != nil {
		return fmt.Errorf("%s: %w", host, err)
	}

	if !s.peers.Add(conn) {
		conn.Close()
		s.evHandler("state: NetConnectPeer: peer[%s] already connected", host)
		return nil
	}

	if w := s.registeredWorker(); w != nil {
		w.SignalSellCoin()
	}

	return nil
}

// dropPeer removes a peer whose connection failed.
func (s *State) dropPeer(conn *peer.Conn, err error) {
	s.evHandler("state: dropPeer: peer[%s]: %s", conn.Peer(), err)
	s.peers.Remove(conn.Peer())
}
