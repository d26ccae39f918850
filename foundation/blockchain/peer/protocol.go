package peer

import (
	"errors"
	"fmt"
	"strings"
)

// Messages exchanged between nodes. Every message is a single line.
const (
	MsgRequestPubKey = "Send pub key for a new transaction"
	MsgNewBlock      = "Sending new block"
	MsgBlockOK       = "OK to new block"

	buyerKeyPrefix = "BUYER_PUB_KEY="
)

// ErrUnexpectedReply is returned when a peer answers with something
// other than what the protocol calls for.
var ErrUnexpectedReply = errors.New("unexpected reply from peer")

// BuyerKeyReply builds the reply to a public key request.
func BuyerKeyReply(pubKey string) string {
	return buyerKeyPrefix + pubKey
}

// ParseBuyerKeyReply extracts the public key from a public key reply.
func ParseBuyerKeyReply(reply string) (string, error) {
	key, found := strings.CutPrefix(reply, buyerKeyPrefix)
	if !found || key == "" {
		return "", fmt.Errorf("reply %.32q: %w", reply, ErrUnexpectedReply)
	}

	return key, nil
}

// RequestBuyerKey asks the peer for the public key a new transaction
// should be made out to.
func RequestBuyerKey(s Session) (string, error) {
	reply, err := s.Request(MsgRequestPubKey)
	if err != nil {
		return "", err
	}

	return ParseBuyerKeyReply(reply)
}

// SendBlock announces a new block to the peer and sends the literal once
// the peer agrees to take it.
func SendBlock(s Session, literal string) error {
	reply, err := s.Request(MsgNewBlock)
	if err != nil {
		return err
	}

	if reply != MsgBlockOK {
		return fmt.Errorf("reply %.32q: %w", reply, ErrUnexpectedReply)
	}

	return s.WriteLine(literal)
}
