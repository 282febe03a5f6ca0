package whatsapp

import (
	"fmt"
	"wa-gateway/domain"
	"wa-gateway/errors"

	"go.mau.fi/whatsmeow/types"
)

// toJID maps a gateway id onto the protocol address. Individual chats use
// "c.us" on the gateway side and "s.whatsapp.net" on the wire.
func toJID(id domain.AddressableID) (types.JID, error) {
	if id.IsZero() {
		return types.EmptyJID, fmt.Errorf("%w: empty recipient", errors.ErrInvalidIdentifier)
	}
	switch id.Server() {
	case domain.ServerContact, domain.ServerUser:
		return types.NewJID(id.User(), types.DefaultUserServer), nil
	case domain.ServerGroup:
		return types.NewJID(id.User(), types.GroupServer), nil
	case domain.ServerBroadcast:
		return types.NewJID(id.User(), types.BroadcastServer), nil
	default:
		return types.EmptyJID, fmt.Errorf("%w: unsupported server %q", errors.ErrInvalidIdentifier, id.Server())
	}
}

// fromJID returns the zero id for addresses the gateway cannot express,
// such as hidden user ids.
func fromJID(jid types.JID) domain.AddressableID {
	jid = jid.ToNonAD()
	server := jid.Server
	if server == types.DefaultUserServer {
		server = domain.ServerContact
	}
	id, err := domain.ParseTarget(jid.User + "@" + server)
	if err != nil {
		return domain.AddressableID{}
	}
	return id
}

func phoneQuery(id domain.AddressableID) string {
	return "+" + id.User()
}
