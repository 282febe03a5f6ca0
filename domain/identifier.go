package domain

import (
	"fmt"
	"strings"
	"unicode"
	"wa-gateway/errors"
)

const (
	ServerContact   = "c.us"
	ServerUser      = "s.whatsapp.net"
	ServerGroup     = "g.us"
	ServerBroadcast = "broadcast"
)

// AddressableID is a normalized recipient reference. The zero value is not a
// valid recipient; build one with NormalizePhone, ParseGroupID or ParseTarget.
type AddressableID struct {
	user   string
	server string
}

func (a AddressableID) User() string   { return a.user }
func (a AddressableID) Server() string { return a.server }
func (a AddressableID) IsZero() bool   { return a.user == "" }
func (a AddressableID) IsGroup() bool  { return a.server == ServerGroup }

func (a AddressableID) String() string {
	if a.IsZero() {
		return ""
	}
	return a.user + "@" + a.server
}

// CountryCodePolicy decides how a national number becomes international.
// An empty Code disables defaulting.
type CountryCodePolicy struct {
	Code        string
	TrunkPrefix string
	MinDigits   int
}

func DefaultCountryCodePolicy() CountryCodePolicy {
	return CountryCodePolicy{Code: "62", TrunkPrefix: "0", MinDigits: 8}
}

// NormalizePhone turns "0812-345-6789" into "628123456789@c.us".
func NormalizePhone(raw string, policy CountryCodePolicy) (AddressableID, error) {
	if strings.Contains(raw, "@") {
		return ParseTarget(raw)
	}
	digits := stripNonDigits(raw)
	if digits == "" {
		return AddressableID{}, fmt.Errorf("%w: %q contains no digits", errors.ErrInvalidIdentifier, raw)
	}
	digits = applyCountryCode(digits, policy)
	if len(digits) < policy.MinDigits {
		return AddressableID{}, fmt.Errorf("%w: %q is shorter than %d digits",
			errors.ErrInvalidIdentifier, raw, policy.MinDigits)
	}
	return AddressableID{user: digits, server: ServerContact}, nil
}

// ParseTarget accepts an identifier that is already canonical.
func ParseTarget(raw string) (AddressableID, error) {
	user, server, ok := strings.Cut(strings.TrimSpace(raw), "@")
	if !ok || user == "" {
		return AddressableID{}, fmt.Errorf("%w: %q is not a canonical id", errors.ErrInvalidIdentifier, raw)
	}
	switch server {
	case ServerContact, ServerUser:
		if stripNonDigits(user) != user {
			return AddressableID{}, fmt.Errorf("%w: %q has a non numeric user part", errors.ErrInvalidIdentifier, raw)
		}
		return AddressableID{user: user, server: ServerContact}, nil
	case ServerGroup, ServerBroadcast:
		return AddressableID{user: user, server: server}, nil
	default:
		return AddressableID{}, fmt.Errorf("%w: unknown server %q", errors.ErrInvalidIdentifier, server)
	}
}

// ParseGroupID accepts "1203630@g.us" or a bare "1203630".
func ParseGroupID(raw string) (AddressableID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AddressableID{}, fmt.Errorf("%w: empty group id", errors.ErrInvalidIdentifier)
	}
	if !strings.Contains(raw, "@") {
		raw += "@" + ServerGroup
	}
	id, err := ParseTarget(raw)
	if err != nil {
		return AddressableID{}, err
	}
	if !id.IsGroup() {
		return AddressableID{}, fmt.Errorf("%w: %q is not a group", errors.ErrInvalidIdentifier, raw)
	}
	return id, nil
}

func stripNonDigits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func applyCountryCode(digits string, policy CountryCodePolicy) string {
	if policy.Code == "" {
		return digits
	}
	if policy.TrunkPrefix != "" && strings.HasPrefix(digits, policy.TrunkPrefix) {
		return policy.Code + strings.TrimPrefix(digits, policy.TrunkPrefix)
	}
	return digits
}
