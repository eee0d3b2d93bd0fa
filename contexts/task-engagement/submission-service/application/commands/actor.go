package commands

import "strings"

// Actor is the authenticated caller as resolved by the transport layer.
type Actor struct {
	MemberID string
	Active   bool
}

func (a Actor) id() string {
	return strings.TrimSpace(a.MemberID)
}
