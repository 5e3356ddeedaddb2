package server

import (
	"context"
	"errors"
)

// UserLevel is the original server's user level, reduced to an ordered
// set of tiers compared with >=. This module checks it for a judge/admin
// kick through leave_game and for the advance_phase bypass (see
// GameActor.isAdmin).
type UserLevel int

const (
	UserLevelNone UserLevel = iota
	UserLevelPlayer
	UserLevelJudge
	UserLevelAdmin
)

// Identity is what authentication resolves a connection to.
type Identity struct {
	Name  string
	Level UserLevel
}

// Authenticator is the pinned, pluggable authentication boundary. Only a
// permissive guest implementation is provided; a real backend (password
// database, OAuth, LDAP) is out of scope.
type Authenticator interface {
	Authenticate(ctx context.Context, user, password string) (Identity, error)
}

// GuestAuthenticator accepts any non-empty name as a Player-level
// identity, matching Cockatrice's "just connect as a named player" guest
// mode.
type GuestAuthenticator struct{}

func (GuestAuthenticator) Authenticate(ctx context.Context, user, password string) (Identity, error) {
	if user == "" {
		return Identity{}, errors.New("server: guest login requires a non-empty name")
	}
	return Identity{Name: user, Level: UserLevelPlayer}, nil
}
