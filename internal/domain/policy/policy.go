// Package policy decides whether an actor may perform an action on a resource.
//
// Every policy is a pure function of the actor, the action and, for object level
// checks, the owner of the target object. Nothing is cached between calls.
package policy

import (
	"net/http"

	"yamdb/proj/internal/domain/models"
)

type Kind int

const (
	KindAnonymous Kind = iota
	KindUser
	KindModerator
	KindAdmin
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindModerator:
		return "moderator"
	case KindAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

type Actor struct {
	ID   int64
	Kind Kind
}

var Anonymous = Actor{Kind: KindAnonymous}

// ActorFrom maps a user onto an actor. Inactive users are treated as anonymous.
func ActorFrom(u *models.User) Actor {
	if u.IsAnonymous() || !u.IsActive {
		return Anonymous
	}
	a := Actor{ID: u.ID, Kind: KindUser}
	switch {
	case u.IsAdmin():
		a.Kind = KindAdmin
	case u.IsModerator():
		a.Kind = KindModerator
	}
	return a
}

func (a Actor) Authenticated() bool {
	return a.Kind != KindAnonymous
}

type Action int

const (
	ActionRead Action = iota
	ActionWrite
)

func (a Action) String() string {
	if a == ActionRead {
		return "read"
	}
	return "write"
}

// ActionFor classifies an HTTP method. GET, HEAD and OPTIONS are reads.
func ActionFor(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	}
	return ActionWrite
}

type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) Allowed() bool {
	return d == Allow
}

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	default:
		return "deny_forbidden"
	}
}

type Policy interface {
	// Collection is evaluated before any object is loaded.
	Collection(actor Actor, action Action) Decision
	// Object is evaluated once the target object, owned by ownerID, is loaded.
	Object(actor Actor, action Action, ownerID int64) Decision
}

func requireAuth(actor Actor, allowed bool) Decision {
	if !actor.Authenticated() {
		return DenyUnauthenticated
	}
	if !allowed {
		return DenyForbidden
	}
	return Allow
}

type adminOrReadOnly struct{}

func (adminOrReadOnly) Collection(actor Actor, action Action) Decision {
	if action == ActionRead {
		return Allow
	}
	return requireAuth(actor, actor.Kind == KindAdmin)
}

func (p adminOrReadOnly) Object(actor Actor, action Action, _ int64) Decision {
	return p.Collection(actor, action)
}

type adminOnly struct{}

func (adminOnly) Collection(actor Actor, _ Action) Decision {
	return requireAuth(actor, actor.Kind == KindAdmin)
}

func (p adminOnly) Object(actor Actor, action Action, _ int64) Decision {
	return p.Collection(actor, action)
}

type ownerOrPrivileged struct{}

func (ownerOrPrivileged) Collection(actor Actor, action Action) Decision {
	if action == ActionRead {
		return Allow
	}
	return requireAuth(actor, true)
}

func (ownerOrPrivileged) Object(actor Actor, action Action, ownerID int64) Decision {
	if action == ActionRead {
		return Allow
	}
	return requireAuth(actor, actor.ID == ownerID || actor.Kind == KindModerator || actor.Kind == KindAdmin)
}

type authenticated struct{}

func (authenticated) Collection(actor Actor, _ Action) Decision {
	return requireAuth(actor, true)
}

func (authenticated) Object(actor Actor, _ Action, _ int64) Decision {
	return requireAuth(actor, true)
}

var (
	// AdminOrReadOnly guards categories, genres and titles.
	AdminOrReadOnly Policy = adminOrReadOnly{}
	// AdminOnly guards user administration.
	AdminOnly Policy = adminOnly{}
	// OwnerOrPrivileged guards reviews and comments.
	OwnerOrPrivileged Policy = ownerOrPrivileged{}
	// Authenticated guards self-service endpoints.
	Authenticated Policy = authenticated{}
)
