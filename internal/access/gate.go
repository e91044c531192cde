package access

import (
	"context"
	"slices"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

// Resolver maps tokens to identities and identities to effective roles.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*domain.Identity, error)
	RoleOf(ctx context.Context, identity domain.Identity) (domain.Role, error)
}

// Credentials is what a caller presents: the method the request arrived with
// and its bearer token.
type Credentials struct {
	Method string
	Token  string
}

// OwnershipPredicate checks that a resource belongs to the caller. Errors such
// as a missing resource are returned to the caller unchanged.
type OwnershipPredicate func(ctx context.Context, caller domain.Principal) (bool, error)

type Request struct {
	// Method is the HTTP method the operation is declared with.
	Method      string
	Credentials Credentials
	// Roles lists the effective roles allowed; empty allows any identity.
	Roles []domain.Role
	Owns  OwnershipPredicate
}

type Authorizer interface {
	Authorize(ctx context.Context, req Request) (domain.Principal, error)
}

type Gate struct {
	identities Resolver
}

func NewGate(identities Resolver) *Gate {
	return &Gate{identities: identities}
}

// Authorize runs the method, credential, role and ownership checks in that
// order and stops at the first failure. It never mutates state.
func (g *Gate) Authorize(ctx context.Context, req Request) (domain.Principal, error) {
	if !strings.EqualFold(req.Method, req.Credentials.Method) {
		return domain.Principal{}, domain.ErrMethodMismatch
	}

	identity, err := g.identities.Resolve(ctx, req.Credentials.Token)
	if err != nil {
		return domain.Principal{}, err
	}

	role, err := g.identities.RoleOf(ctx, *identity)
	if err != nil {
		return domain.Principal{}, err
	}
	caller := domain.Principal{Identity: *identity, Role: role}

	if len(req.Roles) > 0 && !slices.Contains(req.Roles, role) {
		return domain.Principal{}, domain.ErrForbidden
	}

	if req.Owns != nil {
		ok, err := req.Owns(ctx, caller)
		if err != nil {
			return domain.Principal{}, err
		}
		if !ok {
			return domain.Principal{}, domain.ErrForbidden
		}
	}

	return caller, nil
}

// AdminOr lets administrators through and defers everyone else to pred.
func AdminOr(pred OwnershipPredicate) OwnershipPredicate {
	return func(ctx context.Context, caller domain.Principal) (bool, error) {
		if caller.IsAdmin() {
			return true, nil
		}
		return pred(ctx, caller)
	}
}

var _ Authorizer = (*Gate)(nil)
