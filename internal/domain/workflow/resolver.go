package workflow

import (
	"context"
	"errors"
)

// RoleDirectory lists the users holding a role, ascending by user id.
type RoleDirectory interface {
	RoleHolders(ctx context.Context, roleID uint64) ([]uint64, error)
}

type ResolverKind int

const (
	SpecificUser ResolverKind = iota + 1
	AnyRoleHolder
	AllRoleHolders
)

func (k ResolverKind) String() string {
	switch k {
	case SpecificUser:
		return "specific_user"
	case AnyRoleHolder:
		return "any_role_holder"
	case AllRoleHolders:
		return "all_role_holders"
	}
	return "unknown"
}

var ErrEmptyRoster = errors.New("no eligible users for step")

// Resolver is the actor-resolution strategy derived from a RoleAssignment.
// UserID is only meaningful for SpecificUser.
type Resolver struct {
	Kind   ResolverKind
	RoleID uint64
	UserID uint64
}

// ResolverFor maps an assignment to its strategy:
//   - single with an active specific user -> SpecificUser
//   - single without one, or "or"         -> AnyRoleHolder
//   - "and"                               -> AllRoleHolders
func ResolverFor(a RoleAssignment) Resolver {
	switch {
	case a.Logic == LogicSingle && a.IsSpecificUser && a.UserID != nil && *a.UserID != 0:
		return Resolver{Kind: SpecificUser, RoleID: a.RoleID, UserID: *a.UserID}
	case a.Logic == LogicAnd:
		return Resolver{Kind: AllRoleHolders, RoleID: a.RoleID}
	default:
		return Resolver{Kind: AnyRoleHolder, RoleID: a.RoleID}
	}
}

// Roster returns the candidate actors for the step.
func (r Resolver) Roster(ctx context.Context, dir RoleDirectory) ([]uint64, error) {
	if r.Kind == SpecificUser {
		return []uint64{r.UserID}, nil
	}
	users, err := dir.RoleHolders(ctx, r.RoleID)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Assignee picks the single user recorded on the progress row. An "and" step
// is handled like "or": the first holder is assigned and one approval
// resolves the step.
func (r Resolver) Assignee(roster []uint64) (uint64, error) {
	if len(roster) == 0 {
		return 0, ErrEmptyRoster
	}
	return roster[0], nil
}
