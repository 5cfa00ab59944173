package directory

import (
	"context"
)

// Member types as reported by the Google Workspace Directory API.
const (
	MemberTypeUser  = "USER"
	MemberTypeGroup = "GROUP"
)

// Group is a read-only snapshot of a directory group.
type Group struct {
	Name  string
	Email string
}

// Member is a single membership edge of a group. The member is either a user
// or a nested group, depending on Type.
type Member struct {
	Email string
	Type  string
}

// User is a read-only snapshot of a directory user profile.
type User struct {
	Email    string
	FullName string
	PhotoURL string
}

// Directory is the minimal set of directory service capabilities needed to
// resolve the manager hierarchy. Implementations must be safe for concurrent
// use.
type Directory interface {
	// ListGroupsForUser returns the groups the given key is a direct member
	// of. The key can be a user or a group email address.
	ListGroupsForUser(ctx context.Context, email string) ([]*Group, error)

	// ListGroupMembers returns the members of the given group. When
	// includeDerived is set, members of nested groups are included as well.
	ListGroupMembers(ctx context.Context, groupEmail string, includeDerived bool) ([]*Member, error)

	// GetGroupDetails returns the full group entry for the given group email.
	GetGroupDetails(ctx context.Context, groupEmail string) (*Group, error)

	// GetUserProfile returns the user profile for the given email.
	GetUserProfile(ctx context.Context, email string) (*User, error)
}
