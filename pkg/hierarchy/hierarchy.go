package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/asepeyo/receipts-backend/pkg/config"
	"github.com/asepeyo/receipts-backend/pkg/directory"
	"github.com/asepeyo/receipts-backend/pkg/logger"
)

// Manager is a resolved manager profile, as shown in the approval UI.
type Manager struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// ManagedUser is a user whose receipts a manager can review.
type ManagedUser struct {
	Email string `json:"email"`
}

// Resolver derives manager/report relations from directory group membership.
// It holds no state between calls, every resolution re-fetches from the
// directory, so results reflect directory state at call time.
type Resolver struct {
	directory        directory.Directory
	domain           string
	superiorSuffixes []string
	log              logger.Logger
}

func New(dir directory.Directory, domain string, superiorSuffixes []string, log logger.Logger) *Resolver {
	return &Resolver{
		directory:        dir,
		domain:           domain,
		superiorSuffixes: superiorSuffixes,
		log:              log.WithComponent("hierarchy"),
	}
}

// NewFromConfig builds a resolver with a fresh delegated directory credential.
func NewFromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Resolver, error) {
	dir, err := directory.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return New(dir, cfg.TenantDomain, cfg.DirectorGroupSuffixes, log), nil
}

// ResolveManagers returns the managers of the given user, deduplicated by
// email. A user without group memberships has no managers, which is not an
// error. The user is never listed as their own manager.
func (r *Resolver) ResolveManagers(ctx context.Context, userEmail string) ([]Manager, error) {
	if userEmail == "" {
		return nil, ErrMissingSubject
	}

	log := r.log.WithUser(userEmail)

	groups, err := r.directory.ListGroupsForUser(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("list groups for user %q: %w", userEmail, err)
	}
	if len(groups) == 0 {
		return []Manager{}, nil
	}

	managers := make([]Manager, 0)

	// Direct pass: for each personal group of the user, find the director
	// subgroup nested in it and collect its members.
	for _, grp := range groups {
		if !IsPersonalGroup(grp) {
			continue
		}

		members, err := r.directory.ListGroupMembers(ctx, grp.Email, true)
		if err != nil {
			if errors.Is(err, directory.ErrPermissionDenied) {
				return nil, fmt.Errorf("list members of group %q: %w", grp.Email, err)
			}
			log.WithGroup(grp.Email).WithError(err).Warnf("list members of personal group")
			continue
		}

		for _, member := range members {
			if member.Type != directory.MemberTypeGroup {
				continue
			}

			subgroup, err := r.directory.GetGroupDetails(ctx, member.Email)
			if err != nil {
				if errors.Is(err, directory.ErrPermissionDenied) {
					return nil, fmt.Errorf("get group %q: %w", member.Email, err)
				}
				log.WithGroup(member.Email).WithError(err).Warnf("get nested group details")
				continue
			}

			if !IsDirectorGroup(subgroup) {
				continue
			}

			directors, err := r.directory.ListGroupMembers(ctx, subgroup.Email, true)
			if err != nil {
				if errors.Is(err, directory.ErrPermissionDenied) {
					return nil, fmt.Errorf("list members of director group %q: %w", subgroup.Email, err)
				}
				log.WithGroup(subgroup.Email).WithError(err).Warnf("list members of director group")
				continue
			}

			resolved, err := r.resolveProfiles(ctx, directors, userEmail)
			if err != nil {
				return nil, err
			}
			managers = append(managers, resolved...)
		}
	}

	superior, err := r.superiorManagers(ctx, groups, userEmail)
	if err != nil {
		return nil, err
	}
	managers = append(managers, superior...)

	return dedupeManagers(managers), nil
}

// superiorManagers guesses the superior director group of the user's unit
// from the naming convention: the unit prefix of a reference group name,
// concatenated with each configured suffix and the tenant domain. Candidates
// are tried in order, the first one with members wins and the rest are never
// queried.
func (r *Resolver) superiorManagers(ctx context.Context, groups []*directory.Group, userEmail string) ([]Manager, error) {
	reference := referenceGroup(groups)
	if reference == nil {
		return nil, nil
	}

	prefix := NamePrefix(reference.Name)
	if prefix == "" {
		return nil, nil
	}

	for _, suffix := range r.superiorSuffixes {
		candidate := prefix + suffix + "@" + r.domain

		members, err := r.directory.ListGroupMembers(ctx, candidate, true)
		if err != nil {
			if errors.Is(err, directory.ErrPermissionDenied) {
				return nil, fmt.Errorf("list members of candidate group %q: %w", candidate, err)
			}
			// A candidate that does not exist is expected, the naming
			// convention guess misses more often than it hits.
			r.log.WithUser(userEmail).WithGroup(candidate).WithError(err).Debugf("superior candidate lookup failed")
			continue
		}
		if len(members) == 0 {
			continue
		}

		return r.resolveProfiles(ctx, members, userEmail)
	}

	return nil, nil
}

// referenceGroup picks the group whose name identifies the user's unit: the
// first director group, falling back to the first personal group.
func referenceGroup(groups []*directory.Group) *directory.Group {
	for _, grp := range groups {
		if IsDirectorGroup(grp) {
			return grp
		}
	}
	for _, grp := range groups {
		if IsPersonalGroup(grp) {
			return grp
		}
	}
	return nil
}

// resolveProfiles fetches the full user profile of every user member,
// excluding the subject. A member whose profile is gone from the directory is
// skipped, any other failure aborts the resolution.
func (r *Resolver) resolveProfiles(ctx context.Context, members []*directory.Member, selfEmail string) ([]Manager, error) {
	managers := make([]Manager, 0, len(members))
	for _, member := range members {
		if member.Type != directory.MemberTypeUser {
			continue
		}
		if strings.EqualFold(member.Email, selfEmail) {
			continue
		}

		profile, err := r.directory.GetUserProfile(ctx, member.Email)
		if errors.Is(err, directory.ErrNotFound) {
			r.log.WithUser(member.Email).WithError(err).Warnf("manager profile not found, skipping")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get user profile %q: %w", member.Email, err)
		}

		managers = append(managers, Manager{
			DisplayName: profile.FullName,
			Email:       profile.Email,
			PhotoURL:    profile.PhotoURL,
		})
	}
	return managers, nil
}

func dedupeManagers(managers []Manager) []Manager {
	seen := make(map[string]struct{}, len(managers))
	deduped := make([]Manager, 0, len(managers))
	for _, manager := range managers {
		key := strings.ToLower(manager.Email)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, manager)
	}
	return deduped
}

// ResolveManagedUsers returns the users whose receipts the given manager can
// review: the members of every personal group that has one of the manager's
// director groups as a member. A manager belonging to no director group
// manages nobody, which is not an error.
func (r *Resolver) ResolveManagedUsers(ctx context.Context, managerEmail string) ([]ManagedUser, error) {
	if managerEmail == "" {
		return nil, ErrMissingSubject
	}

	log := r.log.WithUser(managerEmail)

	groups, err := r.directory.ListGroupsForUser(ctx, managerEmail)
	if err != nil {
		return nil, fmt.Errorf("list groups for manager %q: %w", managerEmail, err)
	}

	directorGroups := make([]*directory.Group, 0, len(groups))
	for _, grp := range groups {
		if IsDirectorGroup(grp) {
			directorGroups = append(directorGroups, grp)
		}
	}
	if len(directorGroups) == 0 {
		return []ManagedUser{}, nil
	}

	users := make([]ManagedUser, 0)
	seen := make(map[string]struct{})

	for _, directorGroup := range directorGroups {
		parents, err := r.directory.ListGroupsForUser(ctx, directorGroup.Email)
		if err != nil {
			if errors.Is(err, directory.ErrPermissionDenied) {
				return nil, fmt.Errorf("list parent groups of %q: %w", directorGroup.Email, err)
			}
			log.WithGroup(directorGroup.Email).WithError(err).Warnf("list parent groups of director group")
			continue
		}

		for _, parent := range parents {
			if !IsPersonalGroup(parent) {
				continue
			}

			members, err := r.directory.ListGroupMembers(ctx, parent.Email, true)
			if err != nil {
				if errors.Is(err, directory.ErrPermissionDenied) {
					return nil, fmt.Errorf("list members of group %q: %w", parent.Email, err)
				}
				log.WithGroup(parent.Email).WithError(err).Warnf("list members of personal group")
				continue
			}

			for _, member := range members {
				if member.Type != directory.MemberTypeUser {
					continue
				}

				key := strings.ToLower(member.Email)
				if strings.EqualFold(member.Email, managerEmail) {
					continue
				}
				if _, exists := seen[key]; exists {
					continue
				}
				seen[key] = struct{}{}
				users = append(users, ManagedUser{Email: member.Email})
			}
		}
	}

	return users, nil
}
