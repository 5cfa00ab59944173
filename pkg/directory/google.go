package directory

import (
	"context"
	"fmt"
	"net/http"

	"github.com/asepeyo/receipts-backend/pkg/config"
	"github.com/asepeyo/receipts-backend/pkg/metrics"
	admin_directory_v1 "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/option"
)

type googleDirectory struct {
	service *admin_directory_v1.Service
}

// NewGoogleDirectory wraps a Google Workspace Admin SDK directory service.
func NewGoogleDirectory(service *admin_directory_v1.Service) Directory {
	return &googleDirectory{
		service: service,
	}
}

// NewFromConfig builds a directory client with a fresh delegated credential.
// Credentials are derived per client, never pooled.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Directory, error) {
	cf, err := JWTConfig(cfg.Google.CredentialsJSON, cfg.Google.DelegatedUser)
	if err != nil {
		return nil, err
	}

	srv, err := admin_directory_v1.NewService(ctx, option.WithHTTPClient(cf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("retrieve directory client: %w", err)
	}

	return NewGoogleDirectory(srv), nil
}

func (d *googleDirectory) ListGroupsForUser(ctx context.Context, email string) ([]*Group, error) {
	groups := make([]*Group, 0)
	err := d.service.Groups.
		List().
		UserKey(email).
		Pages(ctx, func(page *admin_directory_v1.Groups) error {
			for _, grp := range page.Groups {
				groups = append(groups, &Group{Name: grp.Name, Email: grp.Email})
			}
			return nil
		})
	if err != nil {
		metrics.IncExternalCallsByError(err)
		return nil, translateError(err)
	}
	metrics.IncExternalCalls(http.StatusOK)

	return groups, nil
}

func (d *googleDirectory) ListGroupMembers(ctx context.Context, groupEmail string, includeDerived bool) ([]*Member, error) {
	members := make([]*Member, 0)
	err := d.service.Members.
		List(groupEmail).
		IncludeDerivedMembership(includeDerived).
		Pages(ctx, func(page *admin_directory_v1.Members) error {
			for _, member := range page.Members {
				members = append(members, &Member{Email: member.Email, Type: member.Type})
			}
			return nil
		})
	if err != nil {
		metrics.IncExternalCallsByError(err)
		return nil, translateError(err)
	}
	metrics.IncExternalCalls(http.StatusOK)

	return members, nil
}

func (d *googleDirectory) GetGroupDetails(ctx context.Context, groupEmail string) (*Group, error) {
	grp, err := d.service.Groups.Get(groupEmail).Context(ctx).Do()
	if err != nil {
		metrics.IncExternalCallsByError(err)
		return nil, translateError(err)
	}
	metrics.IncExternalCalls(grp.HTTPStatusCode)

	return &Group{Name: grp.Name, Email: grp.Email}, nil
}

func (d *googleDirectory) GetUserProfile(ctx context.Context, email string) (*User, error) {
	user, err := d.service.Users.Get(email).Context(ctx).Do()
	if err != nil {
		metrics.IncExternalCallsByError(err)
		return nil, translateError(err)
	}
	metrics.IncExternalCalls(user.HTTPStatusCode)

	profile := &User{
		Email:    user.PrimaryEmail,
		PhotoURL: user.ThumbnailPhotoUrl,
	}
	if user.Name != nil {
		profile.FullName = user.Name.FullName
	}

	return profile, nil
}
