// Package social implements the posting clients behind social sink nodes.
package social

import (
	"context"
	"fmt"

	"github.com/postforge/postforge/pkg/settings"
	"github.com/postforge/postforge/pkg/workflow"
)

// PostResult reports a successful publish.
type PostResult struct {
	// PostID is the platform-assigned identifier (tweet ID, post ID, …).
	PostID string `json:"postId"`
}

// Poster publishes materialized content to one platform account.
type Poster interface {
	// Post publishes content with an optional image URL. The image is
	// fetched and re-uploaded to the platform.
	Post(ctx context.Context, content, imageURL string) (PostResult, error)
	// Verify checks the stored credentials and returns the account name.
	Verify(ctx context.Context) (string, error)
}

// UnsupportedPlatformError is returned for platforms without a posting client.
type UnsupportedPlatformError struct {
	Platform workflow.SocialPlatform
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("platform %q is not supported yet", e.Platform)
}

// MissingCredentialsError is returned when the settings hold no usable
// credentials for the platform.
type MissingCredentialsError struct {
	Platform workflow.SocialPlatform
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("missing %s credentials — connect the account in settings", e.Platform)
}

// New returns the Poster for a platform given the configured accounts.
func New(platform workflow.SocialPlatform, accounts settings.SocialAccounts) (Poster, error) {
	switch platform {
	case workflow.PlatformTwitter:
		if !accounts.Twitter.Complete() {
			return nil, &MissingCredentialsError{Platform: platform}
		}
		return NewTwitterClient(*accounts.Twitter), nil
	case workflow.PlatformInstagram, workflow.PlatformFacebook, workflow.PlatformLinkedIn:
		return nil, &UnsupportedPlatformError{Platform: platform}
	default:
		return nil, fmt.Errorf("unknown platform %q", platform)
	}
}
