package executors

import (
	"context"
	"fmt"

	"github.com/postforge/postforge/pkg/workflow"
)

// runSocial publishes a materialized social node. The node must have
// received both its text and image parts from upstream producers; a sink
// propagates nothing further.
func (r *Runner) runSocial(ctx context.Context, node workflow.Node) (Outcome, error) {
	content := node.Data.Content
	if content == "" {
		return Outcome{}, &ValidationError{
			Reason: "nothing to post — connect text and image producers and run them first",
		}
	}

	cfg, err := r.currentSettings()
	if err != nil {
		return Outcome{}, err
	}
	poster, err := r.newPoster(node.Platform, cfg.SocialAccounts)
	if err != nil {
		return Outcome{}, err
	}

	res, err := poster.Post(ctx, content, node.Data.Image)
	if err != nil {
		return Outcome{}, fmt.Errorf("post to %s: %w", node.Platform, err)
	}

	r.finish(node, node.Platform.Label(),
		fmt.Sprintf("Posted to %s\n\nPost ID: %s", node.Platform.Label(), res.PostID), nil)
	return Outcome{Message: fmt.Sprintf("posted to %s", node.Platform.Label()), PostID: res.PostID}, nil
}
