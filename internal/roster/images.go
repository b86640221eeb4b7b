package roster

import (
	"context"

	"github.com/gov-dx-sandbox/team-roster/pkg/client"
)

// ImageSource returns the URL to show for a member's profile image,
// or the placeholder when the stored image cannot be loaded.
func ImageSource(ctx context.Context, api API, filename string) string {
	if filename == "" || !api.ImageAvailable(ctx, filename) {
		return client.PlaceholderImageURL
	}
	return api.ImageURL(filename)
}
