// Package pagination implements bounded traversal of paginated provider
// endpoints.
//
// Providers signal continuation in one of two ways: a Link response header
// carrying a rel="next" URL (GitHub style), or an opaque cursor token embedded
// in response metadata (Slack style). NextPath normalizes the former into a
// base-URL-relative path; Collect drives the fetch loop for both, treating
// whatever locator the provider hands back as an opaque cursor.
//
// Every traversal is bounded by MaxIterations page fetches. Reaching the cap
// is graceful truncation, not an error: the accumulated items are returned
// with OutcomeCapReached so operators can detect runaway pagination without
// failing the caller.
//
// Example usage:
//
//	result, err := pagination.Collect(ctx, "/conversations.list",
//		func(ctx context.Context, cursor string) ([]Conversation, string, error) {
//			page, err := fetchPage(ctx, cursor)
//			if err != nil {
//				return nil, "", err
//			}
//			return page.Conversations, page.NextCursor, nil
//		})
//
// The three terminal conditions (exhausted, cap reached, provider rejected)
// are distinguishable via Result.Outcome and the returned error.
package pagination
