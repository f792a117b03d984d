package bitbucket

import "context"

// UserProfile reads users/{username}.
func (c *Client) UserProfile(ctx context.Context, username string) (Payload, error) {
	return c.Do(ctx, UsersEndpoint{Username: username, Resource: UserResourceProfile})
}

// UserFollowers lists users/{username}/followers.
func (c *Client) UserFollowers(ctx context.Context, username string) (Payload, error) {
	return c.Do(ctx, UsersEndpoint{Username: username, Resource: UserResourceFollowers})
}

// UserFollowing lists the accounts users/{username} follows.
func (c *Client) UserFollowing(ctx context.Context, username string) (Payload, error) {
	return c.Do(ctx, UsersEndpoint{Username: username, Resource: UserResourceFollowing})
}

// TeamProfile reads teams/{team}.
func (c *Client) TeamProfile(ctx context.Context, team string) (Payload, error) {
	return c.Do(ctx, TeamsEndpoint{Team: team, Resource: TeamResourceProfile})
}

// TeamMembers lists teams/{team}/members.
func (c *Client) TeamMembers(ctx context.Context, team string) (Payload, error) {
	return c.Do(ctx, TeamsEndpoint{Team: team, Resource: TeamResourceMembers})
}

// TeamFollowers lists teams/{team}/followers.
func (c *Client) TeamFollowers(ctx context.Context, team string) (Payload, error) {
	return c.Do(ctx, TeamsEndpoint{Team: team, Resource: TeamResourceFollowers})
}

// TeamFollowing lists the accounts teams/{team} follows.
func (c *Client) TeamFollowing(ctx context.Context, team string) (Payload, error) {
	return c.Do(ctx, TeamsEndpoint{Team: team, Resource: TeamResourceFollowing})
}

// TeamRepositories lists teams/{team}/repositories.
func (c *Client) TeamRepositories(ctx context.Context, team string) (Payload, error) {
	return c.Do(ctx, TeamsEndpoint{Team: team, Resource: TeamResourceRepositories})
}

// PageOptions selects a page of a paginated listing. Page <= 0 omits the
// page parameter and Bitbucket returns the first page.
type PageOptions struct {
	Page int
}

// AccountRepositories lists repositories/{account}.
func (c *Client) AccountRepositories(ctx context.Context, account string, opts PageOptions) (Payload, error) {
	return c.Do(ctx, RepositoriesEndpoint{
		Account:  account,
		Resource: RepositoryResourceList,
		Page:     opts.Page,
	})
}

// CommitOptions filters a commit listing. Include and Exclude take branch
// names or revisions and may repeat.
type CommitOptions struct {
	Page    int
	Include []string
	Exclude []string
}

// Commits lists repositories/{account}/{repo}/commits/.
func (c *Client) Commits(ctx context.Context, account, repo string, opts CommitOptions) (Payload, error) {
	return c.Do(ctx, RepositoriesEndpoint{
		Account:  account,
		Repo:     repo,
		Resource: RepositoryResourceCommits,
		Page:     opts.Page,
		Include:  opts.Include,
		Exclude:  opts.Exclude,
	})
}

// Commit reads repositories/{account}/{repo}/commit/{revision}.
func (c *Client) Commit(ctx context.Context, account, repo, revision string) (Payload, error) {
	return c.Do(ctx, RepositoriesEndpoint{
		Account:  account,
		Repo:     repo,
		Revision: revision,
		Resource: RepositoryResourceCommit,
	})
}
