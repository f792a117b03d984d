package queries

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samvad-hq/bitbucket-harvester/pkg/bitbucket"
)

// ErrUnknownEndpoint is returned for endpoint names with no handler.
var ErrUnknownEndpoint = errors.New("unknown endpoint")

// API is the subset of *bitbucket.Client the dispatcher calls.
type API interface {
	UserProfile(ctx context.Context, username string) (bitbucket.Payload, error)
	UserFollowers(ctx context.Context, username string) (bitbucket.Payload, error)
	UserFollowing(ctx context.Context, username string) (bitbucket.Payload, error)
	TeamProfile(ctx context.Context, team string) (bitbucket.Payload, error)
	TeamMembers(ctx context.Context, team string) (bitbucket.Payload, error)
	TeamFollowers(ctx context.Context, team string) (bitbucket.Payload, error)
	TeamFollowing(ctx context.Context, team string) (bitbucket.Payload, error)
	TeamRepositories(ctx context.Context, team string) (bitbucket.Payload, error)
	AccountRepositories(ctx context.Context, account string, opts bitbucket.PageOptions) (bitbucket.Payload, error)
	Commits(ctx context.Context, account, repo string, opts bitbucket.CommitOptions) (bitbucket.Payload, error)
	Commit(ctx context.Context, account, repo, revision string) (bitbucket.Payload, error)
}

type field struct {
	name  string
	value func(Query) string
	set   func(*Query, string)
}

var (
	fieldUsername = field{"username", func(q Query) string { return q.Username }, func(q *Query, v string) { q.Username = v }}
	fieldTeam     = field{"team", func(q Query) string { return q.Team }, func(q *Query, v string) { q.Team = v }}
	fieldAccount  = field{"account", func(q Query) string { return q.Account }, func(q *Query, v string) { q.Account = v }}
	fieldRepo     = field{"repo", func(q Query) string { return q.Repo }, func(q *Query, v string) { q.Repo = v }}
	fieldRevision = field{"revision", func(q Query) string { return q.Revision }, func(q *Query, v string) { q.Revision = v }}
)

type handler struct {
	required []field
	call     func(ctx context.Context, api API, q Query) (bitbucket.Payload, error)
}

var handlers = map[string]handler{
	EndpointUserProfile: {[]field{fieldUsername}, func(ctx context.Context, api API, q Query) (bitbucket.Payload, error) {
		return api.UserProfile(ctx, q.Username)
	}},
	EndpointUserFollowers: {[]field{fieldUsername}, func(ctx context.Context, api API, q Query) (bitbucket.Payload, error) {
		return api.UserFollowers(ctx, q.Username)
	}},
	EndpointUserFollowing: {[]field{fieldUsername}, func(ctx context.Context, api API, q Query) (bitbucket.Payload, error) {
		return api.UserFollowing(ctx, q.Username)
	}},
	EndpointTeamProfile: {[]field{fieldTeam}, func(ctx context.Context, api API, q Query) (bitbucket.Payload, error) {
		return api.TeamProfile(ctx, q.Team)
	}},
	EndpointTeamMembers: {[]field{fieldTeam}, func(ctx context.Context, api API, q Query) (bitbucket.Payload, error) {
		return api.TeamMembers(ctx, q.Team)
	}},
	EndpointTeamFollowers: {[]field{fieldTeam}, func(ctx context.Context, api API, q Query) (bitbucket.Payload, error) {
		return api.TeamFollowers(ctx, q.Team)
	}},
	EndpointTeamFollowing: {[]field{fieldTeam}, func(ctx context.Context, api API, q Query) (bitbucket.Payload, error) {
		return api.TeamFollowing(ctx, q.Team)
	}},
	EndpointTeamRepositories: {[]field{fieldTeam}, func(ctx context.Context, api API, q Query) (bitbucket.Payload, error) {
		return api.TeamRepositories(ctx, q.Team)
	}},
	EndpointAccountRepositories: {[]field{fieldAccount}, func(ctx context.Context, api API, q Query) (bitbucket.Payload, error) {
		return api.AccountRepositories(ctx, q.Account, bitbucket.PageOptions{Page: q.Page})
	}},
	EndpointCommits: {[]field{fieldAccount, fieldRepo}, func(ctx context.Context, api API, q Query) (bitbucket.Payload, error) {
		return api.Commits(ctx, q.Account, q.Repo, bitbucket.CommitOptions{
			Page:    q.Page,
			Include: q.Include,
			Exclude: q.Exclude,
		})
	}},
	EndpointCommit: {[]field{fieldAccount, fieldRepo, fieldRevision}, func(ctx context.Context, api API, q Query) (bitbucket.Payload, error) {
		return api.Commit(ctx, q.Account, q.Repo, q.Revision)
	}},
}

// Endpoints returns the supported endpoint names, sorted.
func Endpoints() []string {
	out := make([]string, 0, len(handlers))
	for name := range handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RequiredArgs returns the identifier names the endpoint needs, in call order.
func RequiredArgs(endpoint string) ([]string, error) {
	h, ok := handlers[strings.ToLower(strings.TrimSpace(endpoint))]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEndpoint, endpoint)
	}
	names := make([]string, 0, len(h.required))
	for _, f := range h.required {
		names = append(names, f.name)
	}
	return names, nil
}

// FromArgs builds a validated query for endpoint from positional identifiers,
// in the order given by RequiredArgs.
func FromArgs(id, endpoint string, args []string) (Query, error) {
	q := sanitizeQuery(Query{ID: id, Endpoint: endpoint})
	h, ok := handlers[q.Endpoint]
	if !ok {
		return Query{}, fmt.Errorf("%w %q", ErrUnknownEndpoint, endpoint)
	}
	if len(args) != len(h.required) {
		names, _ := RequiredArgs(q.Endpoint)
		return Query{}, fmt.Errorf("%s expects %d argument(s) (%s), got %d",
			q.Endpoint, len(h.required), strings.Join(names, ", "), len(args))
	}
	for i, f := range h.required {
		f.set(&q, strings.TrimSpace(args[i]))
	}
	if err := validateQuery(q); err != nil {
		return Query{}, err
	}
	return q, nil
}

// Dispatcher routes queries to the matching client method.
type Dispatcher struct {
	api API
}

// NewDispatcher wires a dispatcher to a Bitbucket client.
func NewDispatcher(api API) *Dispatcher {
	return &Dispatcher{api: api}
}

// Run performs the single request described by q.
func (d *Dispatcher) Run(ctx context.Context, q Query) (bitbucket.Payload, error) {
	if d == nil || d.api == nil {
		return bitbucket.Payload{}, fmt.Errorf("dispatcher is not initialized")
	}
	q = sanitizeQuery(q)
	h, ok := handlers[q.Endpoint]
	if !ok {
		return bitbucket.Payload{}, fmt.Errorf("query %q: %w %q", q.ID, ErrUnknownEndpoint, q.Endpoint)
	}
	return h.call(ctx, d.api, q)
}
