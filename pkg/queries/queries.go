// Package queries loads the list of Bitbucket reads the harvester performs.
package queries

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samvad-hq/bitbucket-harvester/internal/configfile"
)

// Endpoint names accepted in query files.
const (
	EndpointUserProfile         = "user_profile"
	EndpointUserFollowers       = "user_followers"
	EndpointUserFollowing       = "user_following"
	EndpointTeamProfile         = "team_profile"
	EndpointTeamMembers         = "team_members"
	EndpointTeamFollowers       = "team_followers"
	EndpointTeamFollowing       = "team_following"
	EndpointTeamRepositories    = "team_repositories"
	EndpointAccountRepositories = "account_repositories"
	EndpointCommits             = "commits"
	EndpointCommit              = "commit"
)

// Query is a single configured endpoint call.
type Query struct {
	ID       string   `json:"id" yaml:"id"`
	Endpoint string   `json:"endpoint" yaml:"endpoint"`
	Username string   `json:"username,omitempty" yaml:"username,omitempty"`
	Team     string   `json:"team,omitempty" yaml:"team,omitempty"`
	Account  string   `json:"account,omitempty" yaml:"account,omitempty"`
	Repo     string   `json:"repo,omitempty" yaml:"repo,omitempty"`
	Revision string   `json:"revision,omitempty" yaml:"revision,omitempty"`
	Page     int      `json:"page,omitempty" yaml:"page,omitempty"`
	Include  []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude  []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Enabled  *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// EnabledValue returns enabled flag defaulting to true.
func (q Query) EnabledValue() bool {
	if q.Enabled == nil {
		return true
	}
	return *q.Enabled
}

// configFile represents the structure of the queries configuration file.
type configFile struct {
	Queries []Query `json:"queries" yaml:"queries"`
}

// Registry holds the queries loaded from a config file.
type Registry struct {
	mu      sync.RWMutex
	queries []Query
	idx     map[string]Query
}

// LoadRegistry loads the query registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	var parsed configFile
	if err := configfile.Load(path, "queries", &parsed); err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Queries)
}

// NewRegistry sanitizes and validates queries and indexes them by id.
func NewRegistry(qs []Query) (*Registry, error) {
	reg := &Registry{
		queries: make([]Query, 0, len(qs)),
		idx:     make(map[string]Query, len(qs)),
	}
	for i := range qs {
		q := sanitizeQuery(qs[i])
		if err := validateQuery(q); err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}
		if _, exists := reg.idx[q.ID]; exists {
			return nil, fmt.Errorf("duplicate query id %q", q.ID)
		}
		reg.queries = append(reg.queries, q)
		reg.idx[q.ID] = q
	}
	return reg, nil
}

// sanitizeQuery trims and normalizes the query fields.
func sanitizeQuery(q Query) Query {
	q.ID = strings.TrimSpace(q.ID)
	q.Endpoint = strings.ToLower(strings.TrimSpace(q.Endpoint))
	q.Username = strings.TrimSpace(q.Username)
	q.Team = strings.TrimSpace(q.Team)
	q.Account = strings.TrimSpace(q.Account)
	q.Repo = strings.TrimSpace(q.Repo)
	q.Revision = strings.TrimSpace(q.Revision)
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Enabled == nil {
		def := true
		q.Enabled = &def
	}
	return q
}

// validateQuery checks that the identifiers required by the endpoint are present.
func validateQuery(q Query) error {
	if q.ID == "" {
		return errors.New("id is required")
	}
	h, ok := handlers[q.Endpoint]
	if !ok {
		return fmt.Errorf("query %q: %w %q", q.ID, ErrUnknownEndpoint, q.Endpoint)
	}
	for _, field := range h.required {
		if field.value(q) == "" {
			return fmt.Errorf("%s is required for query %q (%s)", field.name, q.ID, q.Endpoint)
		}
	}
	return nil
}

// ByID returns the query by id.
func (r *Registry) ByID(id string) (Query, bool) {
	if r == nil {
		return Query{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Query{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.idx[id]
	return q, ok
}

// All returns all configured queries.
func (r *Registry) All() []Query {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Query, len(r.queries))
	copy(out, r.queries)
	return out
}

// Enabled returns queries that are enabled.
func (r *Registry) Enabled() []Query {
	all := r.All()
	out := make([]Query, 0, len(all))
	for _, q := range all {
		if q.EnabledValue() {
			out = append(out, q)
		}
	}
	return out
}
