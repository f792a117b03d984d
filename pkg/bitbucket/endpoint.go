package bitbucket

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var (
	// ErrEmptySegment is returned when a required path identifier is blank.
	ErrEmptySegment = errors.New("bitbucket: empty path segment")
	// ErrInvalidSegment is returned for identifiers that would become dot
	// segments ("." or "..") and resolve to a different resource.
	ErrInvalidSegment = errors.New("bitbucket: invalid path segment")
)

// Endpoint is a typed API target. Path is relative to the API root.
type Endpoint interface {
	Path() (string, error)
	Query() url.Values
}

// UserResource selects a sub-resource of users/{username}.
type UserResource string

const (
	UserResourceProfile   UserResource = ""
	UserResourceFollowers UserResource = "followers"
	UserResourceFollowing UserResource = "following"
)

// UsersEndpoint targets users/{username}[/{resource}].
type UsersEndpoint struct {
	Username string
	Resource UserResource
}

// Path returns users/{username} plus the resource suffix.
func (e UsersEndpoint) Path() (string, error) {
	return resourcePath("users", e.Username, "username", string(e.Resource))
}

// Query is always empty for user resources.
func (UsersEndpoint) Query() url.Values { return nil }

// TeamResource selects a sub-resource of teams/{team}.
type TeamResource string

const (
	TeamResourceProfile      TeamResource = ""
	TeamResourceMembers      TeamResource = "members"
	TeamResourceFollowers    TeamResource = "followers"
	TeamResourceFollowing    TeamResource = "following"
	TeamResourceRepositories TeamResource = "repositories"
)

// TeamsEndpoint targets teams/{team}[/{resource}].
type TeamsEndpoint struct {
	Team     string
	Resource TeamResource
}

// Path returns teams/{team} plus the resource suffix.
func (e TeamsEndpoint) Path() (string, error) {
	return resourcePath("teams", e.Team, "team", string(e.Resource))
}

// Query is always empty for team resources.
func (TeamsEndpoint) Query() url.Values { return nil }

// RepositoryResource selects the shape of a repositories/... request.
type RepositoryResource string

const (
	// RepositoryResourceList lists repositories/{account}.
	RepositoryResourceList RepositoryResource = ""
	// RepositoryResourceCommits lists repositories/{account}/{repo}/commits/.
	RepositoryResourceCommits RepositoryResource = "commits"
	// RepositoryResourceCommit reads repositories/{account}/{repo}/commit/{revision}.
	RepositoryResourceCommit RepositoryResource = "commit"
)

// RepositoriesEndpoint targets the repositories/ family. PageLen and Page only
// apply to the list and commits resources; Include and Exclude only to commits.
// Page <= 0 omits the page parameter.
type RepositoriesEndpoint struct {
	Account  string
	Repo     string
	Revision string
	Resource RepositoryResource
	PageLen  int
	Page     int
	Include  []string
	Exclude  []string
}

// Path returns the repositories/ path for the selected resource.
func (e RepositoriesEndpoint) Path() (string, error) {
	account, err := escapeSegment(e.Account, "account")
	if err != nil {
		return "", err
	}

	switch e.Resource {
	case RepositoryResourceList:
		return "repositories/" + account, nil
	case RepositoryResourceCommits, RepositoryResourceCommit:
	default:
		return "", fmt.Errorf("bitbucket: unknown repository resource %q", e.Resource)
	}

	repo, err := escapeSegment(e.Repo, "repo")
	if err != nil {
		return "", err
	}
	if e.Resource == RepositoryResourceCommits {
		return "repositories/" + account + "/" + repo + "/commits/", nil
	}

	rev, err := escapeSegment(e.Revision, "revision")
	if err != nil {
		return "", err
	}
	return "repositories/" + account + "/" + repo + "/commit/" + rev, nil
}

// Query returns pagelen, page, include and exclude as the resource allows.
func (e RepositoriesEndpoint) Query() url.Values {
	if e.Resource == RepositoryResourceCommit {
		return nil
	}

	q := url.Values{}
	q.Set("pagelen", strconv.Itoa(e.PageLen))
	if e.Page > 0 {
		q.Set("page", strconv.Itoa(e.Page))
	}
	if e.Resource == RepositoryResourceCommits {
		for _, v := range e.Include {
			if v = strings.TrimSpace(v); v != "" {
				q.Add("include", v)
			}
		}
		for _, v := range e.Exclude {
			if v = strings.TrimSpace(v); v != "" {
				q.Add("exclude", v)
			}
		}
	}
	return q
}

// paginated reports whether the endpoint carries pagelen from the client.
func paginated(ep Endpoint) (RepositoriesEndpoint, bool) {
	re, ok := ep.(RepositoriesEndpoint)
	if !ok || re.Resource == RepositoryResourceCommit {
		return re, false
	}
	return re, true
}

// resourcePath builds prefix/{id}[/resource] with id escaped.
func resourcePath(prefix, id, name, resource string) (string, error) {
	id, err := escapeSegment(id, name)
	if err != nil {
		return "", err
	}
	path := prefix + "/" + id
	if resource != "" {
		path += "/" + resource
	}
	return path, nil
}

func escapeSegment(v, name string) (string, error) {
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptySegment, name)
	}
	if v == "." || v == ".." {
		return "", fmt.Errorf("%w: %s %q", ErrInvalidSegment, name, v)
	}
	return url.PathEscape(v), nil
}

// buildURL joins the API root, an endpoint path and its query string.
func buildURL(apiURL string, ep Endpoint) (string, error) {
	path, err := ep.Path()
	if err != nil {
		return "", err
	}
	if apiURL != "" && !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	u := apiURL + path
	if q := ep.Query(); len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u, nil
}
