package bitbucket

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// Page is the envelope Bitbucket wraps around paginated listings.
type Page struct {
	Size     int               `json:"size"`
	Page     int               `json:"page"`
	PageLen  int               `json:"pagelen"`
	Next     string            `json:"next"`
	Previous string            `json:"previous"`
	Values   []json.RawMessage `json:"values"`
}

// NextPage returns the page number of the next link, or 0 when there is none.
func (p Page) NextPage() int {
	if p.Next == "" {
		return 0
	}
	u, err := url.Parse(p.Next)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

type Link struct {
	Href string `json:"href"`
}

type Links struct {
	Self   Link `json:"self"`
	HTML   Link `json:"html"`
	Avatar Link `json:"avatar"`
}

// Account covers both users and teams.
type Account struct {
	UUID        string    `json:"uuid"`
	Username    string    `json:"username"`
	Nickname    string    `json:"nickname"`
	DisplayName string    `json:"display_name"`
	AccountID   string    `json:"account_id"`
	Type        string    `json:"type"`
	CreatedOn   time.Time `json:"created_on"`
	Links       Links     `json:"links"`
}

type Repository struct {
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	FullName  string    `json:"full_name"`
	Slug      string    `json:"slug"`
	SCM       string    `json:"scm"`
	IsPrivate bool      `json:"is_private"`
	Owner     Account   `json:"owner"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
	Links     Links     `json:"links"`
}

type CommitAuthor struct {
	Raw  string  `json:"raw"`
	User Account `json:"user"`
}

type Commit struct {
	Hash    string       `json:"hash"`
	Date    time.Time    `json:"date"`
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
	Parents []struct {
		Hash string `json:"hash"`
	} `json:"parents"`
	Links Links `json:"links"`
}

// DecodeValues unmarshals every page value into T.
func DecodeValues[T any](p Page) ([]T, error) {
	out := make([]T, 0, len(p.Values))
	for _, raw := range p.Values {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
