// Package domain holds the core search record types shared across the
// transport and usecase layers.
package domain

import "time"

// Linked is implemented by every search record variant. The link is the
// record's canonical GitHub URL and serves as its identity for
// deduplication.
type Linked interface {
	Link() string
}

// Issue is one issue or pull request found by search. GitHub's search API
// returns the same shape for both; the category they were fetched under
// decides which bundle slot they land in.
type Issue struct {
	Number     int       `json:"number"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	State      string    `json:"state"`
	Author     string    `json:"author"`
	Repository string    `json:"repository"`
	CreatedAt  time.Time `json:"createdAt"`
	URL        string    `json:"url"`
}

// Link implements Linked.
func (i Issue) Link() string { return i.URL }

// CodeFile is one source file matched by code search.
type CodeFile struct {
	Path       string `json:"path"`
	Repository string `json:"repository"`
	URL        string `json:"url"`
}

// Link implements Linked.
func (c CodeFile) Link() string { return c.URL }

// Commit is one commit matched by commit search.
type Commit struct {
	SHA        string    `json:"sha"`
	Message    string    `json:"message"`
	Author     string    `json:"author"`
	Repository string    `json:"repository"`
	AuthoredAt time.Time `json:"authoredAt"`
	URL        string    `json:"url"`
}

// Link implements Linked.
func (c Commit) Link() string { return c.URL }

// Repo is one repository of the configured organization.
type Repo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
