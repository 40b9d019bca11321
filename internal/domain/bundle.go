package domain

// Bundle is the category-partitioned result of one search pass. It is
// built fresh per query (or per merged multi-keyword pass) and never
// mutated by consumers.
type Bundle struct {
	Issues       []Issue    `json:"issues"`
	PullRequests []Issue    `json:"pullRequests"`
	Code         []CodeFile `json:"code"`
	Commits      []Commit   `json:"commits"`
}

// Summary holds per-category result counts.
type Summary struct {
	Issues       int `json:"issuesFound"`
	PullRequests int `json:"prsFound"`
	CodeFiles    int `json:"codeFilesFound"`
	Commits      int `json:"commitsFound"`
}

// Summary derives counts from the current category lengths, so counts can
// never drift from the lists they describe.
func (b Bundle) Summary() Summary {
	return Summary{
		Issues:       len(b.Issues),
		PullRequests: len(b.PullRequests),
		CodeFiles:    len(b.Code),
		Commits:      len(b.Commits),
	}
}

// Normalized returns a copy with every nil category replaced by an empty
// slice, so each category serializes as a JSON array rather than null.
func (b Bundle) Normalized() Bundle {
	if b.Issues == nil {
		b.Issues = []Issue{}
	}
	if b.PullRequests == nil {
		b.PullRequests = []Issue{}
	}
	if b.Code == nil {
		b.Code = []CodeFile{}
	}
	if b.Commits == nil {
		b.Commits = []Commit{}
	}
	return b
}

// Empty reports whether the bundle holds no records in any category.
func (b Bundle) Empty() bool {
	return len(b.Issues) == 0 && len(b.PullRequests) == 0 &&
		len(b.Code) == 0 && len(b.Commits) == 0
}
