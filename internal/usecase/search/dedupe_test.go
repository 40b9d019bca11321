package search

import (
	"reflect"
	"testing"

	"github.com/canopus-dev/gitsleuth/internal/domain"
)

func issuesWithURLs(urls ...string) []domain.Issue {
	out := make([]domain.Issue, 0, len(urls))
	for _, u := range urls {
		out = append(out, domain.Issue{URL: u})
	}
	return out
}

func urlsOf(issues []domain.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.URL)
	}
	return out
}

func TestDedupe_FirstSeenWins(t *testing.T) {
	in := issuesWithURLs("a", "b", "a", "c", "b")
	got := urlsOf(Dedupe(in))
	want := []string{"a", "b", "c"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe order wrong:\ngot:  %v\nwant: %v", got, want)
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	in := issuesWithURLs("a", "b", "a", "c")
	once := Dedupe(in)
	twice := Dedupe(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Dedupe not idempotent:\nonce:  %v\ntwice: %v", urlsOf(once), urlsOf(twice))
	}
}

func TestDedupe_EmptyAndSingle(t *testing.T) {
	if got := Dedupe([]domain.Issue{}); len(got) != 0 {
		t.Errorf("expected empty output, got %v", got)
	}

	single := issuesWithURLs("a")
	if got := Dedupe(single); !reflect.DeepEqual(got, single) {
		t.Errorf("single element changed: %v", got)
	}
}

func TestDedupe_MissingURLsCollide(t *testing.T) {
	in := []domain.Issue{
		{Title: "first", URL: ""},
		{Title: "second", URL: ""},
		{Title: "third", URL: "x"},
	}
	got := Dedupe(in)

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Title != "first" {
		t.Errorf("first empty-link record must survive, got %q", got[0].Title)
	}
	if got[1].URL != "x" {
		t.Errorf("linked record dropped: %v", got)
	}
}

func TestDedupe_OutputNeverLonger(t *testing.T) {
	inputs := [][]string{
		{},
		{"a"},
		{"a", "a", "a"},
		{"a", "b", "c", "a", "b", "c", "d"},
	}
	for _, urls := range inputs {
		in := issuesWithURLs(urls...)
		out := Dedupe(in)
		if len(out) > len(in) {
			t.Errorf("output longer than input for %v", urls)
		}

		seen := map[string]bool{}
		for _, r := range out {
			if seen[r.URL] {
				t.Errorf("duplicate %q survived in %v", r.URL, urls)
			}
			seen[r.URL] = true
		}
	}
}

func TestDedupe_WorksAcrossVariants(t *testing.T) {
	code := []domain.CodeFile{{URL: "f"}, {URL: "f"}, {URL: "g"}}
	if got := Dedupe(code); len(got) != 2 {
		t.Errorf("code dedupe: expected 2, got %d", len(got))
	}

	commits := []domain.Commit{{URL: "c1"}, {URL: "c2"}, {URL: "c1"}}
	if got := Dedupe(commits); len(got) != 2 {
		t.Errorf("commit dedupe: expected 2, got %d", len(got))
	}
}
