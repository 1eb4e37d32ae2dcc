// Package search executes keyword, process-number and date-range queries
// across the shard catalog and aggregates the hits into paginated,
// deterministically ordered process groups.
package search

import "time"

// Mention is one retrieved paragraph hit, post-decompression, tagged with
// its originating shard. Ephemeral: built per query, never persisted.
type Mention struct {
	ProcessNumber string
	Content       string
	DocumentDate  string
	FilePath      string
	ShardID       string
}

// ProcessGroup is all mentions of one process, ordered by document date
// descending.
type ProcessGroup struct {
	ProcessNumber string
	Mentions      []Mention
}

// Result is the ordered list of process groups: most recent mention first,
// ties broken by process number ascending.
type Result []ProcessGroup

// TotalMentions counts mentions across all groups.
func (r Result) TotalMentions() int {
	n := 0
	for _, g := range r {
		n += len(g.Mentions)
	}
	return n
}

// Page is the externally visible unit of a search: one slice of the ordered
// group list plus pagination metadata. When Truncated is true at least one
// shard was skipped under deadline pressure and TotalProcesses is a lower
// bound, not an exact count.
type Page struct {
	Results        Result
	TotalProcesses int
	PageNum        int
	PageSize       int
	Truncated      bool
}

// Params carries one search call's criteria. All criteria are optional;
// absent ones simply drop the corresponding predicate. A zero Deadline
// means unbounded, suitable for trusted offline callers only.
type Params struct {
	Keywords       string
	ProcessNumber  string
	StartDate      string
	EndDate        string
	ExclusionTerms string
	Page           int
	PageSize       int
	Deadline       time.Time
}
