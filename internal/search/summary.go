package search

// Summary condenses a result set for export headers and CLI display.
type Summary struct {
	TotalProcesses int
	TotalMentions  int
	Earliest       string
	Latest         string

	// ShardCounts maps shard id to the number of mentions it contributed.
	ShardCounts map[string]int
}

// Summarize walks a result set once and returns its summary.
func Summarize(results Result) Summary {
	s := Summary{
		TotalProcesses: len(results),
		ShardCounts:    make(map[string]int),
	}
	for _, group := range results {
		s.TotalMentions += len(group.Mentions)
		for _, mention := range group.Mentions {
			s.ShardCounts[mention.ShardID]++
			if mention.DocumentDate == "" {
				continue
			}
			if s.Earliest == "" || mention.DocumentDate < s.Earliest {
				s.Earliest = mention.DocumentDate
			}
			if mention.DocumentDate > s.Latest {
				s.Latest = mention.DocumentDate
			}
		}
	}
	return s
}
