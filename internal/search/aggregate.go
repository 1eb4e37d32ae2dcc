package search

import "sort"

// aggregate turns the per-process mention map into the ordered Result.
// Mentions sort by document date descending with shard id and file path as
// tie-breaks, groups by their most recent mention date descending with
// process number ascending as tie-break. The full ordering is imposed here
// so page contents never depend on shard completion order.
func aggregate(byProcess map[string][]Mention) Result {
	result := make(Result, 0, len(byProcess))
	for processNumber, mentions := range byProcess {
		sort.SliceStable(mentions, func(i, j int) bool {
			a, b := mentions[i], mentions[j]
			if a.DocumentDate != b.DocumentDate {
				return a.DocumentDate > b.DocumentDate
			}
			if a.ShardID != b.ShardID {
				return a.ShardID < b.ShardID
			}
			return a.FilePath < b.FilePath
		})
		result = append(result, ProcessGroup{
			ProcessNumber: processNumber,
			Mentions:      mentions,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := mostRecentDate(result[i]), mostRecentDate(result[j])
		if a != b {
			return a > b
		}
		return result[i].ProcessNumber < result[j].ProcessNumber
	})
	return result
}

func mostRecentDate(g ProcessGroup) string {
	if len(g.Mentions) == 0 {
		return ""
	}
	return g.Mentions[0].DocumentDate
}

// paginate slices the ordered group list for a 1-based page number.
// Out-of-range pages yield an empty slice, not an error.
func paginate(r Result, page, pageSize int) Result {
	offset := (page - 1) * pageSize
	if offset >= len(r) {
		return Result{}
	}
	end := offset + pageSize
	if end > len(r) {
		end = len(r)
	}
	return r[offset:end]
}
