package catalog

import "sort"

// Stats summarizes the catalog from metadata alone. No row scans happen
// here, so it is cheap to call on every request.
type Stats struct {
	TotalShards    int         `json:"total_shards"`
	TotalSizeBytes int64       `json:"total_size_bytes"`
	Earliest       string      `json:"earliest,omitempty"`
	Latest         string      `json:"latest,omitempty"`
	Shards         []ShardStat `json:"shards"`
}

// ShardStat is the per-shard slice of Stats.
type ShardStat struct {
	ID        string `json:"id"`
	SizeBytes int64  `json:"size_bytes"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// Stats returns shard count, aggregate size, the global date range and a
// per-shard breakdown, sorted by shard identifier.
func (c *Catalog) Stats() Stats {
	stats := Stats{TotalShards: len(c.shards)}

	for _, shard := range c.shards {
		stats.TotalSizeBytes += shard.SizeBytes
		if shard.StartDate != "" && (stats.Earliest == "" || shard.StartDate < stats.Earliest) {
			stats.Earliest = shard.StartDate
		}
		if shard.EndDate != "" && shard.EndDate > stats.Latest {
			stats.Latest = shard.EndDate
		}
		stats.Shards = append(stats.Shards, ShardStat{
			ID:        shard.ID,
			SizeBytes: shard.SizeBytes,
			StartDate: shard.StartDate,
			EndDate:   shard.EndDate,
		})
	}

	sort.Slice(stats.Shards, func(i, j int) bool {
		return stats.Shards[i].ID < stats.Shards[j].ID
	})
	return stats
}
