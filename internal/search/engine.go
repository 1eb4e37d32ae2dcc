package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"poursuite/internal/catalog"
	"poursuite/internal/codec"
	"poursuite/internal/config"
	"poursuite/internal/metrics"
)

// Engine plans and executes searches across the shard catalog.
type Engine struct {
	catalog *catalog.Catalog
	cfg     config.SearchConfig
	logger  *zap.Logger
	metrics *metrics.Metrics // nil for callers that don't scrape metrics
}

// New returns an engine reading from cat. m may be nil.
func New(cat *catalog.Catalog, cfg config.SearchConfig, logger *zap.Logger, m *metrics.Metrics) *Engine {
	return &Engine{catalog: cat, cfg: cfg, logger: logger, metrics: m}
}

// Plan returns the identifiers of shards whose date coverage overlaps the
// requested window, sorted. A shard is excluded only when its entire range
// lies strictly before startDate or strictly after endDate; shards with
// unknown coverage are kept. Empty bounds select every shard.
func (e *Engine) Plan(startDate, endDate string) []string {
	if startDate == "" && endDate == "" {
		return e.catalog.ShardIDs()
	}

	var ids []string
	for id, shard := range e.catalog.Shards() {
		if startDate != "" && shard.EndDate != "" && shard.EndDate < startDate {
			continue
		}
		if endDate != "" && shard.StartDate != "" && shard.StartDate > endDate {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// shardOutcome is the typed result of one shard task: rows, skipped under
// deadline, or failed. Failures are data here, not control flow; the
// caller decides how to absorb them.
type shardOutcome struct {
	shardID  string
	mentions []Mention
	skipped  bool
	err      error
}

// Search fans the query out to every relevant shard, bounded by the worker
// pool, and aggregates the hits into one deterministic page. Per-shard
// failures contribute zero rows; only a catastrophic condition would return
// an error. In-flight shard queries always run to completion; the deadline
// only prevents not-yet-started tasks from issuing their query.
func (e *Engine) Search(ctx context.Context, p Params) (Page, error) {
	start := time.Now()
	if e.metrics != nil {
		e.metrics.SearchesTotal.Inc()
		defer func() {
			e.metrics.SearchDuration.Observe(time.Since(start).Seconds())
		}()
	}

	pageNum := p.Page
	if pageNum < 1 {
		pageNum = 1
	}
	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = e.cfg.DefaultPageSize
	}
	if pageSize > e.cfg.MaxPageSize {
		pageSize = e.cfg.MaxPageSize
	}

	empty := Page{Results: Result{}, PageNum: pageNum, PageSize: pageSize}
	if e.catalog.Len() == 0 {
		e.logger.Warn("no shards available to search")
		return empty, nil
	}

	relevant := e.Plan(p.StartDate, p.EndDate)
	if len(relevant) == 0 {
		e.logger.Info("no shards overlap the requested date range",
			zap.String("start", p.StartDate), zap.String("end", p.EndDate))
		return empty, nil
	}

	query, args := buildShardQuery(p)
	e.logger.Info("dispatching search",
		zap.Int("shards", len(relevant)),
		zap.Bool("bounded", !p.Deadline.IsZero()))

	outcomes := make([]shardOutcome, len(relevant))
	g := new(errgroup.Group)
	g.SetLimit(min(len(relevant), e.cfg.MaxWorkers))
	for i, shardID := range relevant {
		g.Go(func() error {
			outcomes[i] = e.searchShard(ctx, shardID, query, args, p.Deadline)
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors; outcomes carry them

	byProcess := make(map[string][]Mention)
	skipped := 0
	for _, out := range outcomes {
		switch {
		case out.skipped:
			skipped++
		case out.err != nil:
			// Absorbed at the shard boundary: this shard contributes zero rows.
			if e.metrics != nil {
				e.metrics.ShardsFailed.Inc()
			}
			e.logger.Error("shard query failed",
				zap.String("shard", out.shardID), zap.Error(out.err))
		default:
			for _, m := range out.mentions {
				byProcess[m.ProcessNumber] = append(byProcess[m.ProcessNumber], m)
			}
		}
	}
	if e.metrics != nil && skipped > 0 {
		e.metrics.ShardsSkipped.Add(float64(skipped))
	}
	if skipped > 0 {
		e.logger.Warn("search truncated by deadline",
			zap.Int("skipped_shards", skipped), zap.Int("dispatched", len(relevant)))
	}

	ordered := aggregate(byProcess)
	if strings.TrimSpace(p.ExclusionTerms) != "" {
		ordered = Filter(ordered, p.ExclusionTerms)
	}

	return Page{
		Results:        paginate(ordered, pageNum, pageSize),
		TotalProcesses: len(ordered),
		PageNum:        pageNum,
		PageSize:       pageSize,
		Truncated:      skipped > 0,
	}, nil
}

// searchShard runs the query against a single shard. It checks the shared
// deadline exactly once, before any work; a query that has started is
// never cancelled mid-flight.
func (e *Engine) searchShard(ctx context.Context, shardID, query string, args []any, deadline time.Time) shardOutcome {
	if !deadline.IsZero() && time.Now().After(deadline) {
		e.logger.Info("skipping shard: deadline exceeded", zap.String("shard", shardID))
		return shardOutcome{shardID: shardID, skipped: true}
	}

	db, err := e.catalog.Conn(shardID)
	if err != nil {
		e.logger.Warn("shard unreachable", zap.String("shard", shardID), zap.Error(err))
		return shardOutcome{shardID: shardID, err: err}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return shardOutcome{shardID: shardID, err: err}
	}
	defer rows.Close()

	var mentions []Mention
	for rows.Next() {
		var (
			processNumber string
			content       []byte
			documentDate  string
			filePath      string
		)
		if err := rows.Scan(&processNumber, &content, &documentDate, &filePath); err != nil {
			return shardOutcome{shardID: shardID, err: err}
		}
		mentions = append(mentions, Mention{
			ProcessNumber: processNumber,
			Content:       codec.Decompress(content),
			DocumentDate:  documentDate,
			FilePath:      filePath,
			ShardID:       shardID,
		})
	}
	if err := rows.Err(); err != nil {
		return shardOutcome{shardID: shardID, err: err}
	}

	return shardOutcome{shardID: shardID, mentions: mentions}
}

// buildShardQuery assembles the per-shard SQL predicate. Criteria combine
// with AND; absent criteria omit their predicate entirely. Row order is
// irrelevant; the aggregator imposes the final ordering.
func buildShardQuery(p Params) (string, []any) {
	var conds []string
	var args []any

	if kw := strings.TrimSpace(p.Keywords); kw != "" {
		conds = append(conds,
			"id IN (SELECT rowid FROM paragraphs_fts WHERE paragraphs_fts MATCH ?)")
		args = append(args, codec.SanitizeFTSQuery(kw))
	}
	if pn := strings.TrimSpace(p.ProcessNumber); pn != "" {
		conds = append(conds, "process_number LIKE ?")
		args = append(args, "%"+pn+"%")
	}
	if sd := strings.TrimSpace(p.StartDate); sd != "" {
		conds = append(conds, "document_date >= ?")
		args = append(args, sd)
	}
	if ed := strings.TrimSpace(p.EndDate); ed != "" {
		conds = append(conds, "document_date <= ?")
		args = append(args, ed)
	}

	where := "1=1"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}
	return "SELECT process_number, content, document_date, file_path FROM paragraphs WHERE " + where, args
}
