package usage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

// pageStats summarizes one paged walk over the sample window.
type pageStats struct {
	Records  int64
	Requests int
	Shrinks  int
	Complete bool
}

// pageEvents walks [start, end) in adaptive chunks. A chunk is shrunk by half
// and re-queried from the same start when its first page is full (cap records
// and a continuation token) or when it needs more than MaxPagesAtFloor pages.
// Only at MinChunk is a chunk truncated at the page limit, which flags the
// walk incomplete. GrowAfterPages clean chunks in a row grow the chunk by
// GrowFactor, clamped to MaxChunk.
func (a *Aggregator) pageEvents(ctx context.Context, unit entity.Unit, start, end time.Time, sampler *sizeSampler, log *zap.Logger) (pageStats, error) {
	cfg := a.cfg
	stats := pageStats{Complete: true}

	chunk := clampDuration(cfg.StartChunk, cfg.MinChunk, cfg.MaxChunk)
	clean := 0
	cursor := start

	for cursor.Before(end) {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		chunkEnd := cursor.Add(chunk)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		read, err := a.readChunk(ctx, unit, cursor, chunkEnd, chunk > cfg.MinChunk, &stats)
		if err != nil {
			return stats, err
		}

		if read.shrink {
			chunk = clampDuration(chunk/2, cfg.MinChunk, cfg.MaxChunk)
			clean = 0
			stats.Shrinks++
			log.Debug("chunk too dense, shrinking",
				zap.Time("chunk_start", cursor),
				zap.Duration("chunk", chunk),
				zap.Bool("full_page", read.full))
			continue
		}

		if read.truncated {
			stats.Complete = false
			log.Warn("data completeness warning: page limit reached at the minimum chunk, chunk truncated",
				zap.Time("chunk_start", cursor),
				zap.Time("chunk_end", chunkEnd),
				zap.Int("pages", len(read.pages)),
				zap.Error(types.ErrPagingLimitExceeded))
		}

		for _, records := range read.pages {
			stats.Records += int64(len(records))
			sampler.offer(records)
		}

		if read.full {
			clean = 0
		} else {
			clean++
			if cfg.GrowAfterPages > 0 && clean >= cfg.GrowAfterPages {
				chunk = clampDuration(time.Duration(float64(chunk)*cfg.GrowFactor), cfg.MinChunk, cfg.MaxChunk)
				clean = 0
			}
		}
		cursor = chunkEnd
	}

	return stats, nil
}

// chunkRead holds the pages of one chunk until it is known to be kept.
type chunkRead struct {
	pages     [][]entity.EventRecord
	full      bool
	shrink    bool
	truncated bool
}

// readChunk follows continuation tokens for [from, to). With canShrink set it
// gives up as soon as the chunk is too dense, discarding what it read.
func (a *Aggregator) readChunk(ctx context.Context, unit entity.Unit, from, to time.Time, canShrink bool, stats *pageStats) (chunkRead, error) {
	var read chunkRead

	page, err := a.queryPage(ctx, unit, from, to, "")
	stats.Requests++
	if err != nil {
		return read, err
	}

	read.full = len(page.Records) >= a.cfg.PageRecordCap && page.NextToken != ""
	if read.full && canShrink {
		return chunkRead{full: true, shrink: true}, nil
	}
	read.pages = append(read.pages, page.Records)

	token := page.NextToken
	for token != "" {
		if len(read.pages) >= a.cfg.MaxPagesAtFloor {
			if canShrink {
				return chunkRead{full: read.full, shrink: true}, nil
			}
			read.truncated = true
			break
		}
		next, err := a.queryPage(ctx, unit, from, to, token)
		stats.Requests++
		if err != nil {
			return read, err
		}
		read.pages = append(read.pages, next.Records)
		token = next.NextToken
	}
	return read, nil
}

func (a *Aggregator) queryPage(ctx context.Context, unit entity.Unit, start, end time.Time, token string) (entity.EventPage, error) {
	var page entity.EventPage
	err := a.retry.Do(ctx, "events:query", func(ctx context.Context) error {
		p, err := a.events.QueryEvents(ctx, unit, start, end, token, a.cfg.PageRecordCap)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	return page, err
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if hi > 0 && d > hi {
		return hi
	}
	return d
}
