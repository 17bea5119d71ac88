package itemtext

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-itemtext/internal/markup"
)

// DefaultGrade is the school grade attached to problems when none is set.
const DefaultGrade = 7

// PrepareOptions controls how a Preparer builds problems.
type PrepareOptions struct {
	Grade int // grade attached to every problem (default DefaultGrade)

	// Convert runs question and answer fields through the pipeline. When
	// false, fields are copied as is.
	Convert bool

	// KeepAssets leaves rendered images on disk instead of disposing of
	// them after each conversion.
	KeepAssets bool

	// ContinueOnError skips records whose conversion fails instead of
	// aborting the batch.
	ContinueOnError bool

	// Progress, if set, is called once per finished record. It may be
	// called from several goroutines at once.
	Progress func()
}

// Skipped records a problem left out of a batch.
type Skipped struct {
	ItemID string
	Err    error
}

// Batch is the result of Prepare. Problems keep the input order.
type Batch struct {
	Problems []Problem
	Skipped  []Skipped
}

// Preparer turns normalized records into problems for downstream consumers.
type Preparer struct {
	pool   *PipelinePool
	opts   PrepareOptions
	logger zerolog.Logger
}

// NewPreparer creates a Preparer. pool may be nil when opts.Convert is false.
func NewPreparer(pool *PipelinePool, opts PrepareOptions, logger zerolog.Logger) *Preparer {
	if opts.Grade == 0 {
		opts.Grade = DefaultGrade
	}
	return &Preparer{pool: pool, opts: opts, logger: logger}
}

// Prepare builds one problem per record. With conversion enabled, records
// are spread over the pool's pipelines; the first failure cancels the rest
// unless ContinueOnError is set.
func (p *Preparer) Prepare(ctx context.Context, records []NormalizedRecord) (*Batch, error) {
	if !p.opts.Convert {
		batch := &Batch{Problems: make([]Problem, 0, len(records))}
		for _, rec := range records {
			batch.Problems = append(batch.Problems, p.plainProblem(rec))
			p.progress()
		}
		return batch, nil
	}
	if p.pool == nil {
		return nil, errors.New("itemtext: conversion enabled without a pipeline pool")
	}

	problems := make([]Problem, len(records))
	errs := make([]error, len(records))

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	g.Go(func() error {
		defer close(jobs)
		for i := range records {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	workers := min(p.pool.Size(), max(len(records), 1))
	for range workers {
		g.Go(func() error {
			pl, err := p.pool.Acquire(gctx)
			if err != nil {
				return err
			}
			defer p.pool.Release(pl)

			for i := range jobs {
				prob, err := p.convertRecord(gctx, pl, records[i])
				p.progress()
				if err == nil {
					problems[i] = prob
					continue
				}
				if !p.opts.ContinueOnError || gctx.Err() != nil {
					return err
				}
				errs[i] = err
				p.logger.Warn().Err(err).Str("item_id", records[i].ItemID).Msg("skipping item")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &Batch{Problems: make([]Problem, 0, len(records))}
	for i, rec := range records {
		if errs[i] != nil {
			batch.Skipped = append(batch.Skipped, Skipped{ItemID: rec.ItemID, Err: errs[i]})
			continue
		}
		batch.Problems = append(batch.Problems, problems[i])
	}
	return batch, nil
}

func (p *Preparer) progress() {
	if p.opts.Progress != nil {
		p.opts.Progress()
	}
}

func (p *Preparer) plainProblem(rec NormalizedRecord) Problem {
	return Problem{
		ItemID:      rec.ItemID,
		Grade:       p.opts.Grade,
		Question:    joinNonEmpty(rec.ItemDescription, rec.Question),
		Answer:      rec.Answer,
		Explanation: rec.Explanation,
	}
}

func (p *Preparer) convertRecord(ctx context.Context, pl *Pipeline, rec NormalizedRecord) (Problem, error) {
	question, err := p.convertField(ctx, pl, QuestionRequest(rec))
	if err != nil {
		return Problem{}, fmt.Errorf("item %s: %w", rec.ItemID, err)
	}
	answer, err := p.convertField(ctx, pl, AnswerRequest(rec))
	if err != nil {
		return Problem{}, fmt.Errorf("item %s: %w", rec.ItemID, err)
	}

	return Problem{
		ItemID:      rec.ItemID,
		Grade:       p.opts.Grade,
		Question:    question,
		Answer:      answer,
		Explanation: rec.Explanation,
	}, nil
}

func (p *Preparer) convertField(ctx context.Context, pl *Pipeline, req ConversionRequest) (string, error) {
	res := pl.Convert(ctx, req)
	if !p.opts.KeepAssets {
		defer pl.Dispose(res)
	}
	if res.Failed() {
		return "", fmt.Errorf("%s: %w", req.Kind, res.Err)
	}
	return res.Text, nil
}

// QuestionRequest builds the question conversion for rec. Description and
// question are joined by a newline; when either holds markup each goes
// into its own block so they render as separate paragraphs.
func QuestionRequest(rec NormalizedRecord) ConversionRequest {
	text := joinNonEmpty(rec.ItemDescription, rec.Question)
	if markup.HasMarkup(rec.ItemDescription) || markup.HasMarkup(rec.Question) {
		var b strings.Builder
		for _, part := range []string{rec.ItemDescription, rec.Question} {
			if isBlank(part) {
				continue
			}
			b.WriteString("<div>")
			b.WriteString(part)
			b.WriteString("</div>")
		}
		text = b.String()
	}
	return NewRequest(rec.ItemID, KindQuestion, text)
}

// AnswerRequest builds the answer conversion for rec.
func AnswerRequest(rec NormalizedRecord) ConversionRequest {
	return NewRequest(rec.ItemID, KindAnswer, rec.Answer)
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, s := range parts {
		if !isBlank(s) {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "\n")
}
