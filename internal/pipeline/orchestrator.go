package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitrax/qagen/internal/dataset"
	"github.com/hitrax/qagen/internal/document"
	"github.com/hitrax/qagen/internal/generate"
	"github.com/hitrax/qagen/internal/splitter"
)

// generator is the per-chunk generation dependency; *generate.Client in
// production, a fake in tests. All retrying happens behind this call.
type generator interface {
	Generate(ctx context.Context, text string, attachments []generate.Attachment) ([]generate.RawPair, error)
}

// Progress is reported after each completed chunk.
type Progress struct {
	Completed int
	Total     int
}

// Orchestrator sequences generation across chunks, one at a time. Sequential
// processing with a fixed pause between chunks is a policy to respect the
// generation API's rate limits, not a limitation.
type Orchestrator struct {
	gen    generator
	pacing time.Duration
	log    *slog.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewOrchestrator(gen generator, pacing time.Duration, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		gen:    gen,
		pacing: pacing,
		log:    log,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

// RunAll processes the session's chunks strictly in list order, caching each
// chunk's pairs as it completes. The first failing chunk halts the run; pairs
// cached by earlier chunks are retained. onProgress, when non-nil, is called
// after every completed chunk.
func (o *Orchestrator) RunAll(ctx context.Context, sess *Session, onProgress func(Progress)) error {
	if err := sess.acquire(); err != nil {
		return err
	}
	defer sess.release()

	chunks := sess.Chunks()
	total := len(chunks)
	sess.setRun(RunState{Running: true, Total: total})

	finish := func(err error) error {
		sess.updateRun(func(r *RunState) {
			r.Running = false
			if err != nil {
				r.Error = err.Error()
			}
		})
		return err
	}

	for i, chunk := range chunks {
		if err := o.generateChunk(ctx, sess, chunk); err != nil {
			return finish(fmt.Errorf("chunk %d (pages %d-%d): %w", chunk.ID, chunk.StartPage, chunk.EndPage, err))
		}
		sess.updateRun(func(r *RunState) { r.Completed = i + 1 })
		if onProgress != nil {
			onProgress(Progress{Completed: i + 1, Total: total})
		}
		if o.log != nil {
			o.log.Info("chunk complete", "chunk_id", chunk.ID, "completed", i+1, "total", total)
		}
		if i < total-1 && o.pacing > 0 {
			if err := o.sleep(ctx, o.pacing); err != nil {
				return finish(err)
			}
		}
	}
	return finish(nil)
}

// GenerateOne runs the single-chunk generation path, guarded by the same
// busy flag as a batch so the two can never write concurrently.
func (o *Orchestrator) GenerateOne(ctx context.Context, sess *Session, chunkID int) ([]dataset.QAPair, error) {
	if err := sess.acquire(); err != nil {
		return nil, err
	}
	defer sess.release()

	chunk, ok := sess.Chunk(chunkID)
	if !ok {
		return nil, fmt.Errorf("chunk %d not found", chunkID)
	}
	if err := o.generateChunk(ctx, sess, chunk); err != nil {
		return nil, fmt.Errorf("chunk %d (pages %d-%d): %w", chunk.ID, chunk.StartPage, chunk.EndPage, err)
	}
	pairs, _ := sess.Store().Get(chunk.ID)
	return pairs, nil
}

// generateChunk extracts the chunk's content, calls the generator, and
// caches the normalized pairs. Success overwrites any previous entry.
func (o *Orchestrator) generateChunk(ctx context.Context, sess *Session, chunk splitter.Chunk) error {
	doc := sess.Document()
	if doc == nil {
		return ErrNoDocument
	}

	text := document.RangeText(doc, chunk.StartPage, chunk.EndPage)

	var attachments []generate.Attachment
	pageBytes, err := doc.ExtractPages(chunk.StartPage, chunk.EndPage)
	if err != nil {
		return fmt.Errorf("extract pages: %w", err)
	}
	if len(pageBytes) > 0 {
		attachments = append(attachments, generate.Attachment{
			MIMEType: "application/pdf",
			Data:     pageBytes,
		})
	}

	raw, err := o.gen.Generate(ctx, text, attachments)
	if err != nil {
		return err
	}

	pairs := generate.Normalize(raw, chunk.ContextTitle, doc.Name())
	if !sess.StorePairs(chunk.ID, pairs) && o.log != nil {
		o.log.Warn("chunk deleted during generation, result dropped", "chunk_id", chunk.ID)
	}
	return nil
}
