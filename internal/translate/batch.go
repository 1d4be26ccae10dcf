package translate

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// BatchTranslator splits lines into batches of Options.BatchSize and sends
// them through the backend with up to Options.Concurrency requests in flight.
// The first failing batch cancels the rest.
type BatchTranslator struct {
	backend Backend
	options Options
}

func NewBatchTranslator(backend Backend, opts Options) *BatchTranslator {
	return &BatchTranslator{backend: backend, options: opts}
}

func (t *BatchTranslator) Backend() Backend {
	return t.backend
}

func (t *BatchTranslator) batchSize() int {
	if t.options.BatchSize > 0 {
		return t.options.BatchSize
	}
	return DefaultBatchSize
}

func (t *BatchTranslator) concurrency() int {
	if t.options.Concurrency > 0 {
		return t.options.Concurrency
	}
	return DefaultConcurrency
}

func (t *BatchTranslator) Translate(ctx context.Context, lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return []Line{}, nil
	}

	batches := splitBatches(lines, t.batchSize())
	if len(batches) == 1 {
		return t.translateBatch(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		index int
		lines []Line
		err   error
	}

	work := make(chan int)
	results := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < t.concurrency() && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					return
				}
				out, err := t.translateBatch(ctx, batches[idx])
				if err != nil {
					cancel()
				}
				results <- batchResult{index: idx, lines: out, err: err}
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		all      []Line
		firstErr error
	)
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("batch %d failed: %w", r.index, r.err)
			}
			continue
		}
		all = append(all, r.lines...)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil && len(all) < len(lines) {
		return nil, err
	}

	order := make(map[int]int, len(lines))
	for i, l := range lines {
		order[l.ID] = i
	}
	sort.SliceStable(all, func(i, j int) bool {
		return order[all[i].ID] < order[all[j].ID]
	})
	return all, nil
}

func (t *BatchTranslator) translateBatch(ctx context.Context, lines []Line) ([]Line, error) {
	prompt := BuildPrompt(t.options, lines)

	reply, err := t.backend.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if reply == "" {
		return nil, fmt.Errorf("no text in %s response", t.backend.Name())
	}

	return parseReply(reply, len(lines))
}

func splitBatches(lines []Line, size int) [][]Line {
	var batches [][]Line
	for i := 0; i < len(lines); i += size {
		end := i + size
		if end > len(lines) {
			end = len(lines)
		}
		batches = append(batches, lines[i:end])
	}
	return batches
}
