package hunmorph

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// BatchResult is the outcome for one dictionary entry of a batch.
type BatchResult struct {
	Entry       *DictionaryEntry
	Inflections []*Inflection
	// Err is set when generation failed for this entry only.
	Err error
}

type batchParam struct {
	idx     int
	ctx     context.Context
	gen     *Generator
	entry   *DictionaryEntry
	results []BatchResult
	wg      *sync.WaitGroup
}

func (p *batchParam) reset() {
	p.idx = 0
	p.ctx = nil
	p.gen = nil
	p.entry = nil
	p.results = nil
	p.wg = nil
}

var batchParamPool = &sync.Pool{
	New: func() any { return new(batchParam) },
}

func newBatchPool(size int) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*batchParam)
		if !ok {
			panic("batch pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			batchParamPool.Put(param)
		}()
		r := BatchResult{Entry: param.entry}
		if err := param.ctx.Err(); err != nil {
			r.Err = err
		} else {
			r.Inflections, r.Err = param.gen.ApplyAffixRules(param.entry)
		}
		param.results[param.idx] = r
	})
	if err != nil {
		return nil, fmt.Errorf("create batch pool: %w", err)
	}
	return pool, nil
}

// Batch applies the affix rules to every entry on a pool of workers.
// Results are in input order. A failing entry only sets its own Err; the
// returned error reports an invalid pool size or cancellation, in which
// case entries not yet started carry ctx's error.
func (g *Generator) Batch(ctx context.Context, entries []*DictionaryEntry, workers int) ([]BatchResult, error) {
	pool, err := newBatchPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]BatchResult, len(entries))
	var wg sync.WaitGroup
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			results[i] = BatchResult{Entry: e, Err: err}
			continue
		}
		wg.Add(1)
		param := batchParamPool.Get().(*batchParam)
		param.idx = i
		param.ctx = ctx
		param.gen = g
		param.entry = e
		param.results = results
		param.wg = &wg
		if err := pool.Invoke(param); err != nil {
			wg.Done()
			results[i] = BatchResult{Entry: e, Err: fmt.Errorf("submit entry %q: %w", e.Stem, err)}
			param.reset()
			batchParamPool.Put(param)
		}
	}
	wg.Wait()
	return results, ctx.Err()
}
