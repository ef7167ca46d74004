// Package orchestrator enumerates files, dispatches one independent job per
// file into a bounded worker pool, and aggregates results in completion
// order. One file's failure never aborts the batch or other in-flight jobs.
package orchestrator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/sync/semaphore"

	"coverfetch/internal/core/meta"
	"coverfetch/internal/core/tagger"
	"coverfetch/internal/shared"
)

// Resolver is the per-file resolution capability consumed by the orchestrator.
type Resolver interface {
	Resolve(ctx context.Context, m shared.TrackMeta) *shared.ResolvedRecord
}

// Options is the immutable per-run configuration threaded into each job.
type Options struct {
	Parallelism int
	DryRun      bool
	Force       bool
	Update      tagger.UpdateFlags
	ID3Version  byte
	MaxArtSize  int
	Quiet       bool // replace per-file lines with a progress bar
}

// Summary tallies terminal statuses across one run.
type Summary struct {
	OK    int
	Skip  int
	Miss  int
	Error int
	Found int
	Total int
}

// Orchestrator runs the per-file pipeline over a worker pool.
type Orchestrator struct {
	resolver Resolver
	warnings *shared.WarningCollector
	opts     Options

	printMu sync.Mutex
}

// New creates an orchestrator.
func New(res Resolver, warnings *shared.WarningCollector, opts Options) *Orchestrator {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &Orchestrator{resolver: res, warnings: warnings, opts: opts}
}

// CollectFiles enumerates regular files under root with the given extension,
// optionally recursing into subdirectories.
func CollectFiles(root, extension string, recursive bool) ([]string, error) {
	suffix := "." + strings.ToLower(strings.TrimPrefix(extension, "."))

	var files []string
	if recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.ToLower(filepath.Ext(path)) == suffix {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", root, err)
		}
		return files, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == suffix {
			files = append(files, filepath.Join(root, entry.Name()))
		}
	}
	return files, nil
}

// Run processes files concurrently and returns the aggregate summary. Result
// lines are printed one complete line per finished file in completion order.
// Cancelling ctx halts new dispatch; in-flight workers finish independently.
func (o *Orchestrator) Run(ctx context.Context, files []string) Summary {
	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(int64(o.opts.Parallelism))
	results := make(chan shared.WorkResult, len(files))

	var bar *pb.ProgressBar
	if o.opts.Quiet && shared.IsTTY() {
		bar = pb.StartNew(len(files))
	}

	for _, path := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			break // dispatch halted, in-flight workers drain below
		}
		wg.Add(1)

		go func(path string) {
			defer wg.Done()
			defer sem.Release(1)

			res := o.processFile(ctx, path)
			if bar != nil {
				bar.Increment()
			} else {
				o.printResult(res)
			}
			results <- res
		}(path)
	}

	wg.Wait()
	if bar != nil {
		bar.Finish()
	}
	close(results)

	summary := Summary{Total: len(files)}
	for res := range results {
		switch res.Status {
		case shared.StatusOK:
			summary.OK++
		case shared.StatusSkip:
			summary.Skip++
		case shared.StatusMiss:
			summary.Miss++
		case shared.StatusFound:
			summary.Found++
		default:
			summary.Error++
		}
	}
	return summary
}

// processFile runs the full pipeline for one file. Every failure path
// produces a WorkResult; nothing escapes the job boundary.
func (o *Orchestrator) processFile(ctx context.Context, path string) shared.WorkResult {
	trackMeta := meta.Read(path)

	rec := o.resolver.Resolve(ctx, trackMeta)
	if rec == nil {
		return shared.WorkResult{Path: path, Status: shared.StatusMiss, Detail: "no cover/details found"}
	}

	req := tagger.WriteRequest{
		Update:     o.opts.Update,
		Force:      o.opts.Force,
		DryRun:     o.opts.DryRun,
		MaxArtSize: o.opts.MaxArtSize,
		ID3Version: o.opts.ID3Version,
	}

	applied, err := tagger.Apply(path, rec, req)
	if err != nil {
		if o.warnings != nil {
			o.warnings.AddTagWriteWarning(path, err.Error())
		}
		return shared.WorkResult{Path: path, Status: shared.StatusError, Source: rec.Source, Detail: err.Error()}
	}

	result := shared.WorkResult{
		Path:         path,
		Source:       rec.Source,
		Fields:       applied.Fields,
		BytesWritten: applied.ImageBytes,
	}

	if o.opts.DryRun {
		result.Status = shared.StatusFound
		result.BytesWritten = len(rec.ImageData)
		return result
	}

	switch applied.Image {
	case tagger.ImageSkipped:
		result.Status = shared.StatusSkip
		result.Detail = "already has art"
	case tagger.ImageNone:
		result.Status = shared.StatusOK
		result.Detail = "no image to embed"
		if o.warnings != nil {
			o.warnings.AddNoImageWarning(path)
		}
	default:
		result.Status = shared.StatusOK
	}
	return result
}

// fieldExtras formats the per-field outcomes of a result for its output line.
func fieldExtras(res shared.WorkResult, wouldWrite bool) string {
	var extras []string
	for _, f := range res.Fields {
		if wouldWrite {
			if f.Written {
				extras = append(extras, fmt.Sprintf("%s would write '%s'", f.Field, f.Value))
			}
			continue
		}
		state := "kept"
		if f.Written {
			state = "set"
		}
		extras = append(extras, fmt.Sprintf("%s=%s ('%s')", f.Field, state, f.Value))
	}
	if len(extras) == 0 {
		return ""
	}
	return ", " + strings.Join(extras, ", ")
}

// printResult writes one complete output line for a finished file. The
// output stream is the only state shared across workers, so writes are
// serialized here.
func (o *Orchestrator) printResult(res shared.WorkResult) {
	o.printMu.Lock()
	defer o.printMu.Unlock()

	switch res.Status {
	case shared.StatusOK:
		detail := ""
		if res.Detail != "" {
			detail = ", " + res.Detail
		}
		shared.ColorSuccess.Printf("[OK] %s (%s, wrote %s%s)%s\n",
			res.Path, res.Source, shared.HumanBytes(res.BytesWritten), detail, fieldExtras(res, false))
	case shared.StatusFound:
		shared.ColorInfo.Printf("[FOUND] %s (%s, would embed %s%s)\n",
			res.Path, res.Source, shared.HumanBytes(res.BytesWritten), fieldExtras(res, true))
	case shared.StatusSkip:
		shared.ColorMuted.Printf("[SKIP] %s (%s)%s\n", res.Path, res.Detail, fieldExtras(res, false))
	case shared.StatusMiss:
		shared.ColorMuted.Printf("[MISS] %s (%s)\n", res.Path, res.Detail)
	default:
		shared.ColorError.Printf("[ERR] %s (%s)\n", res.Path, res.Detail)
	}
}

// PrintSummary writes the final aggregate line. It is always printed, even
// when every file ended in error.
func PrintSummary(s Summary, dryRun bool) {
	fmt.Println()
	if dryRun {
		shared.ColorInfo.Printf("Done (dry-run). found=%d miss=%d error=%d of %d file(s)\n",
			s.Found, s.Miss, s.Error, s.Total)
		return
	}
	shared.ColorInfo.Printf("Done. ok=%d skip=%d miss=%d error=%d of %d file(s)\n",
		s.OK, s.Skip, s.Miss, s.Error, s.Total)
}
