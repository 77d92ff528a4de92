package compile

import (
	"context"
	"sync"
	"time"

	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/logging"
	"github.com/lilBchii/tide/internal/world"
)

// Result is the outcome of one compile pass.
type Result struct {
	Document *Document
	Warnings []errors.Diagnostic
	Err      error
	Duration time.Duration
}

// CompileCallback is called when a compile pass completes.
type CompileCallback func(result Result)

// Metrics tracks compile performance.
type Metrics struct {
	TotalCompiles      int64
	SuccessfulCompiles int64
	FailedCompiles     int64
	TotalDuration      time.Duration
	mutex              sync.RWMutex
}

func (m *Metrics) record(result Result) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.TotalCompiles++
	if result.Err != nil {
		m.FailedCompiles++
	} else {
		m.SuccessfulCompiles++
	}
	m.TotalDuration += result.Duration
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() (total, ok, failed int64, avg time.Duration) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	total, ok, failed = m.TotalCompiles, m.SuccessfulCompiles, m.FailedCompiles
	if total > 0 {
		avg = m.TotalDuration / time.Duration(total)
	}
	return total, ok, failed, avg
}

// Pipeline invokes the compiler against World snapshots. It is a
// stateless function of the snapshot passed in: the input world is
// never mutated, and warnings are collected separately from the
// result so they can feed a diagnostics surface without blocking
// success.
type Pipeline struct {
	compiler    Compiler
	diagnostics *errors.DiagnosticCollector
	metrics     *Metrics
	callbacks   []CompileCallback
	logger      logging.Logger
	mutex       sync.RWMutex
}

// NewPipeline creates a compile pipeline around the given compiler.
func NewPipeline(compiler Compiler, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Default()
	}
	return &Pipeline{
		compiler:    compiler,
		diagnostics: errors.NewDiagnosticCollector(),
		metrics:     &Metrics{},
		logger:      logger.WithComponent("compile"),
	}
}

// AddCallback registers a completion callback.
func (p *Pipeline) AddCallback(cb CompileCallback) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.callbacks = append(p.callbacks, cb)
}

// Diagnostics exposes the collector holding non-fatal warnings.
func (p *Pipeline) Diagnostics() *errors.DiagnosticCollector {
	return p.diagnostics
}

// Metrics exposes the pipeline counters.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Compile runs one compile pass over snapshot. Failure occurs only
// when the compiler reports unrecoverable diagnostics, including a
// main pointer that resolves to no source entry.
func (p *Pipeline) Compile(ctx context.Context, snapshot *world.World) Result {
	start := time.Now()
	p.logger.Debug(ctx, "compiling", "main", string(snapshot.Main()))

	passDiags := errors.NewDiagnosticCollector()
	doc, err := p.compiler.Compile(ctx, snapshot, passDiags)

	result := Result{
		Document: doc,
		Warnings: passDiags.All(),
		Duration: time.Since(start),
	}
	if err != nil {
		result.Err = errors.NewCompileError("compilation failed", err)
		p.logger.Warn(ctx, result.Err, "compile failed", "duration", result.Duration)
	} else {
		p.logger.Debug(ctx, "compile ok", "pages", doc.PageCount(), "duration", result.Duration)
	}

	for _, warning := range result.Warnings {
		p.diagnostics.Add(warning.Severity, warning.Message)
	}

	p.metrics.record(result)

	p.mutex.RLock()
	callbacks := make([]CompileCallback, len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.mutex.RUnlock()
	for _, cb := range callbacks {
		cb(result)
	}

	return result
}
