package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/loadshare/config"
	"github.com/kilianp07/loadshare/core/allocation"
	"github.com/kilianp07/loadshare/core/inputs"
	coremetrics "github.com/kilianp07/loadshare/core/metrics"
	coremon "github.com/kilianp07/loadshare/core/monitoring"
	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/core/outputs"
	"github.com/kilianp07/loadshare/infra/logger"
	"github.com/kilianp07/loadshare/infra/monitoring"
)

// Report describes a completed allocation.
type Report struct {
	Meta    model.RunMeta
	Summary allocation.Summary
	Result  model.AllocationResult
	// Written lists the output types that received the result.
	Written []string
}

// Runner executes one allocation run: load, allocate, write, record.
type Runner struct {
	cfg     *config.Config
	log     logger.Logger
	monitor coremon.Monitor
	now     func() time.Time
	newID   func() string
}

// New creates a Runner from the configuration.
func New(cfg *config.Config) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Monitoring)
	if err != nil {
		return nil, fmt.Errorf("monitoring: %w", err)
	}
	return &Runner{
		cfg:     cfg,
		log:     logger.New("runner"),
		monitor: mon,
		now:     time.Now,
		newID:   uuid.NewString,
	}, nil
}

// Run loads both inputs, allocates and writes the result to every
// configured output. Nothing is written unless the allocation succeeds
// and every output accepts the result.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	defer r.monitor.Flush(2 * time.Second)
	defer r.monitor.Recover()

	sink, err := coremetrics.NewMetricsSink(r.cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	defer closeSink(sink)

	started := r.now()
	rep, err := r.run(ctx, started)
	r.record(ctx, sink, rep, started, err)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// Inspect loads both inputs and allocates without writing anything.
func (r *Runner) Inspect(ctx context.Context) (*Report, error) {
	return r.allocate(ctx, r.now())
}

func (r *Runner) run(ctx context.Context, started time.Time) (*Report, error) {
	rep, err := r.allocate(ctx, started)
	if err != nil {
		return rep, err
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}
	writers, err := r.writers()
	if err != nil {
		return rep, err
	}
	defer func() {
		for _, w := range writers {
			if cerr := w.Close(); cerr != nil {
				r.log.Errorf("close %s output: %v", w.typ, cerr)
			}
		}
	}()
	if err := r.write(ctx, rep, writers); err != nil {
		return rep, err
	}
	for _, w := range writers {
		rep.Written = append(rep.Written, w.typ)
	}
	r.log.Infof("wrote %d entries to %d outputs", len(rep.Result), len(writers))
	return rep, nil
}

// write publishes the result to every writer or to none. Staged outputs
// are committed only after every plain writer succeeded.
func (r *Runner) write(ctx context.Context, rep *Report, writers []namedWriter) error {
	type staged struct {
		outputs.Staged
		typ string
	}
	var pending []staged
	discard := func() {
		for _, st := range pending {
			if err := st.Discard(); err != nil {
				r.log.Errorf("discard %s output: %v", st.typ, err)
			}
		}
	}
	for _, w := range writers {
		sw, ok := w.Writer.(outputs.Stager)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			discard()
			return err
		}
		st, err := sw.Prepare(ctx, rep.Meta, rep.Result)
		if err != nil {
			discard()
			return fmt.Errorf("%s output: %w", w.typ, err)
		}
		pending = append(pending, staged{Staged: st, typ: w.typ})
	}
	for _, w := range writers {
		if _, ok := w.Writer.(outputs.Stager); ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			discard()
			return err
		}
		if err := w.Write(ctx, rep.Meta, rep.Result); err != nil {
			discard()
			return fmt.Errorf("%s output: %w", w.typ, err)
		}
	}
	for i, st := range pending {
		if err := st.Commit(); err != nil {
			pending = pending[i+1:]
			discard()
			return fmt.Errorf("%s output: %w", st.typ, err)
		}
	}
	return nil
}

func (r *Runner) allocate(ctx context.Context, started time.Time) (*Report, error) {
	run := r.cfg.Run
	start, err := run.Start()
	if err != nil {
		return nil, err
	}
	meta := model.RunMeta{
		RunID:     r.newID(),
		Nodes:     run.Nodes,
		Shape:     run.Shape(),
		StartDate: start,
		CreatedAt: started,
	}
	rep := &Report{Meta: meta}

	src, err := inputs.NewProfileSource(r.cfg.Profile.With("nodes", run.Nodes))
	if err != nil {
		return rep, fmt.Errorf("profile source: %w", err)
	}
	cat, err := inputs.NewNodeCatalog(r.cfg.Catalog.With("nodes", run.Nodes))
	if err != nil {
		return rep, fmt.Errorf("node catalog: %w", err)
	}
	engine, err := allocation.NewEngine(meta.Shape, logger.New("allocation"))
	if err != nil {
		return rep, err
	}

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	profile, err := src.ReadProfile(ctx, meta.Shape)
	if err != nil {
		return rep, fmt.Errorf("read profile: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}
	nodes, err := cat.Nodes(ctx)
	if err != nil {
		return rep, fmt.Errorf("read catalog: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}
	res, sum, err := engine.Run(profile, nodes)
	if err != nil {
		return rep, fmt.Errorf("allocate: %w", err)
	}
	rep.Meta.TotalWeight = sum.TotalWeight
	rep.Summary = sum
	rep.Result = res
	return rep, nil
}

type namedWriter struct {
	outputs.Writer
	typ string
}

func (r *Runner) writers() ([]namedWriter, error) {
	out := make([]namedWriter, 0, len(r.cfg.Outputs))
	for _, oc := range r.cfg.Outputs {
		w, err := outputs.NewWriter(oc.With("nodes", r.cfg.Run.Nodes))
		if err != nil {
			for _, prev := range out {
				_ = prev.Close()
			}
			return nil, fmt.Errorf("%s output: %w", oc.Type, err)
		}
		out = append(out, namedWriter{Writer: w, typ: oc.Type})
	}
	return out, nil
}

// record reports the run to the metrics sink. Failures are logged only.
func (r *Runner) record(ctx context.Context, sink coremetrics.MetricsSink, rep *Report, started time.Time, runErr error) {
	ev := coremetrics.RunEvent{
		Nodes:    r.cfg.Run.Nodes,
		Shape:    r.cfg.Run.Shape(),
		Duration: r.now().Sub(started),
		Success:  runErr == nil,
		Time:     started,
	}
	if rep != nil {
		ev.RunID = rep.Meta.RunID
		ev.TotalWeight = rep.Summary.TotalWeight
		ev.Entries = len(rep.Result)
		ev.Excluded = rep.Summary.Excluded
	}
	if runErr != nil {
		ev.Error = runErr.Error()
		r.log.Errorf("run failed: %v", runErr)
		r.monitor.CaptureException(runErr, coremon.Tags(ev.RunID, ev.Nodes, string(model.KindOf(runErr))))
	}
	if err := sink.RecordRun(ev); err != nil {
		r.log.Warnf("record run: %v", err)
	}
	if runErr == nil {
		if rec, ok := sink.(coremetrics.AllocationRecorder); ok {
			if err := rec.RecordAllocation(coremetrics.AllocationEvent{Meta: rep.Meta, Result: rep.Result}); err != nil {
				r.log.Warnf("record allocation: %v", err)
			}
		}
	}
	if f, ok := sink.(coremetrics.Flusher); ok {
		// a cancelled run still gets its failure pushed
		if err := f.Flush(context.WithoutCancel(ctx)); err != nil {
			r.log.Warnf("flush metrics: %v", err)
		}
	}
}

func closeSink(sink coremetrics.MetricsSink) {
	switch c := sink.(type) {
	case interface{ Close() error }:
		_ = c.Close()
	case interface{ Close() }:
		c.Close()
	case *coremetrics.MultiSink:
		for _, s := range c.Sinks {
			closeSink(s)
		}
	}
}
