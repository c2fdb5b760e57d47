package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/provision/pkg/domain"
)

// asyncKinds are the commands whose device calls may block for seconds.
var asyncKinds = []domain.CommandKind{
	domain.CommandWifiScan,
	domain.CommandWifiSet,
	domain.CommandBleScan,
	domain.CommandI2CScan,
}

type job struct {
	kind    domain.CommandKind
	started time.Time
	cancel  context.CancelFunc
	exited  chan struct{} // closed once the device call returned
	dropped chan struct{} // closed when nobody waits for the result anymore
}

// completion carries a finished device call back to the polling goroutine.
// render runs there, so it may touch console state.
type completion struct {
	kind   domain.CommandKind
	job    *job
	err    error
	render func() []string
}

// busy reports (and tells the operator) that a job of kind is still running.
func (c *Console) busy(kind domain.CommandKind) bool {
	if _, ok := c.jobs[kind]; !ok {
		return false
	}
	c.println(busyText(kind))
	return true
}

func busyText(kind domain.CommandKind) string {
	return fmt.Sprintf("%s Scan already in progress", tag(kind))
}

// startJob runs fn on its own goroutine. The done channel holds one slot per
// async kind; a dropped job gives up its send instead of waiting for a slot.
func (c *Console) startJob(kind domain.CommandKind, timeout time.Duration, fn func(ctx context.Context) completion) {
	ctx, cancel := context.WithTimeout(c.ctx, timeout)
	j := &job{
		kind:    kind,
		started: time.Now(),
		cancel:  cancel,
		exited:  make(chan struct{}),
		dropped: make(chan struct{}),
	}
	c.jobs[kind] = j

	c.logger.Debug("job started", "console_id", c.id, "kind", kind, "timeout", timeout)
	if c.hooks.OnJobStart != nil {
		c.hooks.OnJobStart(c.ctx, &domain.JobEvent{EventBase: c.eventBase(domain.EventJobStart), Kind: kind})
	}

	go func() {
		res := fn(ctx)
		res.kind = kind
		res.job = j
		close(j.exited)
		select {
		case c.done <- res:
		case <-j.dropped:
		}
	}()
}

// dropJob cancels the job of kind and forgets it, so it no longer counts as
// pending and its result is never applied. The returned channel closes once
// the device call has returned; it is nil when no job of kind was running.
func (c *Console) dropJob(kind domain.CommandKind) <-chan struct{} {
	j, ok := c.jobs[kind]
	if !ok {
		return nil
	}
	delete(c.jobs, kind)
	j.cancel()
	close(j.dropped)
	c.jobEnded(j, context.Canceled)
	return j.exited
}

// awaitExit waits for a dropped job's device call to return.
func awaitExit(ctx context.Context, exited <-chan struct{}) error {
	if exited == nil {
		return nil
	}
	select {
	case <-exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Poll applies every finished job without blocking and returns how many were applied.
func (c *Console) Poll() int {
	n := 0
	for {
		select {
		case res := <-c.done:
			c.finish(res)
			n++
		default:
			return n
		}
	}
}

// Drain waits until every in-flight job has been applied or ctx ends.
func (c *Console) Drain(ctx context.Context) error {
	for len(c.jobs) > 0 {
		select {
		case res := <-c.done:
			c.finish(res)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Pending returns the number of in-flight jobs.
func (c *Console) Pending() int {
	return len(c.jobs)
}

// Close cancels and forgets every in-flight job. Their results are discarded.
func (c *Console) Close() error {
	c.cancel()
	for kind := range c.jobs {
		c.dropJob(kind)
	}
	return nil
}

func (c *Console) finish(res completion) {
	j, ok := c.jobs[res.kind]
	if !ok || j != res.job {
		c.logger.Debug("stale job result dropped", "console_id", c.id, "kind", res.kind)
		return
	}
	delete(c.jobs, res.kind)
	j.cancel()
	c.jobEnded(j, res.err)

	var lines []string
	if res.render != nil {
		lines = res.render()
	}
	if len(lines) == 0 {
		return
	}
	if c.mode != domain.ModeProvisioning {
		c.logger.Info("job output suppressed in passthrough", "console_id", c.id, "kind", res.kind, "lines", len(lines))
		return
	}
	c.emit("\n")
	for _, line := range lines {
		c.println(line)
	}
	c.redraw()
}

func (c *Console) jobEnded(j *job, err error) {
	elapsed := time.Since(j.started)
	switch {
	case errors.Is(err, context.Canceled):
		c.logger.Debug("job canceled", "console_id", c.id, "kind", j.kind, "duration", elapsed)
	case err != nil:
		c.logger.Warn("device call failed", "console_id", c.id, "kind", j.kind, "duration", elapsed, "err", err)
	default:
		c.logger.Debug("job done", "console_id", c.id, "kind", j.kind, "duration", elapsed)
	}
	if c.hooks.OnJobDone != nil {
		c.hooks.OnJobDone(c.ctx, &domain.JobEvent{
			EventBase: c.eventBase(domain.EventJobDone),
			Kind:      j.kind,
			Duration:  elapsed,
			Err:       err,
		})
	}
}
