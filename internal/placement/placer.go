// Package placement applies generated change sets to the world
// incrementally, so a large build never stalls whatever else the world
// is doing. It also captures the prior block at every touched position,
// which is what makes a job reversible.
package placement

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"pathcraft.dev/internal/blocks"
	"pathcraft.dev/internal/geom"
)

// Applier is the single write capability the placer needs. Apply
// performs one block write and returns the id that was there before.
type Applier interface {
	Apply(p geom.BlockPos, c blocks.Change) (prev string)
}

// PlannedChange is one ordered write of a job.
type PlannedChange struct {
	Pos    geom.BlockPos `json:"pos"`
	Change blocks.Change `json:"change"`
}

// UndoEntry records what a position held before a job wrote it.
type UndoEntry struct {
	Pos  geom.BlockPos `json:"pos"`
	Prev string        `json:"prev"`
}

// JobStatus lifecycle: queued -> placing -> done, or failed.
const (
	StatusQueued  = "queued"
	StatusPlacing = "placing"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Job is one generation result queued for placement.
type Job struct {
	ID        string
	SessionID string
	Mode      string
	Changes   []PlannedChange
	Undo      []UndoEntry
	Status    string
	CreatedAt time.Time

	done chan struct{}
}

// Done is closed once the job has fully applied or failed.
func (j *Job) Done() <-chan struct{} { return j.done }

// PlanChanges orders a change set bottom-up (Y, then X, then Z) so
// support structure lands before what rests on it, and deterministically
// so identical inputs replay identically.
func PlanChanges(cs blocks.ChangeSet) []PlannedChange {
	out := make([]PlannedChange, 0, len(cs))
	for pos, c := range cs {
		out = append(out, PlannedChange{Pos: pos, Change: c})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
	return out
}

// Placer drains queued jobs into the world at a bounded rate. Callers
// interact through Enqueue and the job's Done channel.
type Placer struct {
	world Applier
	log   *log.Logger

	blocksPerTick int
	tick          time.Duration

	mu    sync.Mutex
	queue []*Job

	// OnDone, when set, is invoked from the Run goroutine after a job
	// finishes.
	OnDone func(*Job)
}

func NewPlacer(world Applier, blocksPerTick int, tick time.Duration, logger *log.Logger) *Placer {
	if blocksPerTick <= 0 {
		blocksPerTick = 512
	}
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	return &Placer{
		world:         world,
		log:           logger,
		blocksPerTick: blocksPerTick,
		tick:          tick,
	}
}

// Enqueue accepts a planned job for placement.
func (p *Placer) Enqueue(job *Job) {
	job.Status = StatusQueued
	job.done = make(chan struct{})
	p.mu.Lock()
	p.queue = append(p.queue, job)
	p.mu.Unlock()
}

// Run applies queued jobs until the context is canceled. One job at a
// time, at most blocksPerTick writes per tick.
func (p *Placer) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	var cur *Job
	applied := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if cur == nil {
			cur = p.pop()
			if cur == nil {
				continue
			}
			cur.Status = StatusPlacing
			applied = 0
		}

		n := 0
		for applied < len(cur.Changes) && n < p.blocksPerTick {
			pc := cur.Changes[applied]
			prev := p.world.Apply(pc.Pos, pc.Change)
			cur.Undo = append(cur.Undo, UndoEntry{Pos: pc.Pos, Prev: prev})
			applied++
			n++
		}
		if applied >= len(cur.Changes) {
			cur.Status = StatusDone
			if p.log != nil {
				p.log.Printf("job %s placed %d blocks", cur.ID, len(cur.Changes))
			}
			if p.OnDone != nil {
				p.OnDone(cur)
			}
			close(cur.done)
			cur = nil
		}
	}
}

func (p *Placer) pop() *Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil
	}
	j := p.queue[0]
	p.queue = p.queue[1:]
	return j
}

// Pending reports how many jobs wait behind the one in flight.
func (p *Placer) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// ReverseJob builds the job that restores everything a finished job
// overwrote. Entries replay in reverse order so overlapping writes
// unwind correctly.
func ReverseJob(id string, src *Job) *Job {
	changes := make([]PlannedChange, 0, len(src.Undo))
	for i := len(src.Undo) - 1; i >= 0; i-- {
		u := src.Undo[i]
		c := blocks.Full(u.Prev)
		if u.Prev == blocks.Air {
			c = blocks.Clear()
		}
		changes = append(changes, PlannedChange{Pos: u.Pos, Change: c})
	}
	return &Job{
		ID:        id,
		SessionID: src.SessionID,
		Mode:      "undo",
		Changes:   changes,
		CreatedAt: time.Now(),
	}
}
