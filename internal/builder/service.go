// Package builder wires the path engine to its collaborators: sessions
// in, sampled previews and placement jobs out, with the job index and
// audit log fed along the way. Generation itself stays synchronous and
// stateless; this layer owns pacing and bookkeeping.
package builder

import (
	"fmt"
	"log"
	"sync"
	"time"

	"pathcraft.dev/internal/blocks"
	"pathcraft.dev/internal/geom"
	"pathcraft.dev/internal/pathgen"
	"pathcraft.dev/internal/persistence/indexdb"
	"pathcraft.dev/internal/persistence/joblog"
	"pathcraft.dev/internal/placement"
	"pathcraft.dev/internal/session"
	"pathcraft.dev/internal/terrain"
	"pathcraft.dev/internal/tuning"
)

// CodedError carries the protocol error code for a rejected request.
type CodedError struct {
	Code string
	Msg  string
}

func (e *CodedError) Error() string { return e.Msg }

func coded(code, format string, args ...any) error {
	return &CodedError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Error codes shared with the protocol layer.
const (
	CodeBadRequest     = "E_BAD_REQUEST"
	CodeInvalidSetting = "E_INVALID_SETTING"
	CodeLimitExceeded  = "E_LIMIT_EXCEEDED"
	CodeUnknownJob     = "E_UNKNOWN_JOB"
)

// Service is the top-level builder facade.
type Service struct {
	log     *log.Logger
	tune    tuning.Tuning
	cat     *blocks.Catalog
	world   *LockedWorld
	placer  *placement.Placer
	index   *indexdb.Index
	audit   *joblog.Writer
	worldID string

	mu       sync.Mutex
	seq      uint64
	sessions map[string]*session.Session
	jobs     map[string]*placement.Job
}

func NewService(worldID string, store *terrain.Store, tune tuning.Tuning, index *indexdb.Index, audit *joblog.Writer, logger *log.Logger) *Service {
	s := &Service{
		log:      logger,
		tune:     tune,
		cat:      store.Catalog(),
		world:    NewLockedWorld(store),
		index:    index,
		audit:    audit,
		worldID:  worldID,
		sessions: map[string]*session.Session{},
		jobs:     map[string]*placement.Job{},
	}
	s.placer = placement.NewPlacer(
		s.world,
		tune.PlaceBlocksPerTick,
		time.Duration(tune.PlaceTickMs)*time.Millisecond,
		logger,
	)
	s.placer.OnDone = s.jobFinished
	return s
}

func (s *Service) Placer() *placement.Placer { return s.placer }
func (s *Service) Catalog() *blocks.Catalog { return s.cat }
func (s *Service) WorldID() string { return s.worldID }
func (s *Service) Tuning() tuning.Tuning { return s.tune }

// WorldBounds exposes the vertical world limits for the welcome message.
func (s *Service) WorldBounds() (minY, maxY int) { return s.world.Bounds() }

func (s *Service) nextID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("%s_%d", prefix, s.seq)
}

// OpenSession creates a fresh session for an operator.
func (s *Service) OpenSession(operator string) *session.Session {
	sess := session.New(s.nextID("session"), operator)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

func (s *Service) CloseSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// samplePath runs the curve sampler for a snapshot, enforcing the
// configured sample ceiling before sampling rather than after.
func (s *Service) samplePath(sn session.Snapshot) (geom.Path, error) {
	pts := sn.Positions()
	if len(pts) < 2 {
		return nil, nil
	}
	if s.tune.MaxControlPoints > 0 && len(pts) > s.tune.MaxControlPoints {
		return nil, coded(CodeLimitExceeded, "too many control points: %d > %d", len(pts), s.tune.MaxControlPoints)
	}

	res := sn.Curve.Resolution
	algo := sn.Curve.Algorithm
	switch sn.Mode {
	case pathgen.ModeRoad:
		res = sn.Road.Resolution
		algo = sn.Road.Algorithm
	case pathgen.ModeBridge:
		// Bridges are always Catmull-Rom sampled.
		res = sn.Bridge.Resolution
		algo = geom.AlgoCatmullRom
	}

	if s.tune.MaxSamples > 0 {
		est := 0.0
		for i := 1; i < len(pts); i++ {
			est += pts[i-1].DistanceTo(pts[i])
		}
		if int(est/res)+len(pts) > s.tune.MaxSamples {
			return nil, coded(CodeLimitExceeded, "estimated sample count exceeds %d", s.tune.MaxSamples)
		}
	}
	return geom.Sample(pts, res, algo), nil
}

// Preview samples the snapshot's curve without generating blocks. Fewer
// than two points yields an empty path, not an error.
func (s *Service) Preview(sn session.Snapshot) (geom.Path, error) {
	return s.samplePath(sn)
}

// Result summarizes an accepted generation request.
type Result struct {
	JobID   string
	Mode    pathgen.Mode
	Samples int
	Blocks  int
	Job     *placement.Job
}

// Generate runs the snapshot's generator and queues the outcome for
// placement. An empty change set (too few points, zero-length path) is
// a valid empty result with no job.
func (s *Service) Generate(sn session.Snapshot, operator string) (Result, error) {
	var changes blocks.ChangeSet

	path, err := s.samplePath(sn)
	if err != nil {
		return Result{}, err
	}

	switch sn.Mode {
	case pathgen.ModeRoad:
		if err := sn.Road.Validate(s.cat); err != nil {
			return Result{}, coded(CodeInvalidSetting, "%v", err)
		}
		changes = s.world.WithRead(func(t terrain.Terrain) blocks.ChangeSet {
			gen := &pathgen.RoadGenerator{Terrain: t, Catalog: s.cat}
			return gen.Generate(path, sn.Road)
		})
	case pathgen.ModeBridge:
		if err := sn.Bridge.Validate(s.cat); err != nil {
			return Result{}, coded(CodeInvalidSetting, "%v", err)
		}
		changes = s.world.WithRead(func(t terrain.Terrain) blocks.ChangeSet {
			gen := &pathgen.BridgeGenerator{Terrain: t, Catalog: s.cat}
			return gen.Generate(path, sn.Bridge)
		})
	default:
		return Result{}, coded(CodeBadRequest, "mode %q has no structure generator", sn.Mode)
	}

	result := Result{Mode: sn.Mode, Samples: len(path), Blocks: len(changes)}
	if len(changes) == 0 {
		return result, nil
	}
	if s.tune.MaxBlocksPerJob > 0 && len(changes) > s.tune.MaxBlocksPerJob {
		return Result{}, coded(CodeLimitExceeded, "job of %d blocks exceeds ceiling %d", len(changes), s.tune.MaxBlocksPerJob)
	}

	job := &placement.Job{
		ID:        s.nextID("job"),
		SessionID: sn.SessionID,
		Mode:      string(sn.Mode),
		Changes:   placement.PlanChanges(changes),
		CreatedAt: time.Now(),
	}
	result.JobID = job.ID
	result.Job = job

	// Enqueue first so the job's done channel exists before any other
	// goroutine can find the job through the map.
	s.placer.Enqueue(job)

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	s.index.RecordJob(job.ID, sn.SessionID, operator, job.Mode, len(job.Changes))
	s.writeAudit(joblog.Entry{
		SessionID: sn.SessionID,
		Operator:  operator,
		JobID:     job.ID,
		Mode:      job.Mode,
		Event:     "generate",
		Points:    len(sn.Points),
		Samples:   result.Samples,
		Blocks:    result.Blocks,
	})
	return result, nil
}

// Undo queues the reverse of a finished job. Jobs still in memory are
// reversed from their captured undo entries; otherwise the persisted
// snapshot is used.
func (s *Service) Undo(sessionID, jobID string) (Result, error) {
	s.mu.Lock()
	job, ok := s.jobs[jobID]
	s.mu.Unlock()

	var src *placement.Job
	if ok {
		// Completion is observed through the done channel, which also
		// publishes the job's undo entries to this goroutine.
		select {
		case <-job.Done():
		default:
			return Result{}, coded(CodeBadRequest, "job %q is still placing", jobID)
		}
		src = job
	} else {
		entries, err := s.index.LoadUndo(jobID)
		if err != nil || len(entries) == 0 {
			return Result{}, coded(CodeUnknownJob, "no undo state for job %q", jobID)
		}
		src = &placement.Job{ID: jobID, SessionID: sessionID, Undo: entries}
	}

	rev := placement.ReverseJob(s.nextID("job"), src)
	s.mu.Lock()
	s.jobs[rev.ID] = rev
	delete(s.jobs, jobID)
	s.mu.Unlock()

	s.placer.Enqueue(rev)
	s.index.RecordJob(rev.ID, rev.SessionID, "", rev.Mode, len(rev.Changes))
	s.writeAudit(joblog.Entry{
		SessionID: sessionID,
		JobID:     rev.ID,
		Mode:      rev.Mode,
		Event:     "undo",
		Blocks:    len(rev.Changes),
		Detail:    "reverses " + jobID,
	})
	return Result{JobID: rev.ID, Mode: "undo", Blocks: len(rev.Changes), Job: rev}, nil
}

// Jobs lists a session's indexed jobs.
func (s *Service) Jobs(sessionID string, limit int) ([]indexdb.JobRow, error) {
	return s.index.JobsForSession(sessionID, limit)
}

func (s *Service) jobFinished(job *placement.Job) {
	s.index.UpdateStatus(job.ID, job.Status)
	s.index.SaveUndo(job.ID, job.Undo)
	s.writeAudit(joblog.Entry{
		SessionID: job.SessionID,
		JobID:     job.ID,
		Mode:      job.Mode,
		Event:     "place",
		Blocks:    len(job.Changes),
	})
}

func (s *Service) writeAudit(e joblog.Entry) {
	if s.audit == nil {
		return
	}
	e.Time = time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.audit.Write(e); err != nil && s.log != nil {
		s.log.Printf("audit write: %v", err)
	}
}
