// Package session tracks the live, operator-mutable builder state: the
// ordered control points and the per-mode settings. Generation never
// reads a session directly; it takes an immutable Snapshot so a result
// is a pure function of the snapshot it was given.
package session

import (
	"fmt"
	"sync"

	"pathcraft.dev/internal/geom"
	"pathcraft.dev/internal/pathgen"
)

// ControlPoint is one operator-selected anchor, ordered by selection.
type ControlPoint struct {
	WorldID string    `json:"world_id"`
	Pos     geom.Vec3 `json:"pos"`
}

// Session is one operator's working state. Methods are safe for
// concurrent use; the transport layer calls them from connection
// goroutines.
type Session struct {
	ID       string
	Operator string

	mu      sync.Mutex
	version uint64
	mode    pathgen.Mode
	points  []ControlPoint
	curve   pathgen.CurveSettings
	road    pathgen.RoadSettings
	bridge  pathgen.BridgeSettings
}

func New(id, operator string) *Session {
	return &Session{
		ID:       id,
		Operator: operator,
		mode:     pathgen.ModeRoad,
		curve:    pathgen.DefaultCurveSettings(),
		road:     pathgen.DefaultRoadSettings(),
		bridge:   pathgen.DefaultBridgeSettings(),
	}
}

// Snapshot is the immutable value handed to generation. Version
// increments on every mutation so consumers can tell stale results
// apart.
type Snapshot struct {
	SessionID string
	Version   uint64
	Mode      pathgen.Mode
	Points    []ControlPoint
	Curve     pathgen.CurveSettings
	Road      pathgen.RoadSettings
	Bridge    pathgen.BridgeSettings
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	pts := make([]ControlPoint, len(s.points))
	copy(pts, s.points)
	return Snapshot{
		SessionID: s.ID,
		Version:   s.version,
		Mode:      s.mode,
		Points:    pts,
		Curve:     s.curve,
		Road:      s.road,
		Bridge:    s.bridge,
	}
}

// Positions strips the world ids for sampling. The session boundary
// already guarantees all points share one world.
func (sn Snapshot) Positions() []geom.Vec3 {
	out := make([]geom.Vec3, len(sn.Points))
	for i, p := range sn.Points {
		out[i] = p.Pos
	}
	return out
}

// AddPoint appends an anchor. Points in a different world than the
// existing ones are rejected, as are consecutive duplicates.
func (s *Session) AddPoint(p ControlPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.points) > 0 {
		last := s.points[len(s.points)-1]
		if last.WorldID != p.WorldID {
			return fmt.Errorf("point in world %q, path is in %q", p.WorldID, last.WorldID)
		}
		if last.Pos == p.Pos {
			return fmt.Errorf("duplicate consecutive point")
		}
	}
	s.points = append(s.points, p)
	s.version++
	return nil
}

// RemoveLastPoint drops the newest anchor, if any.
func (s *Session) RemoveLastPoint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.points); n > 0 {
		s.points = s.points[:n-1]
		s.version++
	}
}

func (s *Session) ClearPoints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = nil
	s.version++
}

func (s *Session) PointCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.points)
}

func (s *Session) SetMode(m pathgen.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	s.version++
}

// SetSetting applies one key=value edit against the current mode's
// settings record.
func (s *Session) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	switch s.mode {
	case pathgen.ModeCurve:
		err = s.curve.Set(key, value)
	case pathgen.ModeBridge:
		err = s.bridge.Set(key, value)
	default:
		err = s.road.Set(key, value)
	}
	if err == nil {
		s.version++
	}
	return err
}
