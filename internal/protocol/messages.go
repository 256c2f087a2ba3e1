package protocol

import "pathcraft.dev/internal/geom"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	OperatorName    string `json:"operator_name"`
	WorldID         string `json:"world_id,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldID         string      `json:"world_id"`
	WorldParams     WorldParams `json:"world_params"`
	BlockPalette    DigestRef   `json:"block_palette"`
	Modes           []string    `json:"modes"`
}

type WorldParams struct {
	MinY int   `json:"min_y"`
	MaxY int   `json:"max_y"`
	Seed int64 `json:"seed"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// Session editing (client -> server).
type SetModeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Mode            string `json:"mode"`
}

type AddPointMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	WorldID         string    `json:"world_id,omitempty"`
	Point           geom.Vec3 `json:"point"`
}

type SetPointsMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	WorldID         string      `json:"world_id,omitempty"`
	Points          []geom.Vec3 `json:"points"`
}

type SetSettingMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Key             string `json:"key"`
	Value           string `json:"value"`
}

// Operations (client -> server).
type PreviewMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

type GenerateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

type UndoMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	JobID           string `json:"job_id"`
}

type JobsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Limit           int    `json:"limit,omitempty"`
}

// ACK (server -> client): outcome of the last client message.
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}

// PREVIEW_RESULT (server -> client): the raw sampled path, cheap enough
// for a particle outline.
type PreviewResultMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionVersion  uint64      `json:"session_version"`
	Samples         []geom.Vec3 `json:"samples"`
	Length          float64     `json:"length"`
}

// RESULT (server -> client): a generation or undo job was queued.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	JobID           string `json:"job_id"`
	Mode            string `json:"mode"`
	Samples         int    `json:"samples,omitempty"`
	Blocks          int    `json:"blocks"`
}

// JOBS_RESULT (server -> client).
type JobsResultMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Jobs            []JobRef `json:"jobs"`
}

type JobRef struct {
	JobID     string `json:"job_id"`
	Mode      string `json:"mode"`
	Blocks    int    `json:"blocks"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}
