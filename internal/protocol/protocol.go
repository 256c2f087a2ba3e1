package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"

	TypeSetMode     = "SET_MODE"
	TypeAddPoint    = "ADD_POINT"
	TypeSetPoints   = "SET_POINTS"
	TypeRemovePoint = "REMOVE_POINT"
	TypeClearPoints = "CLEAR_POINTS"
	TypeSetSetting  = "SET_SETTING"

	TypePreview  = "PREVIEW"
	TypeGenerate = "GENERATE"
	TypeUndo     = "UNDO"
	TypeJobs     = "JOBS"

	TypeAck           = "ACK"
	TypePreviewResult = "PREVIEW_RESULT"
	TypeResult        = "RESULT"
	TypeJobsResult    = "JOBS_RESULT"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
