package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"pathcraft.dev/internal/builder"
	"pathcraft.dev/internal/pathgen"
	"pathcraft.dev/internal/protocol"
	"pathcraft.dev/internal/session"
)

// Server exposes builder sessions over a websocket. Each connection owns
// exactly one session; the session dies with the connection.
type Server struct {
	svc *builder.Service
	log *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(svc *builder.Service, logger *log.Logger) *Server {
	return &Server{
		svc: svc,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}
		defer s.svc.CloseSession(sess.ID)

		for {
			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				s.writeAck(conn, "", false, protocol.ErrProtoBadRequest, "not a protocol message")
				continue
			}
			if base.ProtocolVersion != "" && base.ProtocolVersion != protocol.Version {
				s.writeAck(conn, base.Type, false, protocol.ErrProtoBadRequest, "bad protocol_version")
				continue
			}
			s.dispatch(conn, sess, base.Type, msg)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) *session.Session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"),
			time.Now().Add(time.Second))
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"),
			time.Now().Add(time.Second))
		return nil
	}
	name := strings.TrimSpace(hello.OperatorName)
	if name == "" {
		name = "operator"
	}

	sess := s.svc.OpenSession(name)
	minY, maxY := s.svc.WorldBounds()
	cat := s.svc.Catalog()
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sess.ID,
		WorldID:         s.svc.WorldID(),
		WorldParams:     protocol.WorldParams{MinY: minY, MaxY: maxY, Seed: s.svc.Tuning().World.Seed},
		BlockPalette:    protocol.DigestRef{Digest: cat.PaletteDigest, Count: len(cat.Palette)},
		Modes:           []string{string(pathgen.ModeCurve), string(pathgen.ModeRoad), string(pathgen.ModeBridge)},
	}
	if err := writeJSON(conn, welcome); err != nil {
		s.svc.CloseSession(sess.ID)
		return nil
	}
	return sess
}

func (s *Server) dispatch(conn *websocket.Conn, sess *session.Session, msgType string, raw []byte) {
	switch msgType {
	case protocol.TypeSetMode:
		var m protocol.SetModeMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			s.writeAck(conn, msgType, false, protocol.ErrProtoBadRequest, err.Error())
			return
		}
		mode, ok := pathgen.ParseMode(m.Mode)
		if !ok {
			s.writeAck(conn, msgType, false, protocol.ErrBadRequest, "unknown mode "+m.Mode)
			return
		}
		sess.SetMode(mode)
		s.writeAck(conn, msgType, true, "", "")

	case protocol.TypeAddPoint:
		var m protocol.AddPointMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			s.writeAck(conn, msgType, false, protocol.ErrProtoBadRequest, err.Error())
			return
		}
		worldID := m.WorldID
		if worldID == "" {
			worldID = s.svc.WorldID()
		}
		if err := sess.AddPoint(session.ControlPoint{WorldID: worldID, Pos: m.Point}); err != nil {
			s.writeAck(conn, msgType, false, protocol.ErrWorldMismatch, err.Error())
			return
		}
		s.writeAck(conn, msgType, true, "", "")

	case protocol.TypeSetPoints:
		var m protocol.SetPointsMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			s.writeAck(conn, msgType, false, protocol.ErrProtoBadRequest, err.Error())
			return
		}
		worldID := m.WorldID
		if worldID == "" {
			worldID = s.svc.WorldID()
		}
		sess.ClearPoints()
		for _, p := range m.Points {
			if err := sess.AddPoint(session.ControlPoint{WorldID: worldID, Pos: p}); err != nil {
				// Consecutive duplicates are dropped, not fatal, when
				// replacing the whole list.
				continue
			}
		}
		s.writeAck(conn, msgType, true, "", "")

	case protocol.TypeRemovePoint:
		sess.RemoveLastPoint()
		s.writeAck(conn, msgType, true, "", "")

	case protocol.TypeClearPoints:
		sess.ClearPoints()
		s.writeAck(conn, msgType, true, "", "")

	case protocol.TypeSetSetting:
		var m protocol.SetSettingMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			s.writeAck(conn, msgType, false, protocol.ErrProtoBadRequest, err.Error())
			return
		}
		if err := sess.SetSetting(m.Key, m.Value); err != nil {
			s.writeAck(conn, msgType, false, protocol.ErrInvalidSetting, err.Error())
			return
		}
		s.writeAck(conn, msgType, true, "", "")

	case protocol.TypePreview:
		path, err := s.svc.Preview(sess.Snapshot())
		if err != nil {
			s.writeError(conn, msgType, err)
			return
		}
		_ = writeJSON(conn, protocol.PreviewResultMsg{
			Type:            protocol.TypePreviewResult,
			ProtocolVersion: protocol.Version,
			SessionVersion:  sess.Snapshot().Version,
			Samples:         path,
			Length:          path.Length(),
		})

	case protocol.TypeGenerate:
		res, err := s.svc.Generate(sess.Snapshot(), sess.Operator)
		if err != nil {
			s.writeError(conn, msgType, err)
			return
		}
		_ = writeJSON(conn, protocol.ResultMsg{
			Type:            protocol.TypeResult,
			ProtocolVersion: protocol.Version,
			JobID:           res.JobID,
			Mode:            string(res.Mode),
			Samples:         res.Samples,
			Blocks:          res.Blocks,
		})

	case protocol.TypeUndo:
		var m protocol.UndoMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			s.writeAck(conn, msgType, false, protocol.ErrProtoBadRequest, err.Error())
			return
		}
		res, err := s.svc.Undo(sess.ID, m.JobID)
		if err != nil {
			s.writeError(conn, msgType, err)
			return
		}
		_ = writeJSON(conn, protocol.ResultMsg{
			Type:            protocol.TypeResult,
			ProtocolVersion: protocol.Version,
			JobID:           res.JobID,
			Mode:            "undo",
			Blocks:          res.Blocks,
		})

	case protocol.TypeJobs:
		var m protocol.JobsMsg
		_ = json.Unmarshal(raw, &m)
		rows, err := s.svc.Jobs(sess.ID, m.Limit)
		if err != nil {
			s.writeError(conn, msgType, err)
			return
		}
		out := protocol.JobsResultMsg{Type: protocol.TypeJobsResult, ProtocolVersion: protocol.Version}
		for _, r := range rows {
			out.Jobs = append(out.Jobs, protocol.JobRef{
				JobID:     r.ID,
				Mode:      r.Mode,
				Blocks:    r.Blocks,
				Status:    r.Status,
				CreatedAt: r.CreatedAt,
			})
		}
		_ = writeJSON(conn, out)

	default:
		s.writeAck(conn, msgType, false, protocol.ErrProtoBadRequest, "unknown message type")
	}
}

func (s *Server) writeError(conn *websocket.Conn, ackFor string, err error) {
	var ce *builder.CodedError
	if errors.As(err, &ce) {
		s.writeAck(conn, ackFor, false, ce.Code, ce.Msg)
		return
	}
	s.writeAck(conn, ackFor, false, protocol.ErrInternal, err.Error())
}

func (s *Server) writeAck(conn *websocket.Conn, ackFor string, accepted bool, code, message string) {
	if !protocol.IsKnownCode(code) {
		code = protocol.ErrInternal
	}
	_ = writeJSON(conn, protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          ackFor,
		Accepted:        accepted,
		Code:            code,
		Message:         message,
	})
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
