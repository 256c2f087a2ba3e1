package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pathcraft.dev/internal/blocks"
	"pathcraft.dev/internal/builder"
	"pathcraft.dev/internal/geom"
	"pathcraft.dev/internal/protocol"
	"pathcraft.dev/internal/terrain"
	"pathcraft.dev/internal/tuning"
)

func dialTestServer(t *testing.T) (*websocket.Conn, func()) {
	t.Helper()
	store := terrain.NewFlat(59, blocks.Default())
	tune := tuning.Default()
	tune.PlaceTickMs = 1
	svc := builder.NewService("world_1", store, tune, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Placer().Run(ctx)

	ts := httptest.NewServer(NewServer(svc, nil).Handler())
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		cancel()
		ts.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		ts.Close()
		cancel()
	}
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func recv(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("unmarshal %s: %v", b, err)
	}
}

func recvAck(t *testing.T, conn *websocket.Conn, ackFor string, accepted bool) protocol.AckMsg {
	t.Helper()
	var ack protocol.AckMsg
	recv(t, conn, &ack)
	if ack.Type != protocol.TypeAck || ack.AckFor != ackFor || ack.Accepted != accepted {
		t.Fatalf("ack %+v, want %s accepted=%v", ack, ackFor, accepted)
	}
	return ack
}

func hello(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, OperatorName: "operator"})
	var w protocol.WelcomeMsg
	recv(t, conn, &w)
	if w.Type != protocol.TypeWelcome {
		t.Fatalf("welcome %+v", w)
	}
	return w
}

func TestServer_HandshakeWelcome(t *testing.T) {
	conn, stop := dialTestServer(t)
	defer stop()

	w := hello(t, conn)
	if w.SessionID == "" || w.WorldID != "world_1" {
		t.Fatalf("welcome %+v", w)
	}
	if w.BlockPalette.Digest == "" || w.BlockPalette.Count == 0 {
		t.Fatalf("palette ref %+v", w.BlockPalette)
	}
	if len(w.Modes) != 3 {
		t.Fatalf("modes %v", w.Modes)
	}
}

func TestServer_RejectsWrongVersionHello(t *testing.T) {
	conn, stop := dialTestServer(t)
	defer stop()

	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.9", OperatorName: "operator"})
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("connection survived bad hello version")
	}
}

func TestServer_PreviewFlow(t *testing.T) {
	conn, stop := dialTestServer(t)
	defer stop()
	hello(t, conn)

	send(t, conn, protocol.SetPointsMsg{
		Type:            protocol.TypeSetPoints,
		ProtocolVersion: protocol.Version,
		Points:          []geom.Vec3{{X: 0, Y: 64, Z: 0}, {X: 10, Y: 64, Z: 10}},
	})
	recvAck(t, conn, protocol.TypeSetPoints, true)

	send(t, conn, protocol.PreviewMsg{Type: protocol.TypePreview, ProtocolVersion: protocol.Version})
	var pr protocol.PreviewResultMsg
	recv(t, conn, &pr)
	if pr.Type != protocol.TypePreviewResult {
		t.Fatalf("preview result %+v", pr)
	}
	if len(pr.Samples) != 30 {
		t.Fatalf("%d samples, want 30", len(pr.Samples))
	}
	if pr.Length < 14.0 || pr.Length > 14.3 {
		t.Fatalf("length %g", pr.Length)
	}
}

func TestServer_GenerateFlow(t *testing.T) {
	conn, stop := dialTestServer(t)
	defer stop()
	hello(t, conn)

	send(t, conn, protocol.SetModeMsg{Type: protocol.TypeSetMode, ProtocolVersion: protocol.Version, Mode: "bridge"})
	recvAck(t, conn, protocol.TypeSetMode, true)

	send(t, conn, protocol.SetPointsMsg{
		Type:            protocol.TypeSetPoints,
		ProtocolVersion: protocol.Version,
		Points:          []geom.Vec3{{X: 0.5, Y: 70, Z: 0.5}, {X: 16.5, Y: 70, Z: 0.5}},
	})
	recvAck(t, conn, protocol.TypeSetPoints, true)

	send(t, conn, protocol.GenerateMsg{Type: protocol.TypeGenerate, ProtocolVersion: protocol.Version})
	var res protocol.ResultMsg
	recv(t, conn, &res)
	if res.Type != protocol.TypeResult || res.Mode != "bridge" {
		t.Fatalf("result %+v", res)
	}
	if res.JobID == "" || res.Blocks == 0 {
		t.Fatalf("result %+v", res)
	}
}

func TestServer_SettingErrorsCarryCodes(t *testing.T) {
	conn, stop := dialTestServer(t)
	defer stop()
	hello(t, conn)

	send(t, conn, protocol.SetSettingMsg{Type: protocol.TypeSetSetting, ProtocolVersion: protocol.Version, Key: "lane_count", Value: "3"})
	ack := recvAck(t, conn, protocol.TypeSetSetting, false)
	if ack.Code != protocol.ErrInvalidSetting {
		t.Fatalf("code %s", ack.Code)
	}

	send(t, conn, protocol.SetModeMsg{Type: protocol.TypeSetMode, ProtocolVersion: protocol.Version, Mode: "tunnel"})
	ack = recvAck(t, conn, protocol.TypeSetMode, false)
	if ack.Code != protocol.ErrBadRequest {
		t.Fatalf("code %s", ack.Code)
	}

	send(t, conn, protocol.UndoMsg{Type: protocol.TypeUndo, ProtocolVersion: protocol.Version, JobID: "job_404"})
	ack = recvAck(t, conn, protocol.TypeUndo, false)
	if ack.Code != protocol.ErrUnknownJob {
		t.Fatalf("code %s", ack.Code)
	}
}

func TestServer_UnknownTypeAndBadVersion(t *testing.T) {
	conn, stop := dialTestServer(t)
	defer stop()
	hello(t, conn)

	send(t, conn, map[string]string{"type": "TELEPORT", "protocol_version": protocol.Version})
	ack := recvAck(t, conn, "TELEPORT", false)
	if ack.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("code %s", ack.Code)
	}

	send(t, conn, map[string]string{"type": "PREVIEW", "protocol_version": "0.9"})
	ack = recvAck(t, conn, protocol.TypePreview, false)
	if ack.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("code %s", ack.Code)
	}
}
