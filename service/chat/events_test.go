package chat

import (
	"encoding/json"
	"testing"
)

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame([]byte(`{"event":"typing","data":{"receiverId":"u2"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Event != EventTyping {
		t.Fatalf("want typing, got %q", f.Event)
	}

	if _, err := ParseFrame([]byte(`{"data":{}}`)); err == nil {
		t.Fatalf("empty event must fail")
	}
	if _, err := ParseFrame([]byte(`not json`)); err == nil {
		t.Fatalf("garbage must fail")
	}
}

func TestEncodeFrameOmitsNilPayload(t *testing.T) {
	raw, err := EncodeFrame(EventStopTyping, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["data"]; ok {
		t.Fatalf("nil payload must omit data: %s", raw)
	}
}

func TestTypingPayloadValidate(t *testing.T) {
	cases := []struct {
		name string
		p    TypingPayload
		ok   bool
	}{
		{"direct", TypingPayload{ReceiverID: "u2"}, true},
		{"group", TypingPayload{GroupID: "g1"}, true},
		{"neither", TypingPayload{}, false},
		{"both", TypingPayload{ReceiverID: "u2", GroupID: "g1"}, false},
	}
	for _, tc := range cases {
		err := tc.p.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: want error", tc.name)
		}
	}
}

func TestParseJoinGroup(t *testing.T) {
	// 裸字符串形式
	id, err := ParseJoinGroup(json.RawMessage(`"g1"`))
	if err != nil || id != "g1" {
		t.Fatalf("bare string: got %q err=%v", id, err)
	}
	// 对象形式
	id, err = ParseJoinGroup(json.RawMessage(`{"groupId":"g2"}`))
	if err != nil || id != "g2" {
		t.Fatalf("object: got %q err=%v", id, err)
	}
	if _, err := ParseJoinGroup(nil); err == nil {
		t.Fatalf("empty payload must fail")
	}
	if _, err := ParseJoinGroup(json.RawMessage(`{"groupId":""}`)); err == nil {
		t.Fatalf("empty groupId must fail")
	}
}
