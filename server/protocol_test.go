package server

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Inbound
		err  error
	}{
		{
			name: "movement",
			in:   `{"type":"playerMovement","payload":{"position":{"x":12.5,"y":-3},"direction":"left","moving":true}}`,
			want: MoveInput{Position: Position{X: 12.5, Y: -3}, Direction: DirLeft, Moving: true},
		},
		{
			name: "movement missing moving",
			in:   `{"type":"playerMovement","payload":{"position":{"x":1,"y":2},"direction":"up"}}`,
			err:  ErrMalformed,
		},
		{
			name: "movement missing y",
			in:   `{"type":"playerMovement","payload":{"position":{"x":1},"direction":"up","moving":false}}`,
			err:  ErrMalformed,
		},
		{
			name: "movement wrong type",
			in:   `{"type":"playerMovement","payload":{"position":{"x":"1","y":2},"direction":"up","moving":false}}`,
			err:  ErrMalformed,
		},
		{
			name: "movement invalid direction",
			in:   `{"type":"playerMovement","payload":{"position":{"x":1,"y":2},"direction":"diagonal","moving":false}}`,
			err:  ErrMalformed,
		},
		{
			name: "movement without payload",
			in:   `{"type":"playerMovement"}`,
			err:  ErrMalformed,
		},
		{
			name: "rename",
			in:   `{"type":"updateName","payload":"Zara"}`,
			want: RenameInput{Name: "Zara"},
		},
		{
			name: "rename to empty string",
			in:   `{"type":"updateName","payload":""}`,
			want: RenameInput{Name: ""},
		},
		{
			name: "rename null",
			in:   `{"type":"updateName","payload":null}`,
			err:  ErrMalformed,
		},
		{
			name: "rename not a string",
			in:   `{"type":"updateName","payload":{"name":"Zara"}}`,
			err:  ErrMalformed,
		},
		{
			name: "interaction",
			in:   `{"type":"playerInteraction","payload":{"targetId":"p2"}}`,
			want: InteractInput{TargetID: "p2"},
		},
		{
			name: "interaction with message",
			in:   `{"type":"playerInteraction","payload":{"targetId":"p2","message":"hi"}}`,
			want: InteractInput{TargetID: "p2", Message: "hi"},
		},
		{
			name: "interaction missing target",
			in:   `{"type":"playerInteraction","payload":{}}`,
			err:  ErrMalformed,
		},
		{
			name: "unknown type",
			in:   `{"type":"teleport","payload":{}}`,
			err:  ErrUnknownType,
		},
		{
			name: "not json",
			in:   `hello`,
			err:  ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInbound([]byte(tt.in))
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected error %v, got %v (value %#v)", tt.err, err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestEncodeOutboundEnvelope(t *testing.T) {
	p := PlayerState{ID: "p1", Position: Position{X: 1, Y: 2}, Direction: DirUp, Moving: true, Name: "Zara"}

	data, err := EncodeOutbound(PlayerMoved(p))
	if err != nil {
		t.Fatalf("EncodeOutbound returned error: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload["type"] != TypePlayerMoved {
		t.Fatalf("expected type %q, got %v", TypePlayerMoved, payload["type"])
	}
	body, ok := payload["payload"].(map[string]any)
	if !ok {
		t.Fatalf("expected object payload, got %T", payload["payload"])
	}
	pos, ok := body["position"].(map[string]any)
	if !ok || pos["x"] != 1.0 || pos["y"] != 2.0 {
		t.Fatalf("unexpected position %v", body["position"])
	}
	if body["id"] != "p1" || body["direction"] != "up" || body["moving"] != true || body["name"] != "Zara" {
		t.Fatalf("unexpected player payload %v", body)
	}
}

func TestEncodeOutboundNoticeOmitsEmptyMessage(t *testing.T) {
	data, err := EncodeOutbound(InteractionNotice{FromID: "p1"})
	if err != nil {
		t.Fatalf("EncodeOutbound returned error: %v", err)
	}
	want := `{"type":"playerInteractionResponse","payload":{"fromId":"p1"}}`
	if string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}

	data, _ = EncodeOutbound(PlayerLeft("p1"))
	if want := `{"type":"playerDisconnected","payload":"p1"}`; string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}
}
