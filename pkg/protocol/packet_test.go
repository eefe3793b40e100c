package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientPacketRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		pkt  ClientPacket
	}{
		{name: "ping", pkt: ClientPacket{Type: KindPing}},
		{name: "route", pkt: ClientPacket{Type: KindRoute, Route: "instance-7"}},
		{
			name: "authenticate",
			pkt:  ClientPacket{Type: KindAuthenticate, Auth: &Authentication{Username: "luvui"}},
		},
		{
			name: "move action",
			pkt:  ClientPacket{Type: KindAction, Action: &Action{Kind: ActMove, DX: 1, DY: -1}},
		},
		{
			name: "attack action",
			pkt: ClientPacket{Type: KindAction, Action: &Action{
				Kind: ActAttack, Attack: "scratch", Target: "8e9c7b1a-0000-0000-0000-000000000001",
			}},
		},
		{
			name: "cast action",
			pkt: ClientPacket{Type: KindAction, Action: &Action{
				Kind: ActCast, Spell: "magic_missile", Target: "8e9c7b1a-0000-0000-0000-000000000002",
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := EncodeClient(tc.pkt)
			require.NoError(t, err)
			got, err := DecodeClient(data)
			require.NoError(t, err)
			require.Equal(t, tc.pkt, got)
		})
	}
}

func TestServerPacketRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		pkt  ServerPacket
	}{
		{name: "ping", pkt: ServerPacket{Type: KindPing}},
		{
			name: "message",
			pkt:  ServerPacket{Type: KindMessage, Message: &Message{Text: "the rat bites you", Kind: "combat"}},
		},
		{
			name: "world",
			pkt:  ServerPacket{Type: KindWorld, World: json.RawMessage(`{"turn":3,"pieces":[]}`)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := EncodeServer(tc.pkt)
			require.NoError(t, err)
			got, err := DecodeServer(data)
			require.NoError(t, err)
			require.Equal(t, tc.pkt, got)
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{name: "not json", data: []byte{0xde, 0xad, 0xbe, 0xef}},
		{name: "empty object", data: []byte(`{}`)},
		{name: "unknown type", data: []byte(`{"type":"teleport"}`)},
		{name: "action without body", data: []byte(`{"type":"action"}`)},
		{name: "action with unknown kind", data: []byte(`{"type":"action","action":{"kind":"dance"}}`)},
		{name: "auth without username", data: []byte(`{"type":"authenticate","auth":{}}`)},
		{name: "truncated json", data: []byte(`{"type":"ping"`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeClient(tc.data)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodeServerRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{
		[]byte(`{"type":"message"}`),
		[]byte(`{"type":"world"}`),
		[]byte(`{"type":"ping",`),
	} {
		_, err := DecodeServer(data)
		require.ErrorIs(t, err, ErrMalformed)
	}
}

func TestErrMalformedIsMatchable(t *testing.T) {
	_, err := DecodeClient([]byte(`nope`))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}
