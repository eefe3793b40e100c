// Package protocol defines the wire format spoken between the game
// authority and its clients: a tagged JSON payload per packet, carried
// in length-prefixed frames over any byte stream.
//
// Frame layout: a little-endian uint32 payload length followed by
// exactly that many payload bytes. The length never includes itself.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed reports a payload that was not produced by a compatible
// encoder. It is fatal to the connection that sent it.
var ErrMalformed = errors.New("malformed packet")

type PacketKind string

// Client -> server packet kinds.
const (
	KindPing         PacketKind = "ping"
	KindAction       PacketKind = "action"
	KindAuthenticate PacketKind = "authenticate"
	KindRoute        PacketKind = "route"
)

// Server -> client packet kinds. Ping is shared.
const (
	KindMessage PacketKind = "message"
	KindWorld   PacketKind = "world"
)

// Authentication carries a client's claimed identity. This is
// presence-only auth, not a security boundary.
type Authentication struct {
	Username string `json:"username"`
}

type ActionKind string

const (
	ActWait   ActionKind = "wait"
	ActMove   ActionKind = "move"
	ActAttack ActionKind = "attack"
	ActCast   ActionKind = "cast"
)

// Action is the wire representation of a piece's intent. The server
// converts it into an engine action after validating ownership.
type Action struct {
	Kind   ActionKind `json:"kind"`
	DX     int        `json:"dx,omitempty"`
	DY     int        `json:"dy,omitempty"`
	Attack string     `json:"attack,omitempty"`
	Spell  string     `json:"spell,omitempty"`
	Target string     `json:"target,omitempty"`
}

// Message is a console line pushed to clients.
type Message struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// ClientPacket is the envelope for everything a client may send.
type ClientPacket struct {
	Type   PacketKind      `json:"type"`
	Action *Action         `json:"action,omitempty"`
	Auth   *Authentication `json:"auth,omitempty"`
	Route  string          `json:"route,omitempty"`
}

// ServerPacket is the envelope for everything the server may send.
// World carries the full snapshot verbatim; clients treat it as a
// read-only display copy.
type ServerPacket struct {
	Type    PacketKind      `json:"type"`
	Message *Message        `json:"message,omitempty"`
	World   json.RawMessage `json:"world,omitempty"`
}

// EncodeClient serializes one client packet without framing.
func EncodeClient(p ClientPacket) ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// DecodeClient parses a payload previously produced by EncodeClient.
// Any other input yields ErrMalformed.
func DecodeClient(data []byte) (ClientPacket, error) {
	var p ClientPacket
	if err := json.Unmarshal(data, &p); err != nil {
		return ClientPacket{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := p.validate(); err != nil {
		return ClientPacket{}, err
	}
	return p, nil
}

func (p ClientPacket) validate() error {
	switch p.Type {
	case KindPing, KindRoute:
		return nil
	case KindAction:
		if p.Action == nil {
			return fmt.Errorf("%w: action packet without action", ErrMalformed)
		}
		switch p.Action.Kind {
		case ActWait, ActMove, ActAttack, ActCast:
			return nil
		default:
			return fmt.Errorf("%w: unknown action kind %q", ErrMalformed, p.Action.Kind)
		}
	case KindAuthenticate:
		if p.Auth == nil || p.Auth.Username == "" {
			return fmt.Errorf("%w: authenticate packet without username", ErrMalformed)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown client packet type %q", ErrMalformed, p.Type)
	}
}

// EncodeServer serializes one server packet without framing.
func EncodeServer(p ServerPacket) ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// DecodeServer parses a payload previously produced by EncodeServer.
func DecodeServer(data []byte) (ServerPacket, error) {
	var p ServerPacket
	if err := json.Unmarshal(data, &p); err != nil {
		return ServerPacket{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := p.validate(); err != nil {
		return ServerPacket{}, err
	}
	return p, nil
}

func (p ServerPacket) validate() error {
	switch p.Type {
	case KindPing:
		return nil
	case KindMessage:
		if p.Message == nil {
			return fmt.Errorf("%w: message packet without message", ErrMalformed)
		}
		return nil
	case KindWorld:
		if len(p.World) == 0 {
			return fmt.Errorf("%w: world packet without snapshot", ErrMalformed)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown server packet type %q", ErrMalformed, p.Type)
	}
}
