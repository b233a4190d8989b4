// Package osc carries avatar parameters over OSC/UDP.
package osc

import (
	"fmt"
	"strconv"
	"strings"

	gosc "github.com/hypebeast/go-osc/osc"

	"github.com/DoyleJ11/kat-overlay/internal/types"
)

// Addresses names the OSC endpoints on both sides of the avatar.
type Addresses struct {
	Prefix       string // e.g. "/avatar/parameters/"
	Visible      string // bool parameter
	Pointer      string // int parameter
	Sync         string // float parameter, suffixed with the slot index
	AvatarChange string // inbound notification path
}

func (a Addresses) For(p types.Param) string {
	switch p.Kind {
	case types.ParamVisible:
		return a.Prefix + a.Visible
	case types.ParamPointer:
		return a.Prefix + a.Pointer
	default:
		return a.Prefix + a.Sync + strconv.Itoa(p.Slot)
	}
}

// SlotIndex reports the slot an inbound sync address refers to.
func (a Addresses) SlotIndex(address string) (int, bool) {
	rest, ok := strings.CutPrefix(address, a.Prefix+a.Sync)
	if !ok || rest == "" {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

func (a Addresses) IsAvatarChange(address string) bool {
	return strings.HasPrefix(address, a.AvatarChange)
}

// Client sends parameters as single-argument OSC messages. Every send is one
// UDP datagram; nothing is acknowledged or retried.
type Client struct {
	client *gosc.Client
	addrs  Addresses
}

func NewClient(host string, port int, addrs Addresses) *Client {
	return &Client{
		client: gosc.NewClient(host, port),
		addrs:  addrs,
	}
}

func (c *Client) Send(p types.Param) error {
	var arg any
	switch p.Kind {
	case types.ParamVisible:
		arg = p.Bool
	case types.ParamPointer:
		arg = p.Int
	case types.ParamSlot:
		arg = p.Float
	default:
		return fmt.Errorf("unknown param kind %q", p.Kind)
	}
	if err := c.client.Send(gosc.NewMessage(c.addrs.For(p), arg)); err != nil {
		return fmt.Errorf("send %s: %w", p, err)
	}
	return nil
}
