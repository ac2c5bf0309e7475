package value

import (
	"strconv"
	"strings"
)

type PeerKind int

const (
	PeerUser PeerKind = iota + 1
	PeerChannel
)

// Peer is a resolved Telegram owner of saved gifts.
type Peer struct {
	Kind       PeerKind
	ID         int64
	AccessHash int64
}

// PeerRef is the raw CLI argument: a numeric user id or a username.
type PeerRef struct {
	Raw      string
	ID       int64
	Username string
}

func ParsePeerRef(raw string) PeerRef {
	raw = strings.TrimSpace(raw)
	ref := PeerRef{Raw: raw}

	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		ref.ID = id
		return ref
	}

	ref.Username = strings.TrimPrefix(strings.TrimPrefix(raw, "https://t.me/"), "@")

	return ref
}

func (r PeerRef) IsNumeric() bool {
	return r.ID != 0
}
