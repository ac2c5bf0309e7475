package telegram

import (
	"context"
	"fmt"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/message/peer"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/value"
	"giftfolio/pkg/errcodes"
)

// ResolvePeer turns a numeric id or a username into an addressable peer.
func (c *Client) ResolvePeer(ctx context.Context, ref value.PeerRef) (value.Peer, error) {
	var resolved value.Peer

	err := c.Do(ctx, func(ctx context.Context, api *tg.Client) error {
		var err error

		if ref.IsNumeric() {
			resolved, err = resolveUserID(ctx, api, ref)
		} else {
			resolved, err = resolveUsername(ctx, api, ref)
		}

		return err
	})

	return resolved, err
}

func resolveUserID(ctx context.Context, api *tg.Client, ref value.PeerRef) (value.Peer, error) {
	users, err := api.UsersGetUsers(ctx, []tg.InputUserClass{&tg.InputUser{UserID: ref.ID}})
	if err != nil {
		return value.Peer{}, classifyRPCError(err, ref.Raw)
	}

	for _, u := range users {
		if user, ok := u.(*tg.User); ok && user.ID == ref.ID {
			return value.Peer{Kind: value.PeerUser, ID: user.ID, AccessHash: user.AccessHash}, nil
		}
	}

	// Not in this session's cache: the id is unknown, private or blocked.
	return value.Peer{}, domain.PeerError(errcodes.PeerPrivate, ref.Raw, nil)
}

func resolveUsername(ctx context.Context, api *tg.Client, ref value.PeerRef) (value.Peer, error) {
	if ref.Username == "" {
		return value.Peer{}, domain.PeerError(errcodes.PeerInvalid, ref.Raw, nil)
	}

	input, err := peer.DefaultResolver(api).ResolveDomain(ctx, ref.Username)
	if err != nil {
		return value.Peer{}, classifyRPCError(err, ref.Raw)
	}

	switch p := input.(type) {
	case *tg.InputPeerUser:
		return value.Peer{Kind: value.PeerUser, ID: p.UserID, AccessHash: p.AccessHash}, nil
	case *tg.InputPeerChannel:
		return value.Peer{Kind: value.PeerChannel, ID: p.ChannelID, AccessHash: p.AccessHash}, nil
	default:
		return value.Peer{}, domain.PeerError(errcodes.PeerInvalid, ref.Raw, fmt.Errorf("unsupported peer %T", input))
	}
}

// classifyRPCError maps Telegram RPC errors to the fatal peer and session kinds.
func classifyRPCError(err error, peerRef string) error {
	switch {
	case auth.IsUnauthorized(err):
		return domain.WrapError(err, errcodes.SessionNotAuthenticated, domain.ErrSessionNotAuthenticated.Message)
	case tgerr.Is(err, "USERNAME_NOT_OCCUPIED"):
		return domain.PeerError(errcodes.PeerNotFound, peerRef, err)
	case tgerr.Is(err, "USERNAME_INVALID"):
		return domain.PeerError(errcodes.PeerInvalid, peerRef, err)
	case tgerr.Is(err, "PEER_ID_INVALID", "USER_ID_INVALID", "CHANNEL_PRIVATE", "USER_PRIVACY_RESTRICTED"):
		return domain.PeerError(errcodes.PeerPrivate, peerRef, err)
	}

	return err
}
