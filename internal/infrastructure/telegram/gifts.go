package telegram

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gotd/td/tg"

	"giftfolio/internal/domain/entity"
	"giftfolio/internal/domain/value"
)

// SavedGiftsPage fetches one page of the peer's saved gifts.
func (c *Client) SavedGiftsPage(ctx context.Context, peer value.Peer, offset string, limit int) (entity.GiftPage, error) {
	var page entity.GiftPage

	err := c.Do(ctx, func(ctx context.Context, api *tg.Client) error {
		res, err := api.PaymentsGetSavedStarGifts(ctx, &tg.PaymentsGetSavedStarGiftsRequest{
			Peer:   inputPeer(peer),
			Offset: offset,
			Limit:  limit,
		})
		if err != nil {
			return fmt.Errorf("payments.getSavedStarGifts: %w", classifyRPCError(err, peerLabel(peer)))
		}

		page.Count = res.Count
		page.NextOffset = res.NextOffset
		page.Gifts = make([]entity.Gift, 0, len(res.Gifts))

		for i := range res.Gifts {
			if g, ok := convertSavedGift(&res.Gifts[i]); ok {
				page.Gifts = append(page.Gifts, g)
			}
		}

		return nil
	})

	return page, err
}

type upgradeCoster interface {
	GetUpgradeStars() (int64, bool)
}

type pinnable interface {
	GetPinnedToTop() bool
}

type rarityHolder interface {
	GetRarityPermille() int
}

func convertSavedGift(saved *tg.SavedStarGift) (entity.Gift, bool) {
	var g entity.Gift

	if p, ok := any(saved).(pinnable); ok {
		g.Pinned = p.GetPinnedToTop()
	}

	switch gift := saved.Gift.(type) {
	case *tg.StarGiftUnique:
		g.SetClass(entity.ClassUpgraded)
		g.Slug = gift.Slug
		g.Num = gift.Num
		g.Title = gift.Title
		g.AvailabilityIssued = gift.AvailabilityIssued
		g.AvailabilityTotal = gift.AvailabilityTotal

		for _, raw := range gift.Attributes {
			switch attr := raw.(type) {
			case *tg.StarGiftAttributeModel:
				g.Model = &value.Attribute{Name: attr.Name, RarityPermille: rarity(attr)}
			case *tg.StarGiftAttributeBackdrop:
				g.Backdrop = &value.Attribute{Name: attr.Name, RarityPermille: rarity(attr)}
			case *tg.StarGiftAttributePattern:
				g.Pattern = &value.Attribute{Name: attr.Name, RarityPermille: rarity(attr)}
			}
		}

	case *tg.StarGift:
		g.GiftID = gift.ID
		g.Title = gift.Title
		g.AvailabilityTotal = gift.AvailabilityTotal

		if gift.AvailabilityTotal > 0 {
			g.AvailabilityIssued = gift.AvailabilityTotal - gift.AvailabilityRemains
		}

		if hasUpgradeCost(gift) || hasUpgradeCost(saved) {
			g.SetClass(entity.ClassUnupgraded)
		} else {
			g.SetClass(entity.ClassUnupgradeable)
		}

	default:
		return entity.Gift{}, false
	}

	return g, true
}

func hasUpgradeCost(v any) bool {
	c, ok := v.(upgradeCoster)
	if !ok {
		return false
	}

	stars, set := c.GetUpgradeStars()

	return set && stars > 0
}

func rarity(attr any) int {
	if r, ok := attr.(rarityHolder); ok {
		return r.GetRarityPermille()
	}
	return 0
}

func inputPeer(p value.Peer) tg.InputPeerClass {
	switch p.Kind {
	case value.PeerChannel:
		return &tg.InputPeerChannel{ChannelID: p.ID, AccessHash: p.AccessHash}
	case value.PeerUser:
		return &tg.InputPeerUser{UserID: p.ID, AccessHash: p.AccessHash}
	default:
		return &tg.InputPeerSelf{}
	}
}

func peerLabel(p value.Peer) string {
	return strconv.FormatInt(p.ID, 10)
}
