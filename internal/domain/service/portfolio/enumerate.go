package portfolio

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"git.appkode.ru/pub/go/failure"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/entity"
	"giftfolio/internal/domain/value"
	"giftfolio/pkg/errcodes"
)

const PageSize = 100

type GiftSource interface {
	SavedGiftsPage(ctx context.Context, peer value.Peer, offset string, limit int) (entity.GiftPage, error)
}

// Links are the printf templates for gift images and deep links.
type Links struct {
	UpgradedImage   string // %s: lowercased slug with instance number
	UnupgradedImage string // %d: gift id
	DeepLink        string // %s: slug
}

// Enumerate pages through the peer's saved gifts in server order until the
// declared total is reached or the cursor runs out.
func Enumerate(ctx context.Context, src GiftSource, peer value.Peer, ref value.PeerRef, links Links) ([]entity.Gift, int, error) {
	var (
		gifts    []entity.Gift
		declared int
		offset   string
	)

	for {
		page, err := src.SavedGiftsPage(ctx, peer, offset, PageSize)
		if err != nil {
			return nil, 0, peerScoped(err, ref)
		}

		declared = page.Count
		gifts = append(gifts, page.Gifts...)

		if len(page.Gifts) == 0 || page.NextOffset == "" || page.NextOffset == offset || len(gifts) >= declared {
			break
		}

		offset = page.NextOffset
	}

	for i := range gifts {
		links.apply(&gifts[i])
	}

	return gifts, declared, nil
}

func (l Links) apply(g *entity.Gift) {
	switch g.Class() {
	case entity.ClassUpgraded:
		slug := slugWithNum(g.Slug, g.Num)
		if l.UpgradedImage != "" {
			g.ImageURL = fmt.Sprintf(l.UpgradedImage, strings.ToLower(slug))
		}
		if l.DeepLink != "" {
			g.Link = fmt.Sprintf(l.DeepLink, slug)
		}
	default:
		if l.UnupgradedImage != "" && g.GiftID != 0 {
			g.ImageURL = fmt.Sprintf(l.UnupgradedImage, g.GiftID)
		}
	}
}

// slugWithNum appends "-<num>" when the slug does not already end with it.
func slugWithNum(slug string, num int) string {
	if num <= 0 {
		return slug
	}

	suffix := "-" + strconv.Itoa(num)
	if strings.HasSuffix(slug, suffix) {
		return slug
	}

	return slug + suffix
}

// peerScoped reports peer failures against the argument the caller typed.
func peerScoped(err error, ref value.PeerRef) error {
	for _, code := range []failure.ErrorCode{errcodes.PeerNotFound, errcodes.PeerInvalid, errcodes.PeerPrivate} {
		if domain.HasCode(err, code) {
			return domain.PeerError(code, ref.Raw, err)
		}
	}

	return err
}
