package telegram

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gotd/td/telegram/message/peer"
	"github.com/gotd/td/tg"
)

const webAppPlatform = "android"

// WebApp signs launches of one bot's WebApp with this client's account.
type WebApp struct {
	client *Client
	bot    string
	url    string
}

func (c *Client) WebApp(bot, webAppURL string) WebApp {
	return WebApp{client: c, bot: bot, url: webAppURL}
}

// InitData returns the signed tgWebAppData query of a fresh launch.
func (w WebApp) InitData(ctx context.Context) (string, error) {
	var initData string

	err := w.client.Do(ctx, func(ctx context.Context, api *tg.Client) error {
		botPeer, err := peer.DefaultResolver(api).ResolveDomain(ctx, w.bot)
		if err != nil {
			return fmt.Errorf("resolve bot %q: %w", w.bot, err)
		}

		botUser, ok := botPeer.(*tg.InputPeerUser)
		if !ok {
			return fmt.Errorf("bot %q is not a user", w.bot)
		}

		res, err := api.MessagesRequestWebView(ctx, &tg.MessagesRequestWebViewRequest{
			Peer:        botPeer,
			Bot:         &tg.InputUser{UserID: botUser.UserID, AccessHash: botUser.AccessHash},
			URL:         w.url,
			FromBotMenu: true,
			Platform:    webAppPlatform,
		})
		if err != nil {
			return fmt.Errorf("messages.requestWebView: %w", err)
		}

		initData, err = ParseInitData(res.URL)

		return err
	})

	return initData, err
}

// ParseInitData extracts tgWebAppData from a WebApp launch URL fragment.
func ParseInitData(launchURL string) (string, error) {
	u, err := url.Parse(launchURL)
	if err != nil {
		return "", fmt.Errorf("url.Parse: %w", err)
	}

	fragment, err := url.ParseQuery(u.EscapedFragment())
	if err != nil {
		return "", fmt.Errorf("url.ParseQuery: %w", err)
	}

	data := fragment.Get("tgWebAppData")
	if data == "" {
		return "", fmt.Errorf("launch url has no tgWebAppData")
	}

	return data, nil
}
