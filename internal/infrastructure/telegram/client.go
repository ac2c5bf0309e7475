package telegram

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"giftfolio/internal/domain"
	"giftfolio/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// ConsoleInput реализует ввод кода с клавиатуры.
type ConsoleInput struct {
	In  io.Reader
	Out io.Writer
}

func (c ConsoleInput) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	fmt.Fprint(c.Out, "Enter the code Telegram sent you: ")

	text, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read code: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// Client представляет одну пользовательскую MTProto-сессию. Вызовы внутри
// активного Run или Start используют открытое соединение, иначе каждый Do
// подключается на время своего вызова. Клиент gotd нельзя запустить
// повторно, поэтому каждый Run создаёт новый поверх того же файла сессии.
type Client struct {
	dial     func() *telegram.Client
	name     string
	Phone    string
	Password string

	conn    atomic.Pointer[telegram.Client]
	running atomic.Bool
	runMu   sync.Mutex
}

func (c *Client) Name() string {
	return c.name
}

// Run connects, calls fn and disconnects when fn returns.
func (c *Client) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.run(ctx, func(ctx context.Context, _ *telegram.Client) error {
		return fn(ctx)
	})
}

func (c *Client) run(ctx context.Context, fn func(ctx context.Context, conn *telegram.Client) error) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	conn := c.dial()
	c.conn.Store(conn)

	return conn.Run(ctx, func(ctx context.Context) error { //nolint:wrapcheck
		c.running.Store(true)
		defer c.running.Store(false)

		return fn(ctx, conn)
	})
}

// Start поднимает соединение и держит его открытым до отмены ctx.
// onReady вызывается, когда соединение установлено.
func (c *Client) Start(ctx context.Context, onReady func(ctx context.Context) error) error {
	return c.Run(ctx, func(ctx context.Context) error {
		if onReady != nil {
			if err := onReady(ctx); err != nil {
				return err
			}
		}

		<-ctx.Done()

		return ctx.Err()
	})
}

func (c *Client) Do(ctx context.Context, fn func(ctx context.Context, api *tg.Client) error) error {
	return c.do(ctx, func(ctx context.Context, conn *telegram.Client) error {
		return fn(ctx, conn.API())
	})
}

func (c *Client) do(ctx context.Context, fn func(ctx context.Context, conn *telegram.Client) error) error {
	if c.running.Load() {
		if conn := c.conn.Load(); conn != nil {
			return fn(ctx, conn)
		}
	}

	return c.run(ctx, fn)
}

func (c *Client) Authorized(ctx context.Context) (bool, error) {
	var authorized bool

	err := c.do(ctx, func(ctx context.Context, conn *telegram.Client) error {
		status, err := conn.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}

		authorized = status.Authorized

		return nil
	})

	return authorized, err
}

// EnsureAuthorized fails with the session error when the stored session is not logged in.
func (c *Client) EnsureAuthorized(ctx context.Context) error {
	ok, err := c.Authorized(ctx)
	if err != nil {
		if auth.IsUnauthorized(err) {
			return domain.WrapError(err, domain.ErrSessionNotAuthenticated.Code, domain.ErrSessionNotAuthenticated.Message)
		}
		return err
	}

	if !ok {
		return domain.ErrSessionNotAuthenticated
	}

	return nil
}

// Login runs the interactive code and password flow when the session is not
// authorized yet.
func (c *Client) Login(ctx context.Context, input ConsoleInput) error {
	return c.do(ctx, func(ctx context.Context, conn *telegram.Client) error {
		status, err := conn.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}

		if status.Authorized {
			logger(ctx).Info("session already authorized")
			return nil
		}

		logger(ctx).Info("session not authorized, starting login flow")

		flow := auth.NewFlow(
			auth.Constant(c.Phone, c.Password, input),
			auth.SendCodeOptions{},
		)

		if err := conn.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}

		logger(ctx).Info("authentication successful")

		return nil
	})
}

// DefaultConsoleInput prompts on stderr.
func DefaultConsoleInput() ConsoleInput {
	return ConsoleInput{In: os.Stdin, Out: os.Stderr}
}
