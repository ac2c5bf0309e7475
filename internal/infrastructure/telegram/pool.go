package telegram

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gotd/td/telegram"
	"go.uber.org/zap"
)

// ClientConfig is everything needed to open one session file.
type ClientConfig struct {
	ApiID      int
	ApiHash    string
	Phone      string
	Password   string
	SessionDir string
	Session    string
	Debug      bool
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if err := os.MkdirAll(cfg.SessionDir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	sessionPath := filepath.Join(cfg.SessionDir, cfg.Session+".json")

	zapLogger := zap.NewNop()
	if cfg.Debug {
		if l, err := zap.NewDevelopment(); err == nil {
			zapLogger = l.Named(cfg.Session)
		}
	}

	dial := func() *telegram.Client {
		return telegram.NewClient(cfg.ApiID, cfg.ApiHash, telegram.Options{
			SessionStorage: &telegram.FileSessionStorage{Path: sessionPath},
			Logger:         zapLogger,
		})
	}

	return &Client{
		dial:     dial,
		name:     cfg.Session,
		Phone:    cfg.Phone,
		Password: cfg.Password,
	}, nil
}

// NewPoolClients opens one client per marketplace pool account. Accounts
// without their own api credentials fall back to the primary ones.
func NewPoolClients(primary ClientConfig, accounts []Account) ([]*Client, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts provided")
	}

	clients := make([]*Client, 0, len(accounts))

	for i, acc := range accounts {
		cfg := primary
		cfg.Phone = acc.Phone
		cfg.Password = acc.Password
		cfg.Session = acc.Session

		if acc.ApiID != 0 && acc.ApiHash != "" {
			cfg.ApiID = acc.ApiID
			cfg.ApiHash = acc.ApiHash
		}

		client, err := NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("create client %d (%s): %w", i, acc.Session, err)
		}

		clients = append(clients, client)
	}

	return clients, nil
}
