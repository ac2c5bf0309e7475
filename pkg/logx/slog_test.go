package logx_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"giftfolio/pkg/logx"
)

func TestParseLevel(t *testing.T) {
	rq := require.New(t)

	rq.Equal(slog.LevelDebug, logx.ParseLevel("debug"))
	rq.Equal(slog.LevelWarn, logx.ParseLevel("WARN"))
	rq.Equal(slog.LevelInfo, logx.ParseLevel("loud"))
}

func TestNewJSON(t *testing.T) {
	rq := require.New(t)

	var buf bytes.Buffer

	logger := logx.New(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("shown", slog.String(logx.FieldPeer, "durov"))

	rq.NotContains(buf.String(), "hidden")
	rq.Contains(buf.String(), `"peer":"durov"`)
}
