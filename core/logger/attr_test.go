package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pullstream/core/logger"
)

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestStreamAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "topic", logger.Topic("a").Key)
	assert.Equal(t, []string{"a", "b"}, logger.Topics([]string{"a", "b"}).Value.Any())
	assert.Equal(t, "subscription_id", logger.SubscriptionID("42").Key)
	assert.True(t, logger.SubscriptionID("").Equal(slog.Attr{}))
	assert.True(t, logger.MessageID("").Equal(slog.Attr{}))
	assert.Equal(t, "redis", logger.Backend("redis").Value.String())
}

func TestGenericAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "stream", logger.Component("stream").Value.String())
	assert.Equal(t, int64(3), logger.Count("pending", 3).Value.Int64())
	assert.Equal(t, "remote_addr", logger.RemoteAddr("127.0.0.1:1").Key)
	assert.Equal(t, "/streams", logger.RequestPath("/streams").Value.String())
	assert.Equal(t, "elapsed", logger.Elapsed(time.Now()).Key)
}
