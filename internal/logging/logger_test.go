package logging

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	require.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	require.Equal(t, logrus.WarnLevel, GetLevel("warn"))
	require.Equal(t, logrus.InfoLevel, GetLevel("nonsense"))
}

func TestWithContext(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUsername(ctx, "jinwoo")

	entry := WithContext(ctx)
	require.Equal(t, "req-1", entry.Data["request_id"])
	require.Equal(t, "jinwoo", entry.Data["username"])

	require.Empty(t, WithContext(context.Background()).Data)
}
