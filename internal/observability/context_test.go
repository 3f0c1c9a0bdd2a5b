package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRobotID(t *testing.T) {
	ctx := WithRobotID(context.Background(), "r1")

	lc := GetContext(ctx)
	if lc.RobotID != "r1" {
		t.Errorf("expected r1, got %s", lc.RobotID)
	}
}

func TestContextChaining(t *testing.T) {
	ctx := context.Background()
	ctx = WithRobotID(ctx, "r1")
	ctx = WithTopic(ctx, "joints")
	ctx = WithRobotID(ctx, "r2")

	lc := GetContext(ctx)
	if lc.RobotID != "r2" {
		t.Errorf("expected r2, got %s", lc.RobotID)
	}
	if lc.Topic != "joints" {
		t.Error("Topic was lost in chaining")
	}
}

func TestEmptyContext(t *testing.T) {
	lc := GetContext(context.Background())
	if lc.RobotID != "" || lc.Topic != "" {
		t.Error("expected empty context")
	}
}

func TestContextLoggingIncludesAttrs(t *testing.T) {
	var buf bytes.Buffer
	withDefaultLogger(t, NewLogger(slog.LevelDebug, "json", &buf))

	ctx := WithTopic(WithRobotID(context.Background(), "r1"), "imu")
	DebugContext(ctx, "published", slog.Int("bytes", 12))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "r1", rec["robot_id"])
	assert.Equal(t, "imu", rec["topic"])
	assert.EqualValues(t, 12, rec["bytes"])
}
