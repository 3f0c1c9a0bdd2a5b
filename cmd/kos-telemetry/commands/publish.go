package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"git.home.luguber.info/inful/kostelemetry/internal/config"
	"git.home.luguber.info/inful/kostelemetry/internal/daemon"
	ferrors "git.home.luguber.info/inful/kostelemetry/internal/errors"
	"git.home.luguber.info/inful/kostelemetry/internal/logfields"
	"git.home.luguber.info/inful/kostelemetry/internal/telemetry"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	Topic          string        `arg:"" help:"Topic beneath robots/<robot id>/"`
	Data           string        `short:"d" help:"JSON payload, or '-' to read stdin" default:"{}"`
	Robot          string        `short:"r" help:"Robot id (overrides robot.id)"`
	Frame          uint64        `help:"Frame number to stamp"`
	VideoTimestamp uint64        `name:"video-ts" help:"Video timestamp to stamp"`
	InferenceStep  uint64        `name:"step" help:"Inference step to stamp"`
	Timeout        time.Duration `help:"Time allowed for connect, publish and acknowledgement" default:"5s"`

	stdin io.Reader `kong:"-"`
}

func (p *PublishCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, true)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()
	return p.publish(ctx, cfg)
}

func (p *PublishCmd) publish(ctx context.Context, cfg *config.Config, opts ...telemetry.Option) error {
	if p.Robot != "" {
		cfg.Robot.ID = p.Robot
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := p.payload()
	if err != nil {
		return err
	}

	reg := telemetry.NewRegistry(append([]telemetry.Option{
		telemetry.WithEnabled(cfg.IsTelemetryEnabled()),
		telemetry.WithTransportOptions(daemon.TransportOptions(cfg)),
	}, opts...)...)

	if !reg.Enabled() {
		slog.Info("Telemetry disabled; nothing published", logfields.Topic(p.Topic))
		return nil
	}

	if err := reg.Initialize(ctx, cfg.Robot.ID, cfg.Broker.Host, cfg.Broker.Port); err != nil {
		return err
	}
	pub := reg.Get()
	defer func() {
		if err := pub.Close(); err != nil {
			slog.Debug("Close failed", logfields.Error(err))
		}
	}()

	pub.UpdateFrameNumber(p.Frame)
	pub.UpdateVideoTimestamp(p.VideoTimestamp)
	pub.UpdateInferenceStep(p.InferenceStep)

	if err := pub.Publish(ctx, p.Topic, data); err != nil {
		return err
	}
	if err := pub.Flush(ctx); err != nil {
		return ferrors.PublishFailed(telemetry.FullTopic(cfg.Robot.ID, p.Topic), err)
	}

	slog.Info("Published", logfields.Topic(telemetry.FullTopic(cfg.Robot.ID, p.Topic)), logfields.Bytes(len(data)))
	return nil
}

func (p *PublishCmd) payload() (json.RawMessage, error) {
	raw := p.Data
	if raw == "-" {
		in := p.stdin
		if in == nil {
			in = os.Stdin
		}
		b, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		raw = string(b)
	}
	raw = strings.TrimSpace(raw)
	if !json.Valid([]byte(raw)) {
		return nil, ferrors.ValidationFailed("data", "not valid JSON")
	}
	return json.RawMessage(raw), nil
}
