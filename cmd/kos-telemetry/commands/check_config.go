package commands

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// CheckConfigCmd implements the 'check-config' command.
type CheckConfigCmd struct {
	Quiet bool `short:"q" help:"Only report errors"`

	out io.Writer `kong:"-"`
}

func (c *CheckConfigCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, false)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.Quiet {
		return nil
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	resolved, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	fmt.Fprintf(out, "# %s is valid (telemetry enabled: %t)\n", root.Config, cfg.IsTelemetryEnabled())
	_, err = out.Write(resolved)
	return err
}
