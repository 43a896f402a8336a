package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/st4/pkg/rig"
	"github.com/gwillem/st4/pkg/st4"
)

// AxisOptions are the optional absolute or relative targets of a move.
type AxisOptions struct {
	Pan  *float64 `long:"pan" description:"Pan (X) angle in degrees"`
	Tilt *float64 `long:"tilt" description:"Tilt (Y) angle in degrees"`
}

func (o AxisOptions) angles() (x, y st4.Angle) {
	if o.Pan != nil {
		x = st4.Deg(*o.Pan)
	}
	if o.Tilt != nil {
		y = st4.Deg(*o.Tilt)
	}
	return x, y
}

// ReplyOption makes a command print the one-line reply of the controller.
type ReplyOption struct {
	Read bool `short:"r" long:"read" description:"Print the controller's reply"`
}

// withRig opens the rig, runs fn and optionally prints the reply line.
func withRig(read bool, fn func(ctx context.Context, r *rig.Rig) error) error {
	r, err := openRig()
	if err != nil {
		return err
	}
	defer r.Close()

	ctx := context.Background()
	if err := fn(ctx, r); err != nil {
		return err
	}
	if !read {
		return nil
	}
	return printReply(ctx, r)
}

func printReply(ctx context.Context, r *rig.Rig) error {
	line, err := r.ReadLine(ctx)
	if err != nil {
		return err
	}
	if line == "" {
		fmt.Println(dimStyle.Render("(no reply)"))
		return nil
	}
	fmt.Println(line)
	return nil
}

type VersionCommand struct{}

func (c *VersionCommand) Execute(args []string) error {
	return withRig(false, func(ctx context.Context, r *rig.Rig) error {
		version, err := r.FirmwareVersion(ctx)
		if err != nil {
			return err
		}
		if version == "" {
			return fmt.Errorf("no reply to %s within %v", st4.CodeVersion, r.Timeout())
		}
		fmt.Println(version)
		return nil
	})
}

type RapidCommand struct {
	AxisOptions
	ReplyOption
}

func (c *RapidCommand) Execute(args []string) error {
	return withRig(c.Read, func(ctx context.Context, r *rig.Rig) error {
		x, y := c.angles()
		return r.GoRapid(ctx, x, y)
	})
}

type MoveCommand struct {
	Time  float64 `short:"T" long:"time" required:"true" description:"Move time in seconds"`
	Accel float64 `short:"A" long:"accel" default:"0" description:"Acceleration time in seconds"`
	AxisOptions
	ReplyOption
}

func (c *MoveCommand) Execute(args []string) error {
	return withRig(c.Read, func(ctx context.Context, r *rig.Rig) error {
		x, y := c.angles()
		d := time.Duration(c.Time * float64(time.Second))
		accel := time.Duration(c.Accel * float64(time.Second))
		return r.GoCoordinated(ctx, d, accel, x, y)
	})
}

type JogCommand struct {
	AxisOptions
	ReplyOption
}

func (c *JogCommand) Execute(args []string) error {
	return withRig(c.Read, func(ctx context.Context, r *rig.Rig) error {
		x, y := c.angles()
		return r.Jog(ctx, x, y)
	})
}

type SetPositionCommand struct {
	Axis    string  `short:"a" long:"axis" required:"true" description:"Motor: pan, tilt, m3, m4 or 1-4"`
	Degrees float64 `short:"d" long:"degrees" default:"0" description:"New current position in degrees"`
	ReplyOption
}

func (c *SetPositionCommand) Execute(args []string) error {
	axis, err := rig.ParseAxis(c.Axis)
	if err != nil {
		return err
	}
	return withRig(c.Read, func(ctx context.Context, r *rig.Rig) error {
		return r.SetMotorPosition(ctx, axis, c.Degrees)
	})
}

type ZeroCommand struct {
	ReplyOption
}

func (c *ZeroCommand) Execute(args []string) error {
	return withRig(c.Read, func(ctx context.Context, r *rig.Rig) error {
		return r.ZeroAllMotors(ctx)
	})
}

type GoToCommand struct {
	Args struct {
		Name string `positional-arg-name:"NAME" required:"true"`
	} `positional-args:"true"`
	ReplyOption
}

func (c *GoToCommand) Execute(args []string) error {
	return withRig(c.Read, func(ctx context.Context, r *rig.Rig) error {
		return r.GoTo(ctx, c.Args.Name)
	})
}

type PresetsCommand struct{}

func (c *PresetsCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Presets) == 0 {
		fmt.Println("No presets configured.")
		return nil
	}

	rows := make([][]string, 0, len(cfg.Presets))
	for _, name := range cfg.Presets.Names() {
		p := cfg.Presets[name]
		move := "rapid"
		if p.Coordinated() {
			move = fmt.Sprintf("%gs, accel %gs", p.TimeSec, p.AccelSec)
		}
		rows = append(rows, []string{name, formatDegrees(p.Pan), formatDegrees(p.Tilt), move})
	}

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Preset", "Pan", "Tilt", "Move").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Bold(true).Foreground(lipgloss.Color("12"))
			}
			return cellStyle
		})

	fmt.Println(t.Render())
	return nil
}

func formatDegrees(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + "°"
}
