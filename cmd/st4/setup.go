package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/st4/pkg/rig"
	"github.com/gwillem/st4/pkg/st4"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type SetupCommand struct {
	ProbeTimeout time.Duration `long:"probe-timeout" default:"1s" description:"How long to wait for each port to answer G700"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("ST4 Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━"))
	fmt.Println()

	fmt.Println("Scanning serial ports...")
	fmt.Println()

	found := c.findControllers()
	if len(found) == 0 {
		return fmt.Errorf("no ST4 found, make sure it is connected over USB and powered on")
	}

	port := found[0].port
	if len(found) > 1 {
		var err error
		if port, err = choosePort(found); err != nil {
			return err
		}
	}

	path := configPath()
	cfg := &rig.Config{}
	if rig.ConfigExists(path) {
		existing, err := rig.LoadConfigFrom(path)
		if err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = existing
	}
	cfg.Port = port
	if cfg.TimeoutMs == 0 {
		cfg.TimeoutMs = rig.DefaultTimeoutMs
	}

	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", path)
	fmt.Println()
	fmt.Println("Try: " + headerStyle.Render("st4 version"))

	return nil
}

type controllerInfo struct {
	port    string
	version string
}

// findControllers probes every serial port with G700 and keeps those that
// answer.
func (c *SetupCommand) findControllers() []controllerInfo {
	ports, err := st4.ListPorts()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}

	var found []controllerInfo
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		version, err := probe(port, c.ProbeTimeout)
		if err != nil || version == "" {
			fmt.Println(dimStyle.Render("  no answer on " + port))
			continue
		}

		fmt.Printf("  Found %s on %s\n", successStyle.Render(version), port)
		found = append(found, controllerInfo{port: port, version: version})
	}

	return found
}

func probe(port string, timeout time.Duration) (string, error) {
	client, err := st4.Open(port, st4.WithTimeout(timeout), st4.WithLogger(newLogger()))
	if err != nil {
		return "", err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*timeout)
	defer cancel()

	return client.FirmwareVersion(ctx)
}

func choosePort(found []controllerInfo) (string, error) {
	options := make([]huh.Option[string], 0, len(found))
	for _, f := range found {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", f.port, f.version), f.port))
	}

	var port string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which ST4 should be used?").
				Options(options...).
				Value(&port),
		),
	)

	if err := form.Run(); err != nil {
		return "", err
	}
	return port, nil
}
