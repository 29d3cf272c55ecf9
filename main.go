package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"maestro/config"
	"maestro/debug"
	"maestro/midi"
	"maestro/music"
	"maestro/theme"
	"maestro/tui"
)

var ErrNotTerminal = errors.New("maestro needs an interactive terminal")

// app is what every command shares once flags and config are read
type app struct {
	flags struct {
		port   int
		in     int
		silent bool
		log    string
	}

	cfg     *config.Config
	prefs   *midi.Preferences
	catalog *music.Catalog
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "maestro",
		Short: "Learn scales, chord progressions and Mozart at the terminal",
		Long: `Maestro is a terminal piano tutor. It draws a two-octave keyboard,
walks you through scales and chord progressions one key press at a time,
and plays short Mozart excerpts, sounding every note on a MIDI output.

Without a MIDI device everything still works, just silently.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { debug.Disable() },
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(a.model())
		},
	}

	rootCmd.PersistentFlags().IntVarP(&a.flags.port, "port", "p", -1,
		"MIDI output port index (see 'maestro ports')")
	rootCmd.PersistentFlags().IntVar(&a.flags.in, "in", -1,
		"MIDI input port index to practise with a keyboard")
	rootCmd.PersistentFlags().BoolVar(&a.flags.silent, "silent", false,
		"Do not open any MIDI output")
	rootCmd.PersistentFlags().StringVarP(&a.flags.log, "log", "l", "",
		"Write debug logs to specified file (empty disables)")
	rootCmd.PersistentFlags().Lookup("log").NoOptDefVal = debug.DefaultPath()

	rootCmd.AddCommand(
		a.directCmd("play <piece>", "piece", "Play a piece with the keyboard display", tui.KindPiece),
		a.directCmd("scale <name>", "scale", "Walk through a scale", tui.KindScale),
		a.directCmd("chords <name>", "chord progression", "Walk through a chord progression", tui.KindChords),
		a.portsCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.flags.log != "" {
		if err := debug.Enable(a.flags.log); err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg

	output := midi.NoPort
	switch {
	case cmd.Flags().Changed("port"):
		output = midi.ByIndex(a.flags.port)
	case cfg.Output.PortName != "":
		output = midi.ByName(cfg.Output.PortName)
	case cfg.Output.PortIndex >= 0:
		output = midi.ByIndex(cfg.Output.PortIndex)
	}
	input := midi.NoPort
	switch {
	case cmd.Flags().Changed("in"):
		input = midi.ByIndex(a.flags.in)
	case cfg.Input.PortName != "":
		input = midi.ByName(cfg.Input.PortName)
	}

	a.prefs = midi.NewPreferences(output, input)
	a.prefs.SetChannel(cfg.Output.Channel)
	a.prefs.SetSilent(a.flags.silent)

	a.catalog = music.Builtin()
	if cfg.CatalogPath != "" {
		if err := a.catalog.LoadCatalogFile(cfg.CatalogPath); err != nil {
			return fmt.Errorf("catalog %s: %w", cfg.CatalogPath, err)
		}
	}

	debug.Log("main", "output=%s input=%s silent=%v", output, input, a.flags.silent)
	return nil
}

func (a *app) model() tui.Model {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return tui.NewModel(tui.Options{
		Catalog:   a.catalog,
		Prefs:     a.prefs,
		Theme:     theme.Load(a.cfg.UI.Palette),
		Hold:      ms(a.cfg.Trainer.HoldMs),
		Arpeggio:  ms(a.cfg.Trainer.ArpeggioMs),
		Poll:      ms(a.cfg.Playback.PollMs),
		Velocity:  uint8(a.cfg.Trainer.Velocity),
		SavePrefs: a.savePrefs,
	})
}

func (a *app) savePrefs(p *midi.Preferences) error {
	out := p.Output()
	a.cfg.SetOutput(out.Index, out.Name)
	a.cfg.Input.PortName = p.Input().Name
	return a.cfg.Save()
}

func (a *app) runTUI(m tui.Model) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return ErrNotTerminal
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if fm, ok := final.(tui.Model); ok && fm.Notice() != "" {
		fmt.Println(fm.Notice())
	}
	return nil
}

// directCmd opens one catalog entry without the menus
func (a *app) directCmd(use, noun, short string, kind tui.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			entries, found := a.lookup(kind, key)
			if !found {
				names := make([]string, len(entries))
				for i, e := range entries {
					names[i] = fmt.Sprintf("  %-24s %s", e.Key, e.Name)
				}
				return fmt.Errorf("unknown %s %q, choose one of:\n%s", noun, key, strings.Join(names, "\n"))
			}
			return a.runTUI(a.model().Direct(kind, key))
		},
	}
}

func (a *app) lookup(kind tui.Kind, key string) ([]music.Entry, bool) {
	switch kind {
	case tui.KindScale:
		_, ok := a.catalog.Scale(key)
		return a.catalog.Scales(), ok
	case tui.KindChords:
		_, ok := a.catalog.Progression(key)
		return a.catalog.Progressions(), ok
	}
	_, ok := a.catalog.Piece(key)
	return a.catalog.Pieces(), ok
}

func (a *app) portsCmd() *cobra.Command {
	portsCmd := &cobra.Command{
		Use:   "ports",
		Short: "List MIDI input and output ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := midi.ListPorts(midi.ScanTimeout)
			if err != nil {
				return errors.New(midi.UserMessage(err))
			}
			fmt.Println("Available MIDI Input Devices:")
			printPorts(ports.Ins)
			fmt.Println("\nAvailable MIDI Output Devices:")
			printPorts(ports.Outs)
			return nil
		},
	}

	portsCmd.AddCommand(&cobra.Command{
		Use:   "select",
		Short: "Choose the MIDI output port and save it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := midi.ListPorts(midi.ScanTimeout)
			if err != nil {
				return errors.New(midi.UserMessage(err))
			}
			if len(ports.Outs) == 0 {
				return errors.New("no output MIDI devices found")
			}

			prompt := promptui.Select{
				Label: "Select MIDI Output device to play on",
				Items: ports.Outs,
			}
			idx, _, err := prompt.Run()
			if err != nil {
				return err
			}

			port := ports.Outs[idx]
			a.cfg.SetOutput(port.Index, port.Name)
			if err := a.cfg.Save(); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Printf("Output set to %s\n", port.Name)
			return nil
		},
	})
	return portsCmd
}

func printPorts(ports []midi.Port) {
	if len(ports) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, p := range ports {
		fmt.Println(p)
	}
}
