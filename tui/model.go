package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"maestro/debug"
	"maestro/midi"
	"maestro/music"
	"maestro/playback"
	"maestro/theme"
	"maestro/trainer"
)

type screen int

const (
	mainScreen screen = iota
	scalesScreen
	chordsScreen
	piecesScreen
	devicesScreen
	playScreen
	walkScreen
)

// Kind picks what a direct start opens
type Kind int

const (
	KindPiece Kind = iota
	KindScale
	KindChords
)

// NoteSource is a MIDI keyboard to practise with
type NoteSource interface {
	NoteEvents() <-chan midi.NoteEvent
	Close() error
}

// Options wires the model to the outside world. Nil funcs use the real
// MIDI bus.
type Options struct {
	Catalog *music.Catalog
	Prefs   *midi.Preferences
	Theme   *theme.Theme

	Hold     time.Duration
	Arpeggio time.Duration
	Poll     time.Duration
	Velocity uint8

	Open      func() (midi.Sink, error)
	Listen    func(midi.PortSelector) (NoteSource, error)
	ListPorts func() (midi.Ports, error)
	SavePrefs func(*midi.Preferences) error
}

type Model struct {
	opts Options
	keys keyMap
	help help.Model

	screen   screen
	returnTo screen
	player   *playback.Player
	walk     *trainer.Walk
	input    NoteSource
	gen      int

	ports    midi.Ports
	scanning bool
	notice   string

	opening    *startMsg // output being opened for this start
	direct     *startMsg
	exitOnDone bool
	quitting   bool
}

func NewModel(opts Options) Model {
	if opts.Catalog == nil {
		opts.Catalog = music.Builtin()
	}
	if opts.Prefs == nil {
		opts.Prefs = midi.NewPreferences(midi.NoPort, midi.NoPort)
	}
	if opts.Theme == nil {
		opts.Theme = theme.Default()
	}
	if opts.Velocity == 0 {
		opts.Velocity = trainer.DefaultVelocity
	}
	if opts.Open == nil {
		prefs := opts.Prefs
		opts.Open = func() (midi.Sink, error) {
			s, err := prefs.OpenOutput()
			if err != nil {
				return nil, err
			}
			return s, nil
		}
	}
	if opts.Listen == nil {
		opts.Listen = func(sel midi.PortSelector) (NoteSource, error) {
			kb, err := midi.ListenKeyboard(sel)
			if err != nil {
				return nil, err
			}
			return kb, nil
		}
	}
	if opts.ListPorts == nil {
		opts.ListPorts = func() (midi.Ports, error) { return midi.ListPorts(midi.ScanTimeout) }
	}

	return Model{
		opts: opts,
		keys: defaultKeys(),
		help: help.New(),
	}
}

// Direct returns a model that opens one piece, scale or progression
// straight away and quits when it ends.
func (m Model) Direct(kind Kind, key string) Model {
	m.direct = &startMsg{kind: kind, key: key}
	m.exitOnDone = true
	return m
}

// Notice is the last message shown to the user
func (m Model) Notice() string {
	return m.notice
}

func (m Model) Init() tea.Cmd {
	if m.direct != nil {
		msg := *m.direct
		return func() tea.Msg { return msg }
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
		switch m.screen {
		case playScreen:
			return m.updatePlay(msg)
		case walkScreen:
			return m.updateWalk(msg)
		case devicesScreen:
			return m.updateDevices(msg)
		default:
			return m.updateMenu(msg)
		}

	case startMsg:
		m.direct = nil
		m.returnTo = returnScreen(msg.kind)
		return m.begin(msg.kind, msg.key)

	case sinkMsg:
		if msg.req != m.opening {
			// superseded or abandoned while the port was opening
			if msg.sink != nil {
				msg.sink.Close()
			}
			return m, nil
		}
		m.opening = nil
		return m.launch(msg.req, msg.sink, msg.err)

	case inputMsg:
		if msg.walk == nil || msg.walk != m.walk {
			if msg.src != nil {
				msg.src.Close()
			}
			return m, nil
		}
		if msg.err != nil {
			m.notice = midi.UserMessage(msg.err)
			return m, nil
		}
		if msg.src == nil {
			return m, nil
		}
		m.input = msg.src
		return m, ListenForNotes(msg.src)

	case tickMsg:
		if msg.gen != m.gen || m.player == nil {
			return m, nil
		}
		step := m.player.Tick()
		if step.Done {
			return m.endPlayback()
		}
		return m, after(step.Wait, tickMsg{m.gen})

	case releaseMsg:
		if msg.gen == m.gen && m.walk != nil {
			m.walk.Release()
		}

	case arpeggioMsg:
		if msg.gen != m.gen || m.walk == nil {
			return m, nil
		}
		if d, more := m.walk.NextArpeggio(); more {
			return m, after(d, arpeggioMsg{m.gen})
		}

	case noteMsg:
		if msg.src != m.input {
			return m, nil
		}
		if m.walk != nil && m.walk.Press(msg.ev.Note) {
			m.gen++
			debug.Log("trainer", "advanced by keyboard note=%d", msg.ev.Note)
		}
		return m, ListenForNotes(msg.src)

	case inputClosedMsg:
		return m, nil

	case portsMsg:
		m.scanning = false
		if msg.err != nil {
			m.notice = midi.UserMessage(msg.err)
			return m, nil
		}
		m.ports = msg.ports
	}

	return m, nil
}

// quit releases everything held on the way out
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.player != nil {
		m.player.Cancel()
		m.player = nil
	}
	if m.walk != nil {
		m.walk.Cancel()
		m.walk = nil
	}
	m.closeInput()
	m.opening = nil
	m.gen++
	m.quitting = true
	return m, tea.Quit
}

func (m Model) back(to screen) (tea.Model, tea.Cmd) {
	if m.exitOnDone {
		return m.quit()
	}
	m.screen = to
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen != mainScreen && (key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Cancel)) {
		m.notice = ""
		m.opening = nil
		m.screen = mainScreen
		return m, nil
	}

	choice, ok := digit(msg)
	if !ok {
		return m, nil
	}
	m.notice = ""

	switch m.screen {
	case mainScreen:
		switch choice {
		case 1:
			m.screen = devicesScreen
			m.scanning = true
			return m, scanPorts(m.opts.ListPorts)
		case 2:
			m.screen = scalesScreen
		case 3:
			m.screen = chordsScreen
		case 4:
			m.screen = piecesScreen
		}

	case scalesScreen:
		if e, ok := entry(m.opts.Catalog.Scales(), choice); ok {
			m.returnTo = scalesScreen
			return m.begin(KindScale, e.Key)
		}
	case chordsScreen:
		if e, ok := entry(m.opts.Catalog.Progressions(), choice); ok {
			m.returnTo = chordsScreen
			return m.begin(KindChords, e.Key)
		}
	case piecesScreen:
		if e, ok := entry(m.opts.Catalog.Pieces(), choice); ok {
			m.returnTo = piecesScreen
			return m.begin(KindPiece, e.Key)
		}
	}
	return m, nil
}

func digit(msg tea.KeyMsg) (int, bool) {
	s := msg.String()
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '0'), true
}

// entry maps a 1-based menu choice to a catalog entry
func entry(entries []music.Entry, choice int) (music.Entry, bool) {
	if choice < 1 || choice > len(entries) {
		return music.Entry{}, false
	}
	return entries[choice-1], true
}

func returnScreen(kind Kind) screen {
	switch kind {
	case KindScale:
		return scalesScreen
	case KindChords:
		return chordsScreen
	}
	return piecesScreen
}

// begin checks the catalog entry, then opens the output port off the
// event loop. The entry starts when the sinkMsg comes back.
func (m Model) begin(kind Kind, key string) (tea.Model, tea.Cmd) {
	if problem := m.missing(kind, key); problem != "" {
		m.notice = problem
		return m.back(m.returnTo)
	}

	req := &startMsg{kind: kind, key: key}
	if m.opts.Prefs.Silent() {
		m.opening = nil
		return m.launch(req, nil, nil)
	}
	m.opening = req
	m.notice = "Connecting to " + m.opts.Prefs.Output().String() + "..."
	return m, openOutput(req, m.opts.Open)
}

func (m Model) missing(kind Kind, key string) string {
	switch kind {
	case KindScale:
		s, ok := m.opts.Catalog.Scale(key)
		if !ok {
			return fmt.Sprintf("Scale not found: %s", key)
		}
		if len(s.Pitches) == 0 {
			return "No notes found for this scale!"
		}
	case KindChords:
		p, ok := m.opts.Catalog.Progression(key)
		if !ok {
			return fmt.Sprintf("Chord progression not found: %s", key)
		}
		if len(p.Chords) == 0 {
			return "No chords found for this progression!"
		}
	default:
		seq, ok := m.opts.Catalog.Piece(key)
		if !ok {
			return fmt.Sprintf("Piece not found: %s", key)
		}
		if seq.Len() == 0 {
			return "No notes found for this piece!"
		}
	}
	return ""
}

// launch starts the requested entry with whatever the open produced.
// A nil sink means silence.
func (m Model) launch(req *startMsg, sink midi.Sink, err error) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch req.kind {
	case KindScale:
		s, _ := m.opts.Catalog.Scale(req.key)
		m.walk = trainer.NewScaleWalk(s, m.walkSink(sink, err), m.walkOptions()...)
		return m.enterWalk()
	case KindChords:
		p, _ := m.opts.Catalog.Progression(req.key)
		m.walk = trainer.NewChordWalk(p, m.walkSink(sink, err), m.walkOptions()...)
		return m.enterWalk()
	}
	return m.startPiece(req.key, sink, err)
}

// Playback

func (m Model) startPiece(key string, sink midi.Sink, openErr error) (tea.Model, tea.Cmd) {
	seq, _ := m.opts.Catalog.Piece(key)

	var acquire playback.Acquire
	if sink != nil || openErr != nil {
		acquire = func() (midi.Sink, error) { return sink, openErr }
	}

	p := playback.New(seq, playback.WithPoll(m.opts.Poll))
	step, err := p.Start(acquire)
	if err != nil {
		// no device: play the display without sound
		m.notice = midi.UserMessage(err) + ", playing without sound"
		debug.Log("playback", "acquire failed: %v", err)
		step, _ = p.Start(nil)
	}

	m.player = p
	m.screen = playScreen
	m.gen++
	if step.Done {
		return m.endPlayback()
	}
	return m, after(step.Wait, tickMsg{m.gen})
}

func (m Model) updatePlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.player == nil {
		return m, nil
	}
	if key.Matches(msg, m.keys.Cancel) || key.Matches(msg, m.keys.Back) {
		m.player.Cancel()
		return m.endPlayback()
	}
	return m, nil
}

// endPlayback reports the outcome after any device notice, so a silent
// run still says why it was silent.
func (m Model) endPlayback() (tea.Model, tea.Cmd) {
	if m.player != nil {
		name := m.player.Sequence().Name
		var outcome string
		switch m.player.State() {
		case playback.Finished:
			outcome = "Finished " + name
		case playback.Cancelled:
			outcome = "Stopped " + name
		}
		if outcome != "" {
			if m.notice != "" {
				outcome = m.notice + "\n" + outcome
			}
			m.notice = outcome
		}
	}
	m.player = nil
	m.gen++
	return m.back(m.returnTo)
}

// Walk-throughs

func (m *Model) walkSink(sink midi.Sink, err error) midi.Sink {
	if err != nil {
		m.notice = midi.UserMessage(err) + ", practising without sound"
		debug.Log("trainer", "open output: %v", err)
		return nil
	}
	return sink
}

func (m Model) walkOptions() []trainer.Option {
	return []trainer.Option{
		trainer.WithHold(m.opts.Hold),
		trainer.WithArpeggio(m.opts.Arpeggio),
		trainer.WithVelocity(m.opts.Velocity),
	}
}

// enterWalk shows the walk at once; a MIDI keyboard, if one is chosen,
// is opened off the event loop and joins when its inputMsg arrives.
func (m Model) enterWalk() (tea.Model, tea.Cmd) {
	m.screen = walkScreen
	m.gen++

	sel := m.opts.Prefs.Input()
	if sel.IsNone() {
		return m, nil
	}
	return m, openInput(m.walk, sel, m.opts.Listen)
}

func (m Model) updateWalk(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.walk == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Back):
		m.walk.Cancel()
		m.walk = nil
		m.closeInput()
		m.gen++
		return m.back(m.returnTo)

	case key.Matches(msg, m.keys.Advance):
		m.gen++
		if hold := m.walk.Advance(); hold > 0 {
			return m, after(hold, releaseMsg{m.gen})
		}

	case key.Matches(msg, m.keys.Arpeggio):
		// scales have no arpeggio; leave their pending release alone
		if d := m.walk.Arpeggiate(); d > 0 {
			m.gen++
			return m, after(d, arpeggioMsg{m.gen})
		}
	}
	return m, nil
}

func (m *Model) closeInput() {
	if m.input != nil {
		m.input.Close()
		m.input = nil
	}
}

// Devices

func (m Model) updateDevices(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	prefs := m.opts.Prefs
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Cancel):
		m.screen = mainScreen
		return m, nil

	case key.Matches(msg, m.keys.Rescan):
		m.scanning = true
		return m, scanPorts(m.opts.ListPorts)

	case key.Matches(msg, m.keys.Silent):
		prefs.SetSilent(!prefs.Silent())
		return m.savePrefs()

	case key.Matches(msg, m.keys.NextInput):
		prefs.SetInput(nextInput(m.ports.Ins, prefs.Input()))
		return m.savePrefs()
	}

	if idx, ok := digit(msg); ok {
		if idx >= len(m.ports.Outs) {
			m.notice = "Invalid port number"
			return m, nil
		}
		port := m.ports.Outs[idx]
		prefs.SetOutput(midi.ByName(port.Name))
		prefs.SetSilent(false)
		m.notice = "Output: " + port.Name
		return m.savePrefs()
	}
	return m, nil
}

func (m Model) savePrefs() (tea.Model, tea.Cmd) {
	if m.opts.SavePrefs != nil {
		if err := m.opts.SavePrefs(m.opts.Prefs); err != nil {
			m.notice = fmt.Sprintf("Could not save settings: %v", err)
		}
	}
	return m, nil
}

// nextInput cycles none -> first port -> ... -> last port -> none
func nextInput(ins []midi.Port, cur midi.PortSelector) midi.PortSelector {
	if len(ins) == 0 {
		return midi.NoPort
	}
	names := make([]string, len(ins))
	for i, p := range ins {
		names[i] = p.Name
	}
	i, err := cur.Resolve(names)
	if err != nil {
		return midi.ByName(ins[0].Name)
	}
	if i+1 >= len(ins) {
		return midi.NoPort
	}
	return midi.ByName(ins[i+1].Name)
}
