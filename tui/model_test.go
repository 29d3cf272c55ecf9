package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"maestro/midi"
	"maestro/playback"
)

type recorder struct {
	ons, offs []uint8
	closes    int
}

func (r *recorder) NoteOn(pitch, velocity uint8) error {
	r.ons = append(r.ons, pitch)
	return nil
}

func (r *recorder) NoteOff(pitch uint8) error {
	r.offs = append(r.offs, pitch)
	return nil
}

func (r *recorder) Close() error {
	r.closes++
	return nil
}

type fakeKeyboard struct {
	notes  chan midi.NoteEvent
	closed bool
}

func (k *fakeKeyboard) NoteEvents() <-chan midi.NoteEvent { return k.notes }
func (k *fakeKeyboard) Close() error {
	k.closed = true
	return nil
}

func testModel(rec *recorder) Model {
	prefs := midi.NewPreferences(midi.ByIndex(0), midi.NoPort)
	return NewModel(Options{
		Prefs: prefs,
		Open:  func() (midi.Sink, error) { return rec, nil },
		ListPorts: func() (midi.Ports, error) {
			return midi.Ports{
				Ins:  []midi.Port{{Index: 0, Name: "Keys"}},
				Outs: []midi.Port{{Index: 0, Name: "Through"}, {Index: 1, Name: "FluidSynth"}},
			}, nil
		},
	})
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func keys(t *testing.T, m Model, names ...string) (Model, tea.Cmd) {
	t.Helper()
	var msgs []tea.Msg
	for _, n := range names {
		msgs = append(msgs, keyMsg(n))
	}
	return send(t, m, msgs...)
}

// start picks menu entries, then completes the device open the last one
// requested
func start(t *testing.T, m Model, names ...string) (Model, tea.Cmd) {
	t.Helper()
	m, cmd := keys(t, m, names...)
	if cmd == nil {
		t.Fatal("start did not open the output")
	}
	return send(t, m, cmd())
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

// tick plays the current phase, as if the scheduled tick fired
func tick(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = send(t, m, tickMsg{m.gen})
	return m
}

func TestMenuRouting(t *testing.T) {
	m := testModel(&recorder{})
	for key, want := range map[string]screen{"2": scalesScreen, "3": chordsScreen, "4": piecesScreen} {
		got, _ := keys(t, m, key)
		if got.screen != want {
			t.Errorf("key %s: screen %d, want %d", key, got.screen, want)
		}
		back, _ := keys(t, got, "b")
		if back.screen != mainScreen {
			t.Errorf("key %s then b: screen %d", key, back.screen)
		}
	}

	m, _ = keys(t, m, "2")
	if view := m.View(); !strings.Contains(view, "Scale Learning Menu") || !strings.Contains(view, "C Major") {
		t.Errorf("scales menu:\n%s", view)
	}
}

func TestPlayToEnd(t *testing.T) {
	rec := &recorder{}
	m, _ := start(t, testModel(rec), "4", "2")
	if m.screen != playScreen || m.player == nil {
		t.Fatalf("screen = %d", m.screen)
	}
	n := m.player.Sequence().Len()

	for i := 0; i < 2*n+1 && m.screen == playScreen; i++ {
		if i == 1 && !strings.Contains(m.View(), "Playing: E5 (MIDI: 76)") {
			t.Errorf("status line missing:\n%s", m.View())
		}
		m = tick(t, m)
	}
	if m.screen != piecesScreen {
		t.Fatalf("screen = %d after playback", m.screen)
	}
	if len(rec.ons) != n || len(rec.offs) != n || rec.closes != 1 {
		t.Errorf("ons=%d offs=%d closes=%d, want %d/%d/1", len(rec.ons), len(rec.offs), rec.closes, n, n)
	}
	if !strings.HasPrefix(m.Notice(), "Finished") {
		t.Errorf("notice = %q", m.Notice())
	}
}

func TestCancelPlayback(t *testing.T) {
	rec := &recorder{}
	m, _ := start(t, testModel(rec), "4", "1")
	m = tick(t, m) // strike first note
	staleGen := m.gen

	m, _ = keys(t, m, "esc")
	if m.screen != piecesScreen {
		t.Fatalf("screen = %d", m.screen)
	}
	if len(rec.ons) != 1 || len(rec.offs) != 1 || rec.offs[0] != rec.ons[0] {
		t.Errorf("ons=%v offs=%v", rec.ons, rec.offs)
	}
	if rec.closes != 1 {
		t.Errorf("closes = %d", rec.closes)
	}

	// the tick scheduled for the held note arrives late
	m, _ = send(t, m, tickMsg{staleGen})
	if len(rec.ons) != 1 {
		t.Error("stale tick restarted playback")
	}
}

func TestPlaybackWithoutDevice(t *testing.T) {
	m := testModel(&recorder{})
	m.opts.Open = func() (midi.Sink, error) { return nil, midi.ErrNoSuchPort }

	m, _ = start(t, m, "4", "3")
	if m.screen != playScreen || m.player.State() != playback.Playing {
		t.Fatalf("should play silently, screen=%d", m.screen)
	}
	if !strings.Contains(m.Notice(), "without sound") {
		t.Errorf("notice = %q", m.Notice())
	}
}

func TestScaleWalk(t *testing.T) {
	rec := &recorder{}
	m, _ := start(t, testModel(rec), "2", "1")
	if m.screen != walkScreen {
		t.Fatalf("screen = %d", m.screen)
	}
	for i := 0; i < 9; i++ {
		m, _ = keys(t, m, "space")
	}
	if m.walk.Pos() != 1 || m.walk.Current()[0] != 62 {
		t.Errorf("pos=%d pitch=%v", m.walk.Pos(), m.walk.Current())
	}
	if !strings.Contains(m.View(), "Current note: D (Note 2 of 8)") {
		t.Errorf("view:\n%s", m.View())
	}

	walk := m.walk
	m, _ = keys(t, m, "esc")
	if m.screen != scalesScreen || !walk.Done() {
		t.Errorf("esc should end the walk, screen=%d", m.screen)
	}
	if rec.closes != 1 || len(rec.ons) != len(rec.offs) {
		t.Errorf("ons=%d offs=%d closes=%d", len(rec.ons), len(rec.offs), rec.closes)
	}
}

func TestChordWalkHoldAndArpeggio(t *testing.T) {
	rec := &recorder{}
	m, _ := start(t, testModel(rec), "3", "1")

	m, cmd := keys(t, m, "space")
	if cmd == nil || len(rec.ons) != 3 {
		t.Fatalf("advance should sound the chord and schedule a release: ons=%v", rec.ons)
	}
	m, _ = send(t, m, releaseMsg{m.gen})
	if len(rec.offs) != 3 {
		t.Fatalf("offs = %v", rec.offs)
	}

	m, cmd = keys(t, m, "a")
	if cmd == nil || !m.walk.Arpeggiating() {
		t.Fatal("arpeggio did not start")
	}
	for m.walk.Arpeggiating() {
		m, _ = send(t, m, arpeggioMsg{m.gen})
	}
	if len(rec.ons) != 6 || len(rec.offs) != 6 {
		t.Errorf("ons=%v offs=%v", rec.ons, rec.offs)
	}
}

func TestKeyboardPractice(t *testing.T) {
	kb := &fakeKeyboard{notes: make(chan midi.NoteEvent, 4)}
	rec := &recorder{}
	m := testModel(rec)
	m.opts.Prefs.SetInput(midi.ByName("Keys"))
	m.opts.Listen = func(midi.PortSelector) (NoteSource, error) { return kb, nil }

	m, cmd := start(t, m, "2", "1")
	if cmd == nil || m.input != nil {
		t.Fatal("keyboard should open off the event loop")
	}
	m, cmd = send(t, m, cmd())
	if cmd == nil || m.input != kb {
		t.Fatal("walk should listen to the keyboard")
	}

	m, _ = send(t, m, noteMsg{src: kb, ev: midi.NoteEvent{Note: 60, Velocity: 90}})
	if m.walk.Pos() != 1 {
		t.Errorf("pos = %d", m.walk.Pos())
	}
	if len(rec.ons) != 0 {
		t.Errorf("keyboard notes should not be echoed: %v", rec.ons)
	}

	m, _ = send(t, m, noteMsg{src: kb, ev: midi.NoteEvent{Note: 61, Velocity: 90}})
	if m.walk.Pos() != 1 {
		t.Error("wrong note advanced the walk")
	}

	keys(t, m, "esc")
	if !kb.closed {
		t.Error("keyboard not closed when the walk ended")
	}
}

func TestDevicesScreen(t *testing.T) {
	var saved *midi.Preferences
	m := testModel(&recorder{})
	m.opts.SavePrefs = func(p *midi.Preferences) error {
		saved = p
		return nil
	}

	m, cmd := keys(t, m, "1")
	if m.screen != devicesScreen || cmd == nil {
		t.Fatalf("screen = %d", m.screen)
	}
	m, _ = send(t, m, cmd())
	if !strings.Contains(m.View(), "FluidSynth") {
		t.Errorf("ports not listed:\n%s", m.View())
	}

	m, _ = keys(t, m, "1")
	if saved == nil || saved.Output().Name != "FluidSynth" {
		t.Fatalf("output not saved: %+v", saved)
	}
	m, _ = keys(t, m, "7")
	if m.Notice() != "Invalid port number" {
		t.Errorf("notice = %q", m.Notice())
	}

	m, _ = keys(t, m, "i")
	if saved.Input().Name != "Keys" {
		t.Errorf("input = %s", saved.Input())
	}
	m, _ = keys(t, m, "i")
	if !saved.Input().IsNone() {
		t.Errorf("input should cycle back to none, got %s", saved.Input())
	}

	m, _ = keys(t, m, "n")
	if !saved.Silent() {
		t.Error("n should disable output")
	}
	if !strings.Contains(m.View(), "output: none") {
		t.Errorf("header:\n%s", m.View())
	}
}

func TestDevicesScanError(t *testing.T) {
	m := testModel(&recorder{})
	m.opts.ListPorts = func() (midi.Ports, error) { return midi.Ports{}, midi.ErrScanTimeout }
	m, cmd := keys(t, m, "1")
	m, _ = send(t, m, cmd())
	if m.Notice() == "" {
		t.Error("scan error should be shown")
	}
}

func TestDirectStartQuitsWhenDone(t *testing.T) {
	rec := &recorder{}
	m := testModel(rec).Direct(KindScale, "G Major")
	m, cmd := send(t, m, m.Init()())
	m, _ = send(t, m, cmd())
	if m.screen != walkScreen || m.walk.Name() != "G Major" {
		t.Fatalf("screen=%d", m.screen)
	}
	_, cmd = keys(t, m, "esc")
	if !isQuit(cmd) {
		t.Error("direct walk should quit on esc")
	}
}

func TestDirectUnknownKey(t *testing.T) {
	m := testModel(&recorder{}).Direct(KindPiece, "nonexistent")
	m, cmd := send(t, m, m.Init()())
	if !isQuit(cmd) {
		t.Error("unknown piece should quit in direct mode")
	}
	if !strings.Contains(m.Notice(), "not found") {
		t.Errorf("notice = %q", m.Notice())
	}
}

func TestQuitReleasesEverything(t *testing.T) {
	rec := &recorder{}
	m, _ := start(t, testModel(rec), "4", "1")
	m = tick(t, m)
	m, cmd := keys(t, m, "q")
	if !isQuit(cmd) || m.View() != "" {
		t.Error("q should quit")
	}
	if rec.closes != 1 || len(rec.offs) != 1 {
		t.Errorf("offs=%v closes=%d", rec.offs, rec.closes)
	}
}

func TestDirectPlaybackKeepsDeviceNotice(t *testing.T) {
	m := testModel(&recorder{})
	m.opts.Open = func() (midi.Sink, error) { return nil, midi.ErrNoSuchPort }
	m = m.Direct(KindPiece, "Turkish March")
	m, cmd := send(t, m, m.Init()())
	m, _ = send(t, m, cmd())

	for i := 0; i < 100 && m.player != nil; i++ {
		m = tick(t, m)
	}
	if m.player != nil {
		t.Fatal("playback did not finish")
	}
	notice := m.Notice()
	if !strings.Contains(notice, "without sound") || !strings.Contains(notice, "Finished") {
		t.Errorf("notice = %q", notice)
	}
}

func TestOpenRunsOffTheEventLoop(t *testing.T) {
	rec := &recorder{}
	opens := 0
	m := testModel(rec)
	m.opts.Open = func() (midi.Sink, error) {
		opens++
		return rec, nil
	}

	m, cmd := keys(t, m, "4", "1")
	if opens != 0 || m.screen != piecesScreen || cmd == nil {
		t.Fatalf("opens=%d screen=%d", opens, m.screen)
	}
	if !strings.Contains(m.Notice(), "Connecting") {
		t.Errorf("notice = %q", m.Notice())
	}
	m, _ = send(t, m, cmd())
	if opens != 1 || m.screen != playScreen {
		t.Errorf("opens=%d screen=%d", opens, m.screen)
	}
}

func TestAbandonedOpenIsClosed(t *testing.T) {
	rec := &recorder{}
	m, cmd := keys(t, testModel(rec), "4", "1")
	m, _ = keys(t, m, "esc")

	m, _ = send(t, m, cmd())
	if m.player != nil || m.screen != mainScreen {
		t.Errorf("late open started playback, screen=%d", m.screen)
	}
	if rec.closes != 1 || len(rec.ons) != 0 {
		t.Errorf("ons=%v closes=%d", rec.ons, rec.closes)
	}
}

func TestLateKeyboardIsClosed(t *testing.T) {
	kb := &fakeKeyboard{notes: make(chan midi.NoteEvent)}
	m := testModel(&recorder{})
	m.opts.Prefs.SetInput(midi.ByName("Keys"))
	m.opts.Listen = func(midi.PortSelector) (NoteSource, error) { return kb, nil }

	m, cmd := start(t, m, "2", "1")
	m, _ = keys(t, m, "esc")
	m, _ = send(t, m, cmd())
	if !kb.closed || m.input != nil {
		t.Error("keyboard opened after the walk ended should be closed")
	}
}

func TestArpeggioKeyInScaleWalkKeepsRelease(t *testing.T) {
	rec := &recorder{}
	m, _ := start(t, testModel(rec), "2", "1")

	m, cmd := keys(t, m, "space")
	if cmd == nil {
		t.Fatal("advance should schedule a release")
	}
	release := releaseMsg{m.gen}

	m, _ = keys(t, m, "a")
	m, _ = send(t, m, release)
	if len(rec.ons) != 1 || len(rec.offs) != 1 {
		t.Errorf("ons=%v offs=%v", rec.ons, rec.offs)
	}
	if len(m.walk.Sounding()) != 0 {
		t.Errorf("still sounding: %v", m.walk.Sounding())
	}
}

func TestNextInput(t *testing.T) {
	ins := []midi.Port{{Index: 0, Name: "A"}, {Index: 1, Name: "B"}}
	sel := midi.NoPort
	var seen []string
	for i := 0; i < 3; i++ {
		sel = nextInput(ins, sel)
		seen = append(seen, sel.String())
	}
	if strings.Join(seen, ",") != `"A","B",(none)` {
		t.Errorf("cycle = %v", seen)
	}
	if !nextInput(nil, midi.ByName("A")).IsNone() {
		t.Error("no inputs should give none")
	}
}
