package midi

import "sync"

// Preferences is the process-wide preferred port setting. It is owned by
// main and passed to whoever opens sessions; reads and writes may come
// from different menus, so access goes through the accessors.
type Preferences struct {
	mu      sync.RWMutex
	output  PortSelector
	input   PortSelector
	channel uint8
	silent  bool
}

func NewPreferences(output, input PortSelector) *Preferences {
	return &Preferences{output: output, input: input}
}

func (p *Preferences) Output() PortSelector {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.output
}

func (p *Preferences) SetOutput(sel PortSelector) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = sel
}

func (p *Preferences) Input() PortSelector {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.input
}

func (p *Preferences) SetInput(sel PortSelector) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = sel
}

func (p *Preferences) Channel() uint8 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.channel
}

func (p *Preferences) SetChannel(ch uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channel = ch & 0x0F
}

// Silent disables sound output entirely
func (p *Preferences) Silent() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.silent
}

func (p *Preferences) SetSilent(silent bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.silent = silent
}

// OpenOutput opens a session on the preferred output port.
func (p *Preferences) OpenOutput() (*Session, error) {
	p.mu.RLock()
	sel, ch := p.output, p.channel
	p.mu.RUnlock()
	return Open(sel, WithChannel(ch))
}
