package midi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var (
	ErrNoSuchPort       = errors.New("no such MIDI port")
	ErrConnectionFailed = errors.New("MIDI connection failed")
	ErrScanTimeout      = errors.New("MIDI port scan timed out")
)

// ScanTimeout bounds a port scan (CoreMIDI can hang)
const ScanTimeout = 3 * time.Second

// Port is one entry of a port enumeration
type Port struct {
	Index int
	Name  string
}

func (p Port) String() string {
	return fmt.Sprintf("%d: %s", p.Index, p.Name)
}

// Ports is a snapshot of the MIDI bus
type Ports struct {
	Ins  []Port
	Outs []Port
}

type portsResult struct {
	inPorts  []drivers.In
	outPorts []drivers.Out
}

// getPorts is swapped out by tests
var getPorts = func() portsResult {
	return portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
}

func scan(timeout time.Duration) (portsResult, error) {
	ch := make(chan portsResult, 1)
	go func() {
		ch <- getPorts()
	}()

	select {
	case result := <-ch:
		return result, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return portsResult{}, fault.Wrap(ErrScanTimeout,
			fmsg.WithDesc("port scan timeout", "MIDI system is not responding"),
			ftag.With(ftag.Internal))
	}
}

// ListPorts enumerates input and output ports in driver order.
func ListPorts(timeout time.Duration) (Ports, error) {
	result, err := scan(timeout)
	if err != nil {
		return Ports{}, err
	}
	var ports Ports
	for i, p := range result.inPorts {
		ports.Ins = append(ports.Ins, Port{Index: i, Name: p.String()})
	}
	for i, p := range result.outPorts {
		ports.Outs = append(ports.Outs, Port{Index: i, Name: p.String()})
	}
	return ports, nil
}

// Equal reports whether two snapshots list the same ports.
func (p Ports) Equal(o Ports) bool {
	return samePorts(p.Ins, o.Ins) && samePorts(p.Outs, o.Outs)
}

func samePorts(a, b []Port) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Watch polls the bus and sends a snapshot whenever the port lists change
// (hot-plug). The first snapshot is sent immediately. The channel is
// closed when ctx is done.
func Watch(ctx context.Context, pollRate time.Duration) <-chan Ports {
	events := make(chan Ports, 1)
	go func() {
		defer close(events)
		ticker := time.NewTicker(pollRate)
		defer ticker.Stop()

		var last Ports
		first := true
		for {
			if ports, err := ListPorts(ScanTimeout); err == nil && (first || !ports.Equal(last)) {
				first = false
				last = ports
				select {
				case events <- ports:
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return events
}

// PortSelector picks a port from an enumeration, by name when Name is set
// and by index otherwise.
type PortSelector struct {
	Index int
	Name  string
}

// NoPort selects nothing; resolving it fails with ErrNoSuchPort.
var NoPort = PortSelector{Index: -1}

func ByIndex(i int) PortSelector     { return PortSelector{Index: i} }
func ByName(name string) PortSelector { return PortSelector{Index: -1, Name: name} }

// IsNone reports whether the selector can never match.
func (s PortSelector) IsNone() bool {
	return s.Name == "" && s.Index < 0
}

func (s PortSelector) String() string {
	if s.Name != "" {
		return fmt.Sprintf("%q", s.Name)
	}
	if s.Index < 0 {
		return "(none)"
	}
	return fmt.Sprintf("#%d", s.Index)
}

// Resolve returns the index of the selected port among names. A name
// matches exactly first, then as a case-insensitive substring.
func (s PortSelector) Resolve(names []string) (int, error) {
	if s.Name != "" {
		for i, n := range names {
			if n == s.Name {
				return i, nil
			}
		}
		want := strings.ToLower(s.Name)
		for i, n := range names {
			if strings.Contains(strings.ToLower(n), want) {
				return i, nil
			}
		}
	} else if s.Index >= 0 && s.Index < len(names) {
		return s.Index, nil
	}

	if s.IsNone() {
		return -1, fault.Wrap(ErrNoSuchPort,
			fmsg.WithDesc("empty port selector", "No MIDI output port selected"),
			ftag.With(ftag.NotFound))
	}
	return -1, fault.Wrap(ErrNoSuchPort,
		fmsg.WithDesc(fmt.Sprintf("port %s not among %d ports", s, len(names)),
			fmt.Sprintf("MIDI port %s not found", s)),
		ftag.With(ftag.NotFound))
}

// UserMessage returns the plain message to show for a MIDI error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	return err.Error()
}
