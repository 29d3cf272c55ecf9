package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"maestro/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "poll":
		pollDevices()
	case "ping":
		if len(os.Args) < 3 {
			usage()
			return
		}
		ping(os.Args[2])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list          - List all MIDI ports")
	fmt.Println("  poll          - Poll for device changes")
	fmt.Println("  ping <index>  - Play a C major triad on an output port")
}

func listPorts() {
	fmt.Println("(waiting up to 3 seconds...)")

	ports, err := midi.ListPorts(midi.ScanTimeout)
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}

	fmt.Println("=== MIDI Input Ports ===")
	for _, p := range ports.Ins {
		fmt.Printf("  %s\n", p)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for _, p := range ports.Outs {
		fmt.Printf("  %s\n", p)
	}
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a keyboard or synth to test. Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for ports := range midi.Watch(ctx, 2*time.Second) {
		fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
		fmt.Printf("  Inputs: %v\n", ports.Ins)
		fmt.Printf("  Outputs: %v\n", ports.Outs)
	}
}

func ping(arg string) {
	idx, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Printf("Invalid port number: %s\n", arg)
		return
	}

	session, err := midi.Open(midi.ByIndex(idx))
	if err != nil {
		fmt.Printf("Error connecting to MIDI device: %s\n", midi.UserMessage(err))
		return
	}
	defer session.Close()

	fmt.Printf("Playing C major triad on %s\n", session.Name())
	triad := []uint8{60, 64, 67}
	for _, p := range triad {
		if err := session.NoteOn(p, 100); err != nil {
			fmt.Printf("  note on %d: %v\n", p, err)
		}
	}
	time.Sleep(time.Second)
	for _, p := range triad {
		session.NoteOff(p)
	}
	fmt.Println("Done")
}
