package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/transform"

	"go-smf/config"
	"go-smf/debug"
	"go-smf/midi"
	"go-smf/theme"
	"go-smf/tui"
	"go-smf/widgets"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fail(err)
	}
}

// run executes one command. The debug log is closed before it returns.
func run(args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Debug.Enabled || os.Getenv("SMF_DEBUG") != "" {
		if err := debug.Enable(cfg.Debug.LogPath); err != nil {
			return err
		}
		defer debug.Disable()
	}

	cmd, args := args[0], args[1:]
	debug.Log("smftool", "%s %v", cmd, args)
	switch cmd {
	case "dump":
		return withFile(args, func(path string) error { return dump(os.Stdout, path, cfg) })
	case "tracks":
		return withFile(args, func(path string) error { return tracks(os.Stdout, path) })
	case "example":
		return withFile(args, func(path string) error { return writeExample(path, cfg) })
	case "rewrite":
		return rewrite(args, cfg)
	case "config":
		return showConfig(os.Stdout, cfg)
	}
	usage()
	return nil
}

func usage() {
	fmt.Println("Standard MIDI File tool")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  dump <file>       - List header and every event")
	fmt.Println("  tracks <file>     - Event counts per track")
	fmt.Println("  example <file>    - Write a two track sample file (102 bpm)")
	fmt.Println("  rewrite [-running-status] [-timebase N] <in> <out>")
	fmt.Println("                    - Decode and encode again")
	fmt.Println("  config            - Show config path and values")
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func withFile(args []string, fn func(path string) error) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one file argument, got %d", len(args))
	}
	return fn(args[0])
}

func dump(w io.Writer, path string, cfg *config.Config) error {
	th, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return err
	}
	enc, err := midi.LookupCharset(cfg.Text.Charset)
	if err != nil {
		return err
	}
	header, messages, err := midi.DecodeFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return render(w, th, enc.NewDecoder(), header, messages)
}

func render(w io.Writer, th *theme.Theme, dec transform.Transformer, header midi.Header, messages []midi.Message) error {
	headerStyle := th.HeaderStyle()
	dimStyle := th.DimStyle()

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("SMF format: %d, tracks: %d, time base: %d",
		header.Format, header.Tracks, header.TimeBase)))

	track := 0
	fmt.Fprintln(w, headerStyle.Render("=== Track 1 ==="))
	for _, r := range tui.Rows(messages) {
		if _, ok := r.Msg.(midi.TrackChange); ok {
			track++
			fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("=== Track %d ===", track+1)))
			continue
		}
		tick := dimStyle.Render(fmt.Sprintf("delta time: %6d", r.Msg.Delta()))
		fmt.Fprintln(w, tick+"  "+th.MessageStyle(r.Msg).Render(tui.Summary(r.Msg, dec)))
	}
	return nil
}

type trackStats struct {
	meta, voice, sysex int
	ticks              uint64
	endOfTrack         bool
}

func tracks(w io.Writer, path string) error {
	var c midi.Collector
	if err := midi.ReadFile(&c, path); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	th := theme.New(nil)
	var lines []string
	for i, track := range c.Tracks() {
		var s trackStats
		for _, r := range tui.Rows(track) {
			s.ticks = r.Tick
			switch m := r.Msg.(type) {
			case midi.MetaEvent:
				s.meta++
				s.endOfTrack = m.Kind == midi.MetaEndOfTrack
			case midi.MidiEvent:
				s.voice++
				s.endOfTrack = false
			case midi.SysExEvent:
				s.sysex++
				s.endOfTrack = false
			}
		}
		eot := "ok"
		if !s.endOfTrack {
			eot = "missing end of track"
		}
		line := fmt.Sprintf("track %d: %d voice, %d meta, %d sysex, %d ticks, %s",
			i+1, s.voice, s.meta, s.sysex, s.ticks, eot)
		lines = append(lines, line, "  "+widgets.RenderActivity(th, track, 32))
	}
	fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
	return nil
}

// exampleMessages is a conductor track with the tempo and a second track
// with two notes.
func exampleMessages() []midi.Message {
	return []midi.Message{
		midi.NewTempo(0, 102),
		midi.EndOfTrack(0),
		midi.TrackChange{},
		midi.MidiEvent{DeltaTime: 0, Event: midi.NoteOn{Channel: 0, Note: 0x3c, Velocity: 0x7f}},
		midi.MidiEvent{DeltaTime: 192, Event: midi.NoteOn{Channel: 0, Note: 0x40, Velocity: 0}},
		midi.EndOfTrack(0),
	}
}

func writeExample(path string, cfg *config.Config) error {
	w := midi.NewWriter()
	w.SetFormat(cfg.Writer.Format)
	w.SetTimeBase(cfg.Writer.TimeBase)
	w.SetRunningStatus(true)
	w.PushAll(exampleMessages()...)
	return w.WriteFile(path)
}

func rewrite(args []string, cfg *config.Config) error {
	fs := flag.NewFlagSet("rewrite", flag.ContinueOnError)
	running := fs.Bool("running-status", cfg.Writer.RunningStatus, "elide repeated status bytes")
	timeBase := fs.Uint("timebase", 0, "ticks per quarter note (default: keep the input's)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("rewrite needs <in> <out>")
	}
	in, out := fs.Arg(0), fs.Arg(1)

	header, messages, err := midi.DecodeFile(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}

	w := midi.NewWriter()
	w.SetFormat(header.Format)
	w.SetTimeBase(header.TimeBase)
	if *timeBase != 0 {
		w.SetTimeBase(uint16(*timeBase))
	}
	w.SetRunningStatus(*running)
	w.PushAll(messages...)
	if err := w.WriteFile(out); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}

func showConfig(w io.Writer, cfg *config.Config) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(w, "wrote defaults to %s\n", path)
	}
	fmt.Fprintf(w, "config: %s\n", path)
	fmt.Fprintf(w, "writer: format=%d timebase=%d running-status=%v\n",
		cfg.Writer.Format, cfg.Writer.TimeBase, cfg.Writer.RunningStatus)
	fmt.Fprintf(w, "text charset: %s\n", orDefault(cfg.Text.Charset, "(raw)"))
	fmt.Fprintf(w, "palette: %s\n", orDefault(cfg.UI.Palette, "(built-in)"))
	return nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
