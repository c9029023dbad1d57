package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-smf/config"
	"go-smf/debug"
	"go-smf/midi"
	"go-smf/theme"
	"go-smf/tui"
)

func main() {
	debugFlag := flag.Bool("debug", false, "write a debug log")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Println("usage: go-smf [-debug] file.mid")
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *debugFlag); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, debugOn bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if debugOn || cfg.Debug.Enabled {
		if err := debug.Enable(cfg.Debug.LogPath); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}

	th, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}

	enc, err := midi.LookupCharset(cfg.Text.Charset)
	if err != nil {
		return err
	}

	header, messages, err := midi.DecodeFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	m := tui.NewModel(path, header, messages, th, cfg.UI.PageSize)
	m.Text = enc.NewDecoder()
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err = p.Run()
	return err
}
