// Command goz is a terminal Z-machine interpreter for story file versions
// 1-5, 7-8 (spec.md §6.4).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oliverhutch/goz/selectstoryui"
	"github.com/oliverhutch/goz/termui"
)

func main() {
	debug := flag.Bool("debug", false, "write verbose interpreter logging to main.log")
	iface := flag.String("interface", "terminal", "renderer to use (only \"terminal\" is implemented)")
	storyDir := flag.String("stories", ".", "directory scanned for story files when no path is given")
	flag.Parse()

	if *iface != "terminal" {
		fmt.Fprintf(os.Stderr, "unknown --interface %q, only \"terminal\" is implemented\n", *iface)
		os.Exit(1)
	}

	logFile, err := os.OpenFile("main.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open main.log: %s\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	flags := log.LstdFlags
	if *debug {
		flags |= log.Lshortfile
	}
	logger := log.New(logFile, "", flags)

	var program *tea.Program
	createApp := func(storyBytes []byte, name string) (tea.Model, error) {
		model, bridge, err := termui.NewGameModel(storyBytes, name, logger)
		if err != nil {
			return nil, err
		}
		bridge.Attach(program)
		return model, nil
	}

	var model tea.Model
	if path := flag.Arg(0); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read %s: %s\n", path, err)
			os.Exit(1)
		}
		logger.Printf("loading story %s", path)
		m, bridge, err := termui.NewGameModel(data, filepath.Base(path), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not load %s: %s\n", path, err)
			os.Exit(1)
		}
		model = m
		program = tea.NewProgram(model)
		bridge.Attach(program)
	} else {
		model = selectstoryui.NewUIModel(createApp, *storyDir)
		program = tea.NewProgram(model)
	}

	finalModel, err := program.Run()
	if err != nil {
		logger.Printf("fatal: %s", err)
		fmt.Fprintf(os.Stderr, "error running goz: %s\n", err)
		os.Exit(1)
	}

	if errReporter, ok := finalModel.(interface{ Err() error }); ok {
		if runtimeErr := errReporter.Err(); runtimeErr != nil {
			logger.Printf("fatal: %s", runtimeErr)
			fmt.Fprintf(os.Stderr, "z-machine error: %s\n", runtimeErr)
			os.Exit(1)
		}
	}
}
