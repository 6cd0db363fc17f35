package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// setupLog configures logging: to a file when UTTER_LOGFILE is set, to
// stderr otherwise. The returned closer flushes the log file, if any.
func setupLog() (func() error, error) {
	if logFile := os.Getenv("UTTER_LOGFILE"); logFile != "" {
		f, err := tea.LogToFile(logFile, "utter")
		if err != nil {
			return nil, err
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		return f.Close, nil
	}

	log.SetOutput(os.Stderr)
	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.ErrorLevel)
	}
	return func() error { return nil }, nil
}
