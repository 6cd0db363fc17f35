package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/utter/pkg/tts"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List languages the online engine can speak",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		var b strings.Builder
		for _, l := range tts.Languages() {
			b.WriteString(keyword(runewidth.FillRight(l.Tag, 8)))
			b.WriteString(l.Name)
			b.WriteString("\n")
		}
		fmt.Print(b.String())
	},
}
