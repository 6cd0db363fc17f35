package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var forceDownload bool

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the configured offline voice",
	Long: paragraph(
		fmt.Sprintf("\n%s the configured voice model for the offline engine. Pick a different voice with the --voice flag or the config file.", keyword("Download")),
	),
	Args: cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		cfg, err := currentConfig()
		if err != nil {
			return err
		}
		manager, err := buildManager(cfg)
		if err != nil {
			return err
		}

		store := manager.VoiceStore()
		if store.Installed() && !forceDownload {
			fmt.Printf("Voice %s is already installed in %s.\n", keyword(store.Voice()), store.Dir())
			return nil
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		out := termenv.NewOutput(os.Stdout)
		err = manager.FetchVoiceAsset(ctx, func(line string) {
			out.ClearLine()
			fmt.Printf("\r%s", line)
		})
		fmt.Println()
		return err
	},
}

func init() {
	downloadCmd.Flags().BoolVar(&forceDownload, "force", false, "redownload even if the voice is installed")
}
