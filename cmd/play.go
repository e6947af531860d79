package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/internal/playback"
)

type playOptions struct {
	source     string
	cycles     int
	intervalMs int
}

func newPlayCmd(root *rootOptions) *cobra.Command {
	opts := playOptions{}
	cmd := &cobra.Command{
		Use:   "play <text>",
		Short: "Convert text and print its frames as playback ticks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cycles <= 0 {
				return fmt.Errorf("--cycles must be positive")
			}

			a, err := newApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			conversion, err := a.conversion.Convert(cmd.Context(), strings.Join(args, " "), opts.source)
			if err != nil {
				return err
			}

			intervalMs := opts.intervalMs
			if intervalMs <= 0 {
				intervalMs = a.config.PlaybackIntervalMs
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "English: %s\n", conversion.EnglishText)

			// The first frame shows immediately; every tick after that
			// advances one frame until all cycles are shown
			remaining := opts.cycles*len(conversion.Frames) - 1
			finished := make(chan struct{})
			var once sync.Once

			player := playback.NewPlayer(clock.New(), playback.DurationFromMs(intervalMs), func(tick playback.Tick) {
				if remaining <= 0 {
					return
				}
				fmt.Fprintln(out, formatFrame(tick.Index, tick.Frame))
				remaining--
				if remaining == 0 {
					once.Do(func() { close(finished) })
				}
			})
			player.Load(conversion.Frames)

			fmt.Fprintln(out, formatFrame(0, conversion.Frames[0]))
			if remaining == 0 {
				return nil
			}
			player.Start()
			defer player.Stop()

			select {
			case <-finished:
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.source, "source", entities.AutoLanguage, "Source language code")
	cmd.Flags().IntVar(&opts.cycles, "cycles", 1, "Number of times to cycle through the frames")
	cmd.Flags().IntVar(&opts.intervalMs, "interval", 0, "Tick interval in milliseconds (default PLAYBACK_INTERVAL_MS)")
	return cmd
}
