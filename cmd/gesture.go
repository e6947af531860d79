package main

import (
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"github.com/satriahrh/isyarat/internal/playback"
)

type gestureOptions struct {
	noWait bool
}

func newGestureCmd(root *rootOptions) *cobra.Command {
	opts := gestureOptions{}
	cmd := &cobra.Command{
		Use:   "gesture <text>",
		Short: "Print the gesture matching text and play it for its duration",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			match := a.catalog.Match(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Gesture: %s (%s)\n", match.Gesture.Name, match.Kind)
			fmt.Fprintf(out, "Description: %s\n", match.Gesture.Description)
			fmt.Fprintf(out, "Fingers: %v\n", match.Gesture.FingerExtension)
			for i, p := range match.Gesture.PoseKeyframes {
				fmt.Fprintf(out, "Keyframe %d: (%.2f, %.2f, %.2f)\n", i, p.X, p.Y, p.Z)
			}
			if opts.noWait {
				return nil
			}

			animator := playback.NewAnimator(clock.New(), nil)
			done, err := animator.Play(match.Gesture)
			if err != nil {
				return err
			}
			select {
			case <-done:
				fmt.Fprintf(out, "Finished after %dms\n", match.Gesture.DurationMs)
			case <-cmd.Context().Done():
				animator.Cancel()
				return cmd.Context().Err()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.noWait, "no-wait", false, "Print the gesture without waiting for its duration")
	return cmd
}
