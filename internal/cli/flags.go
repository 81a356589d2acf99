package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// threadFlags override the [thread] config section for one run.
type threadFlags struct {
	maxComments int
	maxDepth    int
	maxChildren int
	delay       time.Duration
}

func (f *threadFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxComments, "max-comments", 0, "top-level comments to render (default from config)")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 0, "deepest reply level rendered; 0 means top-level only (default from config)")
	cmd.Flags().IntVar(&f.maxChildren, "max-children", 0, "replies rendered per comment (default from config)")
	cmd.Flags().DurationVar(&f.delay, "delay", 0, "pause between item fetches (default from config)")
}

// apply copies the flags the user actually set into rt.cfg and validates
// the result.
func (f *threadFlags) apply(cmd *cobra.Command, rt *runtime) error {
	flags := cmd.Flags()
	if flags.Changed("max-comments") {
		rt.cfg.Thread.MaxComments = f.maxComments
	}
	if flags.Changed("max-depth") {
		rt.cfg.Thread.MaxDepth = f.maxDepth
	}
	if flags.Changed("max-children") {
		rt.cfg.Thread.MaxChildren = f.maxChildren
	}
	if flags.Changed("delay") {
		rt.cfg.Thread.RequestDelay = f.delay
	}
	return rt.cfg.Validate()
}

// outputFlags control how records are printed.
type outputFlags struct {
	json  bool
	width int
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.json, "json", false, "print JSON instead of the text layout")
	cmd.Flags().IntVar(&f.width, "width", 0, "wrap text and comments to this many columns (0 disables)")
}
