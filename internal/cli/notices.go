package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	cartapp "github.com/marketplace/storefront/internal/application/cart"
)

// NoticesOptions holds flags for the notices command.
type NoticesOptions struct {
	*RootOptions
	ErrorsOnly bool
	Clear      bool
}

// NewNoticesCommand creates the notices command.
func NewNoticesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NoticesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "notices",
		Short: "Show recent cart notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, out *OutputFormatter) error {
				return runNotices(ctx, app, out, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.ErrorsOnly, "errors", false, "only show failures")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "clear notices after showing them")

	return cmd
}

func runNotices(ctx context.Context, app *App, out *OutputFormatter, opts *NoticesOptions) error {
	notices := app.Notices.Notices()
	if opts.ErrorsOnly {
		notices = app.Notices.Errors()
	}
	if notices == nil {
		notices = []cartapp.Notice{}
	}

	err := out.Success(notices, func(w io.Writer) {
		if len(notices) == 0 {
			fmt.Fprintln(w, "No notices")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, n := range notices {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", n.At.Local().Format("2006-01-02 15:04:05"), n.Level, n.Message)
		}
		_ = tw.Flush()
	})
	if err != nil {
		return err
	}
	if opts.Clear {
		app.Notices.Clear(ctx)
	}
	return nil
}
