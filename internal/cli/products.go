package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marketplace/storefront/internal/domain/cart"
)

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the product catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, runProducts)
		},
	}
}

func runProducts(ctx context.Context, app *App, out *OutputFormatter) error {
	products, err := app.Client.ListProducts(ctx)
	if err != nil {
		return out.Fail("failed to list products", err)
	}
	if products == nil {
		products = []cart.ProductSnapshot{}
	}

	return out.Success(products, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPRICE\tTITLE")
		for _, p := range products {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Price.StringFixed(2), p.Title)
		}
		_ = tw.Flush()
	})
}
