package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marketplace/storefront/internal/domain/cart"
)

// CartListing is the output of the list command
type CartListing struct {
	Source    cart.ItemSource     `json:"source"`
	SyncState cart.SyncState      `json:"sync_state"`
	Items     []cart.CartItemView `json:"items"`
}

// CartChange is the output of cart mutations
type CartChange struct {
	Action   string          `json:"action"`
	Source   cart.ItemSource `json:"source"`
	ItemID   *int64          `json:"item_id,omitempty"`
	Quantity *int            `json:"quantity,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the items in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, runList)
		},
	}
}

func runList(ctx context.Context, app *App, out *OutputFormatter) error {
	items, err := app.Provider.CartItems(ctx)
	if err != nil && len(items) == 0 {
		return out.Fail("failed to list cart", err)
	}

	listing := CartListing{
		Source:    activeSource(app),
		SyncState: app.Provider.SyncState(),
		Items:     items,
	}
	if listing.Items == nil {
		listing.Items = []cart.CartItemView{}
	}
	if werr := out.Success(listing, func(w io.Writer) { writeCart(w, listing) }); werr != nil {
		return werr
	}
	if err != nil {
		// Remote read failed; only pending guest items were shown.
		return out.Fail("remote cart unavailable", err)
	}
	return nil
}

func writeCart(w io.Writer, listing CartListing) {
	if len(listing.Items) == 0 {
		fmt.Fprintf(w, "Cart is empty (%s)\n", listing.Source)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tPRODUCT\tQTY\tPRICE\tTITLE")
	for _, item := range listing.Items {
		title, price := "", ""
		if item.Product != nil {
			title = item.Product.Title
			price = item.Product.Price.StringFixed(2)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%s\n",
			item.ID, item.Source, item.ProductID, item.Quantity, price, title)
	}
	_ = tw.Flush()
	if listing.SyncState == cart.SyncStateSyncing {
		fmt.Fprintln(w, "Sync in progress")
	}
}

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Quantity int
	ColorID  int64
	SizeID   int64
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Example: `  cartctl add 101
  cartctl add 202 --quantity 2 --color 3 --size 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, out *OutputFormatter) error {
				return runAdd(ctx, app, out, opts, productID)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Quantity, "quantity", "q", 1, "quantity to add")
	cmd.Flags().Int64Var(&opts.ColorID, "color", 0, "color variant id")
	cmd.Flags().Int64Var(&opts.SizeID, "size", 0, "size variant id")

	return cmd
}

func runAdd(ctx context.Context, app *App, out *OutputFormatter, opts *AddOptions, productID int64) error {
	item := cart.CartLineItem{
		ProductID: productID,
		Quantity:  opts.Quantity,
		ColorID:   optionalID(opts.ColorID),
		SizeID:    optionalID(opts.SizeID),
	}
	if err := app.Provider.AddToCart(ctx, item); err != nil {
		return out.Fail("failed to add item", err)
	}

	change := CartChange{Action: "add", Source: activeSource(app), Quantity: &opts.Quantity}
	return out.Success(change, func(w io.Writer) {
		fmt.Fprintf(w, "Added %d x product %d to the %s cart\n", opts.Quantity, productID, change.Source)
	})
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var pending bool
	cmd := &cobra.Command{
		Use:   "update <item-id> <quantity>",
		Short: "Change the quantity of a cart item",
		Long: `Change the quantity of a cart item.

The item id is the ID column of "cartctl list". A quantity of zero or
less removes the item. Use --pending for rows listed with the guest
source while signed in.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid quantity %q", args[1]))
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, out *OutputFormatter) error {
				return runUpdate(ctx, app, out, id, quantity, pending)
			})
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "target a local item still waiting to sync")
	return cmd
}

func runUpdate(ctx context.Context, app *App, out *OutputFormatter, id int64, quantity int, pending bool) error {
	if quantity <= 0 {
		return runRemove(ctx, app, out, id, pending)
	}
	source := activeSource(app)
	var err error
	if pending {
		source = cart.SourceGuest
		err = app.Provider.UpdatePendingItemQuantity(ctx, id, quantity)
	} else {
		err = app.Provider.UpdateCartItemQuantity(ctx, id, quantity)
	}
	if err != nil {
		return out.Fail("failed to update item", err)
	}

	change := CartChange{Action: "update", Source: source, ItemID: &id, Quantity: &quantity}
	return out.Success(change, func(w io.Writer) {
		fmt.Fprintf(w, "Item %d quantity set to %d\n", id, quantity)
	})
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	var pending bool
	cmd := &cobra.Command{
		Use:     "remove <item-id>",
		Aliases: []string{"rm"},
		Short:   "Remove an item from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, out *OutputFormatter) error {
				return runRemove(ctx, app, out, id, pending)
			})
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "target a local item still waiting to sync")
	return cmd
}

func runRemove(ctx context.Context, app *App, out *OutputFormatter, id int64, pending bool) error {
	source := activeSource(app)
	var err error
	if pending {
		source = cart.SourceGuest
		err = app.Provider.DeletePendingItem(ctx, id)
	} else {
		err = app.Provider.DeleteCartItem(ctx, id)
	}
	if err != nil {
		return out.Fail("failed to remove item", err)
	}

	change := CartChange{Action: "remove", Source: source, ItemID: &id}
	return out.Success(change, func(w io.Writer) {
		fmt.Fprintf(w, "Removed item %d\n", id)
	})
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every item from the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, runClear)
		},
	}
}

func runClear(ctx context.Context, app *App, out *OutputFormatter) error {
	if err := app.Provider.ClearCart(ctx); err != nil {
		return out.Fail("failed to clear cart", err)
	}

	change := CartChange{Action: "clear", Source: activeSource(app)}
	return out.Success(change, func(w io.Writer) {
		fmt.Fprintf(w, "Cleared the %s cart\n", change.Source)
	})
}

// SyncResult is the output of the sync command
type SyncResult struct {
	SyncState cart.SyncState `json:"sync_state"`
	Pending   int            `json:"pending"`
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Merge local cart items into the signed in cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, runSync)
		},
	}
}

func runSync(ctx context.Context, app *App, out *OutputFormatter) error {
	if !app.Session.IsAuthenticated() {
		return out.Fail("nothing to sync", cart.ErrMissingToken)
	}
	if err := app.Provider.Sync(ctx); err != nil {
		return out.Fail("sync failed", err)
	}

	result := SyncResult{SyncState: app.Provider.SyncState(), Pending: app.Store.Len()}
	return out.Success(result, func(w io.Writer) {
		if result.SyncState == cart.SyncStateDone {
			fmt.Fprintln(w, "Local cart merged into your account")
			return
		}
		fmt.Fprintln(w, "Nothing to sync")
	})
}

func activeSource(app *App) cart.ItemSource {
	if app.Session.IsAuthenticated() {
		return cart.SourceRemote
	}
	return cart.SourceGuest
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s %q", what, raw))
	}
	return id, nil
}

// parseItemID accepts zero, the first guest position
func parseItemID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid item id %q", raw))
	}
	return id, nil
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}
