package main

import (
	"github.com/marinamsm/GoMarketplace/internal/cart"
	"github.com/marinamsm/GoMarketplace/internal/domain"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), a.store.Snapshot())
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var in domain.ProductInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product, or bump its quantity if it is already in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.store.AddToCart(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}
	cmd.Flags().StringVar(&in.ID, "id", "", "product id")
	cmd.Flags().StringVar(&in.Title, "title", "", "display title")
	cmd.Flags().StringVar(&in.ImageURL, "image-url", "", "image URL")
	cmd.Flags().Float64Var(&in.Price, "price", 0, "unit price")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newIncrementCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "increment PRODUCT_ID",
		Short: "Increase a product's quantity by one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.store.Increment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}
}

func newDecrementCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decrement PRODUCT_ID",
		Short: "Decrease a product's quantity by one, removing it at zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.store.Decrement(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}
}

func newClearDataCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-data",
		Short: "Delete the persisted cart, as clearing the app's data would",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.storage.RemoveItem(cmd.Context(), cart.StorageKey); err != nil {
				return err
			}
			if err := a.store.Reload(cmd.Context()); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a.store.Snapshot())
		},
	}
}
