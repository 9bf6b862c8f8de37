package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slimeyayush/altair-frontend/internal/catalog"
	"github.com/slimeyayush/altair-frontend/internal/domain"
)

func newProductsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}
	cmd.AddCommand(newProductsListCommand(rt))
	cmd.AddCommand(newProductsShowCommand(rt))
	cmd.AddCommand(newProductsSearchCommand(rt))
	cmd.AddCommand(newProductsCategoryCommand(rt))
	return cmd
}

func newProductsListCommand(rt *runtime) *cobra.Command {
	var flat bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every product, grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			products := a.Catalog.List(cmd.Context())
			if flat {
				return rt.out().Print(products, func(w io.Writer) { renderProducts(w, products) })
			}
			groups := catalog.GroupByCategory(products)
			return rt.out().Print(groups, func(w io.Writer) { renderGroups(w, groups) })
		},
	}
	cmd.Flags().BoolVar(&flat, "flat", false, "do not group by category")
	return cmd
}

type productDetail struct {
	Product *domain.Product  `json:"product"`
	Related []domain.Product `json:"related"`
}

func newProductsShowCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one product and related products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("product", args[0])
			if err != nil {
				return err
			}
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			p, err := a.Catalog.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			d := productDetail{Product: p, Related: a.Catalog.Related(cmd.Context(), p)}
			return rt.out().Print(d, func(w io.Writer) { renderProduct(w, d.Product, d.Related) })
		},
	}
}

func newProductsSearchCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search products by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearchOnce(rt, cmd, strings.Join(args, " "))
		},
	}
}

func newProductsCategoryCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "category <name>",
		Short: "List one category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			products := a.Catalog.ByCategory(cmd.Context(), strings.Join(args, " "))
			return rt.out().Print(products, func(w io.Writer) { renderProducts(w, products) })
		},
	}
}

func runSearchOnce(rt *runtime, cmd *cobra.Command, query string) error {
	a, err := rt.App(cmd)
	if err != nil {
		return err
	}
	products := a.Catalog.Search(cmd.Context(), query)
	return rt.out().Print(products, func(w io.Writer) { renderProducts(w, products) })
}
