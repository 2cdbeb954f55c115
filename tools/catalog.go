package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"shopmesh/contract"
)

// NewProductInfoTool looks up a product in the vendor catalog and renders
// its name, description, and price.
func NewProductInfoTool(catalog contract.CatalogStore) Tool {
	return Tool{
		Name:        "get_product_info",
		Description: "Look up product details (name, description, price) by product name.",
		Run: func(ctx context.Context, args map[string]string) Result {
			name := strings.TrimSpace(args["product_name"])

			rec, err := catalog.ProductByName(ctx, name)
			switch {
			case errors.Is(err, contract.ErrNotFound):
				return Result{Text: fmt.Sprintf("No product found for '%s'.", name)}
			case err != nil:
				log.Error().Err(err).Str("product", name).Msg("product lookup failed")
				return Result{Text: dbErrorText}
			}

			return Result{Text: fmt.Sprintf(
				"Product: %s\nDescription: %s\nPrice: $%.2f",
				rec.Name, rec.Description, float64(rec.PriceCents)/100,
			)}
		},
	}
}
