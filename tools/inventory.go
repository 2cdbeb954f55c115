package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"shopmesh/contract"
)

// NewInventoryInfoTool reports stock level and status for a product.
func NewInventoryInfoTool(inventory contract.InventoryStore) Tool {
	return Tool{
		Name:        "get_inventory_info",
		Description: "Check stock level and availability status by product name.",
		Run: func(ctx context.Context, args map[string]string) Result {
			name := strings.TrimSpace(args["product_name"])

			rec, err := inventory.InventoryByProduct(ctx, name)
			switch {
			case errors.Is(err, contract.ErrNotFound):
				return Result{Text: fmt.Sprintf("No inventory information found for '%s'.", name)}
			case err != nil:
				log.Error().Err(err).Str("product", name).Msg("inventory lookup failed")
				return Result{Text: dbErrorText}
			}

			return Result{Text: fmt.Sprintf(
				"%s is %s with %d units available.",
				name, rec.Status, rec.Quantity,
			)}
		},
	}
}
