package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"shopmesh/contract"
)

// NewShippingEstimateTool quotes standard and express delivery for a product
// to a destination.
func NewShippingEstimateTool(shipping contract.ShippingStore) Tool {
	return Tool{
		Name:        "get_shipping_estimate",
		Description: "Quote standard and express delivery options for a product and destination.",
		Run: func(ctx context.Context, args map[string]string) Result {
			name := strings.TrimSpace(args["product_name"])
			destination := strings.TrimSpace(args["destination"])
			if destination == "" {
				destination = "unspecified"
			}

			rec, err := shipping.EstimateByProduct(ctx, name)
			switch {
			case errors.Is(err, contract.ErrNotFound):
				return Result{Text: fmt.Sprintf("No shipping estimate found for '%s'.", name)}
			case err != nil:
				log.Error().Err(err).Str("product", name).Msg("shipping estimate lookup failed")
				return Result{Text: dbErrorText}
			}

			return Result{Text: fmt.Sprintf(
				"Standard: %s (%s), Express: %s (%s). Destination: %s.",
				rec.StandardDays, rec.StandardCost, rec.ExpressDays, rec.ExpressCost, destination,
			)}
		},
	}
}

// NewTrackingInfoTool reports the last known state of a shipment.
func NewTrackingInfoTool(shipping contract.ShippingStore) Tool {
	return Tool{
		Name:        "get_tracking_info",
		Description: "Look up shipment status, last location, and delivery estimate by tracking number.",
		Run: func(ctx context.Context, args map[string]string) Result {
			number := strings.TrimSpace(args["tracking_number"])

			rec, err := shipping.TrackingByNumber(ctx, number)
			switch {
			case errors.Is(err, contract.ErrNotFound):
				return Result{Text: fmt.Sprintf("No tracking data found for tracking number '%s'.", number)}
			case err != nil:
				log.Error().Err(err).Str("tracking_number", number).Msg("tracking lookup failed")
				return Result{Text: dbErrorText}
			}

			return Result{Text: fmt.Sprintf(
				"Status: %s. Last seen in %s. Estimated delivery: %s.",
				rec.Status, rec.LastLocation, rec.ETA,
			)}
		},
	}
}
