package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"shopmesh/contract"
	payx "shopmesh/payment"
)

const (
	gatewayUnavailableText = "Payment service is temporarily unavailable."
	gatewayErrorText       = "Payment service error occurred. Please try again later."
	missingSecretKeyText   = "ERROR: Stripe secret key is not configured."
	invalidPaymentText     = "Invalid payment request. A positive amount and currency are required."

	createFallbackText = "Sorry, I couldn't process your payment request right now. " +
		"The payment system is temporarily unavailable. Please try again later."
	statusFallbackText = "Sorry, I couldn't retrieve the payment status right now. " +
		"The payment system is temporarily unavailable. Please try again later."
)

// NewCreatePaymentTool opens a payment intent at the gateway and then
// mirrors it into the local store. The write-back is advisory: its failure
// is logged and carried on Result.Advisory, never reported to the user.
func NewCreatePaymentTool(gateway contract.PaymentGateway, payments contract.PaymentStore) Tool {
	return Tool{
		Name:        "create_payment_intent",
		Description: "Create a payment intent for an amount in major units (e.g. 9.99) and a currency code.",
		Run: func(ctx context.Context, args map[string]string) Result {
			amount, err := strconv.ParseFloat(strings.TrimSpace(args["amount"]), 64)
			currency := strings.TrimSpace(args["currency"])
			email := strings.TrimSpace(args["customer_email"])
			if err != nil || amount <= 0 || currency == "" {
				return Result{Text: invalidPaymentText}
			}
			amountCents := int64(math.Round(amount * 100))

			intent, err := gateway.CreateIntent(ctx, contract.CreateIntentInput{
				AmountCents:   amountCents,
				Currency:      currency,
				CustomerEmail: email,
			})
			if err != nil {
				return Result{Text: createErrorText(err)}
			}

			advisory := writeBack(ctx, payments, intent)

			return Result{
				Text: fmt.Sprintf(
					"Created payment intent.\nID: %s\nStatus: %s\nAmount: %.2f %s\nClient secret (for frontend): %s",
					intent.ID, intent.Status, amount, strings.ToUpper(currency), intent.ClientSecret,
				),
				Advisory: advisory,
			}
		},
	}
}

// NewPaymentStatusTool looks up the current state of a payment intent at the
// gateway and syncs it into the local store, again advisorily.
func NewPaymentStatusTool(gateway contract.PaymentGateway, payments contract.PaymentStore) Tool {
	return Tool{
		Name:        "get_payment_status",
		Description: "Look up the current status of an existing payment intent by id.",
		Run: func(ctx context.Context, args map[string]string) Result {
			intentID := strings.TrimSpace(args["payment_intent_id"])
			if intentID == "" {
				return Result{Text: "Payment intent id is required."}
			}

			intent, err := gateway.IntentByID(ctx, intentID)
			if err != nil {
				return Result{Text: statusErrorText(err)}
			}

			advisory := writeBack(ctx, payments, intent)

			return Result{
				Text: fmt.Sprintf(
					"Payment intent %s has status '%s'. Amount: %.2f %s.",
					intent.ID, intent.Status, float64(intent.AmountCents)/100, strings.ToUpper(intent.Currency),
				),
				Advisory: advisory,
			}
		},
	}
}

// writeBack mirrors a gateway intent into the payments table. Failures are
// logged and returned for observability but must never fail the operation.
func writeBack(ctx context.Context, payments contract.PaymentStore, intent *contract.PaymentIntent) error {
	if payments == nil {
		return nil
	}
	err := payments.UpsertPayment(ctx, &contract.PaymentRecord{
		IntentID:      intent.ID,
		AmountCents:   intent.AmountCents,
		Currency:      strings.ToLower(intent.Currency),
		CustomerEmail: intent.CustomerEmail,
		Status:        intent.Status,
	})
	if err != nil {
		log.Error().Err(err).Str("intent_id", intent.ID).Msg("payment write-back failed")
	}
	return err
}

func createErrorText(err error) string {
	var apiErr *payx.APIError
	switch {
	case errors.Is(err, contract.ErrConnectivity):
		return gatewayUnavailableText
	case errors.As(err, &apiErr):
		return gatewayErrorText
	case errors.Is(err, contract.ErrValidation):
		return missingSecretKeyText
	default:
		return createFallbackText
	}
}

func statusErrorText(err error) string {
	var apiErr *payx.APIError
	switch {
	case errors.Is(err, contract.ErrConnectivity):
		return gatewayUnavailableText
	case errors.As(err, &apiErr):
		return gatewayErrorText
	case errors.Is(err, contract.ErrValidation):
		return missingSecretKeyText
	default:
		return statusFallbackText
	}
}
