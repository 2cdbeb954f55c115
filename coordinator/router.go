package coordinator

import (
	"regexp"
	"sort"
	"strings"
)

// Known agent names advertised by the domain services.
const (
	AgentProductCatalog = "product_catalog_agent"
	AgentInventory      = "inventory_agent"
	AgentShipping       = "shipping_agent"
	AgentPayment        = "payment_agent"
)

// Delegation is one planned call to a target agent.
type Delegation struct {
	Agent     string
	Operation string
	Args      map[string]string
}

// Classifier maps a user utterance to an ordered set of delegate calls. An
// empty plan means no delegated domain was mentioned. Implementations must
// be deterministic so routing is testable without a live inference provider.
type Classifier interface {
	Classify(utterance string) []Delegation
}

// KeywordClassifier routes on surface features of the utterance: domain
// keywords select target agents, and small extractors pull out product
// names, tracking numbers, amounts, and destinations. Delegated domains are
// never answered from internal knowledge; any mention of price, stock,
// shipping, or billing produces a delegate call.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the default router.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var (
	quotedPattern      = regexp.MustCompile(`['"]([^'"]+)['"]`)
	trackingPattern    = regexp.MustCompile(`\b[A-Z0-9]{4,}\b`)
	intentIDPattern    = regexp.MustCompile(`\bpi_[A-Za-z0-9_]+\b`)
	amountPattern      = regexp.MustCompile(`\$\s*([0-9]+(?:\.[0-9]{1,2})?)|\b([0-9]+\.[0-9]{1,2})\b`)
	currencyPattern    = regexp.MustCompile(`(?i)\b(usd|eur|gbp|jpy|thb|aud|cad)\b`)
	emailPattern       = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	destinationPattern = regexp.MustCompile(`\bto\s+([A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)*)`)
)

var (
	catalogKeywords   = []string{"price", "spec", "describe", "description", "detail", "tell me about", "product"}
	inventoryKeywords = []string{"stock", "available", "availability", "inventory", "restock"}
	shippingKeywords  = []string{"ship", "deliver", "delivery", "track", "package", "arrive"}
	paymentKeywords   = []string{"pay", "charge", "bill", "refund", "purchase"}
)

// stopwords are leading or function words never part of a product name.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "i": true, "is": true, "it": true,
	"can": true, "could": true, "do": true, "does": true, "how": true,
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"why": true, "will": true, "would": true, "please": true, "my": true,
	"me": true, "you": true, "your": true, "new": true, "hi": true,
	"hello": true, "and": true, "for": true, "of": true, "in": true,
	"on": true, "to": true, "with": true, "about": true, "status": true,
	"lookup": true, "tracking": true, "number": true, "usd": true,
	"eur": true, "gbp": true,
}

// Classify plans delegate calls ranked by where each domain is first
// mentioned in the utterance.
func (c *KeywordClassifier) Classify(utterance string) []Delegation {
	lower := strings.ToLower(utterance)
	destination := extractDestination(utterance)

	productSource := utterance
	if destination != "" {
		productSource = strings.Replace(productSource, "to "+destination, "", 1)
	}
	product := extractProductName(productSource)

	type ranked struct {
		pos int
		d   Delegation
	}
	var plan []ranked

	if pos := firstKeyword(lower, catalogKeywords); pos >= 0 {
		plan = append(plan, ranked{pos, Delegation{
			Agent:     AgentProductCatalog,
			Operation: "get_product_info",
			Args:      map[string]string{"product_name": product},
		}})
	}

	if pos := firstKeyword(lower, inventoryKeywords); pos >= 0 {
		plan = append(plan, ranked{pos, Delegation{
			Agent:     AgentInventory,
			Operation: "get_inventory_info",
			Args:      map[string]string{"product_name": product},
		}})
	}

	if pos := firstKeyword(lower, shippingKeywords); pos >= 0 {
		if number := extractTrackingNumber(utterance); number != "" {
			plan = append(plan, ranked{pos, Delegation{
				Agent:     AgentShipping,
				Operation: "get_tracking_info",
				Args:      map[string]string{"tracking_number": number},
			}})
		} else {
			args := map[string]string{"product_name": product}
			if destination != "" {
				args["destination"] = destination
			}
			plan = append(plan, ranked{pos, Delegation{
				Agent:     AgentShipping,
				Operation: "get_shipping_estimate",
				Args:      args,
			}})
		}
	}

	intentID := intentIDPattern.FindString(utterance)
	if pos := firstKeyword(lower, paymentKeywords); pos >= 0 || intentID != "" {
		if pos < 0 {
			pos = strings.Index(utterance, intentID)
		}
		if intentID != "" {
			plan = append(plan, ranked{pos, Delegation{
				Agent:     AgentPayment,
				Operation: "get_payment_status",
				Args:      map[string]string{"payment_intent_id": intentID},
			}})
		} else {
			args := map[string]string{"currency": "usd"}
			if m := amountPattern.FindStringSubmatch(utterance); m != nil {
				if m[1] != "" {
					args["amount"] = m[1]
				} else {
					args["amount"] = m[2]
				}
			}
			if m := currencyPattern.FindString(utterance); m != "" {
				args["currency"] = strings.ToLower(m)
			}
			if m := emailPattern.FindString(utterance); m != "" {
				args["customer_email"] = m
			}
			plan = append(plan, ranked{pos, Delegation{
				Agent:     AgentPayment,
				Operation: "create_payment_intent",
				Args:      args,
			}})
		}
	}

	sort.SliceStable(plan, func(i, j int) bool { return plan[i].pos < plan[j].pos })

	out := make([]Delegation, 0, len(plan))
	for _, r := range plan {
		out = append(out, r.d)
	}
	return out
}

func firstKeyword(lower string, keywords []string) int {
	first := -1
	for _, kw := range keywords {
		if idx := strings.Index(lower, kw); idx >= 0 && (first < 0 || idx < first) {
			first = idx
		}
	}
	return first
}

// extractProductName prefers a quoted phrase and otherwise takes the longest
// run of capitalized or numeric tokens that are not function words, which
// covers names like "iPhone 15 Pro" and "MacBook Pro 14".
func extractProductName(utterance string) string {
	if m := quotedPattern.FindStringSubmatch(utterance); m != nil {
		return strings.TrimSpace(m[1])
	}

	tokens := strings.Fields(utterance)
	clean := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		clean = append(clean, strings.Trim(tok, ".,?!:;'\""))
	}

	var best []string
	var run []string
	flush := func() {
		if len(run) > len(best) {
			best = run
		}
		run = nil
	}
	for _, tok := range clean {
		if tok != "" && !stopwords[strings.ToLower(tok)] && nameToken(tok) {
			run = append(run, tok)
			continue
		}
		flush()
	}
	flush()

	return strings.Join(best, " ")
}

// nameToken accepts capitalized words, numbers, and internal-cap words like
// "iPhone".
func nameToken(tok string) bool {
	first := rune(tok[0])
	if first >= 'A' && first <= 'Z' || first >= '0' && first <= '9' {
		return true
	}
	return strings.IndexFunc(tok[1:], func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0
}

// extractTrackingNumber looks for an all-caps token of letters and digits
// containing at least one of each, e.g. "1Z999" or "UNKNOWN123".
func extractTrackingNumber(utterance string) string {
	for _, cand := range trackingPattern.FindAllString(utterance, -1) {
		if strings.IndexFunc(cand, func(r rune) bool { return r >= '0' && r <= '9' }) < 0 {
			continue
		}
		if strings.IndexFunc(cand, func(r rune) bool { return r >= 'A' && r <= 'Z' }) < 0 {
			continue
		}
		return cand
	}
	// Short carrier codes like "1Z999" still carry a letter and a digit.
	for _, tok := range strings.Fields(utterance) {
		tok = strings.Trim(tok, ".,?!:;'\"")
		if len(tok) < 4 || len(tok) > 40 {
			continue
		}
		hasDigit := strings.IndexFunc(tok, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
		hasUpper := strings.IndexFunc(tok, func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0
		onlyUpperDigit := strings.IndexFunc(tok, func(r rune) bool {
			return !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
		}) < 0
		if hasDigit && hasUpper && onlyUpperDigit {
			return tok
		}
	}
	return ""
}

func extractDestination(utterance string) string {
	matches := destinationPattern.FindAllStringSubmatch(utterance, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimSpace(matches[len(matches)-1][1])
}
