package pipeline

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"github.com/hazlamahedich/shop-sub004/models"
	"github.com/hazlamahedich/shop-sub004/services"
)

// MentionConfidenceThreshold filters weak detector hits
const MentionConfidenceThreshold = 0.7

// MaxMentionedProducts caps how many cards a single reply can carry
const MaxMentionedProducts = 3

// candidateRe picks out capitalized multi-word runs and quoted phrases,
// the shapes product names usually take inside an LLM reply
var candidateRe = regexp.MustCompile(`"[^"]{3,60}"|\*[^*]{3,60}\*|(?:[A-Z][a-zA-Z0-9'-]+(?:\s+[A-Z0-9][a-zA-Z0-9'-]*){1,5})`)

// mentionDenylist drops capitalized runs that are sentence furniture, not
// product names
var mentionDenylist = map[string]bool{
	"i": true, "the": true, "our": true, "your": true, "thanks": true,
	"hello": true, "hi": true, "monday": true, "tuesday": true,
	"wednesday": true, "thursday": true, "friday": true, "saturday": true,
	"sunday": true, "january": true, "february": true, "march": true,
	"april": true, "may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
}

// shoppingKeywords admit a message to the mention pass; without buying
// intent a reply never needs product cards
var shoppingKeywords = []string{
	"buy", "purchase", "price", "cost", "how much", "recommend",
	"suggest", "looking for", "do you have", "in stock", "available",
	"cheaper", "cheapest", "best", "popular", "gift", "sell",
}

// informationalKeywords mark questions about the store itself, which
// the mention pass must never fire on
var informationalKeywords = []string{
	"hours", "open", "close", "closing", "location", "address",
	"where is", "where are you", "directions", "policy", "contact",
	"phone number",
}

// ShouldDetectMentions gates the product-mention pass on the user's
// message: informational questions never qualify, and without a
// shopping-intent keyword the second LLM call is skipped
func ShouldDetectMentions(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range informationalKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, kw := range shoppingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MentionDetector finds product names inside a generated reply so the
// transport can attach real product cards. Cheap heuristics narrow the
// candidates; an LLM pass confirms which are actual products.
type MentionDetector struct {
	provider services.AIProvider
	catalog  *services.CatalogService
}

// NewMentionDetector creates the detector
func NewMentionDetector(provider services.AIProvider, catalog *services.CatalogService) *MentionDetector {
	return &MentionDetector{provider: provider, catalog: catalog}
}

// ExtractCandidates runs the heuristic pass over a reply
func ExtractCandidates(reply string) []string {
	raw := candidateRe.FindAllString(reply, -1)

	seen := make(map[string]bool)
	candidates := make([]string, 0, len(raw))
	for _, c := range raw {
		name := strings.Trim(c, `"*`)
		name = strings.TrimSpace(name)
		if len(name) < 3 {
			continue
		}
		key := strings.ToLower(name)
		if mentionDenylist[key] || seen[key] {
			continue
		}
		if firstWordDenied(key) {
			continue
		}
		seen[key] = true
		candidates = append(candidates, name)
	}
	return candidates
}

func firstWordDenied(lower string) bool {
	first := lower
	if i := strings.IndexByte(lower, ' '); i > 0 {
		first = lower[:i]
	}
	return mentionDenylist[first]
}

// mentionPayload is the structured output of the confirmation pass
type mentionPayload struct {
	Products []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"products"`
}

// DetectProducts resolves product mentions in a reply to actual catalog
// rows. Failures degrade to no attachments; a reply without cards is
// always acceptable.
func (d *MentionDetector) DetectProducts(ctx context.Context, merchantID, reply string) []models.Product {
	candidates := ExtractCandidates(reply)
	if len(candidates) == 0 {
		return nil
	}

	confirmed := d.confirmCandidates(ctx, reply, candidates)
	if len(confirmed) == 0 {
		return nil
	}

	products, err := d.catalog.ProductsByTitle(merchantID, confirmed, MaxMentionedProducts)
	if err != nil {
		log.Printf("⚠️  [Mentions] Catalog resolution failed: %v", err)
		return nil
	}
	if len(products) > MaxMentionedProducts {
		products = products[:MaxMentionedProducts]
	}
	return products
}

// confirmCandidates asks the LLM which candidates are real product names
func (d *MentionDetector) confirmCandidates(ctx context.Context, reply string, candidates []string) []string {
	systemPrompt := "You identify product names inside an assistant's reply. " +
		"Given the reply and a list of candidate phrases, return only phrases that name a purchasable product. " +
		`Respond with JSON: {"products": [{"name": "...", "confidence": 0.0-1.0}]}`

	var b strings.Builder
	b.WriteString("Reply:\n")
	b.WriteString(reply)
	b.WriteString("\n\nCandidates:\n")
	for _, c := range candidates {
		b.WriteString("- " + c + "\n")
	}

	text, _, _, err := d.provider.AskLLM(ctx, systemPrompt, b.String())
	if err != nil {
		log.Printf("⚠️  [Mentions] Confirmation pass failed: %v", err)
		return nil
	}

	payload := strings.TrimSpace(text)
	if m := regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```").FindStringSubmatch(payload); m != nil {
		payload = m[1]
	}

	var decoded mentionPayload
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		log.Printf("⚠️  [Mentions] Undecodable confirmation output: %v", err)
		return nil
	}

	names := make([]string, 0, len(decoded.Products))
	for _, p := range decoded.Products {
		if p.Confidence >= MentionConfidenceThreshold && p.Name != "" {
			names = append(names, p.Name)
		}
		if len(names) == MaxMentionedProducts {
			break
		}
	}
	return names
}
