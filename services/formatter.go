package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hazlamahedich/shop-sub004/models"
)

// FormatForChannel converts markdown-style formatting from the LLM into
// the chat channel's conventions:
// - *bold* (single asterisk on each side)
// - _italic_
// - ~strikethrough~
// - plain "- " bullets
func FormatForChannel(text string) string {
	// markdown bold (**text**) to channel bold (*text*)
	reBold := regexp.MustCompile(`\*\*([^*]+?)\*\*`)
	text = reBold.ReplaceAllString(text, "*$1*")

	// markdown list items with a bold prefix
	reListBold := regexp.MustCompile(`(?m)^\*\s+\*([^*]+?)\*\s*(.*)$`)
	text = reListBold.ReplaceAllString(text, "- *$1* $2")

	// remaining markdown list items (* item) to "- item"
	reList := regexp.MustCompile(`(?m)^\*\s+`)
	text = reList.ReplaceAllString(text, "- ")

	// markdown headings become bold lines
	reHeading := regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	text = reHeading.ReplaceAllString(text, "*$1*")

	// collapse runs of blank lines (max 2 newlines)
	reMultiNewline := regexp.MustCompile(`\n{3,}`)
	text = reMultiNewline.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// FormatProductCard renders a single product as a chat-friendly block
func FormatProductCard(p models.Product) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("*%s*\n", p.Title))
	b.WriteString(fmt.Sprintf("%.2f %s", p.Price, p.Currency))
	if p.Brand != "" {
		b.WriteString(" · " + p.Brand)
	}
	if p.ProductURL != "" {
		b.WriteString("\n" + p.ProductURL)
	}
	return b.String()
}

// FormatProductList renders search results as a numbered list with a
// lead-in line
func FormatProductList(lead string, products []models.Product) string {
	if len(products) == 0 {
		return lead
	}

	var b strings.Builder
	if lead != "" {
		b.WriteString(lead)
		b.WriteString("\n\n")
	}
	for i, p := range products {
		b.WriteString(fmt.Sprintf("%d. *%s* - %.2f %s", i+1, p.Title, p.Price, p.Currency))
		if p.ProductURL != "" {
			b.WriteString("\n   " + p.ProductURL)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// StripMarkdown removes all markdown formatting, used for alert email
// previews
func StripMarkdown(text string) string {
	text = regexp.MustCompile(`\*+`).ReplaceAllString(text, "")
	text = regexp.MustCompile(`_+`).ReplaceAllString(text, "")
	text = regexp.MustCompile(`~+`).ReplaceAllString(text, "")
	text = regexp.MustCompile("`+").ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}
