package services

import (
	"testing"

	"github.com/hazlamahedich/shop-sub004/models"

	"github.com/stretchr/testify/assert"
)

func TestFormatForChannel(t *testing.T) {
	in := "**Great choice!** Here are the options:\n* **Budget:** under $50\n* free shipping\n\n\n\nEnjoy!"
	out := FormatForChannel(in)

	assert.Contains(t, out, "*Great choice!*")
	assert.Contains(t, out, "- *Budget:* under $50")
	assert.Contains(t, out, "- free shipping")
	assert.NotContains(t, out, "\n\n\n")
	assert.NotContains(t, out, "**")
}

func TestFormatForChannel_Headings(t *testing.T) {
	out := FormatForChannel("## Shipping Info\nOrders ship in 2 days.")
	assert.Contains(t, out, "*Shipping Info*")
	assert.NotContains(t, out, "##")
}

func TestFormatProductList(t *testing.T) {
	products := []models.Product{
		{Title: "Trail Runner Pro", Price: 89.99, Currency: "USD", ProductURL: "https://shop.test/p/1"},
		{Title: "Cloud Walker 2", Price: 120, Currency: "USD"},
	}

	out := FormatProductList("Here's what I found:", products)
	assert.Contains(t, out, "1. *Trail Runner Pro* - 89.99 USD")
	assert.Contains(t, out, "https://shop.test/p/1")
	assert.Contains(t, out, "2. *Cloud Walker 2* - 120.00 USD")
}

func TestFormatProductCard(t *testing.T) {
	p := models.Product{
		Title: "Trail Runner Pro", Price: 89.99, Currency: "USD",
		Brand: "Swiftfoot", ProductURL: "https://shop.test/p/1",
	}

	out := FormatProductCard(p)
	assert.Contains(t, out, "*Trail Runner Pro*")
	assert.Contains(t, out, "89.99 USD")
	assert.Contains(t, out, "Swiftfoot")
	assert.Contains(t, out, "https://shop.test/p/1")
}

func TestStripMarkdown(t *testing.T) {
	assert.Equal(t, "bold and italic", StripMarkdown("*bold* and _italic_"))
	assert.Equal(t, "code", StripMarkdown("```code```"))
}
