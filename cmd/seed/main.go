package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/subsbazaar/storefront/internal/catalog"
	"github.com/subsbazaar/storefront/internal/config"
	"github.com/subsbazaar/storefront/internal/postgres"
)

// Seeds the launch catalog. Wipes existing orders and products first, so
// never point this at a live database.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, cfg.PostgresDSN); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if _, err := db.Exec(ctx, `DELETE FROM orders`); err != nil {
		log.Fatalf("clear orders: %v", err)
	}
	if _, err := db.Exec(ctx, `DELETE FROM products`); err != nil {
		log.Fatalf("clear products: %v", err)
	}

	repo := &catalog.Repo{DB: db}
	discountEnd := time.Now().AddDate(0, 0, 7)
	for _, p := range launchCatalog(discountEnd) {
		created, err := repo.Create(ctx, p)
		if err != nil {
			log.Fatalf("seed product %q: %v", p.Name, err)
		}
		log.Printf("created product: %s (%s)", created.Name, created.ID)
	}
	log.Println("seeding completed")
}

func launchCatalog(discountEnd time.Time) []catalog.Product {
	return []catalog.Product{
		{
			Name:        "ChatGPT Pro",
			Description: "Advanced AI assistant with GPT-4 access, faster responses, and priority support",
			Features: []string{
				"GPT-4 Access",
				"Faster Response Times",
				"Priority Support",
				"DALL-E Image Generation",
				"Advanced Data Analysis",
			},
			Price:           299,
			OriginalPrice:   f64(399),
			Duration:        str("1 month"),
			Category:        []string{"AI Assistant"},
			Status:          catalog.StatusActive,
			Image:           str("chatgpt"),
			IsFeatured:      true,
			DiscountEndTime: &discountEnd,
		},
		{
			Name:        "Gemini Pro + Google Drive 2TB",
			Description: "Google's most capable AI with 2TB cloud storage included",
			Features: []string{
				"Gemini Advanced AI",
				"2TB Google Drive Storage",
				"Gmail Integration",
				"Google Workspace Features",
				"1 Year Subscription",
			},
			Price:           499,
			OriginalPrice:   f64(799),
			Duration:        str("1 year"),
			Category:        []string{"AI Assistant"},
			Status:          catalog.StatusActive,
			Image:           str("gemini"),
			DiscountEndTime: &discountEnd,
		},
		{
			Name:        "Perplexity Pro",
			Description: "AI-powered search engine with unlimited queries and advanced features",
			Features: []string{
				"Unlimited Pro Searches",
				"Advanced AI Models",
				"Real-time Information",
				"File Upload & Analysis",
				"12 Months Access",
			},
			Price:           499,
			OriginalPrice:   f64(799),
			Duration:        str("12 months"),
			Category:        []string{"AI Search"},
			Status:          catalog.StatusActive,
			Image:           str("perplexity"),
			DiscountEndTime: &discountEnd,
		},
		{
			Name:        "ChatGPT GOTO",
			Description: "Extended ChatGPT access with premium features for a full year",
			Features: []string{
				"GPT-4 Access",
				"Unlimited Messages",
				"Priority Access",
				"Custom Instructions",
				"1 Year Subscription",
			},
			Price:           349,
			OriginalPrice:   f64(499),
			Duration:        str("1 year"),
			Category:        []string{"AI Assistant"},
			Status:          catalog.StatusActive,
			Image:           str("chatgpt-goto"),
			DiscountEndTime: &discountEnd,
		},
		{
			Name:        "Claude Pro",
			Description: "Anthropic's advanced AI assistant - Coming Soon",
			Features: []string{
				"Claude 3 Opus Access",
				"Extended Context Window",
				"Priority Access",
				"Advanced Reasoning",
				"Document Analysis",
			},
			Price:    0,
			Category: []string{"AI Assistant"},
			Status:   catalog.StatusComingSoon,
			Image:    str("claude"),
		},
		{
			Name:        "Midjourney Pro",
			Description: "Professional AI image generation - Coming Soon",
			Features: []string{
				"Unlimited Generations",
				"Fast Mode Access",
				"Commercial License",
				"Stealth Mode",
				"Maximum Resolution",
			},
			Price:    0,
			Category: []string{"AI Image"},
			Status:   catalog.StatusComingSoon,
			Image:    str("midjourney"),
		},
	}
}

func str(s string) *string   { return &s }
func f64(f float64) *float64 { return &f }
