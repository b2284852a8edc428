//go:build integration

package nac

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestClient_GetProducts_Integration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	client := NewClient(logger)

	today := time.Now().UTC().Format("2006-01-02")
	t.Logf("Making API call to NAC products endpoint for CBAC, date_start=%s...", today)

	products, err := client.GetProducts(context.Background(), "CBAC", today)
	if err != nil {
		t.Fatalf("Failed to get products: %v", err)
	}

	t.Logf("Product count: %d", len(products))
	for i, p := range products {
		if i >= 5 {
			t.Logf("... (%d more)", len(products)-5)
			break
		}
		t.Logf("  [%d] id=%d type=%s danger=%d zone=%s", i, p.Id, p.ProductType, p.DangerRating, p.ZoneName())
	}

	t.Log("✓ GetProducts API call successful, response structure valid")
}
