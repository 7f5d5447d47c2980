package handlers

import (
	"encoding/json"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"storefront/internal/models"
)

func money(t *testing.T, value string) models.Money {
	t.Helper()
	m, err := models.MoneyFromString(value)
	if err != nil {
		t.Fatalf("bad money literal %q: %v", value, err)
	}
	return m
}

func TestValidateSaleFieldsMissingSalePrice(t *testing.T) {
	err := validateSaleFields(money(t, "100"), true, models.Money{}, false)
	if err == nil {
		t.Fatal("expected validation error when saleEnabled=true and salePrice is missing")
	}
}

func TestValidateSaleFieldsSalePriceGreaterOrEqualPrice(t *testing.T) {
	tests := []string{"100", "120"}
	for _, salePrice := range tests {
		err := validateSaleFields(money(t, "100"), true, money(t, salePrice), true)
		if err == nil {
			t.Fatalf("expected validation error for salePrice=%v", salePrice)
		}
	}
}

func TestResolveSaleUpdateDisablingSaleClearsSalePrice(t *testing.T) {
	disabled := false
	result, err := resolveSaleUpdate(money(t, "100"), true, money(t, "80"), saleUpdateInput{
		SaleEnabled: &disabled,
	})
	if err != nil {
		t.Fatalf("resolveSaleUpdate returned error: %v", err)
	}
	if result.SaleEnabled {
		t.Fatal("expected saleEnabled=false")
	}
	if !result.SetSalePrice || result.SalePrice.Sign() != 0 {
		t.Fatalf("expected salePrice cleared, got %v", result.SalePrice)
	}
}

func TestNormalizeProductDocumentIncludesSaleFields(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":        "Test",
		"price":       100.0,
		"saleEnabled": true,
		"salePrice":   80.0,
		"stock":       5,
		"category":    []string{"Cat"},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if !product.SaleEnabled || !product.SalePrice.Equal(money(t, "80")) {
		t.Fatalf("expected sale fields to be preserved, got saleEnabled=%v salePrice=%v", product.SaleEnabled, product.SalePrice)
	}
	if !product.IsOnSale {
		t.Fatal("expected IsOnSale to be true")
	}
}

func TestProductJSONAlwaysIncludesSalePrice(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":        "Test",
		"price":       120.0,
		"saleEnabled": true,
		"salePrice":   99.0,
		"stock":       10,
		"category":    []string{"Meyve"},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}

	body, err := json.Marshal(product)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	jsonBody := string(body)
	if !strings.Contains(jsonBody, "\"salePrice\":\"99\"") {
		t.Fatalf("expected salePrice in response json, got %s", jsonBody)
	}
	if !strings.Contains(jsonBody, "\"isOnSale\":true") {
		t.Fatalf("expected isOnSale=true in response json, got %s", jsonBody)
	}
}

func TestEffectiveProductPriceUsesSalePriceWhenOnSale(t *testing.T) {
	if got := effectiveProductPrice(money(t, "100"), true, money(t, "75")); !got.Equal(money(t, "75")) {
		t.Fatalf("expected sale price 75, got %v", got)
	}
	if got := effectiveProductPrice(money(t, "100"), false, money(t, "75")); !got.Equal(money(t, "100")) {
		t.Fatalf("expected regular price 100 when sale disabled, got %v", got)
	}
}
