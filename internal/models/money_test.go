package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type moneyDoc struct {
	Value Money `bson:"value"`
}

func decodeMoney(t *testing.T, raw bson.M) Money {
	t.Helper()
	data, err := bson.Marshal(raw)
	if err != nil {
		t.Fatalf("bson marshal failed: %v", err)
	}
	var doc moneyDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		t.Fatalf("bson unmarshal failed: %v", err)
	}
	return doc.Value
}

func mustMoney(t *testing.T, value string) Money {
	t.Helper()
	m, err := MoneyFromString(value)
	if err != nil {
		t.Fatalf("bad money literal %q: %v", value, err)
	}
	return m
}

func TestMoneyDecodesLegacyDouble(t *testing.T) {
	got := decodeMoney(t, bson.M{"value": 99.9})
	if !got.Equal(mustMoney(t, "99.9")) {
		t.Fatalf("expected 99.9, got %v", got)
	}
}

func TestMoneyDecodesLegacyIntegers(t *testing.T) {
	if got := decodeMoney(t, bson.M{"value": int32(5)}); !got.Equal(mustMoney(t, "5")) {
		t.Fatalf("expected 5 from int32, got %v", got)
	}
	if got := decodeMoney(t, bson.M{"value": int64(1250)}); !got.Equal(mustMoney(t, "1250")) {
		t.Fatalf("expected 1250 from int64, got %v", got)
	}
}

func TestMoneyDecodesLegacyString(t *testing.T) {
	got := decodeMoney(t, bson.M{"value": " 12.50 "})
	if !got.Equal(mustMoney(t, "12.5")) {
		t.Fatalf("expected 12.5, got %v", got)
	}
}

func TestMoneyDecodesNullAsZero(t *testing.T) {
	got := decodeMoney(t, bson.M{"value": nil})
	if got.Sign() != 0 {
		t.Fatalf("expected zero, got %v", got)
	}
}

func TestMoneyRoundTripsAsDecimal128(t *testing.T) {
	original := mustMoney(t, "19.99")
	data, err := bson.Marshal(moneyDoc{Value: original})
	if err != nil {
		t.Fatalf("bson marshal failed: %v", err)
	}

	var raw bson.M
	if err := bson.Unmarshal(data, &raw); err != nil {
		t.Fatalf("bson unmarshal failed: %v", err)
	}
	if _, ok := raw["value"].(primitive.Decimal128); !ok {
		t.Fatalf("expected Decimal128 storage, got %T", raw["value"])
	}

	var doc moneyDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		t.Fatalf("bson unmarshal failed: %v", err)
	}
	if !doc.Value.Equal(original) {
		t.Fatalf("round trip changed value: %v != %v", doc.Value, original)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	unit := mustMoney(t, "19.99")
	if got := unit.MulInt(3); !got.Equal(mustMoney(t, "59.97")) {
		t.Fatalf("expected 59.97, got %v", got)
	}
	if got := unit.Add(mustMoney(t, "0.01")); !got.Equal(mustMoney(t, "20")) {
		t.Fatalf("expected 20, got %v", got)
	}
}
