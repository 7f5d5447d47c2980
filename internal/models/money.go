package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is a fixed-point amount. Order totals and price snapshots must never
// go through float64, so every monetary field uses this type. New writes are
// stored as Decimal128; legacy documents that kept prices as double, int or
// string still decode.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func MoneyFromString(value string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return Money{}, err
	}
	return Money{Decimal: d}, nil
}

// MulInt returns m multiplied by an integer quantity, still as Money.
func (m Money) MulInt(qty int) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(int64(qty)))}
}

func (m Money) Add(other Money) Money {
	return Money{Decimal: m.Decimal.Add(other.Decimal)}
}

func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

// MarshalBSONValue stores the amount as Decimal128 so the database keeps the
// exact value instead of a binary float.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.Decimal.String())
	if err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(d128)
}

// UnmarshalBSONValue accepts Decimal128, double, int32/int64 and string so
// documents written before the fixed-point switch keep decoding.
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null:
		m.Decimal = decimal.Decimal{}
		return nil
	case bsontype.Decimal128:
		var d128 primitive.Decimal128
		if err := bson.UnmarshalValue(t, data, &d128); err != nil {
			return err
		}
		d, err := decimal.NewFromString(d128.String())
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	case bsontype.Double:
		var f float64
		if err := bson.UnmarshalValue(t, data, &f); err != nil {
			return err
		}
		m.Decimal = decimal.NewFromFloat(f)
		return nil
	case bsontype.Int32:
		var v int32
		if err := bson.UnmarshalValue(t, data, &v); err != nil {
			return err
		}
		m.Decimal = decimal.NewFromInt32(v)
		return nil
	case bsontype.Int64:
		var v int64
		if err := bson.UnmarshalValue(t, data, &v); err != nil {
			return err
		}
		m.Decimal = decimal.NewFromInt(v)
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		d, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Money", t)
	}
}
