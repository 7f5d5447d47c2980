package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Price       Money              `bson:"price" json:"price"`
	SaleEnabled bool               `bson:"saleEnabled" json:"saleEnabled"`
	SalePrice   Money              `bson:"salePrice" json:"salePrice"`
	IsOnSale    bool               `bson:"-" json:"isOnSale"`
	Category    StringList         `bson:"category" json:"category"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Barcode     string             `bson:"barcode,omitempty" json:"barcode,omitempty"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	ImagePath   string             `bson:"imagePath,omitempty" json:"imagePath,omitempty"`
	Stock       int                `bson:"stock" json:"stock"`
	InStock     bool               `bson:"-" json:"inStock"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	IsCampaign  bool               `bson:"isCampaign" json:"isCampaign"`
	IsDeleted   bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// OnSale reports whether the sale price currently undercuts the list price.
func (p Product) OnSale() bool {
	return p.SaleEnabled && p.SalePrice.Sign() > 0 && p.SalePrice.Cmp(p.Price.Decimal) < 0
}

// EffectivePrice is the price a checkout pays right now: the sale price while
// a valid sale is running, the list price otherwise.
func (p Product) EffectivePrice() Money {
	if p.OnSale() {
		return p.SalePrice
	}
	return p.Price
}

// ProductImage is a gallery entry for a product. At most one image per
// product carries IsPrimary=true; the designation package owns that
// invariant, the same way it owns the default address.
type ProductImage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Path      string             `bson:"path" json:"path"`
	Alt       string             `bson:"alt,omitempty" json:"alt,omitempty"`
	IsPrimary bool               `bson:"isPrimary" json:"isPrimary"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
