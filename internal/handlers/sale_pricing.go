package handlers

import (
	"fmt"

	"storefront/internal/models"
)

type saleUpdateInput struct {
	Price       *models.Money
	SaleEnabled *bool
	SalePrice   *models.Money
}

type saleUpdateResult struct {
	Price          models.Money
	SaleEnabled    bool
	SalePrice      models.Money
	SetSaleEnabled bool
	SetSalePrice   bool
}

func isProductOnSale(price models.Money, saleEnabled bool, salePrice models.Money) bool {
	return models.Product{Price: price, SaleEnabled: saleEnabled, SalePrice: salePrice}.OnSale()
}

func effectiveProductPrice(price models.Money, saleEnabled bool, salePrice models.Money) models.Money {
	return models.Product{Price: price, SaleEnabled: saleEnabled, SalePrice: salePrice}.EffectivePrice()
}

func validateSaleFields(price models.Money, saleEnabled bool, salePrice models.Money, salePriceSet bool) error {
	if !saleEnabled {
		return nil
	}
	if !salePriceSet {
		return fmt.Errorf("salePrice is required when saleEnabled is true")
	}
	if salePrice.Sign() <= 0 {
		return fmt.Errorf("salePrice must be greater than 0")
	}
	if salePrice.Cmp(price.Decimal) >= 0 {
		return fmt.Errorf("salePrice must be less than price")
	}
	return nil
}

func resolveSaleUpdate(existingPrice models.Money, existingSaleEnabled bool, existingSalePrice models.Money, input saleUpdateInput) (saleUpdateResult, error) {
	result := saleUpdateResult{
		Price:       existingPrice,
		SaleEnabled: existingSaleEnabled,
		SalePrice:   existingSalePrice,
	}

	if input.Price != nil {
		result.Price = *input.Price
	}

	salePriceSetForValidation := existingSalePrice.Sign() > 0

	if input.SaleEnabled != nil {
		result.SaleEnabled = *input.SaleEnabled
		result.SetSaleEnabled = true
		if !*input.SaleEnabled {
			result.SalePrice = models.Money{}
			result.SetSalePrice = true
			salePriceSetForValidation = false
		}
	}

	if input.SalePrice != nil {
		result.SalePrice = *input.SalePrice
		result.SetSalePrice = true
		salePriceSetForValidation = true
	}

	if err := validateSaleFields(result.Price, result.SaleEnabled, result.SalePrice, salePriceSetForValidation); err != nil {
		return saleUpdateResult{}, err
	}

	return result, nil
}
