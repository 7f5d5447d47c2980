package orders

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/inventory"
	"storefront/internal/models"
)

func mustMoney(t *testing.T, value string) models.Money {
	t.Helper()
	m, err := models.MoneyFromString(value)
	if err != nil {
		t.Fatalf("bad money literal %q: %v", value, err)
	}
	return m
}

func testProduct(t *testing.T, name, price string, stock int) models.Product {
	t.Helper()
	return models.Product{
		ID:    primitive.NewObjectID(),
		Name:  name,
		Price: mustMoney(t, price),
		Stock: stock,
	}
}

func TestPriceItemsFreezesUnitPricesAndTotal(t *testing.T) {
	apple := testProduct(t, "Elma", "12.50", 10)
	bread := testProduct(t, "Ekmek", "7.25", 4)

	items, total, err := priceItems(
		[]CreateItem{
			{ProductID: apple.ID, Quantity: 3},
			{ProductID: bread.ID, Quantity: 2},
		},
		map[primitive.ObjectID]models.Product{
			apple.ID: apple,
			bread.ID: bread,
		},
	)
	if err != nil {
		t.Fatalf("priceItems returned error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "Elma" || !items[0].UnitPrice.Equal(mustMoney(t, "12.50")) {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	// 3*12.50 + 2*7.25
	if !total.Equal(mustMoney(t, "52")) {
		t.Fatalf("expected total 52, got %v", total)
	}
}

func TestPriceItemsUsesSalePriceWhenOnSale(t *testing.T) {
	product := testProduct(t, "Süt", "30", 5)
	product.SaleEnabled = true
	product.SalePrice = mustMoney(t, "24.99")

	items, total, err := priceItems(
		[]CreateItem{{ProductID: product.ID, Quantity: 2}},
		map[primitive.ObjectID]models.Product{product.ID: product},
	)
	if err != nil {
		t.Fatalf("priceItems returned error: %v", err)
	}
	if !items[0].UnitPrice.Equal(mustMoney(t, "24.99")) {
		t.Fatalf("expected sale price snapshot, got %v", items[0].UnitPrice)
	}
	if !total.Equal(mustMoney(t, "49.98")) {
		t.Fatalf("expected total 49.98, got %v", total)
	}
}

func TestPriceItemsRejectsInsufficientStock(t *testing.T) {
	product := testProduct(t, "Elma", "10", 1)

	_, _, err := priceItems(
		[]CreateItem{{ProductID: product.ID, Quantity: 3}},
		map[primitive.ObjectID]models.Product{product.ID: product},
	)

	var stockErr inventory.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 1 || stockErr.Requested != 3 {
		t.Fatalf("unexpected stock error detail: %+v", stockErr)
	}
}

func TestPriceItemsRejectsUnknownProduct(t *testing.T) {
	_, _, err := priceItems(
		[]CreateItem{{ProductID: primitive.NewObjectID(), Quantity: 1}},
		map[primitive.ObjectID]models.Product{},
	)

	var notFound inventory.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestValidateCreateInput(t *testing.T) {
	valid := CreateInput{
		Items:         []CreateItem{{ProductID: primitive.NewObjectID(), Quantity: 1}},
		PaymentMethod: "cash",
		ShippingAddress: models.OrderAddress{
			Title:  "Ev",
			Detail: "Atatürk Cad. No:1",
		},
	}
	if err := validateCreateInput(valid); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	empty := valid
	empty.Items = nil
	if err := validateCreateInput(empty); err == nil {
		t.Fatal("expected error for empty items")
	}

	zeroQty := valid
	zeroQty.Items = []CreateItem{{ProductID: primitive.NewObjectID(), Quantity: 0}}
	if err := validateCreateInput(zeroQty); err == nil {
		t.Fatal("expected error for zero quantity")
	}

	badPayment := valid
	badPayment.PaymentMethod = "iban"
	if err := validateCreateInput(badPayment); err == nil {
		t.Fatal("expected error for unknown payment method")
	}

	noAddress := valid
	noAddress.ShippingAddress = models.OrderAddress{}
	if err := validateCreateInput(noAddress); err == nil {
		t.Fatal("expected error for missing shipping address")
	}
}

func TestActorAuthorization(t *testing.T) {
	ownerID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	order := &models.Order{UserID: &ownerID}
	guestOrder := &models.Order{}

	owner := Actor{UserID: &ownerID, Role: "user"}
	stranger := Actor{UserID: &otherID, Role: "user"}
	admin := Actor{Role: "admin"}

	if !owner.owns(order) {
		t.Fatal("expected owner to own the order")
	}
	if stranger.owns(order) {
		t.Fatal("expected stranger not to own the order")
	}
	if owner.owns(guestOrder) {
		t.Fatal("expected guest order to have no owner")
	}
	if !admin.IsAdmin() || owner.IsAdmin() {
		t.Fatal("unexpected admin flags")
	}
}
