package cartdto

import (
	"github.com/angelmondragon/packfinderz-carts/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartDTO is a cart with the full product projection of every line.
type CartDTO struct {
	ID       uuid.UUID     `json:"id"`
	Products []CartProduct `json:"products"`
}

// CartProduct is a product as shown inside a cart.
type CartProduct struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Thumbnail   string          `json:"thumbnail"`
	Code        string          `json:"code"`
	Stock       int             `json:"stock"`
	Quantity    int             `json:"quantity"`
}

// CartLinesDTO is a cart with only product ids and quantities.
type CartLinesDTO struct {
	ID       uuid.UUID  `json:"id"`
	Products []CartLine `json:"products"`
}

// CartLine references a product by id.
type CartLine struct {
	ID       uuid.UUID `json:"id"`
	Quantity int       `json:"quantity"`
}

// UpdateCartRequest replaces every line of a cart.
type UpdateCartRequest struct {
	Products []UpdateCartItem `json:"products" validate:"required,unique=Product,dive"`
}

// UpdateCartItem is one requested line.
type UpdateCartItem struct {
	Product  string `json:"product" validate:"required,uuid_any_case"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=2147483647"`
}

// UpdateQuantityRequest sets the quantity of one line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=2147483647"`
}

// EmptyCart returns id with no products.
func EmptyCart(id uuid.UUID) CartDTO {
	return CartDTO{ID: id, Products: []CartProduct{}}
}

// FromCart builds the full projection.
func FromCart(cart *models.Cart) CartDTO {
	out := CartDTO{ID: cart.ID, Products: make([]CartProduct, 0, len(cart.Items))}
	for _, item := range cart.Items {
		out.Products = append(out.Products, CartProduct{
			ID:          item.ProductID,
			Title:       item.Product.Title,
			Description: item.Product.Description,
			Price:       Price(item.Product.PriceCents),
			Thumbnail:   item.Product.Thumbnail,
			Code:        item.Product.Code,
			Stock:       item.Product.Stock,
			Quantity:    item.Quantity,
		})
	}
	return out
}

// LinesFromCart builds the line projection.
func LinesFromCart(cart *models.Cart) CartLinesDTO {
	out := CartLinesDTO{ID: cart.ID, Products: make([]CartLine, 0, len(cart.Items))}
	for _, item := range cart.Items {
		out.Products = append(out.Products, CartLine{ID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}

// Price converts cents to a currency amount.
func Price(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Total sums price times quantity over the cart's preloaded products.
func Total(cart *models.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, item := range cart.Items {
		total = total.Add(Price(item.Product.PriceCents).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
