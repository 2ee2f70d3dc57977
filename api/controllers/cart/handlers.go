package cart

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	cartdto "github.com/angelmondragon/packfinderz-carts/api/controllers/cart/dto"
	"github.com/angelmondragon/packfinderz-carts/api/middleware"
	"github.com/angelmondragon/packfinderz-carts/api/responses"
	"github.com/angelmondragon/packfinderz-carts/api/validators"
	"github.com/angelmondragon/packfinderz-carts/api/views"
	cartsvc "github.com/angelmondragon/packfinderz-carts/internal/cart"
	product "github.com/angelmondragon/packfinderz-carts/internal/products"
	pkgerrors "github.com/angelmondragon/packfinderz-carts/pkg/errors"
	"github.com/angelmondragon/packfinderz-carts/pkg/logger"
)

// Controller serves the cart routes. Every handler returns the error it wants
// written; responses.Handle writes it.
type Controller struct {
	carts    cartsvc.Service
	products product.Service
	views    responses.Renderer
	logg     *logger.Logger
}

// NewController wires the cart handlers to their collaborators.
func NewController(carts cartsvc.Service, products product.Service, renderer responses.Renderer, logg *logger.Logger) (*Controller, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if products == nil {
		return nil, fmt.Errorf("product service required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("view renderer required")
	}
	return &Controller{carts: carts, products: products, views: renderer, logg: logg}, nil
}

// NewCart creates a cart and returns it without writing a response.
func (c *Controller) NewCart(ctx context.Context) (cartdto.CartDTO, error) {
	cart, err := c.carts.CreateCart(ctx)
	if err != nil {
		return cartdto.CartDTO{}, pkgerrors.Forward(err)
	}
	c.info(ctx, cart.ID, "cart.created")
	return cartdto.EmptyCart(cart.ID), nil
}

// CreateCart handles POST /carts.
func (c *Controller) CreateCart(w http.ResponseWriter, r *http.Request) error {
	cart, err := c.NewCart(r.Context())
	if err != nil {
		return err
	}
	return responses.Render(w, c.views, views.CartsView, views.CartPage{
		CartID:   cart.ID.String(),
		Lines:    []views.CartLine{},
		Total:    cartdto.Price(0).StringFixed(2),
		Detailed: true,
	})
}

// GetCartByID handles GET /carts/{cid}.
func (c *Controller) GetCartByID(w http.ResponseWriter, r *http.Request) error {
	cartID, err := validators.CartID(chi.URLParam(r, "cid"), "Error trying to get cart by Id")
	if err != nil {
		return err
	}

	cart, err := c.carts.GetCartByID(r.Context(), cartID)
	if err != nil {
		return pkgerrors.Forward(err)
	}

	return responses.Render(w, c.views, views.CartsView, detailedPage(cartdto.FromCart(cart), cartdto.Total(cart).StringFixed(2)))
}

// AddProductToCart handles POST /carts/{cid}/products/{pid}.
func (c *Controller) AddProductToCart(w http.ResponseWriter, r *http.Request) error {
	cartID, productID, err := validators.CartAndProductIDs(chi.URLParam(r, "cid"), chi.URLParam(r, "pid"), "Error trying to add Product to cart")
	if err != nil {
		return err
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return pkgerrors.New(pkgerrors.CodeAuthentication, "authentication required to add products to a cart")
	}

	item, err := c.products.GetProductByID(r.Context(), productID)
	if err != nil {
		return pkgerrors.Forward(err)
	}

	if user.IsPremium() && item.Owner == user.Email {
		c.info(r.Context(), cartID, "cart.own_product_rejected")
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "You cannot add your own product to the cart").
			WithCause(pkgerrors.OwnershipCause(item.Owner, user.Email))
	}

	cart, err := c.carts.AddProductToCart(r.Context(), cartID, productID)
	if err != nil {
		return pkgerrors.Forward(err)
	}

	return responses.Render(w, c.views, views.CartsView, linesPage(cartdto.LinesFromCart(cart), cartdto.Total(cart).StringFixed(2)))
}

// DeleteProductFromCart handles DELETE /carts/{cid}/products/{pid}.
func (c *Controller) DeleteProductFromCart(w http.ResponseWriter, r *http.Request) error {
	cartID, productID, err := validators.CartAndProductIDs(chi.URLParam(r, "cid"), chi.URLParam(r, "pid"), "Error trying to delete Product from Cart")
	if err != nil {
		return err
	}

	cart, err := c.carts.DeleteProductFromCart(r.Context(), cartID, productID)
	if err != nil {
		return pkgerrors.Forward(err)
	}

	responses.WriteJSON(w, http.StatusOK, cartdto.LinesFromCart(cart))
	return nil
}

// UpdateCart handles PUT /carts/{cid}.
func (c *Controller) UpdateCart(w http.ResponseWriter, r *http.Request) error {
	cartID, err := validators.CartID(chi.URLParam(r, "cid"), "Error trying to update Cart")
	if err != nil {
		return err
	}

	var payload cartdto.UpdateCartRequest
	if err := validators.DecodeJSONBody(r, &payload, "Error trying to update Cart"); err != nil {
		return err
	}

	items := make([]cartsvc.ItemInput, 0, len(payload.Products))
	seen := make(map[uuid.UUID]struct{}, len(payload.Products))
	for _, p := range payload.Products {
		id := uuid.MustParse(p.Product)
		if _, dup := seen[id]; dup {
			return pkgerrors.New(pkgerrors.CodeInvalidTypes, "Error trying to update Cart").
				WithCause(fmt.Sprintf("product %s is listed more than once", id))
		}
		seen[id] = struct{}{}
		items = append(items, cartsvc.ItemInput{ProductID: id, Quantity: p.Quantity})
	}

	cart, err := c.carts.UpdateCart(r.Context(), cartID, items)
	if err != nil {
		return pkgerrors.Forward(err)
	}

	responses.WriteJSON(w, http.StatusOK, cartdto.FromCart(cart))
	return nil
}

// UpdateProductQuantityInCart handles PUT /carts/{cid}/products/{pid}.
func (c *Controller) UpdateProductQuantityInCart(w http.ResponseWriter, r *http.Request) error {
	cartID, productID, err := validators.CartAndProductIDs(chi.URLParam(r, "cid"), chi.URLParam(r, "pid"), "Error trying to update Product quantity in cart")
	if err != nil {
		return err
	}

	var payload cartdto.UpdateQuantityRequest
	if err := validators.DecodeJSONBody(r, &payload, "Error trying to update Product quantity in cart"); err != nil {
		return err
	}

	cart, err := c.carts.UpdateProductQuantityInCart(r.Context(), cartID, productID, payload.Quantity)
	if err != nil {
		return pkgerrors.Forward(err)
	}

	responses.WriteJSON(w, http.StatusOK, cartdto.LinesFromCart(cart))
	return nil
}

// DeleteAllProductsCart handles DELETE /carts/{cid}.
func (c *Controller) DeleteAllProductsCart(w http.ResponseWriter, r *http.Request) error {
	cartID, err := validators.CartID(chi.URLParam(r, "cid"), "Error trying to delete all Products Cart")
	if err != nil {
		return err
	}

	cart, err := c.carts.DeleteAllProductsFromCart(r.Context(), cartID)
	if err != nil {
		return pkgerrors.Forward(err)
	}

	responses.WriteJSON(w, http.StatusOK, cartdto.EmptyCart(cart.ID))
	return nil
}

func (c *Controller) info(ctx context.Context, cartID uuid.UUID, msg string) {
	if c.logg == nil {
		return
	}
	c.logg.Info(c.logg.WithCartID(ctx, cartID.String()), msg)
}

func detailedPage(cart cartdto.CartDTO, total string) views.CartPage {
	lines := make([]views.CartLine, 0, len(cart.Products))
	for _, p := range cart.Products {
		lines = append(lines, views.CartLine{
			ProductID: p.ID.String(),
			Title:     p.Title,
			Code:      p.Code,
			Thumbnail: p.Thumbnail,
			Price:     p.Price.StringFixed(2),
			Quantity:  p.Quantity,
		})
	}
	return views.CartPage{CartID: cart.ID.String(), Lines: lines, Total: total, Detailed: true}
}

func linesPage(cart cartdto.CartLinesDTO, total string) views.CartPage {
	lines := make([]views.CartLine, 0, len(cart.Products))
	for _, p := range cart.Products {
		lines = append(lines, views.CartLine{ProductID: p.ID.String(), Quantity: p.Quantity})
	}
	return views.CartPage{CartID: cart.ID.String(), Lines: lines, Total: total}
}
