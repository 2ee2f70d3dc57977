package cart

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	cartdto "github.com/angelmondragon/packfinderz-carts/api/controllers/cart/dto"
	"github.com/angelmondragon/packfinderz-carts/api/middleware"
	"github.com/angelmondragon/packfinderz-carts/api/responses"
	"github.com/angelmondragon/packfinderz-carts/api/views"
	cartsvc "github.com/angelmondragon/packfinderz-carts/internal/cart"
	"github.com/angelmondragon/packfinderz-carts/pkg/db/models"
	"github.com/angelmondragon/packfinderz-carts/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-carts/pkg/errors"
	"github.com/angelmondragon/packfinderz-carts/pkg/logger"
	"github.com/angelmondragon/packfinderz-carts/pkg/types"
)

type stubCartService struct {
	cart  *models.Cart
	err   error
	calls []string

	lastItems    []cartsvc.ItemInput
	lastQuantity int
}

func (s *stubCartService) record(name string) (*models.Cart, error) {
	s.calls = append(s.calls, name)
	return s.cart, s.err
}

func (s *stubCartService) CreateCart(ctx context.Context) (*models.Cart, error) {
	return s.record("CreateCart")
}

func (s *stubCartService) GetCartByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	return s.record("GetCartByID")
}

func (s *stubCartService) AddProductToCart(ctx context.Context, cartID, productID uuid.UUID) (*models.Cart, error) {
	return s.record("AddProductToCart")
}

func (s *stubCartService) DeleteProductFromCart(ctx context.Context, cartID, productID uuid.UUID) (*models.Cart, error) {
	return s.record("DeleteProductFromCart")
}

func (s *stubCartService) UpdateCart(ctx context.Context, cartID uuid.UUID, items []cartsvc.ItemInput) (*models.Cart, error) {
	s.lastItems = items
	return s.record("UpdateCart")
}

func (s *stubCartService) UpdateProductQuantityInCart(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	s.lastQuantity = quantity
	return s.record("UpdateProductQuantityInCart")
}

func (s *stubCartService) DeleteAllProductsFromCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	return s.record("DeleteAllProductsFromCart")
}

type stubProductService struct {
	product *models.Product
	err     error
	calls   int
}

func (s *stubProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	s.calls++
	return s.product, s.err
}

func newTestController(t *testing.T, carts *stubCartService, products *stubProductService) *Controller {
	t.Helper()
	renderer, err := views.New()
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	ctrl, err := NewController(carts, products, renderer, nil)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	return ctrl
}

func newTestRouter(ctrl *Controller) http.Handler {
	r := chi.NewRouter()
	h := func(fn responses.HandlerFunc) http.HandlerFunc { return responses.Handle(nil, nil, fn) }
	r.Post("/carts", h(ctrl.CreateCart))
	r.Get("/carts/{cid}", h(ctrl.GetCartByID))
	r.Put("/carts/{cid}", h(ctrl.UpdateCart))
	r.Delete("/carts/{cid}", h(ctrl.DeleteAllProductsCart))
	r.Post("/carts/{cid}/products/{pid}", h(ctrl.AddProductToCart))
	r.Put("/carts/{cid}/products/{pid}", h(ctrl.UpdateProductQuantityInCart))
	r.Delete("/carts/{cid}/products/{pid}", h(ctrl.DeleteProductFromCart))
	return r
}

func serve(handler http.Handler, method, path string, body io.Reader, user *middleware.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var env types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return env.Error
}

func sampleCart(items ...models.CartItem) *models.Cart {
	return &models.Cart{ID: uuid.New(), Items: items}
}

func sampleItem(title string, priceCents int64, qty int) models.CartItem {
	id := uuid.New()
	return models.CartItem{
		ProductID: id,
		Quantity:  qty,
		Product:   models.Product{ID: id, Title: title, PriceCents: priceCents, Code: title + "-code", Owner: "seller@example.com"},
	}
}

func TestInvalidIDsNeverReachServices(t *testing.T) {
	validID := uuid.NewString()
	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/carts/abc", ""},
		{http.MethodPut, "/carts/abc", `{"products":[]}`},
		{http.MethodDelete, "/carts/abc", ""},
		{http.MethodPost, "/carts/abc/products/" + validID, ""},
		{http.MethodPost, "/carts/" + validID + "/products/xyz", ""},
		{http.MethodPut, "/carts/" + validID + "/products/xyz", `{"quantity":2}`},
		{http.MethodDelete, "/carts/abc/products/xyz", ""},
	}

	for _, tc := range cases {
		carts := &stubCartService{cart: sampleCart()}
		products := &stubProductService{product: &models.Product{}}
		router := newTestRouter(newTestController(t, carts, products))
		user := &middleware.User{ID: uuid.NewString(), Email: "buyer@example.com", Role: enums.UserRoleUser}

		resp := serve(router, tc.method, tc.path, strings.NewReader(tc.body), user)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s %s: expected 400 got %d", tc.method, tc.path, resp.Code)
		}
		apiErr := decodeError(t, resp)
		if apiErr.Code != string(pkgerrors.CodeInvalidIDs) {
			t.Fatalf("%s %s: unexpected code %s", tc.method, tc.path, apiErr.Code)
		}
		if apiErr.Cause == "" {
			t.Fatalf("%s %s: expected descriptive cause", tc.method, tc.path)
		}
		if len(carts.calls) != 0 || products.calls != 0 {
			t.Fatalf("%s %s: services must not be called, got %v / %d", tc.method, tc.path, carts.calls, products.calls)
		}
	}
}

func TestUpperCaseIDsReachServices(t *testing.T) {
	item := sampleItem("Grinder", 1299, 1)
	carts := &stubCartService{cart: sampleCart(item)}
	router := newTestRouter(newTestController(t, carts, &stubProductService{}))

	cid := strings.ToUpper(carts.cart.ID.String())
	pid := strings.ToUpper(item.ProductID.String())
	resp := serve(router, http.MethodDelete, "/carts/"+cid+"/products/"+pid, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	body := `{"products":[{"product":"` + pid + `","quantity":2}]}`
	resp = serve(router, http.MethodPut, "/carts/"+cid, strings.NewReader(body), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(carts.lastItems) != 1 || carts.lastItems[0].ProductID != item.ProductID {
		t.Fatalf("expected product %s forwarded, got %+v", item.ProductID, carts.lastItems)
	}
}

func TestAddProductRejectsPremiumOwner(t *testing.T) {
	carts := &stubCartService{cart: sampleCart()}
	products := &stubProductService{product: &models.Product{ID: uuid.New(), Owner: "seller@example.com"}}
	router := newTestRouter(newTestController(t, carts, products))

	user := &middleware.User{ID: uuid.NewString(), Email: "seller@example.com", Role: enums.UserRolePremium}
	resp := serve(router, http.MethodPost, "/carts/"+uuid.NewString()+"/products/"+uuid.NewString(), nil, user)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	apiErr := decodeError(t, resp)
	if apiErr.Code != string(pkgerrors.CodeUnauthorized) {
		t.Fatalf("unexpected code %s", apiErr.Code)
	}
	if apiErr.Cause != "Product owner: seller@example.com, User email: seller@example.com" {
		t.Fatalf("unexpected cause %q", apiErr.Cause)
	}
	if len(carts.calls) != 0 {
		t.Fatalf("product must not be added, got calls %v", carts.calls)
	}
}

func TestAddProductAllowsOwnerWithoutPremium(t *testing.T) {
	item := sampleItem("Grinder", 1299, 2)
	carts := &stubCartService{cart: sampleCart(item)}
	products := &stubProductService{product: &item.Product}
	router := newTestRouter(newTestController(t, carts, products))

	user := &middleware.User{ID: uuid.NewString(), Email: "seller@example.com", Role: enums.UserRoleUser}
	resp := serve(router, http.MethodPost, "/carts/"+carts.cart.ID.String()+"/products/"+item.ProductID.String(), nil, user)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.HasPrefix(resp.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("expected rendered view, got %q", resp.Header().Get("Content-Type"))
	}
	body := resp.Body.String()
	if !strings.Contains(body, item.ProductID.String()) || !strings.Contains(body, "Total: $25.98") {
		t.Fatalf("unexpected view:\n%s", body)
	}
	if len(carts.calls) != 1 || carts.calls[0] != "AddProductToCart" {
		t.Fatalf("unexpected calls %v", carts.calls)
	}
}

func TestAddProductRequiresUser(t *testing.T) {
	carts := &stubCartService{cart: sampleCart()}
	products := &stubProductService{product: &models.Product{}}
	router := newTestRouter(newTestController(t, carts, products))

	resp := serve(router, http.MethodPost, "/carts/"+uuid.NewString()+"/products/"+uuid.NewString(), nil, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestServiceFailuresBecomeDatabaseErrors(t *testing.T) {
	cause := stdErrors.New("connection reset by peer")
	carts := &stubCartService{err: cause}
	ctrl := newTestController(t, carts, &stubProductService{})

	_, err := ctrl.NewCart(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDatabase {
		t.Fatalf("expected database error, got %v", err)
	}
	if typed.Name() != "Database Error" || typed.Message() != "An error occurred while communicating with the database." {
		t.Fatalf("unexpected name/message %q / %q", typed.Name(), typed.Message())
	}
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected original error preserved as cause")
	}

	router := newTestRouter(ctrl)
	resp := serve(router, http.MethodDelete, "/carts/"+uuid.NewString(), nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	if apiErr := decodeError(t, resp); apiErr.Code != string(pkgerrors.CodeDatabase) {
		t.Fatalf("unexpected code %s", apiErr.Code)
	}
}

func TestTypedServiceErrorsForwardUnchanged(t *testing.T) {
	typed := pkgerrors.New(pkgerrors.CodeUnauthorized, "nope")
	carts := &stubCartService{err: typed}
	router := newTestRouter(newTestController(t, carts, &stubProductService{}))

	resp := serve(router, http.MethodGet, "/carts/"+uuid.NewString(), nil, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestNewCartReturnsEmptyDTO(t *testing.T) {
	created := &models.Cart{ID: uuid.New()}
	ctrl := newTestController(t, &stubCartService{cart: created}, &stubProductService{})

	dto, err := ctrl.NewCart(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.ID != created.ID {
		t.Fatalf("expected id %s got %s", created.ID, dto.ID)
	}
	if dto.Products == nil || len(dto.Products) != 0 {
		t.Fatalf("expected empty product list, got %v", dto.Products)
	}
}

func TestNewCartLogsCreatedCart(t *testing.T) {
	created := &models.Cart{ID: uuid.New()}
	renderer, err := views.New()
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	ctrl, err := NewController(&stubCartService{cart: created}, &stubProductService{}, renderer, logg)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}

	if _, err := ctrl.NewCart(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"cart_id":"`+created.ID.String()+`"`) || !strings.Contains(buf.String(), "cart.created") {
		t.Fatalf("expected cart.created entry with cart_id, got %s", buf.String())
	}
}

func TestCreateCartRendersView(t *testing.T) {
	created := &models.Cart{ID: uuid.New()}
	router := newTestRouter(newTestController(t, &stubCartService{cart: created}, &stubProductService{}))

	resp := serve(router, http.MethodPost, "/carts", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), created.ID.String()) {
		t.Fatalf("expected cart id in view:\n%s", resp.Body.String())
	}
}

func TestGetCartRendersFullProjectionAndTotal(t *testing.T) {
	cart := sampleCart(sampleItem("Grinder", 1299, 2), sampleItem("Tray", 500, 1))
	router := newTestRouter(newTestController(t, &stubCartService{cart: cart}, &stubProductService{}))

	resp := serve(router, http.MethodGet, "/carts/"+cart.ID.String(), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{cart.ID.String(), "Grinder", "$12.99", "Total: $30.98"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in view:\n%s", want, body)
		}
	}
}

func TestDeleteProductFromCartReturnsLines(t *testing.T) {
	cart := sampleCart()
	carts := &stubCartService{cart: cart}
	router := newTestRouter(newTestController(t, carts, &stubProductService{}))

	resp := serve(router, http.MethodDelete, "/carts/"+cart.ID.String()+"/products/"+uuid.NewString(), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var got cartdto.CartLinesDTO
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != cart.ID || got.Products == nil || len(got.Products) != 0 {
		t.Fatalf("unexpected body %+v", got)
	}
}

func TestDeleteProductMissingPairingIsDatabaseError(t *testing.T) {
	carts := &stubCartService{err: cartsvc.ErrProductNotInCart}
	router := newTestRouter(newTestController(t, carts, &stubProductService{}))

	resp := serve(router, http.MethodDelete, "/carts/"+uuid.NewString()+"/products/"+uuid.NewString(), nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	if apiErr := decodeError(t, resp); apiErr.Code != string(pkgerrors.CodeDatabase) {
		t.Fatalf("unexpected code %s", apiErr.Code)
	}
}

func TestUpdateCartReturnsFullProjection(t *testing.T) {
	item := sampleItem("Grinder", 1299, 3)
	carts := &stubCartService{cart: sampleCart(item)}
	router := newTestRouter(newTestController(t, carts, &stubProductService{}))

	body := `{"products":[{"product":"` + item.ProductID.String() + `","quantity":3}]}`
	resp := serve(router, http.MethodPut, "/carts/"+carts.cart.ID.String(), strings.NewReader(body), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var got cartdto.CartDTO
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Products) != 1 || got.Products[0].Title != "Grinder" || got.Products[0].Quantity != 3 {
		t.Fatalf("unexpected body %+v", got)
	}
	if len(carts.lastItems) != 1 || carts.lastItems[0].ProductID != item.ProductID || carts.lastItems[0].Quantity != 3 {
		t.Fatalf("unexpected service input %+v", carts.lastItems)
	}
}

func TestUpdateCartRejectsBadBodies(t *testing.T) {
	dup := uuid.NewString()
	bodies := []string{
		`{"products":"nope"}`,
		`{}`,
		`{"products":[{"product":"abc","quantity":1}]}`,
		`{"products":[{"product":"` + uuid.NewString() + `","quantity":0}]}`,
		`{"products":[{"product":"` + uuid.NewString() + `","quantity":3000000000}]}`,
		`{"products":[{"product":"` + dup + `","quantity":1},{"product":"` + dup + `","quantity":2}]}`,
		`{"products":[{"product":"` + dup + `","quantity":1},{"product":"` + strings.ToUpper(dup) + `","quantity":2}]}`,
	}
	for _, body := range bodies {
		carts := &stubCartService{cart: sampleCart()}
		router := newTestRouter(newTestController(t, carts, &stubProductService{}))

		resp := serve(router, http.MethodPut, "/carts/"+uuid.NewString(), strings.NewReader(body), nil)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 got %d", body, resp.Code)
		}
		if apiErr := decodeError(t, resp); apiErr.Code != string(pkgerrors.CodeInvalidTypes) {
			t.Fatalf("body %s: unexpected code %s", body, apiErr.Code)
		}
		if len(carts.calls) != 0 {
			t.Fatalf("body %s: service must not be called", body)
		}
	}
}

func TestUpdateProductQuantityReturnsLines(t *testing.T) {
	item := sampleItem("Grinder", 1299, 5)
	carts := &stubCartService{cart: sampleCart(item)}
	router := newTestRouter(newTestController(t, carts, &stubProductService{}))

	path := "/carts/" + carts.cart.ID.String() + "/products/" + item.ProductID.String()
	resp := serve(router, http.MethodPut, path, strings.NewReader(`{"quantity":5}`), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var got cartdto.CartLinesDTO
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Products) != 1 || got.Products[0].ID != item.ProductID || got.Products[0].Quantity != 5 {
		t.Fatalf("unexpected body %+v", got)
	}
	if carts.lastQuantity != 5 {
		t.Fatalf("expected quantity 5 forwarded, got %d", carts.lastQuantity)
	}

	resp = serve(router, http.MethodPut, path, strings.NewReader(`{"quantity":0}`), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", resp.Code)
	}

	resp = serve(router, http.MethodPut, path, strings.NewReader(`{"quantity":3000000000}`), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range quantity, got %d", resp.Code)
	}
	if apiErr := decodeError(t, resp); apiErr.Code != string(pkgerrors.CodeInvalidTypes) {
		t.Fatalf("expected %s, got %s", pkgerrors.CodeInvalidTypes, apiErr.Code)
	}
}

func TestDeleteAllProductsReturnsEmptyCart(t *testing.T) {
	cart := sampleCart(sampleItem("Grinder", 1299, 1))
	router := newTestRouter(newTestController(t, &stubCartService{cart: cart}, &stubProductService{}))

	resp := serve(router, http.MethodDelete, "/carts/"+cart.ID.String(), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	want := `{"id":"` + cart.ID.String() + `","products":[]}`
	if strings.TrimSpace(resp.Body.String()) != want {
		t.Fatalf("expected %s got %s", want, resp.Body.String())
	}
}

func TestNewControllerRequiresDependencies(t *testing.T) {
	if _, err := NewController(nil, &stubProductService{}, nil, nil); err == nil {
		t.Fatal("expected error without cart service")
	}
}
