package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestListPage_ReconcilesBodyAndHeader(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		header   http.Header
		opts     ListOptions
		wantIDs  []string
		wantMeta PageMetaData
	}{
		{
			name:     "bare page",
			body:     `{"items": [{"id": 1, "name": "A"}, {"id": 2, "name": "B"}], "pageIndex": 1, "pageSize": 2, "totalCount": 5, "totalPages": 3}`,
			opts:     ListOptions{Page: 1, PageSize: 2},
			wantIDs:  []string{"1", "2"},
			wantMeta: PageMetaData{CurrentPage: 1, TotalPages: 3, ItemsPerPage: 2, TotalItems: 5},
		},
		{
			name:     "value wrapped page",
			body:     `{"value": {"items": [{"id": "p-9", "name": "C"}], "pageNumber": 4, "totalItems": 31}}`,
			opts:     ListOptions{Page: 4, PageSize: 10},
			wantIDs:  []string{"p-9"},
			wantMeta: PageMetaData{CurrentPage: 4, TotalPages: 0, ItemsPerPage: 10, TotalItems: 31},
		},
		{
			name:     "data wrapped array with header",
			body:     `{"data": [{"id": 3, "name": "D"}]}`,
			header:   http.Header{"Pagination": {`{"currentPage": 2, "totalPages": 2, "itemsPerPage": 1, "totalItems": 2}`}},
			opts:     ListOptions{Page: 2, PageSize: 1},
			wantIDs:  []string{"3"},
			wantMeta: PageMetaData{CurrentPage: 2, TotalPages: 2, ItemsPerPage: 1, TotalItems: 2},
		},
		{
			name:     "unrecognized body",
			body:     `{"message": "ok"}`,
			opts:     ListOptions{},
			wantIDs:  []string{},
			wantMeta: PageMetaData{CurrentPage: 1, TotalPages: 0, ItemsPerPage: DefaultPageSize, TotalItems: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRequester{body: mustDecode(t, tt.body), header: tt.header}
			result, err := listPage[Product](context.Background(), fake, productsPath, tt.opts)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.Items == nil {
				t.Fatal("Expected non-nil items")
			}
			if len(result.Items) != len(tt.wantIDs) {
				t.Fatalf("Expected %d items, got %d", len(tt.wantIDs), len(result.Items))
			}
			for i, id := range tt.wantIDs {
				if result.Items[i].ID.String() != id {
					t.Errorf("Item %d ID = %s, want %s", i, result.Items[i].ID, id)
				}
			}
			if result.MetaData != tt.wantMeta {
				t.Errorf("MetaData = %+v, want %+v", result.MetaData, tt.wantMeta)
			}
		})
	}
}

func TestListPage_SendsPagingQuery(t *testing.T) {
	fake := &fakeRequester{body: mustDecode(t, `{"items": []}`)}
	_, err := listProducts(context.Background(), fake, ProductListOptions{
		ListOptions: ListOptions{Page: 3, PageSize: 50},
		Search:      "lamp",
		MinPrice:    9.5,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(fake.specs) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(fake.specs))
	}
	q := fake.specs[0].Query
	if q.Get("pageIndex") != "3" || q.Get("pageSize") != "50" {
		t.Errorf("Expected pageIndex=3&pageSize=50, got %s", q.Encode())
	}
	if q.Get("search") != "lamp" || q.Get("minPrice") != "9.5" {
		t.Errorf("Expected search and minPrice filters, got %s", q.Encode())
	}
	if q.Has("categoryId") || q.Has("maxPrice") {
		t.Errorf("Expected empty filters to be omitted, got %s", q.Encode())
	}
}

func TestListAll(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		count int
	}{
		{"bare array", `[{"id": 1, "name": "a"}, {"id": 2, "name": "b"}]`, 2},
		{"value wrapped", `{"value": [{"id": 1, "name": "a"}]}`, 1},
		{"data wrapped", `{"data": [{"id": 1, "name": "a"}]}`, 1},
		{"unrecognized", `{"ok": true}`, 0},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRequester{body: mustDecode(t, tt.body)}
			tags, err := listAll[Tag](context.Background(), fake, tagsPath, nil)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tags == nil {
				t.Fatal("Expected non-nil slice")
			}
			if len(tags) != tt.count {
				t.Errorf("Expected %d tags, got %d", tt.count, len(tags))
			}
		})
	}
}

func TestGetEntity(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
	}{
		{"bare", `{"id": 1, "name": "Lamp", "price": "19.90"}`, "Lamp"},
		{"value wrapped", `{"value": {"id": 1, "name": "Lamp"}}`, "Lamp"},
		{"data wrapped", `{"success": true, "data": {"id": 1, "name": "Lamp"}}`, "Lamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRequester{body: mustDecode(t, tt.body)}
			product, err := getProduct(context.Background(), fake, "1")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if product.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", product.Name, tt.wantName)
			}
			if product.ID != "1" {
				t.Errorf("ID = %q, want 1", product.ID)
			}
		})
	}
}

func TestGetEntity_EmptyBody(t *testing.T) {
	fake := &fakeRequester{body: nil}
	_, err := getProduct(context.Background(), fake, "1")
	apiErr := asAPIError(t, err)
	if apiErr.Message != msgEmptyResponse {
		t.Errorf("Expected empty response error, got %q", apiErr.Message)
	}
}

func TestGetEntity_PropagatesExecutorError(t *testing.T) {
	want := &APIError{Status: http.StatusNotFound, Message: "Product not found"}
	fake := &fakeRequester{err: want}
	_, err := getProduct(context.Background(), fake, "missing")
	if !errors.Is(err, want) {
		t.Errorf("Expected executor error to be returned unchanged, got %v", err)
	}
	if !IsNotFoundError(err) {
		t.Error("Expected IsNotFoundError to be true")
	}
}

func TestSendNoContent(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"success", nil, false},
		{"empty 2xx", &APIError{Status: http.StatusNoContent, Message: msgEmptyResponse}, false},
		{"empty non-2xx", &APIError{Status: http.StatusBadGateway, Message: msgEmptyResponse}, true},
		{"not found", &APIError{Status: http.StatusNotFound, Message: "gone"}, true},
		{"transport", &APIError{Status: 0, Message: msgCannotConnect}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRequester{err: tt.err, body: map[string]any{}}
			err := deleteProduct(context.Background(), fake, "1")
			if (err != nil) != tt.wantErr {
				t.Errorf("deleteProduct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if fake.specs[0].Method != http.MethodDelete || fake.specs[0].Path != "/api/products/1" {
				t.Errorf("Unexpected request %s %s", fake.specs[0].Method, fake.specs[0].Path)
			}
		})
	}
}

func TestProductsService_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" {
			t.Errorf("Expected /api/products, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("pageIndex") != "2" {
			t.Errorf("Expected pageIndex=2, got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("pagination", `{"currentPage": 2, "totalPages": 9, "itemsPerPage": 1, "totalItems": 9}`)
		_, _ = w.Write([]byte(`{"value": [{"id": 11, "name": "Desk", "price": 120, "stock": "4"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "tok")
	result, err := client.Products().List(context.Background(), ProductListOptions{ListOptions: ListOptions{Page: 2, PageSize: 1}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Name != "Desk" {
		t.Fatalf("Unexpected items: %+v", result.Items)
	}
	if result.Items[0].Stock != 4 || result.Items[0].Price != 120 {
		t.Errorf("Expected tolerant numeric decoding, got stock=%d price=%v", result.Items[0].Stock, result.Items[0].Price)
	}
	want := PageMetaData{CurrentPage: 2, TotalPages: 9, ItemsPerPage: 1, TotalItems: 9}
	if result.MetaData != want {
		t.Errorf("MetaData = %+v, want %+v", result.MetaData, want)
	}
}

func TestOrdersService_UpdateStatus(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/orders/o-1/status" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"id": "o-1", "status": "shipping", "total": "99.5"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "tok")
	order, err := client.Orders().UpdateStatus(context.Background(), "o-1", OrderStatusShipping)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if order.Status != OrderStatusShipping || order.Total != 99.5 {
		t.Errorf("Unexpected order: %+v", order)
	}
	if gotBody != `{"status":"shipping"}` {
		t.Errorf("Unexpected body %q", gotBody)
	}

	if _, err := client.Orders().UpdateStatus(context.Background(), "o-1", "teleported"); err == nil {
		t.Error("Expected validation error for unknown status")
	}
}

func TestOrdersService_CheckoutRequiresAddress(t *testing.T) {
	client := newTestClient("https://shop.example.com", "")
	if _, err := client.Orders().Checkout(context.Background(), CheckoutRequest{}); err == nil {
		t.Error("Expected error for missing shipping address")
	}
}

func TestMediaService_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			t.Errorf("Expected multipart/form-data, got %q", r.Header.Get("Content-Type"))
			return
		}
		reader := multipart.NewReader(r.Body, params["boundary"])
		form, err := reader.ReadForm(1 << 20)
		if err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
			return
		}
		if got := form.Value["fileName"]; len(got) != 1 || got[0] != "logo.png" {
			t.Errorf("Expected fileName field, got %v", got)
		}
		files := form.File["file"]
		if len(files) != 1 || files[0].Filename != "logo.png" {
			t.Errorf("Expected one file part named logo.png, got %v", files)
			return
		}
		f, _ := files[0].Open()
		content, _ := io.ReadAll(f)
		_ = f.Close()
		if string(content) != "PNGDATA" {
			t.Errorf("Unexpected file content %q", content)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 5, "url": "https://cdn.example.com/logo.png"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "tok")
	media, err := client.Media().Upload(context.Background(), "/tmp/assets/logo.png", []byte("PNGDATA"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if media.ID != "5" || !strings.HasSuffix(media.URL, "logo.png") {
		t.Errorf("Unexpected media: %+v", media)
	}
}

func TestMediaService_UploadTooLarge(t *testing.T) {
	fake := &fakeRequester{}
	_, err := uploadMedia(context.Background(), fake, "big.bin", make([]byte, MaxUploadSize+1))
	if err == nil {
		t.Fatal("Expected size error")
	}
	if len(fake.specs) != 0 {
		t.Error("Expected no request for an oversized file")
	}
}

func TestAuthService_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("Expected login without Authorization, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value": {"token": "jwt-123", "user": {"id": 1, "email": "a@b.c"}}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "stale-token")
	resp, err := client.Auth().Login(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Token != "jwt-123" {
		t.Errorf("Token = %q, want jwt-123", resp.Token)
	}
	if resp.User == nil || resp.User.Email != "a@b.c" {
		t.Errorf("Unexpected user: %+v", resp.User)
	}
}

func TestCartService_GetDefaultsItems(t *testing.T) {
	fake := &fakeRequester{body: mustDecode(t, `{"value": {"id": "c1", "items": null}}`)}
	cart, err := getCart(context.Background(), fake)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cart.ID != "c1" {
		t.Errorf("ID = %q, want c1", cart.ID)
	}
	if cart.Items == nil {
		t.Error("Expected non-nil items")
	}
}

func TestProvincesService_Wards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/provinces/79/wards" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"code": 26734, "name": "Ben Nghe"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")
	wards, err := client.Provinces().Wards(context.Background(), "79")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(wards) != 1 || wards[0].Code != "26734" {
		t.Errorf("Unexpected wards: %+v", wards)
	}
}

func TestCartService_AddItemRereadsCartAfterLineResponse(t *testing.T) {
	var gets int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/cart/items":
			_, _ = w.Write([]byte(`{"data": {"id": "line-1", "productId": "42", "quantity": 2}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/cart":
			gets++
			_, _ = w.Write([]byte(`{"id": "c1", "items": [{"id": "line-1", "productId": "42", "quantity": 2}], "total": 19.5}`))
		default:
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL, "tok")
	cart, err := client.Cart().AddItem(context.Background(), "42", 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gets != 1 {
		t.Errorf("cart reads = %d, want 1", gets)
	}
	if cart.ID != "c1" || len(cart.Items) != 1 || cart.Items[0].ProductID != "42" {
		t.Errorf("Unexpected cart: %+v", cart)
	}
}

func TestMutateCart_UsesReturnedCart(t *testing.T) {
	fake := &fakeRequester{body: mustDecode(t, `{"value": {"id": "c1", "items": [{"id": "line-1", "productId": "42", "quantity": 5}]}}`)}
	spec := RequestSpec{Method: http.MethodPut, Path: resourcePath(cartItemsPath, "line-1"), Body: map[string]any{"quantity": 5}}
	cart, err := mutateCart(context.Background(), fake, spec)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(fake.specs) != 1 {
		t.Fatalf("requests = %d, want 1", len(fake.specs))
	}
	if spec := fake.specs[0]; spec.Method != http.MethodPut || spec.Path != "/api/cart/items/line-1" {
		t.Errorf("Unexpected request %s %s", spec.Method, spec.Path)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
		t.Errorf("Unexpected cart: %+v", cart)
	}
}
