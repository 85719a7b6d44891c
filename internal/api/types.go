package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Order status values accepted by UpdateStatus.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipping  = "shipping"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses lists the known order statuses in lifecycle order.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipping,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// MaxUploadSize bounds a single media upload.
const MaxUploadSize = 20 * 1024 * 1024 // 20MB

// FlexInt handles JSON numbers that may come as strings or integers
type FlexInt int

func (fi *FlexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var i int
	if err := json.Unmarshal(data, &i); err == nil {
		*fi = FlexInt(i)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*fi = FlexInt(int(f))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*fi = 0
			return nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		*fi = FlexInt(i)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into FlexInt", data)
}

// FlexFloat handles JSON numbers that may come as strings or numbers
type FlexFloat float64

func (ff *FlexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*ff = FlexFloat(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*ff = 0
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		*ff = FlexFloat(f)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into FlexFloat", data)
}

// FlexString handles identifiers that may come as strings or numbers
// and stores them as strings
type FlexString string

func (fs *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*fs = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*fs = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			*fs = FlexString(strconv.FormatInt(i, 10))
			return nil
		}
		*fs = FlexString(n.String())
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into FlexString", data)
}

// String returns the string value
func (fs FlexString) String() string {
	return string(fs)
}

// Timestamp is an RFC 3339 time that tolerates empty and unparseable values.
type Timestamp string

// Time parses the timestamp, returning the zero time when it is not RFC 3339.
func (t Timestamp) Time() time.Time {
	parsed, err := time.Parse(time.RFC3339, string(t))
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// Product is a catalog product
type Product struct {
	ID          FlexString `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug,omitempty"`
	Description string     `json:"description,omitempty"`
	Price       FlexFloat  `json:"price"`
	SalePrice   *FlexFloat `json:"salePrice,omitempty"`
	Stock       FlexInt    `json:"stock"`
	SKU         string     `json:"sku,omitempty"`
	CategoryID  FlexString `json:"categoryId,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Images      []string   `json:"images,omitempty"`
	Status      string     `json:"status,omitempty"`
	CreatedAt   Timestamp  `json:"createdAt,omitempty"`
	UpdatedAt   Timestamp  `json:"updatedAt,omitempty"`
}

// Address is a shipping address
type Address struct {
	FullName     string     `json:"fullName"`
	Phone        string     `json:"phone"`
	Street       string     `json:"street"`
	WardCode     FlexString `json:"wardCode,omitempty"`
	ProvinceCode FlexString `json:"provinceCode,omitempty"`
}

// OrderItem is a line of an order
type OrderItem struct {
	ProductID   FlexString `json:"productId"`
	ProductName string     `json:"productName,omitempty"`
	Quantity    FlexInt    `json:"quantity"`
	Price       FlexFloat  `json:"price"`
}

// Order is a placed order
type Order struct {
	ID              FlexString  `json:"id"`
	Code            string      `json:"code,omitempty"`
	Status          string      `json:"status"`
	Total           FlexFloat   `json:"total"`
	Items           []OrderItem `json:"items,omitempty"`
	CustomerID      FlexString  `json:"customerId,omitempty"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
	ShippingAddress *Address    `json:"shippingAddress,omitempty"`
	Note            string      `json:"note,omitempty"`
	CreatedAt       Timestamp   `json:"createdAt,omitempty"`
}

// CheckoutRequest turns the current cart into an order
type CheckoutRequest struct {
	ShippingAddress Address `json:"shippingAddress"`
	PaymentMethod   string  `json:"paymentMethod,omitempty"`
	Note            string  `json:"note,omitempty"`
}

// User is a storefront account
type User struct {
	ID        FlexString `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"fullName,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Role      string     `json:"role,omitempty"`
	Active    bool       `json:"isActive"`
	CreatedAt Timestamp  `json:"createdAt,omitempty"`
}

// Media is an uploaded file
type Media struct {
	ID          FlexString `json:"id"`
	URL         string     `json:"url"`
	FileName    string     `json:"fileName,omitempty"`
	ContentType string     `json:"contentType,omitempty"`
	Size        FlexInt    `json:"size,omitempty"`
	CreatedAt   Timestamp  `json:"createdAt,omitempty"`
}

// Category is a product category
type Category struct {
	ID          FlexString `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug,omitempty"`
	ParentID    FlexString `json:"parentId,omitempty"`
	Description string     `json:"description,omitempty"`
}

// Page is a CMS page
type Page struct {
	ID          FlexString `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Content     string     `json:"content,omitempty"`
	Published   bool       `json:"isPublished"`
	PublishedAt Timestamp  `json:"publishedAt,omitempty"`
}

// Tag is a product tag
type Tag struct {
	ID   FlexString `json:"id"`
	Name string     `json:"name"`
	Slug string     `json:"slug,omitempty"`
}

// Attribute is a product attribute definition (size, color, ...)
type Attribute struct {
	ID     FlexString `json:"id"`
	Name   string     `json:"name"`
	Values []string   `json:"values,omitempty"`
}

// Province is a first-level administrative area
type Province struct {
	Code FlexString `json:"code"`
	Name string     `json:"name"`
}

// Ward is a second-level administrative area
type Ward struct {
	Code         FlexString `json:"code"`
	Name         string     `json:"name"`
	ProvinceCode FlexString `json:"provinceCode,omitempty"`
}

// CartItem is a line in the shopping cart
type CartItem struct {
	ID          FlexString `json:"id"`
	ProductID   FlexString `json:"productId"`
	ProductName string     `json:"productName,omitempty"`
	Quantity    FlexInt    `json:"quantity"`
	Price       FlexFloat  `json:"price"`
}

// Cart is the current user's shopping cart
type Cart struct {
	ID    FlexString `json:"id"`
	Items []CartItem `json:"items"`
	Total FlexFloat  `json:"total"`
}

// LoginResponse is returned by the login endpoint
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt Timestamp `json:"expiresAt,omitempty"`
	User      *User     `json:"user,omitempty"`
}
