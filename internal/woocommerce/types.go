package woocommerce

// MetaData is a WooCommerce key/value meta entry. Values are free-form:
// strings, numbers, arrays or nested objects depending on the store plugins.
type MetaData struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Address is the billing/shipping block shared by customers, orders and
// subscriptions
type Address struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address_1,omitempty"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type Customer struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Username  string  `json:"username"`
	Billing   Address `json:"billing"`
	Shipping  Address `json:"shipping"`
}

type LineItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ProductID   int64   `json:"product_id"`
	VariationID int64   `json:"variation_id"`
	Quantity    int     `json:"quantity"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price"`
	Subtotal    string  `json:"subtotal"`
	Total       string  `json:"total"`
}

type Order struct {
	ID              int64      `json:"id"`
	Number          string     `json:"number"`
	Status          string     `json:"status"`
	CustomerID      int64      `json:"customer_id"`
	Currency        string     `json:"currency"`
	Total           string     `json:"total"`
	DateCreated     string     `json:"date_created"`
	DateCreatedGMT  string     `json:"date_created_gmt"`
	DateModified    string     `json:"date_modified"`
	DateModifiedGMT string     `json:"date_modified_gmt"`
	DateCompleted   string     `json:"date_completed"`
	DatePaid        string     `json:"date_paid"`
	LineItems       []LineItem `json:"line_items"`
	Billing         Address    `json:"billing"`
	Shipping        Address    `json:"shipping"`
	MetaData        []MetaData `json:"meta_data"`
}

// Subscription requires the WooCommerce Subscriptions plugin on the store
type Subscription struct {
	ID                 int64      `json:"id"`
	Status             string     `json:"status"`
	DateCreated        string     `json:"date_created"`
	DateCreatedGMT     string     `json:"date_created_gmt"`
	DateModified       string     `json:"date_modified"`
	DateModifiedGMT    string     `json:"date_modified_gmt"`
	NextPaymentDate    string     `json:"next_payment_date"`
	NextPaymentDateGMT string     `json:"next_payment_date_gmt"`
	EndDate            string     `json:"end_date"`
	EndDateGMT         string     `json:"end_date_gmt"`
	BillingPeriod      string     `json:"billing_period"`
	BillingInterval    string     `json:"billing_interval"`
	Total              string     `json:"total"`
	Currency           string     `json:"currency"`
	LineItems          []LineItem `json:"line_items"`
	Billing            Address    `json:"billing"`
	Shipping           Address    `json:"shipping"`
	PaymentMethod      string     `json:"payment_method"`
	PaymentMethodTitle string     `json:"payment_method_title"`
	RelatedOrders      []int64    `json:"related_orders"`
}

type ProductImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

type Product struct {
	ID     int64          `json:"id"`
	Name   string         `json:"name"`
	Images []ProductImage `json:"images"`
}
