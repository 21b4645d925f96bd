package store

import "time"

// Order is one denormalized row per order line item. Rows are created by
// CSV import only and never updated or deleted afterwards; nullable source
// columns are pointer-typed so blank values persist as NULL.
type Order struct {
	ID                       uint       `gorm:"primaryKey"`
	Type                     *string    `gorm:"size:50"`
	DaysForShippingReal      *int       `gorm:"column:days_for_shipping_real"`
	DaysForShipmentScheduled *int       `gorm:"column:days_for_shipment_scheduled"`
	BenefitPerOrder          *float64   `gorm:"column:benefit_per_order"`
	SalesPerCustomer         *float64   `gorm:"column:sales_per_customer"`
	DeliveryStatus           *string    `gorm:"size:50"`
	LateDeliveryRisk         *int       `gorm:"column:late_delivery_risk"`
	CategoryID               *int       `gorm:"column:category_id"`
	CategoryName             *string    `gorm:"size:100"`
	CustomerCity             *string    `gorm:"size:100"`
	CustomerCountry          *string    `gorm:"size:100"`
	CustomerEmail            *string    `gorm:"size:100"`
	CustomerFname            *string    `gorm:"size:100"`
	CustomerID               *int       `gorm:"column:customer_id"`
	CustomerLname            *string    `gorm:"size:100"`
	CustomerPassword         *string    `gorm:"size:100"`
	CustomerSegment          *string    `gorm:"size:50"`
	CustomerState            *string    `gorm:"size:100"`
	CustomerStreet           *string    `gorm:"size:200"`
	CustomerZipcode          *float64   `gorm:"column:customer_zipcode"`
	DepartmentID             *int       `gorm:"column:department_id"`
	DepartmentName           *string    `gorm:"size:100"`
	Latitude                 *float64
	Longitude                *float64
	Market                   *string    `gorm:"size:100"`
	OrderCity                *string    `gorm:"size:100"`
	OrderCountry             *string    `gorm:"size:100"`
	OrderCustomerID          *int       `gorm:"column:order_customer_id"`
	OrderDate                *time.Time `gorm:"column:order_date"`
	OrderID                  int        `gorm:"column:order_id;uniqueIndex"`
	OrderItemCardprodID      *int       `gorm:"column:order_item_cardprod_id"`
	OrderItemDiscount        *float64   `gorm:"column:order_item_discount"`
	OrderItemDiscountRate    *float64   `gorm:"column:order_item_discount_rate"`
	OrderItemID              *int       `gorm:"column:order_item_id;uniqueIndex"`
	OrderItemProductPrice    *float64   `gorm:"column:order_item_product_price"`
	OrderItemProfitRatio     *float64   `gorm:"column:order_item_profit_ratio"`
	OrderItemQuantity        *int       `gorm:"column:order_item_quantity"`
	Sales                    *float64
	OrderItemTotal           *float64   `gorm:"column:order_item_total"`
	OrderProfitPerOrder      *float64   `gorm:"column:order_profit_per_order"`
	OrderRegion              *string    `gorm:"size:100"`
	OrderState               *string    `gorm:"size:100"`
	OrderStatus              *string    `gorm:"size:50"`
	OrderZipcode             *float64   `gorm:"column:order_zipcode"`
	ProductCardID            *int       `gorm:"column:product_card_id"`
	ProductCategoryID        *int       `gorm:"column:product_category_id"`
	ProductDescription       *string    `gorm:"type:text"`
	ProductImage             *string    `gorm:"size:200"`
	ProductName              *string    `gorm:"size:200"`
	ProductPrice             *float64   `gorm:"column:product_price"`
	ProductStatus            *int       `gorm:"column:product_status"`
	ShippingDate             *time.Time `gorm:"column:shipping_date"`
	ShippingMode             *string    `gorm:"size:50"`
}

func (Order) TableName() string { return "orders" }

// User is an authentication entity owned by the external security
// collaborator; only seeding and lookup happen here.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	Password     string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`
	FsUniquifier string `gorm:"size:64;uniqueIndex;not null"`
	Roles        []Role `gorm:"many2many:roles_users"`
}

type Role struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:80;uniqueIndex"`
	Description string `gorm:"size:255"`
}
