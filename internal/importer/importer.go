package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kumar-cmd/syngenta-ai/internal/logger"
	"github.com/kumar-cmd/syngenta-ai/internal/metrics"
	"github.com/kumar-cmd/syngenta-ai/internal/store"
)

// Summary aggregates the outcome of one import run.
type Summary struct {
	Inserted int
	Errors   int
	Skipped  int
}

// Importer loads order rows from a delimited file into the order store.
// Rows are processed strictly sequentially, one transaction per row, so a
// failing row never aborts the batch.
type Importer struct {
	Store store.OrderStore
}

func New(s store.OrderStore) *Importer {
	return &Importer{Store: s}
}

// ImportFile reads the CSV at path and persists one order per data row.
// The returned error covers file-level failures only; row-level failures
// are counted in the summary.
func (im *Importer) ImportFile(ctx context.Context, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()
	return im.Import(ctx, f)
}

// Import consumes CSV data from r. The first record is the header row.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return Summary{}, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if err := checkHeader(cols); err != nil {
		return Summary{}, err
	}

	var sum Summary
	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			sum.Errors++
			metrics.IncImportRow("failed")
			logger.Errorf("importer: malformed csv record: %v", err)
			continue
		}

		row := rowView{cols: cols, record: record}
		if row.blank() {
			continue
		}

		orderID, err := row.requiredInt("Order Id")
		if err != nil {
			sum.Errors++
			metrics.IncImportRow("failed")
			logger.Errorf("importer: bad order id %q: %v", row.raw("Order Id"), err)
			continue
		}

		exists, err := im.Store.ExistsByOrderID(ctx, orderID)
		if err != nil {
			sum.Errors++
			metrics.IncImportRow("failed")
			logger.Errorf("importer: lookup order %d: %v", orderID, err)
			continue
		}
		if exists {
			sum.Skipped++
			metrics.IncImportRow("skipped")
			logger.Infof("importer: skipping existing order %d", orderID)
			continue
		}

		order, err := row.toOrder(orderID)
		if err != nil {
			sum.Errors++
			metrics.IncImportRow("failed")
			logger.Errorf("importer: order %d: %v", orderID, err)
			continue
		}
		if err := im.Store.Create(ctx, order); err != nil {
			sum.Errors++
			metrics.IncImportRow("failed")
			logger.Errorf("importer: persist order %d: %v", orderID, err)
			continue
		}
		sum.Inserted++
		metrics.IncImportRow("inserted")
		logger.Debugf("importer: added order %d", orderID)
	}

	logger.Infof("importer: finished loading: %d inserted, %d errors, %d skipped",
		sum.Inserted, sum.Errors, sum.Skipped)
	return sum, nil
}

// expectedColumns is every source column the importer maps. A header
// lacking any of them means the wrong file, not a sparse one.
var expectedColumns = []string{
	"Type",
	"Days for shipping (real)",
	"Days for shipment (scheduled)",
	"Benefit per order",
	"Sales per customer",
	"Delivery Status",
	"Late_delivery_risk",
	"Category Id",
	"Category Name",
	"Customer City",
	"Customer Country",
	"Customer Email",
	"Customer Fname",
	"Customer Id",
	"Customer Lname",
	"Customer Password",
	"Customer Segment",
	"Customer State",
	"Customer Street",
	"Customer Zipcode",
	"Department Id",
	"Department Name",
	"Latitude",
	"Longitude",
	"Market",
	"Order City",
	"Order Country",
	"Order Customer Id",
	"order date (DateOrders)",
	"Order Id",
	"Order Item Cardprod Id",
	"Order Item Discount",
	"Order Item Discount Rate",
	"Order Item Id",
	"Order Item Product Price",
	"Order Item Profit Ratio",
	"Order Item Quantity",
	"Sales",
	"Order Item Total",
	"Order Profit Per Order",
	"Order Region",
	"Order State",
	"Order Status",
	"Order Zipcode",
	"Product Card Id",
	"Product Category Id",
	"Product Description",
	"Product Image",
	"Product Name",
	"Product Price",
	"Product Status",
	"shipping date (DateOrders)",
	"Shipping Mode",
}

func checkHeader(cols map[string]int) error {
	var missing []string
	for _, name := range expectedColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("csv header missing %d expected columns: %s", len(missing), strings.Join(missing, ", "))
	}
	return nil
}

// rowView exposes typed accessors over one CSV record keyed by the
// source's human-readable column names.
type rowView struct {
	cols   map[string]int
	record []string
}

func (r rowView) raw(name string) string {
	idx, ok := r.cols[name]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r rowView) blank() bool {
	for _, v := range r.record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// str maps a blank source value to nil, never to an empty string.
func (r rowView) str(name string) *string {
	v := r.raw(name)
	if v == "" {
		return nil
	}
	return &v
}

func (r rowView) intp(name string) (*int, error) {
	v := r.raw(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// tolerate integral floats like "2.0" from spreadsheet exports
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			return nil, fmt.Errorf("column %q: %q is not an integer", name, v)
		}
		n = int(f)
	}
	return &n, nil
}

func (r rowView) floatp(name string) (*float64, error) {
	v := r.raw(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("column %q: %q is not a number", name, v)
	}
	return &f, nil
}

func (r rowView) requiredInt(name string) (int, error) {
	p, err := r.intp(name)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, fmt.Errorf("column %q is required", name)
	}
	return *p, nil
}

var dateLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// datep coerces unparsable dates to nil rather than failing the row.
func (r rowView) datep(name string) *time.Time {
	v := r.raw(name)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	logger.Warnf("importer: unparsable date %q in column %q, storing null", v, name)
	return nil
}

// toOrder coerces every mapped column; the first coercion failure fails
// the whole row.
func (r rowView) toOrder(orderID int) (*store.Order, error) {
	o := &store.Order{
		OrderID:            orderID,
		Type:               r.str("Type"),
		DeliveryStatus:     r.str("Delivery Status"),
		CategoryName:       r.str("Category Name"),
		CustomerCity:       r.str("Customer City"),
		CustomerCountry:    r.str("Customer Country"),
		CustomerEmail:      r.str("Customer Email"),
		CustomerFname:      r.str("Customer Fname"),
		CustomerLname:      r.str("Customer Lname"),
		CustomerPassword:   r.str("Customer Password"),
		CustomerSegment:    r.str("Customer Segment"),
		CustomerState:      r.str("Customer State"),
		CustomerStreet:     r.str("Customer Street"),
		DepartmentName:     r.str("Department Name"),
		Market:             r.str("Market"),
		OrderCity:          r.str("Order City"),
		OrderCountry:       r.str("Order Country"),
		OrderRegion:        r.str("Order Region"),
		OrderState:         r.str("Order State"),
		OrderStatus:        r.str("Order Status"),
		ProductDescription: r.str("Product Description"),
		ProductImage:       r.str("Product Image"),
		ProductName:        r.str("Product Name"),
		ShippingMode:       r.str("Shipping Mode"),
		OrderDate:          r.datep("order date (DateOrders)"),
		ShippingDate:       r.datep("shipping date (DateOrders)"),
	}

	var err error
	if o.DaysForShippingReal, err = r.intp("Days for shipping (real)"); err != nil {
		return nil, err
	}
	if o.DaysForShipmentScheduled, err = r.intp("Days for shipment (scheduled)"); err != nil {
		return nil, err
	}
	if o.BenefitPerOrder, err = r.floatp("Benefit per order"); err != nil {
		return nil, err
	}
	if o.SalesPerCustomer, err = r.floatp("Sales per customer"); err != nil {
		return nil, err
	}
	if o.LateDeliveryRisk, err = r.intp("Late_delivery_risk"); err != nil {
		return nil, err
	}
	if o.CategoryID, err = r.intp("Category Id"); err != nil {
		return nil, err
	}
	if o.CustomerID, err = r.intp("Customer Id"); err != nil {
		return nil, err
	}
	if o.CustomerZipcode, err = r.floatp("Customer Zipcode"); err != nil {
		return nil, err
	}
	if o.DepartmentID, err = r.intp("Department Id"); err != nil {
		return nil, err
	}
	if o.Latitude, err = r.floatp("Latitude"); err != nil {
		return nil, err
	}
	if o.Longitude, err = r.floatp("Longitude"); err != nil {
		return nil, err
	}
	if o.OrderCustomerID, err = r.intp("Order Customer Id"); err != nil {
		return nil, err
	}
	if o.OrderItemCardprodID, err = r.intp("Order Item Cardprod Id"); err != nil {
		return nil, err
	}
	if o.OrderItemDiscount, err = r.floatp("Order Item Discount"); err != nil {
		return nil, err
	}
	if o.OrderItemDiscountRate, err = r.floatp("Order Item Discount Rate"); err != nil {
		return nil, err
	}
	if o.OrderItemID, err = r.intp("Order Item Id"); err != nil {
		return nil, err
	}
	if o.OrderItemProductPrice, err = r.floatp("Order Item Product Price"); err != nil {
		return nil, err
	}
	if o.OrderItemProfitRatio, err = r.floatp("Order Item Profit Ratio"); err != nil {
		return nil, err
	}
	if o.OrderItemQuantity, err = r.intp("Order Item Quantity"); err != nil {
		return nil, err
	}
	if o.Sales, err = r.floatp("Sales"); err != nil {
		return nil, err
	}
	if o.OrderItemTotal, err = r.floatp("Order Item Total"); err != nil {
		return nil, err
	}
	if o.OrderProfitPerOrder, err = r.floatp("Order Profit Per Order"); err != nil {
		return nil, err
	}
	if o.OrderZipcode, err = r.floatp("Order Zipcode"); err != nil {
		return nil, err
	}
	if o.ProductCardID, err = r.intp("Product Card Id"); err != nil {
		return nil, err
	}
	if o.ProductCategoryID, err = r.intp("Product Category Id"); err != nil {
		return nil, err
	}
	if o.ProductPrice, err = r.floatp("Product Price"); err != nil {
		return nil, err
	}
	if o.ProductStatus, err = r.intp("Product Status"); err != nil {
		return nil, err
	}
	return o, nil
}
