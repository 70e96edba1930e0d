package report

import (
	"bytes"
	"html/template"

	"github.com/minimart-pos/minimart-pos/internal/sales"
)

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: sans-serif; font-size: 12px; margin: 24px; }
  h1 { font-size: 18px; margin-bottom: 0; }
  .meta { color: #555; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; }
  th, td { border-bottom: 1px solid #ddd; padding: 6px 4px; text-align: left; }
  td.num, th.num { text-align: right; }
  .totals { margin-top: 12px; width: 40%; margin-left: auto; }
  .totals td { border: none; padding: 2px 4px; }
</style>
</head>
<body>
<h1>Invoice {{.InvoiceNumber}}</h1>
<div class="meta">
  Date: {{.CreatedAt.Format "2006-01-02 15:04"}}<br>
  Cashier: {{.CashierName}}{{if .CustomerName}}<br>Customer: {{.CustomerName}}{{end}}
</div>
<table>
  <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Total</th></tr>
  {{range .Items}}
  <tr>
    <td>{{.ProductName}}</td>
    <td class="num">{{.Quantity}}</td>
    <td class="num">{{printf "%.2f" .UnitPrice}}</td>
    <td class="num">{{printf "%.2f" .TotalPrice}}</td>
  </tr>
  {{end}}
</table>
<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{printf "%.2f" .Subtotal}}</td></tr>
  {{if gt .DiscountAmount 0.0}}<tr><td>Discount</td><td class="num">-{{printf "%.2f" .DiscountAmount}}</td></tr>{{end}}
  <tr><td><b>Total</b></td><td class="num"><b>{{printf "%.2f" .TotalAmount}}</b></td></tr>
  <tr><td>Paid ({{.PaymentMethod}})</td><td class="num">{{printf "%.2f" .CashReceived}}</td></tr>
  <tr><td>Change</td><td class="num">{{printf "%.2f" .ChangeAmount}}</td></tr>
</table>
</body>
</html>`))

// BuildInvoiceHTML renders the printable invoice for a sale.
func BuildInvoiceHTML(sale sales.Sale) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, sale); err != nil {
		return "", err
	}
	return buf.String(), nil
}
