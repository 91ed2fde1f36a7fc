// Package report builds spreadsheet exports for the admin back office.
package report

import (
	"io"

	"github.com/tealeg/xlsx"

	"zando/internal/domain"
	"zando/internal/services"
)

var transactionHeaders = []string{
	"ID", "Order Date", "Customer", "Product", "Additional Products", "Payment Method", "Status", "Total",
}

// WriteTransactions writes rows as an .xlsx workbook with a Transactions
// sheet and a Status Summary sheet counting rows per status.
func WriteTransactions(w io.Writer, rows []services.TransactionSummary) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transactions")
	if err != nil {
		return err
	}
	header := sheet.AddRow()
	for _, h := range transactionHeaders {
		header.AddCell().SetValue(h)
	}
	counts := map[domain.OrderStatus]int{}
	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetValue(r.ID)
		row.AddCell().SetValue(r.OrderDate)
		row.AddCell().SetValue(r.CustomerName)
		row.AddCell().SetValue(r.ProductName)
		row.AddCell().SetValue(r.AdditionalProducts)
		row.AddCell().SetValue(r.PaymentMethod)
		row.AddCell().SetValue(string(r.Status))
		row.AddCell().SetValue(r.Price)
		counts[r.Status]++
	}

	summary, err := file.AddSheet("Status Summary")
	if err != nil {
		return err
	}
	head := summary.AddRow()
	head.AddCell().SetValue("Status")
	head.AddCell().SetValue("Orders")
	total := summary.AddRow()
	total.AddCell().SetValue(domain.AllStatus)
	total.AddCell().SetValue(len(rows))
	for _, st := range domain.Statuses {
		row := summary.AddRow()
		row.AddCell().SetValue(string(st))
		row.AddCell().SetValue(counts[st])
	}
	return file.Write(w)
}
