package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/precifica/backend/internal/domain"
	"github.com/precifica/backend/internal/usecase"
)

const reviewSheet = "Revisao"

// reviewHeader is the column order of the review table export.
var reviewHeader = []string{
	"Codigo", "Descricao", "NCM", "CFOP", "Unidade",
	"Quantidade", "Preco Unitario", "Custo Liquido",
	"Preco Xapuri", "Preco Epita",
	"Lucro Promo Xapuri", "Lucro Promo Epita",
	"Tamanho", "Cor",
}

// WriteReviewTable renders the priced rows of an invoice, together with the
// promotional profit columns, as a single-sheet XLSX workbook.
func WriteReviewTable(w io.Writer, invoice *domain.Invoice, priced []domain.PricedProduct, columns []usecase.ProfitColumns) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reviewSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	title := fmt.Sprintf("NF %s - %s", invoice.Number, invoice.Supplier)
	if err := f.SetCellValue(reviewSheet, "A1", title); err != nil {
		return err
	}
	for col, name := range reviewHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(reviewSheet, cell, name); err != nil {
			return err
		}
	}

	for i, p := range priced {
		profitXapuri, profitEpita := "", ""
		if i < len(columns) {
			profitXapuri = columns[i].Xapuri.Profit.StringFixed(2)
			profitEpita = columns[i].Epita.Profit.StringFixed(2)
		}

		values := []interface{}{
			p.Code, p.Description, p.NCM, p.CFOP, p.Unit,
			p.Quantity.String(), p.UnitPrice.StringFixed(2), p.NetCost.StringFixed(2),
			p.PriceXapuri.StringFixed(2), p.PriceEpita.StringFixed(2),
			profitXapuri, profitEpita,
			p.Size, p.Color,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+3)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(reviewSheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
