package nfe

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/precifica/backend/internal/domain"
)

// keyPrefix is the literal tag the issuing system prepends to the 44-char
// access key in the infNFe Id attribute.
const keyPrefix = "NFe"

// bodyPaths are the known envelope shapes, tried in order: the processed
// envelope (nfeProc), the bare invoice envelope (NFe) and a body-only
// document. The first path yielding a non-empty body wins.
var bodyPaths = [][]string{
	{"nfeProc", "NFe", "infNFe"},
	{"NFe", "infNFe"},
	{"infNFe"},
}

// issueDateLayouts are the timestamp shapes seen across producers: dhEmi is
// RFC 3339, older documents carry a date-only dEmi.
var issueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
}

// Parse decodes a raw NFE XML document into an Invoice with its ordered line
// items. It fails with domain.ErrMalformedInvoice when no invoice body can be
// located or when the document carries no line items; individual missing or
// non-numeric fields degrade to zero instead, since partial invoice data is
// more useful than a rejected document. Parse performs no I/O.
func Parse(data []byte) (*domain.Invoice, error) {
	var root node
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInvoice, err)
	}

	body := locateBody(&root)
	if body == nil {
		return nil, domain.ErrMalformedInvoice
	}

	ide := body.child("ide")
	number := ""
	issueDate := time.Time{}
	if ide != nil {
		number = ide.childText("nNF")
		issueDate = parseIssueDate(ide)
	}

	// Line items: det appears once per item; a lone det and a sequence of
	// det decode identically through the node tree.
	dets := body.children("det")
	if len(dets) == 0 {
		return nil, fmt.Errorf("%w: invoice has no line items", domain.ErrMalformedInvoice)
	}

	products := make([]domain.RawProduct, 0, len(dets))
	for _, det := range dets {
		products = append(products, mapProduct(det))
	}

	supplier := ""
	if emit := body.child("emit"); emit != nil {
		supplier = emit.childText("xNome")
	}

	total := decimal.Zero
	if icmsTot := body.descend("total", "ICMSTot"); icmsTot != nil {
		total = parseDecimal(icmsTot.childText("vNF"))
	}

	return &domain.Invoice{
		Key:       extractKey(body, number),
		Number:    number,
		IssueDate: issueDate,
		Supplier:  supplier,
		Total:     total,
		ItemCount: len(products),
		Products:  products,
	}, nil
}

// locateBody tries each known envelope shape in order and returns the first
// non-empty invoice body.
func locateBody(root *node) *node {
	for _, path := range bodyPaths {
		if root.XMLName.Local != path[0] {
			continue
		}
		body := root.descend(path[1:]...)
		if body != nil && len(body.Children) > 0 {
			return body
		}
	}
	return nil
}

// extractKey reads the body's Id attribute and strips the fixed 3-character
// prefix to obtain the 44-character access key. Documents without the
// attribute fall back to the invoice number.
func extractKey(body *node, number string) string {
	id := trimText(body.attr("Id"))
	if id == "" {
		return number
	}
	return strings.TrimPrefix(id, keyPrefix)
}

// mapProduct maps one det element to a RawProduct. The ICMS and IPI triples
// are searched by field name anywhere below their tax group, since the
// grouping element encodes the tax situation (ICMS00, ICMS10, ...).
func mapProduct(det *node) domain.RawProduct {
	var p domain.RawProduct

	if prod := det.child("prod"); prod != nil {
		p.Code = prod.childText("cProd")
		p.Description = prod.childText("xProd")
		p.NCM = prod.childText("NCM")
		p.CFOP = prod.childText("CFOP")
		p.Unit = prod.childText("uCom")
		p.Quantity = parseDecimal(prod.childText("qCom"))
		p.UnitPrice = parseDecimal(prod.childText("vUnCom"))
		p.LineTotal = parseDecimal(prod.childText("vProd"))
	}

	imposto := det.child("imposto")
	if imposto == nil {
		return p
	}

	if icms := imposto.child("ICMS"); icms != nil {
		p.ICMSBase = findDecimal(icms, "vBC")
		p.ICMSValue = findDecimal(icms, "vICMS")
		p.ICMSRate = findDecimal(icms, "pICMS")
	}
	if ipi := imposto.child("IPI"); ipi != nil {
		p.IPIBase = findDecimal(ipi, "vBC")
		p.IPIValue = findDecimal(ipi, "vIPI")
		p.IPIRate = findDecimal(ipi, "pIPI")
	}

	return p
}

func parseIssueDate(ide *node) time.Time {
	raw := ide.childText("dhEmi")
	if raw == "" {
		raw = ide.childText("dEmi")
	}
	for _, layout := range issueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// findDecimal locates a named element anywhere in the subtree and parses its
// text as a decimal, zero when absent.
func findDecimal(n *node, name string) decimal.Decimal {
	found := n.findDescendant(name)
	if found == nil {
		return decimal.Zero
	}
	return parseDecimal(trimText(found.Text))
}

// parseDecimal parses a decimal field; missing or non-numeric values become
// zero rather than failing the document.
func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func trimText(s string) string {
	return strings.TrimSpace(s)
}
