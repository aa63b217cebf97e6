package constants

type DocumentType string

const (
	DocInvoice       DocumentType = "invoice"
	DocPurchaseOrder DocumentType = "purchase_order"
	DocContract      DocumentType = "contract"
	DocStatement     DocumentType = "statement"
	DocReport        DocumentType = "report"
	DocUnknown       DocumentType = "unknown"
)

var allDocumentTypes = []DocumentType{
	DocInvoice,
	DocPurchaseOrder,
	DocContract,
	DocStatement,
	DocReport,
	DocUnknown,
}

func DocumentTypes() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}
