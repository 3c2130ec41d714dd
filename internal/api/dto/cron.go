package dto

// RenewalRunResponse summarizes one renewal sweep.
type RenewalRunResponse struct {
	Processed       int      `json:"processed"`
	InvoicesCreated int      `json:"invoices_created"`
	Closed          int      `json:"closed"`
	Failed          int      `json:"failed"`
	InvoiceIDs      []string `json:"invoice_ids,omitempty"`
}

// OverdueRunResponse summarizes one overdue sweep.
type OverdueRunResponse struct {
	Processed   int `json:"processed"`
	MarkedCount int `json:"marked_count"`
	Failed      int `json:"failed"`
}
