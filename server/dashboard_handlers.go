package server

import "net/http"

// Invoice is a dashboard row. The data is a presentational stand-in; real
// invoice follow-up lives in the business backend.
type Invoice struct {
	ID            int     `json:"id"`
	ClientName    string  `json:"clientName"`
	InvoiceNumber string  `json:"invoiceNumber"`
	Amount        float64 `json:"amount"`
	DueDate       string  `json:"dueDate"`
	DaysOverdue   int     `json:"daysOverdue"`
	Status        string  `json:"status"`
	LastFollowup  string  `json:"lastFollowup"`
	FollowupCount int     `json:"followupCount"`
	ClientEmail   string  `json:"clientEmail"`
}

var mockInvoices = []Invoice{
	{
		ID: 1, ClientName: "Acme Corp", InvoiceNumber: "INV-2024-001",
		Amount: 2500.00, DueDate: "2024-01-15", DaysOverdue: 5,
		Status: "pending_followup", LastFollowup: "2024-01-18",
		FollowupCount: 1, ClientEmail: "billing@acmecorp.com",
	},
	{
		ID: 2, ClientName: "TechStart Inc", InvoiceNumber: "INV-2024-002",
		Amount: 1250.00, DueDate: "2024-01-10", DaysOverdue: 10,
		Status: "followup_sent", LastFollowup: "2024-01-19",
		FollowupCount: 2, ClientEmail: "finance@techstart.com",
	},
	{
		ID: 3, ClientName: "Global Services", InvoiceNumber: "INV-2024-003",
		Amount: 4200.00, DueDate: "2024-01-08", DaysOverdue: 12,
		Status: "no_response", LastFollowup: "2024-01-16",
		FollowupCount: 2, ClientEmail: "accounts@globalservices.com",
	},
	{
		ID: 4, ClientName: "Local Business", InvoiceNumber: "INV-2024-004",
		Amount: 800.00, DueDate: "2024-01-20", DaysOverdue: 0,
		Status: "paid", LastFollowup: "Never",
		FollowupCount: 0, ClientEmail: "owner@localbiz.com",
	},
}

func (s *Server) DashboardInvoicesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var totalOverdue float64
		for _, invoice := range mockInvoices {
			if invoice.DaysOverdue > 0 {
				totalOverdue += invoice.Amount
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"invoices":     mockInvoices,
			"totalOverdue": totalOverdue,
		})
	}
}
