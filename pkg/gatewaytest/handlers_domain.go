package gatewaytest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vantagecrm/vantage-go/pkg/api"
)

func (g *Gateway) handleEnabledModules(w http.ResponseWriter, r *http.Request) {
	g.mu.RLock()
	modules := make([]api.ModuleInfo, len(g.opts.Modules))
	copy(modules, g.opts.Modules)
	g.mu.RUnlock()
	g.writeData(w, modules)
}

func (g *Gateway) handleListLeads(w http.ResponseWriter, r *http.Request) {
	g.mu.RLock()
	leads := make([]api.Lead, len(g.leads))
	copy(leads, g.leads)
	g.mu.RUnlock()
	g.writeData(w, leads)
}

func (g *Gateway) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var lead api.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		g.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed lead body")
		return
	}
	lead.ID = uuid.New().String()
	lead.CreatedAt = time.Now().UTC()

	g.mu.Lock()
	g.leads = append(g.leads, lead)
	g.mu.Unlock()
	g.writeData(w, lead)
}

func (g *Gateway) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, lead := range g.leads {
		if lead.ID == id {
			g.writeData(w, lead)
			return
		}
	}
	g.writeError(w, http.StatusNotFound, "NOT_FOUND", "lead not found")
}

func (g *Gateway) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var update api.Lead
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		g.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed lead body")
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for i, lead := range g.leads {
		if lead.ID == id {
			update.ID = id
			update.CreatedAt = lead.CreatedAt
			now := time.Now().UTC()
			update.UpdatedAt = &now
			g.leads[i] = update
			g.writeData(w, update)
			return
		}
	}
	g.writeError(w, http.StatusNotFound, "NOT_FOUND", "lead not found")
}

func (g *Gateway) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, lead := range g.leads {
		if lead.ID == id {
			g.leads = append(g.leads[:i], g.leads[i+1:]...)
			g.writeData(w, nil)
			return
		}
	}
	g.writeError(w, http.StatusNotFound, "NOT_FOUND", "lead not found")
}

func (g *Gateway) handleListCalls(w http.ResponseWriter, r *http.Request) {
	g.mu.RLock()
	calls := make([]api.Call, len(g.calls))
	copy(calls, g.calls)
	g.mu.RUnlock()
	g.writeData(w, calls)
}

func (g *Gateway) handleLogCall(w http.ResponseWriter, r *http.Request) {
	var call api.Call
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		g.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed call body")
		return
	}
	call.ID = uuid.New().String()
	if call.CalledAt.IsZero() {
		call.CalledAt = time.Now().UTC()
	}

	g.mu.Lock()
	g.calls = append(g.calls, call)
	g.mu.Unlock()
	g.writeData(w, call)
}

func (g *Gateway) handleEmployees(w http.ResponseWriter, r *http.Request) {
	g.writeData(w, []api.Employee{
		{ID: "e-1", FirstName: "Priya", LastName: "Raman", Email: "priya@seed.test", Department: "Sales", IsActive: true},
		{ID: "e-2", FirstName: "Jonas", LastName: "Weber", Email: "jonas@seed.test", Department: "Support", IsActive: true},
	})
}

func (g *Gateway) handlePayrollRuns(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	g.writeData(w, []api.PayrollRun{
		{
			ID:          "p-1",
			PeriodStart: now.AddDate(0, -1, 0),
			PeriodEnd:   now,
			Status:      "completed",
			TotalCents:  1250000,
		},
	})
}

func (g *Gateway) handleNotifications(w http.ResponseWriter, r *http.Request) {
	g.mu.RLock()
	notifications := make([]api.Notification, len(g.notifications))
	copy(notifications, g.notifications)
	g.mu.RUnlock()
	g.writeData(w, notifications)
}

func (g *Gateway) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.notifications {
		if g.notifications[i].ID == id {
			g.notifications[i].IsRead = true
			g.writeData(w, nil)
			return
		}
	}
	g.writeError(w, http.StatusNotFound, "NOT_FOUND", "notification not found")
}

func (g *Gateway) handleInvoices(w http.ResponseWriter, r *http.Request) {
	g.writeData(w, []api.Invoice{
		{ID: "i-1", InvoiceNumber: "INV-1001", AmountCents: 49900, Currency: "USD", Status: "paid", CreatedAt: time.Now().UTC()},
	})
}

func (g *Gateway) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	g.mu.RLock()
	newLeads := len(g.leads)
	callsLogged := len(g.calls)
	g.mu.RUnlock()
	g.writeData(w, api.ReportSummary{
		Period:      r.URL.Query().Get("period"),
		NewLeads:    newLeads,
		CallsLogged: callsLogged,
	})
}

func (g *Gateway) handleCustomerProfile(w http.ResponseWriter, r *http.Request) {
	g.writeData(w, api.CustomerProfile{
		TenantID:   "tenant-seed",
		TenantName: "Seed Tenant",
		Subdomain:  "seedtenant",
		Plan:       "growth",
		SeatCount:  25,
	})
}
