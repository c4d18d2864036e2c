package api

import "time"

// Lead represents a sales lead record.
type Lead struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenantId"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Company    string     `json:"company,omitempty"`
	Status     string     `json:"status"`
	Source     string     `json:"source,omitempty"`
	AssignedTo string     `json:"assignedTo,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// Call represents a logged phone call against a lead or customer.
type Call struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"leadId,omitempty"`
	Direction string    `json:"direction"`
	Outcome   string    `json:"outcome,omitempty"`
	Duration  int       `json:"durationSeconds"`
	Notes     string    `json:"notes,omitempty"`
	CalledAt  time.Time `json:"calledAt"`
}

// Campaign represents a marketing campaign.
type Campaign struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Channel   string     `json:"channel,omitempty"`
	Status    string     `json:"status"`
	Budget    int64      `json:"budgetCents,omitempty"`
	StartsAt  *time.Time `json:"startsAt,omitempty"`
	EndsAt    *time.Time `json:"endsAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Employee represents an HR employee record.
type Employee struct {
	ID         string     `json:"id"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email"`
	Department string     `json:"department,omitempty"`
	Title      string     `json:"title,omitempty"`
	HiredAt    *time.Time `json:"hiredAt,omitempty"`
	IsActive   bool       `json:"isActive"`
}

// PayrollRun represents a payroll processing run.
type PayrollRun struct {
	ID          string    `json:"id"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Status      string    `json:"status"`
	TotalCents  int64     `json:"totalCents"`
	EmployeeIDs []string  `json:"employeeIds,omitempty"`
}

// Notification represents an in-app notification.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Severity  string    `json:"severity,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Invoice represents a tenant billing invoice.
type Invoice struct {
	ID            string     `json:"id"`
	InvoiceNumber string     `json:"invoiceNumber"`
	AmountCents   int64      `json:"amountCents"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ReportSummary represents an aggregated reporting snapshot.
type ReportSummary struct {
	Period         string `json:"period"`
	NewLeads       int    `json:"newLeads"`
	ConvertedLeads int    `json:"convertedLeads"`
	CallsLogged    int    `json:"callsLogged"`
	RevenueCents   int64  `json:"revenueCents"`
}

// CustomerProfile represents the tenant's own customer-admin profile.
type CustomerProfile struct {
	TenantID     string `json:"tenantId"`
	TenantName   string `json:"tenantName"`
	Subdomain    string `json:"subdomain"`
	Plan         string `json:"plan,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	SeatCount    int    `json:"seatCount,omitempty"`
}
