package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vantagecrm/vantage-go/pkg/api"
)

// Leads is the sales-lead client.
type Leads struct{ r *Registry }

// List returns the tenant's leads.
func (s *Leads) List(ctx context.Context) ([]api.Lead, error) {
	var out []api.Lead
	err := s.r.getJSON(ctx, "leads", "/api/leads", &out)
	return out, err
}

// Get returns a single lead.
func (s *Leads) Get(ctx context.Context, id string) (*api.Lead, error) {
	var out api.Lead
	err := s.r.getJSON(ctx, "leads", "/api/leads/"+url.PathEscape(id), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a lead and returns the stored record.
func (s *Leads) Create(ctx context.Context, lead api.Lead) (*api.Lead, error) {
	var out api.Lead
	if err := s.r.client.Post(ctx, "/api/leads", lead, &out); err != nil {
		return nil, err
	}
	s.r.invalidate()
	return &out, nil
}

// Update replaces a lead.
func (s *Leads) Update(ctx context.Context, lead api.Lead) (*api.Lead, error) {
	if lead.ID == "" {
		return nil, fmt.Errorf("services: lead id required for update")
	}
	var out api.Lead
	if err := s.r.client.Put(ctx, "/api/leads/"+url.PathEscape(lead.ID), lead, &out); err != nil {
		return nil, err
	}
	s.r.invalidate()
	return &out, nil
}

// Delete removes a lead.
func (s *Leads) Delete(ctx context.Context, id string) error {
	if err := s.r.client.Delete(ctx, "/api/leads/"+url.PathEscape(id)); err != nil {
		return err
	}
	s.r.invalidate()
	return nil
}

// Calls is the call-log client.
type Calls struct{ r *Registry }

// List returns logged calls.
func (s *Calls) List(ctx context.Context) ([]api.Call, error) {
	var out []api.Call
	err := s.r.getJSON(ctx, "calls", "/api/calls", &out)
	return out, err
}

// Log records a call.
func (s *Calls) Log(ctx context.Context, call api.Call) (*api.Call, error) {
	var out api.Call
	if err := s.r.client.Post(ctx, "/api/calls", call, &out); err != nil {
		return nil, err
	}
	s.r.invalidate()
	return &out, nil
}

// Campaigns is the marketing-campaign client.
type Campaigns struct{ r *Registry }

// List returns the tenant's campaigns.
func (s *Campaigns) List(ctx context.Context) ([]api.Campaign, error) {
	var out []api.Campaign
	err := s.r.getJSON(ctx, "campaigns", "/api/campaigns", &out)
	return out, err
}

// HR is the employee and payroll client.
type HR struct{ r *Registry }

// Employees returns the employee roster.
func (s *HR) Employees(ctx context.Context) ([]api.Employee, error) {
	var out []api.Employee
	err := s.r.getJSON(ctx, "hr", "/api/hr/employees", &out)
	return out, err
}

// PayrollRuns returns payroll history.
func (s *HR) PayrollRuns(ctx context.Context) ([]api.PayrollRun, error) {
	var out []api.PayrollRun
	err := s.r.getJSON(ctx, "hr", "/api/hr/payroll-runs", &out)
	return out, err
}

// Notifications is the in-app notification client.
type Notifications struct{ r *Registry }

// List returns the user's notifications.
func (s *Notifications) List(ctx context.Context) ([]api.Notification, error) {
	var out []api.Notification
	err := s.r.getJSON(ctx, "notifications", "/api/notifications", &out)
	return out, err
}

// MarkRead flags a notification as read.
func (s *Notifications) MarkRead(ctx context.Context, id string) error {
	if err := s.r.client.Put(ctx, "/api/notifications/"+url.PathEscape(id)+"/read", nil, nil); err != nil {
		return err
	}
	s.r.invalidate()
	return nil
}

// Billing is the invoice client.
type Billing struct{ r *Registry }

// Invoices returns the tenant's invoices.
func (s *Billing) Invoices(ctx context.Context) ([]api.Invoice, error) {
	var out []api.Invoice
	err := s.r.getJSON(ctx, "billing", "/api/billing/invoices", &out)
	return out, err
}

// Reporting is the analytics client.
type Reporting struct{ r *Registry }

// Summary returns the aggregated snapshot for a period like "2026-08".
func (s *Reporting) Summary(ctx context.Context, period string) (*api.ReportSummary, error) {
	var out api.ReportSummary
	err := s.r.getJSON(ctx, "reporting", "/api/reports/summary?period="+url.QueryEscape(period), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Customers is the customer-admin client.
type Customers struct{ r *Registry }

// Profile returns the tenant's own profile.
func (s *Customers) Profile(ctx context.Context) (*api.CustomerProfile, error) {
	var out api.CustomerProfile
	err := s.r.getJSON(ctx, "customers", "/api/customers/profile", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the tenant profile.
func (s *Customers) UpdateProfile(ctx context.Context, profile api.CustomerProfile) (*api.CustomerProfile, error) {
	var out api.CustomerProfile
	if err := s.r.client.Put(ctx, "/api/customers/profile", profile, &out); err != nil {
		return nil, err
	}
	s.r.invalidate()
	return &out, nil
}
