package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/repository"
)

const (
	// ExpiringLeaseWindow is how far ahead lease expiries raise an alert.
	ExpiringLeaseWindow = 30 * 24 * time.Hour
	// UpcomingPaymentWindow is how far ahead due payments raise an alert.
	UpcomingPaymentWindow = 7 * 24 * time.Hour

	recentActivityPerKind = 5
	recentActivityLimit   = 10
	maintenanceUpdates    = 3
)

// LandlordStats is the summary shown on the landlord dashboard.
type LandlordStats struct {
	Properties            int64   `json:"properties"`
	Units                 int64   `json:"units"`
	ActiveLeases          int64   `json:"activeLeases"`
	PendingPayments       int64   `json:"pendingPayments"`
	PendingAmount         float64 `json:"pendingAmount"`
	PendingMaintenance    int64   `json:"pendingMaintenance"`
	InProgressMaintenance int64   `json:"inProgressMaintenance"`
}

// TenantStats is the summary shown on the tenant dashboard.
type TenantStats struct {
	ActiveLeases        int64   `json:"activeLeases"`
	PendingPayments     int64   `json:"pendingPayments"`
	PendingAmount       float64 `json:"pendingAmount"`
	MaintenanceRequests int64   `json:"maintenanceRequests"`
}

// ManagerStats is the occupancy and revenue overview for landlords.
type ManagerStats struct {
	TotalProperties    int64   `json:"totalProperties"`
	TotalUnits         int64   `json:"totalUnits"`
	OccupiedUnits      int64   `json:"occupiedUnits"`
	VacantUnits        int64   `json:"vacantUnits"`
	OccupancyRate      float64 `json:"occupancyRate"`
	ActiveLeases       int64   `json:"activeLeases"`
	PendingMaintenance int64   `json:"pendingMaintenance"`
	OverduePayments    int64   `json:"overduePayments"`
	TotalRevenue       float64 `json:"totalRevenue"`
	PendingRevenue     float64 `json:"pendingRevenue"`
}

// Alert is one dashboard notification.
type Alert struct {
	Type     string    `json:"type"`
	Severity string    `json:"severity"`
	Message  string    `json:"message"`
	Date     time.Time `json:"date"`
	Link     string    `json:"link,omitempty"`
	ID       uint      `json:"id"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	Action    string    `json:"action"`
	Property  string    `json:"property"`
	Time      string    `json:"time"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardService computes dashboard figures within the actor's scope.
type DashboardService interface {
	Stats(ctx context.Context, actor authz.Actor) (*LandlordStats, error)
	TenantStats(ctx context.Context, actor authz.Actor) (*TenantStats, error)
	ManagerStats(ctx context.Context, actor authz.Actor) (*ManagerStats, error)
	// ManagerAlerts lists overdue payments, pending maintenance and leases
	// expiring within ExpiringLeaseWindow.
	ManagerAlerts(ctx context.Context, actor authz.Actor) ([]Alert, error)
	// TenantAlerts lists overdue and upcoming payments and recent
	// maintenance progress.
	TenantAlerts(ctx context.Context, actor authz.Actor) ([]Alert, error)
	// RecentActivity returns the newest property and unit events.
	RecentActivity(ctx context.Context, actor authz.Actor) ([]Activity, error)
}

type dashboardService struct {
	dashboard   repository.DashboardRepository
	payments    repository.PaymentRepository
	maintenance repository.MaintenanceRepository
	leases      repository.LeaseRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(
	dashboard repository.DashboardRepository,
	payments repository.PaymentRepository,
	maintenance repository.MaintenanceRepository,
	leases repository.LeaseRepository,
	log *logger.Logger,
) DashboardService {
	return &dashboardService{
		dashboard:   dashboard,
		payments:    payments,
		maintenance: maintenance,
		leases:      leases,
		log:         log,
		now:         time.Now,
	}
}

func (s *dashboardService) counts(ctx context.Context, actor authz.Actor, res authz.Resource) (*repository.Counts, error) {
	if !authz.Can(actor, res, authz.ActionRead) {
		return nil, fmt.Errorf("%w: Not authorized to view this dashboard", ErrForbidden)
	}
	counts, err := s.dashboard.Counts(ctx, authz.ListScope(actor), s.now().UTC())
	if err != nil {
		s.log.Error("Failed to compute dashboard counts", err, map[string]interface{}{
			"user_id": actor.UserID,
		})
		return nil, fmt.Errorf("failed to compute dashboard: %w", err)
	}
	return counts, nil
}

func (s *dashboardService) Stats(ctx context.Context, actor authz.Actor) (*LandlordStats, error) {
	c, err := s.counts(ctx, actor, authz.ResourceDashboard)
	if err != nil {
		return nil, err
	}
	return &LandlordStats{
		Properties:            c.Properties,
		Units:                 c.Units,
		ActiveLeases:          c.ActiveLeases,
		PendingPayments:       c.PendingPayments,
		PendingAmount:         c.PendingAmount,
		PendingMaintenance:    c.PendingMaintenance,
		InProgressMaintenance: c.InProgressMaintenance,
	}, nil
}

func (s *dashboardService) TenantStats(ctx context.Context, actor authz.Actor) (*TenantStats, error) {
	if actor.IsTenant() && actor.TenantID == nil {
		return &TenantStats{}, nil
	}
	c, err := s.counts(ctx, actor, authz.ResourcePortal)
	if err != nil {
		return nil, err
	}
	return &TenantStats{
		ActiveLeases:        c.ActiveLeases,
		PendingPayments:     c.PendingPayments,
		PendingAmount:       c.PendingAmount,
		MaintenanceRequests: c.MaintenanceTotal,
	}, nil
}

func (s *dashboardService) ManagerStats(ctx context.Context, actor authz.Actor) (*ManagerStats, error) {
	c, err := s.counts(ctx, actor, authz.ResourceDashboard)
	if err != nil {
		return nil, err
	}

	rate := 0.0
	if c.Units > 0 {
		rate = math.Round(float64(c.OccupiedUnits)/float64(c.Units)*1000) / 10
	}
	return &ManagerStats{
		TotalProperties:    c.Properties,
		TotalUnits:         c.Units,
		OccupiedUnits:      c.OccupiedUnits,
		VacantUnits:        c.Units - c.OccupiedUnits,
		OccupancyRate:      rate,
		ActiveLeases:       c.ActiveLeases,
		PendingMaintenance: c.PendingMaintenance,
		OverduePayments:    c.OverduePayments,
		TotalRevenue:       c.PaidAmount,
		PendingRevenue:     c.PendingAmount,
	}, nil
}

func (s *dashboardService) ManagerAlerts(ctx context.Context, actor authz.Actor) ([]Alert, error) {
	if !authz.Can(actor, authz.ResourceDashboard, authz.ActionRead) {
		return nil, fmt.Errorf("%w: Not authorized to view this dashboard", ErrForbidden)
	}
	scope := authz.ListScope(actor)
	now := s.now().UTC()
	pending := models.PaymentPending

	overdue, err := s.payments.List(ctx, scope, repository.PaymentFilter{Status: &pending, DueBefore: &now})
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue payments: %w", err)
	}
	requests, err := s.maintenance.List(ctx, scope, repository.MaintenanceFilter{
		Statuses: []models.MaintenanceStatus{models.MaintenancePending},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load pending maintenance: %w", err)
	}
	active := models.LeaseActive
	expiring, err := s.leases.List(ctx, scope, repository.LeaseFilter{
		Status:        &active,
		EndingBetween: &repository.DateRange{From: now, To: now.Add(ExpiringLeaseWindow)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load expiring leases: %w", err)
	}

	alerts := make([]Alert, 0, len(overdue)+len(requests)+len(expiring))
	for _, p := range overdue {
		alerts = append(alerts, Alert{
			Type:     "payment",
			Severity: "high",
			Message:  fmt.Sprintf("Overdue payment of $%.2f from lease %d", p.Amount, p.LeaseID),
			Date:     p.DueDate,
			ID:       p.ID,
		})
	}
	for _, m := range requests {
		alerts = append(alerts, Alert{
			Type:     "maintenance",
			Severity: severityFor(m.Priority),
			Message:  "Maintenance request: " + m.Title,
			Date:     m.CreatedAt,
			ID:       m.ID,
		})
	}
	for _, l := range expiring {
		alerts = append(alerts, Alert{
			Type:     "lease",
			Severity: "medium",
			Message:  fmt.Sprintf("Lease %d expiring on %s", l.ID, l.EndDate.Format("2006-01-02")),
			Date:     l.EndDate,
			ID:       l.ID,
		})
	}
	return alerts, nil
}

func (s *dashboardService) TenantAlerts(ctx context.Context, actor authz.Actor) ([]Alert, error) {
	if !authz.Can(actor, authz.ResourcePortal, authz.ActionRead) {
		return nil, fmt.Errorf("%w: Not authorized to view this dashboard", ErrForbidden)
	}
	if actor.TenantID == nil {
		return []Alert{}, nil
	}
	scope := authz.ListScope(actor)
	now := s.now().UTC()
	pending := models.PaymentPending

	overdue, err := s.payments.List(ctx, scope, repository.PaymentFilter{Status: &pending, DueBefore: &now})
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue payments: %w", err)
	}
	deadline := now.Add(UpcomingPaymentWindow)
	upcoming, err := s.payments.List(ctx, scope, repository.PaymentFilter{Status: &pending, DueFrom: &now, DueBefore: &deadline})
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming payments: %w", err)
	}
	updates, err := s.maintenance.List(ctx, scope, repository.MaintenanceFilter{
		Statuses:    []models.MaintenanceStatus{models.MaintenanceInProgress, models.MaintenanceCompleted},
		Limit:       maintenanceUpdates,
		RecentFirst: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load maintenance updates: %w", err)
	}

	alerts := make([]Alert, 0, len(overdue)+len(upcoming)+len(updates))
	for _, p := range overdue {
		days := int(now.Sub(p.DueDate).Hours() / 24)
		alerts = append(alerts, Alert{
			Type:     "urgent",
			Severity: "high",
			Message:  fmt.Sprintf("Payment of $%.2f is %s overdue", p.Amount, plural(days, "day")),
			Date:     p.DueDate,
			Link:     "/tenant/payments",
			ID:       p.ID,
		})
	}
	for _, p := range upcoming {
		days := int(p.DueDate.Sub(now).Hours() / 24)
		alerts = append(alerts, Alert{
			Type:     "warning",
			Severity: "medium",
			Message:  fmt.Sprintf("Payment of $%.2f due in %s", p.Amount, plural(days, "day")),
			Date:     p.DueDate,
			Link:     "/tenant/payments",
			ID:       p.ID,
		})
	}
	for _, m := range updates {
		state := "in progress"
		if m.Status == models.MaintenanceCompleted {
			state = "completed"
		}
		alerts = append(alerts, Alert{
			Type:     "info",
			Severity: "low",
			Message:  fmt.Sprintf("Maintenance request '%s' is now %s", m.Title, state),
			Date:     m.UpdatedAt,
			Link:     "/tenant/maintenance",
			ID:       m.ID,
		})
	}
	return alerts, nil
}

func (s *dashboardService) RecentActivity(ctx context.Context, actor authz.Actor) ([]Activity, error) {
	if !authz.Can(actor, authz.ResourceDashboard, authz.ActionRead) {
		return nil, fmt.Errorf("%w: Not authorized to view this dashboard", ErrForbidden)
	}
	scope := authz.ListScope(actor)
	now := s.now().UTC()

	created, err := s.dashboard.RecentProperties(ctx, scope, recentActivityPerKind)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent properties: %w", err)
	}
	units, err := s.dashboard.RecentUnits(ctx, scope, recentActivityPerKind)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent units: %w", err)
	}
	updated, err := s.dashboard.RecentlyUpdatedProperties(ctx, scope, recentActivityPerKind)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated properties: %w", err)
	}

	activities := make([]Activity, 0, len(created)+len(units)+len(updated))
	for _, p := range created {
		activities = append(activities, newActivity("Property Added", p.Title, p.CreatedAt, now))
	}
	for _, u := range units {
		title := ""
		if u.Property != nil {
			title = u.Property.Title
		}
		activities = append(activities, newActivity("Unit Created", title, u.CreatedAt, now))
	}
	for _, p := range updated {
		activities = append(activities, newActivity("Property Updated", p.Title, p.UpdatedAt, now))
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > recentActivityLimit {
		activities = activities[:recentActivityLimit]
	}
	return activities, nil
}

func newActivity(action, property string, at, now time.Time) Activity {
	return Activity{Action: action, Property: property, Time: RelativeTime(now.Sub(at)), Timestamp: at}
}

// RelativeTime renders an age as minutes, hours or days ago.
func RelativeTime(age time.Duration) string {
	if age < 0 {
		age = 0
	}
	switch {
	case age < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(age/time.Minute))
	case age < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(age/time.Hour))
	default:
		return fmt.Sprintf("%d days ago", int(age/(24*time.Hour)))
	}
}

func severityFor(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "high"
	case models.PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
