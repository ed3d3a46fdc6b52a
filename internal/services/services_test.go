package services

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/rentroll/internal/auth"
	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/payments"
	"github.com/stwalsh4118/rentroll/internal/repository"
	"github.com/stwalsh4118/rentroll/internal/storage"
	"github.com/stwalsh4118/rentroll/internal/testutil"
	"gorm.io/gorm"
)

// fixedNow is the clock used by tests that depend on the current time.
var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// env wires every service over a fresh SQLite database.
type env struct {
	db *gorm.DB
	fx *testutil.Fixtures

	gateway  *MockGateway
	verifier *MockVerifier
	photos   afero.Fs

	auth        AuthService
	properties  PropertyService
	units       UnitService
	leases      LeaseService
	payments    PaymentService
	maintenance MaintenanceService
	tenants     TenantService
	dashboard   DashboardService
	portal      PortalService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := logger.Nop()

	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	leaseRepo := repository.NewLeaseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	e := &env{
		db:       db,
		fx:       testutil.NewFixtures(t, db),
		gateway:  new(MockGateway),
		verifier: new(MockVerifier),
		photos:   afero.NewMemMapFs(),
	}

	e.auth = NewAuthService(userRepo, tenantRepo,
		auth.NewTokenManager("test-secret", time.Hour), auth.NewPasswordHasher(4), e.verifier, log)
	e.properties = NewPropertyService(propertyRepo, log)
	e.units = NewUnitService(unitRepo, propertyRepo, leaseRepo, log)
	e.leases = NewLeaseService(leaseRepo, unitRepo, propertyRepo, tenantRepo, paymentRepo, log)
	e.tenants = NewTenantService(tenantRepo, log)
	e.portal = NewPortalService(leaseRepo, paymentRepo, maintenanceRepo)

	paymentSvc := NewPaymentService(paymentRepo, leaseRepo, e.gateway,
		PaymentConfig{Currency: "usd", FrontendURL: "http://app.test"}, log)
	paymentSvc.(*paymentService).now = func() time.Time { return fixedNow }
	e.payments = paymentSvc

	maintenanceSvc := NewMaintenanceService(maintenanceRepo, leaseRepo, storage.NewPhotoStoreFs(e.photos, 1<<20), log)
	maintenanceSvc.(*maintenanceService).now = func() time.Time { return fixedNow }
	e.maintenance = maintenanceSvc

	dashboardSvc := NewDashboardService(dashboardRepo, paymentRepo, maintenanceRepo, leaseRepo, log)
	dashboardSvc.(*dashboardService).now = func() time.Time { return fixedNow }
	e.dashboard = dashboardSvc

	return e
}

// portfolio is one landlord with a property and unit, and a tenant.
type portfolio struct {
	landlord *models.User
	property *models.Property
	unit     *models.Unit
	tenant   *models.Tenant
}

func (e *env) portfolio() *portfolio {
	landlord := e.fx.User(models.RoleLandlord)
	property := e.fx.Property(landlord.ID)
	return &portfolio{
		landlord: landlord,
		property: property,
		unit:     e.fx.Unit(property.ID, 1500),
		tenant:   e.fx.Tenant(),
	}
}

func landlordActor(u *models.User) authz.Actor {
	return authz.Actor{UserID: u.ID, Role: models.RoleLandlord, Email: u.Email}
}

func tenantActor(tn *models.Tenant) authz.Actor {
	id := tn.ID
	return authz.Actor{UserID: tn.UserID, Role: models.RoleTenant, TenantID: &id}
}

func adminActor(u *models.User) authz.Actor {
	return authz.Actor{UserID: u.ID, Role: models.RoleAdmin, Email: u.Email}
}

func date(s string) *DateTime {
	d, err := ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return &d
}

// MockGateway is a mock implementation of PaymentGateway for testing
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (*payments.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Session), args.Error(1)
}

func (m *MockGateway) GetCheckoutSession(ctx context.Context, id string) (*payments.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Session), args.Error(1)
}

func (m *MockGateway) PaymentIntentSucceeded(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockGateway) ParseWebhook(payload []byte, signature string) (*payments.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Event), args.Error(1)
}

// MockVerifier is a mock implementation of auth.IdentityVerifier for testing
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, credential string) (*auth.Identity, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}
