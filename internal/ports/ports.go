// Package ports declares the persistence contract consumed by services and
// the scheduler. The core is agnostic to whether the backing store is
// PostgreSQL or JSON files on disk.
package ports

import (
	"context"
	"time"

	"coworkpos-backend/internal/domain"
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type SaleStore interface {
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	// SalesForPeriod returns sales with CreatedAt in [start, end).
	SalesForPeriod(ctx context.Context, start, end time.Time) ([]domain.Sale, error)
}

type ExpenseStore interface {
	CreateExpense(ctx context.Context, exp domain.Expense) (*domain.Expense, error)
	ExpensesForPeriod(ctx context.Context, start, end time.Time) ([]domain.Expense, error)
}

type ReportStore interface {
	// SaveCashCutReport persists the report as a single atomic write.
	SaveCashCutReport(ctx context.Context, report domain.CashCutReport) error
	// ListCashCutReports returns newest first, excluding archived reports
	// unless includeArchived is set. limit <= 0 means no limit.
	ListCashCutReports(ctx context.Context, includeArchived bool, limit int) ([]domain.CashCutReport, error)
	// ArchiveReportsBeyond flags all but the newest keep reports as archived
	// and returns how many were flagged.
	ArchiveReportsBeyond(ctx context.Context, keep int) (int, error)
}

type CashSessionStore interface {
	// OpenCashSession persists a new open session. Returns
	// domain.ErrConflict when another session is already open; the check and
	// insert are atomic with respect to concurrent callers.
	OpenCashSession(ctx context.Context, s domain.CashSession) error
	// GetOpenCashSession returns domain.ErrNotFound when no session is open.
	GetOpenCashSession(ctx context.Context) (*domain.CashSession, error)
	GetCashSession(ctx context.Context, id string) (*domain.CashSession, error)
	AppendWithdrawal(ctx context.Context, sessionID string, w domain.Withdrawal) error
	// CloseCashSession writes the closing fields exactly once. Returns
	// domain.ErrConflict when the session is already closed.
	CloseCashSession(ctx context.Context, s domain.CashSession) error
}

type CoworkingStore interface {
	CreateCoworkingSession(ctx context.Context, s domain.CoworkingSession) error
	GetCoworkingSession(ctx context.Context, id string) (*domain.CoworkingSession, error)
	UpdateCoworkingSession(ctx context.Context, s domain.CoworkingSession) error
	// ListCoworkingSessions filters by status when status is non-empty.
	ListCoworkingSessions(ctx context.Context, status domain.SessionStatus, limit int) ([]domain.CoworkingSession, error)
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u domain.User) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Store is the full persistence collaborator implemented by both the
// PostgreSQL repository and the JSON file store.
type Store interface {
	SaleStore
	ExpenseStore
	ReportStore
	CashSessionStore
	CoworkingStore
	ProductStore
	UserStore
	HealthChecker
}
