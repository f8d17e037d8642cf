package domain

import "time"

// Enumerations
const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleStaff   UserRole = "staff"

	SessionActive   SessionStatus = "active"
	SessionFinished SessionStatus = "finished"

	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"

	CutTriggerScheduler CutTrigger = "scheduler"
	CutTriggerManual    CutTrigger = "manual"
)

type UserRole string
type SessionStatus string
type PaymentMethod string
type CutTrigger string

// All monetary amounts are integer cents.

type User struct {
	ID           int64
	Name         string
	Email        string
	Role         UserRole
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type Product struct {
	ID         int64
	Name       string
	Category   string
	PriceCents int64
	TrackStock bool
	Stock      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// Tariff holds the duration-based pricing parameters for coworking sessions.
type Tariff struct {
	FirstHourRateCents int64
	BlockRateCents     int64
	BlockMinutes       int
	DayRateCents       int64
	DayThresholdHours  int
	ToleranceMinutes   int
}

// Extra is a purchase consumed during a coworking session.
type Extra struct {
	ItemID     *int64
	Name       string
	PriceCents int64
	Qty        int
}

// CoworkingSession is a billable occupancy period. TotalCents and
// DurationMinutes are derived from StartTime, EndTime and ConsumedExtras;
// stored values must always match a recomputation.
type CoworkingSession struct {
	ID              string
	CustomerName    string
	StartTime       time.Time
	EndTime         *time.Time
	ConsumedExtras  []Extra
	Status          SessionStatus
	TotalCents      int64
	DurationMinutes int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Withdrawal struct {
	ID          string
	AmountCents int64
	Description string
	WithdrawnBy string
	WithdrawnAt time.Time
}

// CashSession is an open/closed register window. At most one session is open
// at any time; closed sessions are immutable.
type CashSession struct {
	ID                   string
	OpenedAt             time.Time
	ClosedAt             *time.Time
	OpenedBy             string
	ClosedBy             string
	OpeningBalanceCents  int64
	CountedCashCents     *int64
	ExpectedClosingCents *int64
	Withdrawals          []Withdrawal
}

// Open reports whether the session has not been closed yet.
func (s CashSession) Open() bool { return s.ClosedAt == nil }

// WithdrawalsTotalCents sums all withdrawals taken during the session.
func (s CashSession) WithdrawalsTotalCents() int64 {
	var total int64
	for _, w := range s.Withdrawals {
		total += w.AmountCents
	}
	return total
}

type SaleItem struct {
	ProductID  *int64
	Name       string
	PriceCents int64
	Qty        int
}

type Sale struct {
	ID            string
	Code          string
	AmountCents   int64
	PaymentMethod PaymentMethod
	Items         []SaleItem
	// SessionID references the coworking session this sale settles, if any.
	SessionID *string
	SoldBy    string
	CreatedAt time.Time
}

type Expense struct {
	ID          string
	Title       string
	AmountCents int64
	Category    string
	SpentBy     string
	CreatedAt   time.Time
}

// CashCutReport is an append-only end-of-period reconciliation. Reports past
// the retention threshold are flagged archived, never deleted.
type CashCutReport struct {
	ID                 string
	PeriodStart        time.Time
	PeriodEnd          time.Time
	TotalSalesCents    int64
	TotalExpensesCents int64
	NetTotalCents      int64
	// VarianceCents is set only for manual cuts produced by closing a cash
	// session: countedCash minus expectedClosingBalance.
	VarianceCents *int64
	GeneratedAt   time.Time
	TriggeredBy   CutTrigger
	Archived      bool
}
