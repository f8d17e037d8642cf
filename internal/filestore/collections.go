package filestore

import (
	"context"
	"os"
	"sort"
	"time"

	"coworkpos-backend/internal/domain"
)

// Health reports whether the store directory is still reachable.
func (s *Store) Health(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

// --- sales ---

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, sale)
	if err := s.persist(fileSales, s.sales); err != nil {
		s.sales = s.sales[:len(s.sales)-1]
		return nil, err
	}
	return &sale, nil
}

func (s *Store) SalesForPeriod(ctx context.Context, start, end time.Time) ([]domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Sale
	for _, sale := range s.sales {
		if !sale.CreatedAt.Before(start) && sale.CreatedAt.Before(end) {
			out = append(out, sale)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- expenses ---

func (s *Store) CreateExpense(ctx context.Context, exp domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, exp)
	if err := s.persist(fileExpenses, s.expenses); err != nil {
		s.expenses = s.expenses[:len(s.expenses)-1]
		return nil, err
	}
	return &exp, nil
}

func (s *Store) ExpensesForPeriod(ctx context.Context, start, end time.Time) ([]domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Expense
	for _, e := range s.expenses {
		if !e.CreatedAt.Before(start) && e.CreatedAt.Before(end) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- cash cut reports ---

func (s *Store) SaveCashCutReport(ctx context.Context, report domain.CashCutReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	if err := s.persist(fileReports, s.reports); err != nil {
		s.reports = s.reports[:len(s.reports)-1]
		return err
	}
	return nil
}

func (s *Store) ListCashCutReports(ctx context.Context, includeArchived bool, limit int) ([]domain.CashCutReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.CashCutReport
	for _, r := range s.reports {
		if r.Archived && !includeArchived {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ArchiveReportsBeyond(ctx context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := make([]*domain.CashCutReport, 0, len(s.reports))
	for i := range s.reports {
		if !s.reports[i].Archived {
			live = append(live, &s.reports[i])
		}
	}
	if len(live) <= keep {
		return 0, nil
	}
	sort.Slice(live, func(i, j int) bool { return live[i].GeneratedAt.After(live[j].GeneratedAt) })

	archived := 0
	for _, r := range live[keep:] {
		r.Archived = true
		archived++
	}
	if err := s.persist(fileReports, s.reports); err != nil {
		for _, r := range live[keep:] {
			r.Archived = false
		}
		return 0, err
	}
	return archived, nil
}

// --- cash sessions ---

func (s *Store) OpenCashSession(ctx context.Context, session domain.CashSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cs := range s.cashSessions {
		if cs.Open() {
			return domain.Conflictf("a cash session is already open")
		}
	}
	s.cashSessions = append(s.cashSessions, session)
	if err := s.persist(fileCashSessions, s.cashSessions); err != nil {
		s.cashSessions = s.cashSessions[:len(s.cashSessions)-1]
		return err
	}
	return nil
}

func (s *Store) GetOpenCashSession(ctx context.Context) (*domain.CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cashSessions {
		if s.cashSessions[i].Open() {
			cp := s.cashSessions[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) GetCashSession(ctx context.Context, id string) (*domain.CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cashSessions {
		if s.cashSessions[i].ID == id {
			cp := s.cashSessions[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) AppendWithdrawal(ctx context.Context, sessionID string, w domain.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cashSessions {
		if s.cashSessions[i].ID != sessionID {
			continue
		}
		s.cashSessions[i].Withdrawals = append(s.cashSessions[i].Withdrawals, w)
		if err := s.persist(fileCashSessions, s.cashSessions); err != nil {
			ws := s.cashSessions[i].Withdrawals
			s.cashSessions[i].Withdrawals = ws[:len(ws)-1]
			return err
		}
		return nil
	}
	return domain.ErrNotFound
}

func (s *Store) CloseCashSession(ctx context.Context, session domain.CashSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cashSessions {
		if s.cashSessions[i].ID != session.ID {
			continue
		}
		if !s.cashSessions[i].Open() {
			return domain.Conflictf("cash session %s is already closed", session.ID)
		}
		prev := s.cashSessions[i]
		s.cashSessions[i].ClosedAt = session.ClosedAt
		s.cashSessions[i].ClosedBy = session.ClosedBy
		s.cashSessions[i].CountedCashCents = session.CountedCashCents
		s.cashSessions[i].ExpectedClosingCents = session.ExpectedClosingCents
		if err := s.persist(fileCashSessions, s.cashSessions); err != nil {
			s.cashSessions[i] = prev
			return err
		}
		return nil
	}
	return domain.ErrNotFound
}

// --- coworking sessions ---

func (s *Store) CreateCoworkingSession(ctx context.Context, session domain.CoworkingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, session)
	if err := s.persist(fileSessions, s.sessions); err != nil {
		s.sessions = s.sessions[:len(s.sessions)-1]
		return err
	}
	return nil
}

func (s *Store) GetCoworkingSession(ctx context.Context, id string) (*domain.CoworkingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			cp := s.sessions[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) UpdateCoworkingSession(ctx context.Context, session domain.CoworkingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == session.ID {
			prev := s.sessions[i]
			s.sessions[i] = session
			if err := s.persist(fileSessions, s.sessions); err != nil {
				s.sessions[i] = prev
				return err
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Store) ListCoworkingSessions(ctx context.Context, status domain.SessionStatus, limit int) ([]domain.CoworkingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.CoworkingSession
	for _, sess := range s.sessions {
		if status != "" && sess.Status != status {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- products ---

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextProductID()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.products = append(s.products, p)
	if err := s.persist(fileProducts, s.products); err != nil {
		s.products = s.products[:len(s.products)-1]
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id && s.products[i].DeletedAt == nil {
			cp := s.products[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Product
	for _, p := range s.products {
		if p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID && s.products[i].DeletedAt == nil {
			prev := s.products[i]
			p.CreatedAt = prev.CreatedAt
			p.UpdatedAt = time.Now()
			s.products[i] = p
			if err := s.persist(fileProducts, s.products); err != nil {
				s.products[i] = prev
				return nil, err
			}
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id && s.products[i].DeletedAt == nil {
			now := time.Now()
			s.products[i].DeletedAt = &now
			if err := s.persist(fileProducts, s.products); err != nil {
				s.products[i].DeletedAt = nil
				return err
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Store) nextProductID() int64 {
	var max int64
	for _, p := range s.products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email && existing.DeletedAt == nil {
			return nil, domain.Conflictf("email already used")
		}
	}
	var max int64
	for _, existing := range s.users {
		if existing.ID > max {
			max = existing.ID
		}
	}
	u.ID = max + 1
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users = append(s.users, u)
	if err := s.persist(fileUsers, s.users); err != nil {
		s.users = s.users[:len(s.users)-1]
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email && s.users[i].DeletedAt == nil {
			cp := s.users[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}
