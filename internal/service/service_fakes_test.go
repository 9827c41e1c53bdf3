package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/careline/complaint-portal/internal/domain"
)

// In-memory repositories backing the service tests. Missing rows surface as
// pgx.ErrNoRows, matching the real pgx-backed implementations.

type fakeTicketRepo struct {
	mu        sync.Mutex
	tickets   map[string]domain.Ticket
	nextID    int
	updateErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]domain.Ticket{}}
}

func (r *fakeTicketRepo) put(ticket domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[ticket.ID] = ticket
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", r.nextID)
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.TicketNumber == number {
			copied := ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		result = append(result, ticket)
	}
	sortTickets(result)
	return result, nil
}

func (r *fakeTicketRepo) ListByUnit(_ context.Context, unitID string) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.UnitID == unitID {
			result = append(result, ticket)
		}
	}
	sortTickets(result)
	return result, nil
}

func (r *fakeTicketRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, id := range ids {
		if ticket, ok := r.tickets[id]; ok {
			result = append(result, ticket)
		}
	}
	sortTickets(result)
	return result, nil
}

func sortTickets(tickets []domain.Ticket) {
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
}

type fakeEscalationRepo struct {
	mu          sync.Mutex
	escalations []domain.TicketEscalation
	unitRows    []domain.TicketEscalationUnit
	nextID      int

	failCcUnitID string
	unitRowErr   error
}

func newFakeEscalationRepo() *fakeEscalationRepo {
	return &fakeEscalationRepo{}
}

func (r *fakeEscalationRepo) CreateEscalation(_ context.Context, esc *domain.TicketEscalation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	esc.ID = fmt.Sprintf("esc-%d", r.nextID)
	r.escalations = append(r.escalations, *esc)
	return nil
}

func (r *fakeEscalationRepo) CreateEscalationUnit(_ context.Context, row *domain.TicketEscalationUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unitRowErr != nil {
		return r.unitRowErr
	}
	if r.failCcUnitID != "" && row.IsCc && row.UnitID == r.failCcUnitID {
		return fmt.Errorf("insert failed for unit %s", row.UnitID)
	}
	r.nextID++
	row.ID = fmt.Sprintf("escunit-%d", r.nextID)
	r.unitRows = append(r.unitRows, *row)
	return nil
}

func (r *fakeEscalationRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketEscalation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketEscalation
	for _, esc := range r.escalations {
		if esc.TicketID == ticketID {
			result = append(result, esc)
		}
	}
	return result, nil
}

func (r *fakeEscalationRepo) ListUnitsByTicket(_ context.Context, ticketID string) ([]domain.TicketEscalationUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketEscalationUnit
	for _, row := range r.unitRows {
		if row.TicketID == ticketID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (r *fakeEscalationRepo) ListReceivedByUnit(_ context.Context, unitID string) ([]domain.TicketEscalation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketEscalation
	for _, esc := range r.escalations {
		if esc.ToUnitID == unitID {
			result = append(result, esc)
		}
	}
	return result, nil
}

func (r *fakeEscalationRepo) ListSentByUnit(_ context.Context, unitID string) ([]domain.TicketEscalation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketEscalation
	for _, esc := range r.escalations {
		if esc.FromUnitID != nil && *esc.FromUnitID == unitID {
			result = append(result, esc)
		}
	}
	return result, nil
}

func (r *fakeEscalationRepo) ListUnitRowsForUnit(_ context.Context, unitID string) ([]domain.TicketEscalationUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketEscalationUnit
	for _, row := range r.unitRows {
		if row.UnitID == unitID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (r *fakeEscalationRepo) GetUnitRow(_ context.Context, id string) (*domain.TicketEscalationUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.unitRows {
		if row.ID == id {
			copied := row
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEscalationRepo) UpdateUnitRow(_ context.Context, row *domain.TicketEscalationUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.unitRows {
		if r.unitRows[i].ID == row.ID {
			r.unitRows[i] = *row
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeEscalationRepo) HasUnitRelation(_ context.Context, ticketID, unitID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, esc := range r.escalations {
		if esc.TicketID != ticketID {
			continue
		}
		if esc.ToUnitID == unitID {
			return true, nil
		}
		if esc.FromUnitID != nil && *esc.FromUnitID == unitID {
			return true, nil
		}
	}
	for _, row := range r.unitRows {
		if row.TicketID == ticketID && row.UnitID == unitID {
			return true, nil
		}
	}
	return false, nil
}

type fakeAdminRepo struct {
	mu      sync.Mutex
	admins  map[string]domain.Admin
	listErr error
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: map[string]domain.Admin{}}
}

func (r *fakeAdminRepo) put(admin domain.Admin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[admin.ID] = admin
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *domain.Admin) error {
	r.put(*admin)
	return nil
}

func (r *fakeAdminRepo) Update(_ context.Context, admin *domain.Admin) error {
	r.put(*admin)
	return nil
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := admin
	return &copied, nil
}

func (r *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, admin := range r.admins {
		if admin.Email == email {
			copied := admin
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAdminRepo) ListActiveByUnit(_ context.Context, unitID string) ([]domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var result []domain.Admin
	for _, admin := range r.admins {
		if admin.Active && admin.UnitID != nil && *admin.UnitID == unitID {
			result = append(result, admin)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	linked   map[string]string
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]domain.Account{}, linked: map[string]string{}}
}

func (r *fakeAccountRepo) put(account domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = account
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := account
	return &copied, nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email != nil && *account.Email == email {
			copied := account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAccountRepo) SetLinkedAdmin(_ context.Context, accountID, adminID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.linked[accountID] = adminID
	account, ok := r.accounts[accountID]
	if !ok {
		return pgx.ErrNoRows
	}
	account.LinkedAdminID = &adminID
	r.accounts[accountID] = account
	return nil
}

type fakeUnitRepo struct {
	mu    sync.Mutex
	units map[string]domain.Unit
}

func newFakeUnitRepo() *fakeUnitRepo {
	return &fakeUnitRepo{units: map[string]domain.Unit{}}
}

func (r *fakeUnitRepo) put(unit domain.Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[unit.ID] = unit
}

func (r *fakeUnitRepo) GetByID(_ context.Context, id string) (*domain.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	unit, ok := r.units[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := unit
	return &copied, nil
}

func (r *fakeUnitRepo) ListActive(_ context.Context) ([]domain.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Unit
	for _, unit := range r.units {
		if unit.IsActive {
			result = append(result, unit)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type fakeResponseRepo struct {
	mu        sync.Mutex
	responses []domain.TicketResponse
	nextID    int
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{}
}

func (r *fakeResponseRepo) Create(_ context.Context, response *domain.TicketResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	response.ID = fmt.Sprintf("resp-%d", r.nextID)
	r.responses = append(r.responses, *response)
	return nil
}

func (r *fakeResponseRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketResponse
	for _, response := range r.responses {
		if response.TicketID == ticketID {
			result = append(result, response)
		}
	}
	return result, nil
}
