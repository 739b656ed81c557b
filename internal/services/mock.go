package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"games-ticketing-platform/internal/models"
	"games-ticketing-platform/internal/repositories"

	"github.com/google/uuid"
)

// In-memory repository doubles for service tests. They reproduce the
// guarded-update semantics of the SQL repositories, including the error
// classification, so service behavior can be tested without a database.

// MockOfferRepository is an in-memory offer store
type MockOfferRepository struct {
	mu     sync.Mutex
	offers map[int64]*models.Offer
	nextID int64
}

// NewMockOfferRepository creates an empty in-memory offer store
func NewMockOfferRepository() *MockOfferRepository {
	return &MockOfferRepository{offers: make(map[int64]*models.Offer)}
}

func cloneOffer(o *models.Offer) *models.Offer {
	c := *o
	if o.ExpiresAt != nil {
		t := *o.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}

// Seed inserts an offer directly, bypassing validation
func (m *MockOfferRepository) Seed(offer *models.Offer) *models.Offer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offer.ID == 0 {
		m.nextID++
		offer.ID = m.nextID
	} else if offer.ID > m.nextID {
		m.nextID = offer.ID
	}
	m.offers[offer.ID] = cloneOffer(offer)
	return cloneOffer(offer)
}

func (m *MockOfferRepository) Create(req *models.OfferCreateRequest) (*models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	status := models.OfferAvailable
	if req.Quantity == 0 {
		status = models.OfferSoldOut
	}
	now := time.Now()
	offer := &models.Offer{
		ID:          m.nextID,
		Type:        req.Type,
		Discipline:  req.Discipline,
		Description: req.Description,
		Quantity:    req.Quantity,
		PriceCents:  req.PriceCents,
		ExpiresAt:   req.ExpiresAt,
		Status:      status,
		Featured:    req.Featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.offers[offer.ID] = offer
	return cloneOffer(offer), nil
}

func (m *MockOfferRepository) GetByID(id int64) (*models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	offer, ok := m.offers[id]
	if !ok {
		return nil, models.ErrOfferNotFound
	}
	return cloneOffer(offer), nil
}

func (m *MockOfferRepository) Update(id int64, req *models.OfferUpdateRequest) (*models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	offer, ok := m.offers[id]
	if !ok {
		return nil, models.ErrOfferNotFound
	}
	offer.Description = req.Description
	offer.Quantity = req.Quantity
	offer.PriceCents = req.PriceCents
	offer.ExpiresAt = req.ExpiresAt
	offer.Featured = req.Featured
	if offer.Quantity == 0 && offer.Status == models.OfferAvailable {
		offer.Status = models.OfferSoldOut
	} else if offer.Quantity > 0 && offer.Status == models.OfferSoldOut {
		offer.Status = models.OfferAvailable
	}
	offer.UpdatedAt = time.Now()
	return cloneOffer(offer), nil
}

func (m *MockOfferRepository) Withdraw(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	offer, ok := m.offers[id]
	if !ok {
		return models.ErrOfferNotFound
	}
	offer.Status = models.OfferWithdrawn
	offer.UpdatedAt = time.Now()
	return nil
}

func (m *MockOfferRepository) Reserve(id int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	offer, ok := m.offers[id]
	if !ok {
		return models.ErrOfferNotFound
	}
	if !offer.IsPurchasable(time.Now()) {
		return fmt.Errorf("offer %d is %s: %w", id, offer.GetStatusDisplayName(), models.ErrOfferUnavailable)
	}
	if offer.Quantity < quantity {
		return fmt.Errorf("only %d left for offer %d: %w", offer.Quantity, id, models.ErrInsufficientStock)
	}
	offer.Quantity -= quantity
	if offer.Quantity == 0 {
		offer.Status = models.OfferSoldOut
	}
	offer.UpdatedAt = time.Now()
	return nil
}

func (m *MockOfferRepository) Release(id int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	offer, ok := m.offers[id]
	if !ok {
		return models.ErrOfferNotFound
	}
	offer.Quantity += quantity
	if offer.Status == models.OfferSoldOut {
		offer.Status = models.OfferAvailable
	}
	offer.UpdatedAt = time.Now()
	return nil
}

func (m *MockOfferRepository) PriceOf(id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	offer, ok := m.offers[id]
	if !ok {
		return 0, models.ErrOfferNotFound
	}
	return offer.PriceCents, nil
}

func (m *MockOfferRepository) Search(filters repositories.OfferSearchFilters) ([]*models.Offer, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*models.Offer
	for _, offer := range m.offers {
		if filters.Discipline != "" && offer.Discipline != filters.Discipline {
			continue
		}
		if filters.Type != "" && offer.Type != filters.Type {
			continue
		}
		if filters.Status != "" && offer.Status != filters.Status {
			continue
		}
		if filters.Featured != nil && offer.Featured != *filters.Featured {
			continue
		}
		matched = append(matched, cloneOffer(offer))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filters.Offset:]
		}
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}

func (m *MockOfferRepository) ExpireDue(now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, offer := range m.offers {
		if offer.Status == models.OfferAvailable && offer.IsExpired(now) {
			offer.Status = models.OfferExpired
			offer.UpdatedAt = now
			count++
		}
	}
	return count, nil
}

func (m *MockOfferRepository) GetSales() ([]*repositories.OfferSales, error) {
	return nil, nil
}

// MockCartRepository is an in-memory cart store
type MockCartRepository struct {
	mu     sync.Mutex
	carts  map[int64]*models.Cart
	nextID int64
}

// NewMockCartRepository creates an empty in-memory cart store
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{carts: make(map[int64]*models.Cart)}
}

func cloneCart(c *models.Cart) *models.Cart {
	clone := *c
	clone.Lines = make([]models.CartLine, len(c.Lines))
	copy(clone.Lines, c.Lines)
	return &clone
}

func (m *MockCartRepository) CreateOpen(userID uuid.UUID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := time.Now()
	cart := &models.Cart{
		ID:        m.nextID,
		UserID:    userID,
		Status:    models.CartOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.carts[cart.ID] = cart
	return cloneCart(cart), nil
}

func (m *MockCartRepository) GetOpenByUser(userID uuid.UUID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cart := range m.carts {
		if cart.UserID == userID && cart.Status == models.CartOpen {
			return cloneCart(cart), nil
		}
	}
	return nil, models.ErrCartNotFound
}

func (m *MockCartRepository) GetByIDForUser(cartID int64, userID uuid.UUID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok || cart.UserID != userID {
		return nil, models.ErrCartNotFound
	}
	return cloneCart(cart), nil
}

func (m *MockCartRepository) UpsertLine(cartID, offerID int64, quantity int, unitPriceCents int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return models.ErrCartNotFound
	}
	if cart.Status != models.CartOpen {
		return fmt.Errorf("cart %d is %s: %w", cartID, cart.Status, models.ErrCartNotOpen)
	}
	for i := range cart.Lines {
		if cart.Lines[i].OfferID == offerID {
			cart.Lines[i].Quantity = quantity
			return nil
		}
	}
	cart.Lines = append(cart.Lines, models.CartLine{
		CartID:         cartID,
		OfferID:        offerID,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
		CreatedAt:      time.Now(),
	})
	return nil
}

func (m *MockCartRepository) DeleteLine(cartID, offerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return models.ErrCartNotFound
	}
	if cart.Status != models.CartOpen {
		return fmt.Errorf("cart %d is %s: %w", cartID, cart.Status, models.ErrCartNotOpen)
	}
	for i := range cart.Lines {
		if cart.Lines[i].OfferID == offerID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			return nil
		}
	}
	return models.ErrLineNotFound
}

func (m *MockCartRepository) DeleteLines(cartID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return models.ErrCartNotFound
	}
	if cart.Status != models.CartOpen {
		return fmt.Errorf("cart %d is %s: %w", cartID, cart.Status, models.ErrCartNotOpen)
	}
	cart.Lines = nil
	return nil
}

func (m *MockCartRepository) RecomputeTotal(cartID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return 0, models.ErrCartNotFound
	}
	if cart.Status != models.CartOpen {
		return 0, fmt.Errorf("cart %d is %s: %w", cartID, cart.Status, models.ErrCartNotOpen)
	}
	cart.TotalCents = cart.ComputeTotalCents()
	cart.UpdatedAt = time.Now()
	return cart.TotalCents, nil
}

func (m *MockCartRepository) TransitionStatus(cartID int64, from, to models.CartStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartID]
	if !ok {
		return false, models.ErrCartNotFound
	}
	if cart.Status != from {
		return false, nil
	}
	cart.Status = to
	cart.TotalCents = cart.ComputeTotalCents()
	cart.UpdatedAt = time.Now()
	return true, nil
}

// MockPaymentRepository is an in-memory payment store
type MockPaymentRepository struct {
	mu       sync.Mutex
	payments map[int64]*models.Payment
	txns     map[int64]*models.Transaction
	nextID   int64
}

// NewMockPaymentRepository creates an empty in-memory payment store
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[int64]*models.Payment),
		txns:     make(map[int64]*models.Transaction),
	}
}

func clonePayment(p *models.Payment) *models.Payment {
	c := *p
	return &c
}

func (m *MockPaymentRepository) CreatePending(cartID int64, userID uuid.UUID, amountCents int64, method models.PaymentMethod, reference string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.CartID == cartID {
			return nil, fmt.Errorf("cart %d already has a payment: %w", cartID, models.ErrCartAlreadyFinalized)
		}
	}
	m.nextID++
	now := time.Now()
	payment := &models.Payment{
		ID:          m.nextID,
		CartID:      cartID,
		UserID:      userID,
		AmountCents: amountCents,
		Method:      method,
		Status:      models.PaymentPending,
		Reference:   reference,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.payments[payment.ID] = payment
	return clonePayment(payment), nil
}

func (m *MockPaymentRepository) GetByID(id int64) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, models.ErrPaymentNotFound
	}
	return clonePayment(payment), nil
}

func (m *MockPaymentRepository) GetByCart(cartID int64, userID uuid.UUID) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.CartID == cartID && p.UserID == userID {
			return clonePayment(p), nil
		}
	}
	return nil, models.ErrPaymentNotFound
}

func (m *MockPaymentRepository) GetTransaction(paymentID int64) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txns {
		if t.PaymentID == paymentID {
			c := *t
			return &c, nil
		}
	}
	return nil, models.ErrPaymentNotFound
}

func (m *MockPaymentRepository) setStatus(paymentID int64, status models.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[paymentID]
	if !ok {
		return models.ErrPaymentNotFound
	}
	payment.Status = status
	payment.UpdatedAt = time.Now()
	return nil
}

func (m *MockPaymentRepository) addTransaction(txn *models.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	txn.ID = m.nextID
	m.txns[txn.ID] = txn
}

// MockTicketRepository is an in-memory ticket store
type MockTicketRepository struct {
	mu      sync.Mutex
	tickets map[int64]*models.Ticket
	nextID  int64
}

// NewMockTicketRepository creates an empty in-memory ticket store
func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{tickets: make(map[int64]*models.Ticket)}
}

func cloneTicket(t *models.Ticket) *models.Ticket {
	c := *t
	if t.ScannedAt != nil {
		at := *t.ScannedAt
		c.ScannedAt = &at
	}
	return &c
}

func (m *MockTicketRepository) GetByID(id int64) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, models.ErrTicketNotFound
	}
	return cloneTicket(ticket), nil
}

func (m *MockTicketRepository) GetByFinalKey(finalKey string) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.FinalKey == finalKey {
			return cloneTicket(t), nil
		}
	}
	return nil, models.ErrTicketNotFound
}

func (m *MockTicketRepository) GetByUser(userID uuid.UUID, limit, offset int) ([]*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*models.Ticket
	for _, t := range m.tickets {
		if t.UserID == userID {
			matched = append(matched, cloneTicket(t))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MockTicketRepository) GetByPayment(paymentID int64) ([]*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*models.Ticket
	for _, t := range m.tickets {
		if t.PaymentID == paymentID {
			matched = append(matched, cloneTicket(t))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

func (m *MockTicketRepository) MarkScanned(finalKey string) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.FinalKey == finalKey {
			if t.Scanned {
				return nil, fmt.Errorf("ticket %d: %w", t.ID, models.ErrTicketAlreadyScanned)
			}
			now := time.Now()
			t.Scanned = true
			t.ScannedAt = &now
			return cloneTicket(t), nil
		}
	}
	return nil, models.ErrTicketNotFound
}

func (m *MockTicketRepository) setFinalKey(id int64, finalKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tickets[id]; ok {
		t.FinalKey = finalKey
	}
}

func (m *MockTicketRepository) add(ticket *models.Ticket) *models.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ticket.ID = m.nextID
	m.tickets[ticket.ID] = ticket
	return cloneTicket(ticket)
}

// MockUserRepository is an in-memory user store
type MockUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

// NewMockUserRepository creates an empty in-memory user store
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uuid.UUID]*models.User)}
}

// Seed inserts a user, assigning an id when absent
func (m *MockUserRepository) Seed(user *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	c := *user
	return &c
}

func (m *MockUserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	c := *user
	return &c, nil
}

// MockPipelineRepository settles checkouts against the other in-memory
// stores with the same all-or-nothing observable behavior as the SQL
// pipeline.
type MockPipelineRepository struct {
	mu       sync.Mutex
	carts    *MockCartRepository
	payments *MockPaymentRepository
	offers   *MockOfferRepository
	tickets  *MockTicketRepository
}

// NewMockPipelineRepository wires a pipeline over the given in-memory stores
func NewMockPipelineRepository(carts *MockCartRepository, payments *MockPaymentRepository, offers *MockOfferRepository, tickets *MockTicketRepository) *MockPipelineRepository {
	return &MockPipelineRepository{
		carts:    carts,
		payments: payments,
		offers:   offers,
		tickets:  tickets,
	}
}

func (m *MockPipelineRepository) FinalizeSuccess(cart *models.Cart, paymentID int64, details string, isTest bool, purchaseDate time.Time, keyFn models.TicketKeyFunc) ([]*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	transitioned, err := m.carts.TransitionStatus(cart.ID, models.CartCheckedOut, models.CartPaid)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return nil, fmt.Errorf("cart %d is no longer checked out: %w", cart.ID, models.ErrCartAlreadyFinalized)
	}

	if err := m.payments.setStatus(paymentID, models.PaymentSucceeded); err != nil {
		return nil, err
	}

	now := time.Now()
	m.payments.addTransaction(&models.Transaction{
		PaymentID:   paymentID,
		AmountCents: cart.TotalCents,
		Status:      models.TransactionAuthorized,
		ValidatedAt: &now,
		Details:     details,
		IsTest:      isTest,
		CreatedAt:   now,
	})

	var tickets []*models.Ticket
	for i := range cart.Lines {
		line := &cart.Lines[i]
		offer, err := m.offers.GetByID(line.OfferID)
		if err != nil {
			return nil, fmt.Errorf("offer %d: %w", line.OfferID, models.ErrTicketIssuanceFailure)
		}
		for unit := 0; unit < line.Quantity; unit++ {
			ticket := m.tickets.add(&models.Ticket{
				FinalKey:         "provisional:" + uuid.NewString(),
				UserID:           cart.UserID,
				PaymentID:        paymentID,
				OfferID:          line.OfferID,
				OfferDescription: offer.Description,
				PurchaseDate:     purchaseDate,
				CreatedAt:        now,
			})
			ticket.FinalKey = keyFn(ticket.ID, cart.UserID, line.OfferID, purchaseDate)
			m.tickets.setFinalKey(ticket.ID, ticket.FinalKey)
			tickets = append(tickets, ticket)
		}
	}
	return tickets, nil
}

func (m *MockPipelineRepository) FinalizeFailure(cart *models.Cart, paymentID int64, txnStatus models.TransactionStatus, details string, isTest bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	transitioned, err := m.carts.TransitionStatus(cart.ID, models.CartCheckedOut, models.CartFailed)
	if err != nil {
		return err
	}
	if !transitioned {
		return fmt.Errorf("cart %d is no longer checked out: %w", cart.ID, models.ErrCartAlreadyFinalized)
	}

	if err := m.payments.setStatus(paymentID, models.PaymentFailed); err != nil {
		return err
	}

	m.payments.addTransaction(&models.Transaction{
		PaymentID:   paymentID,
		AmountCents: cart.TotalCents,
		Status:      txnStatus,
		Details:     details,
		IsTest:      isTest,
		CreatedAt:   time.Now(),
	})

	for i := range cart.Lines {
		if err := m.offers.Release(cart.Lines[i].OfferID, cart.Lines[i].Quantity); err != nil {
			return err
		}
	}
	return nil
}

// MockEmailService records every receipt instead of sending it
type MockEmailService struct {
	mu    sync.Mutex
	sends []MockEmailSend
}

// MockEmailSend is one captured receipt
type MockEmailSend struct {
	To        string
	PaymentID int64
	Tickets   int
}

// NewMockEmailService creates a capturing email service
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

func (m *MockEmailService) SendReceipt(user *models.User, payment *models.Payment, tickets []*models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, MockEmailSend{
		To:        user.Email,
		PaymentID: payment.ID,
		Tickets:   len(tickets),
	})
	return nil
}

// Sends returns the receipts captured so far
func (m *MockEmailService) Sends() []MockEmailSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockEmailSend, len(m.sends))
	copy(out, m.sends)
	return out
}
