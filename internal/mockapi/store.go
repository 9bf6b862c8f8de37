// Package mockapi is an in-memory development backend serving the REST
// contract the storefront talks to, plus the identity endpoints it signs
// members in with.
package mockapi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
)

type adminAccount struct {
	domain.Admin
	hash []byte
}

type member struct {
	uid     string
	email   string
	phone   string
	hash    []byte
	refresh string
}

type orderRecord struct {
	domain.Order
	uid string
}

// Store holds every resource of the dev backend behind one mutex.
type Store struct {
	mu   sync.Mutex
	now  func() time.Time
	cost int

	products      []*domain.Product
	nextProductID int64

	carts map[string]*domain.Cart

	orders      []*orderRecord
	nextOrderID int64

	admins      []*adminAccount
	nextAdminID int64

	members       map[string]*member // by uid
	refreshTokens map[string]string  // refresh token -> uid
	phoneSessions map[string]string  // sessionInfo -> phone number
}

// NewStore creates an empty store hashing passwords at the given bcrypt cost.
func NewStore(cost int) *Store {
	return &Store{
		now:           time.Now,
		cost:          cost,
		nextProductID: 1,
		nextOrderID:   1,
		nextAdminID:   1,
		carts:         make(map[string]*domain.Cart),
		members:       make(map[string]*member),
		refreshTokens: make(map[string]string),
		phoneSessions: make(map[string]string),
	}
}

func (s *Store) findProduct(id int64) *domain.Product {
	for _, p := range s.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func productNotFound(id int64) error {
	return apperrors.NotFound("product", fmt.Sprint(id))
}

func (s *Store) activeWhere(match func(*domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range s.products {
		if p.Active && match(p) {
			out = append(out, *p)
		}
	}
	return out
}

// Products lists active products.
func (s *Store) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeWhere(func(*domain.Product) bool { return true })
}

// Product returns one active product.
func (s *Store) Product(id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProduct(id)
	if p == nil || !p.Active {
		return nil, productNotFound(id)
	}
	cp := *p
	return &cp, nil
}

// Search matches active product names and tags, ignoring case.
func (s *Store) Search(query string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	s.mu.Lock()
	defer s.mu.Unlock()
	if q == "" {
		return []domain.Product{}
	}
	return s.activeWhere(func(p *domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Tag), q)
	})
}

// ByCategory lists the active products of one category, ignoring case.
func (s *Store) ByCategory(category string) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeWhere(func(p *domain.Product) bool {
		return strings.EqualFold(p.Category, category)
	})
}

// Inventory lists every product, archived ones included.
func (s *Store) Inventory() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out
}

func applyInput(p *domain.Product, in domain.ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.OldPrice = in.OldPrice
	p.StockQuantity = in.StockQuantity
	p.Category = canonicalCategory(in.Category)
	p.Tag = in.Tag
	p.ImageURL = in.ImageURL
}

func canonicalCategory(category string) string {
	for _, c := range domain.Categories {
		if strings.EqualFold(c, category) {
			return c
		}
	}
	return category
}

// CreateProduct adds an active product.
func (s *Store) CreateProduct(in domain.ProductInput) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &domain.Product{ID: s.nextProductID, Active: true}
	s.nextProductID++
	applyInput(p, in)
	s.products = append(s.products, p)
	cp := *p
	return &cp
}

// UpdateProduct replaces the editable fields of a product.
func (s *Store) UpdateProduct(id int64, in domain.ProductInput) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProduct(id)
	if p == nil {
		return nil, productNotFound(id)
	}
	applyInput(p, in)
	cp := *p
	return &cp, nil
}

// SetStock sets a product's stock.
func (s *Store) SetStock(id int64, qty int) error {
	if qty < 0 {
		return apperrors.InvalidInput("stock quantity must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProduct(id)
	if p == nil {
		return productNotFound(id)
	}
	p.StockQuantity = qty
	return nil
}

// ToggleVisibility flips a product between active and archived.
func (s *Store) ToggleVisibility(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProduct(id)
	if p == nil {
		return productNotFound(id)
	}
	p.Active = !p.Active
	return nil
}

// cartView returns uid's cart with current product snapshots.
func (s *Store) cartView(uid string) *domain.Cart {
	out := domain.NewCart()
	c, ok := s.carts[uid]
	if !ok {
		return out
	}
	for _, l := range c.Items {
		line := domain.CartLine{ProductID: l.ProductID, Quantity: l.Quantity}
		if p := s.findProduct(l.ProductID); p != nil {
			cp := *p
			line.Product = &cp
		}
		out.Items = append(out.Items, line)
	}
	return out
}

func (s *Store) cart(uid string) *domain.Cart {
	c, ok := s.carts[uid]
	if !ok {
		c = domain.NewCart()
		s.carts[uid] = c
	}
	return c
}

// Cart returns a member's cart.
func (s *Store) Cart(uid string) *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartView(uid)
}

func insufficientStock(p *domain.Product) error {
	return apperrors.Conflict(fmt.Sprintf("only %d of %s in stock", p.StockQuantity, p.Name))
}

// AddToCart adds one unit of an active product.
func (s *Store) AddToCart(uid string, productID int64) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProduct(productID)
	if p == nil || !p.Active {
		return nil, productNotFound(productID)
	}
	c := s.cart(uid)
	if !p.CanIncrement(c.QuantityOf(productID)) {
		return nil, insufficientStock(p)
	}
	c.Increment(p)
	return s.cartView(uid), nil
}

// UpdateCartItem changes a line's quantity by delta; zero removes it.
func (s *Store) UpdateCartItem(uid string, productID int64, delta int) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cart(uid)
	current := c.QuantityOf(productID)
	if current == 0 {
		return nil, apperrors.NotFound("cart item", fmt.Sprint(productID))
	}
	if delta > 0 {
		if p := s.findProduct(productID); p != nil && current+delta > p.StockQuantity {
			return nil, insufficientStock(p)
		}
	}
	c.Adjust(productID, delta)
	return s.cartView(uid), nil
}

// RemoveCartItem drops a line.
func (s *Store) RemoveCartItem(uid string, productID int64) *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart(uid).Remove(productID)
	return s.cartView(uid)
}

// ClearCart empties a member's cart.
func (s *Store) ClearCart(uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, uid)
}

// Checkout records a pending order. uid is empty for guests. Stock is only
// checked here; it is taken when the order is paid.
func (s *Store) Checkout(uid string, req domain.CheckoutRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, apperrors.InvalidInput("order has no items")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec := &orderRecord{uid: uid, Order: domain.Order{
		ID:              s.nextOrderID,
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		Status:          domain.OrderStatusPending,
		CreatedAt:       &now,
	}}

	var subtotal float64
	for _, it := range req.Items {
		p := s.findProduct(it.ProductID)
		if p == nil || !p.Active {
			return nil, productNotFound(it.ProductID)
		}
		if it.Quantity < 1 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("quantity of %s must be at least 1", p.Name))
		}
		if it.Quantity > p.StockQuantity {
			return nil, insufficientStock(p)
		}
		subtotal += p.Price * float64(it.Quantity)
		rec.Items = append(rec.Items, domain.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			Price:       p.Price,
		})
	}
	rec.TotalAmount = subtotal + domain.ShippingFor(subtotal)

	s.nextOrderID++
	s.orders = append(s.orders, rec)
	out := rec.Order
	return &out, nil
}

func newestFirst(recs []*orderRecord, keep func(*orderRecord) bool) []domain.Order {
	out := make([]domain.Order, 0)
	for i := len(recs) - 1; i >= 0; i-- {
		if keep(recs[i]) {
			out = append(out, recs[i].Order)
		}
	}
	return out
}

// MemberOrders lists one member's orders, newest first.
func (s *Store) MemberOrders(uid string) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.orders, func(r *orderRecord) bool { return r.uid == uid })
}

// Orders lists every order, newest first.
func (s *Store) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.orders, func(*orderRecord) bool { return true })
}

func (s *Store) findOrder(id int64) (*orderRecord, error) {
	for _, r := range s.orders {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperrors.NotFound("order", fmt.Sprint(id))
}

// takeStock decrements stock for every line, or nothing when any line is short.
func (s *Store) takeStock(o *orderRecord) error {
	for _, it := range o.Items {
		p := s.findProduct(it.ProductID)
		if p == nil {
			return productNotFound(it.ProductID)
		}
		if p.StockQuantity < it.Quantity {
			return insufficientStock(p)
		}
	}
	for _, it := range o.Items {
		s.findProduct(it.ProductID).StockQuantity -= it.Quantity
	}
	return nil
}

func (s *Store) returnStock(o *orderRecord) {
	for _, it := range o.Items {
		if p := s.findProduct(it.ProductID); p != nil {
			p.StockQuantity += it.Quantity
		}
	}
}

// MarkPaid moves a pending order to paid and takes its stock.
func (s *Store) MarkPaid(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.findOrder(id)
	if err != nil {
		return err
	}
	if o.Status != domain.OrderStatusPending {
		return apperrors.Conflict(fmt.Sprintf("order %d is %s, only pending orders can be marked paid", id, o.Status))
	}
	if err := s.takeStock(o); err != nil {
		return err
	}
	o.Status = domain.OrderStatusPaid
	return nil
}

// CancelOrder cancels a pending or paid order; paid stock goes back.
func (s *Store) CancelOrder(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.findOrder(id)
	if err != nil {
		return err
	}
	if !o.Cancellable() {
		return apperrors.Conflict(fmt.Sprintf("order %d is %s and can no longer be cancelled", id, o.Status))
	}
	if o.Status == domain.OrderStatusPaid {
		s.returnStock(o)
	}
	o.Status = domain.OrderStatusCancelled
	return nil
}

// SetOrderStatus moves an order forward. Cancelled orders are final;
// cancelling goes through CancelOrder and paying a pending order through
// MarkPaid so stock stays consistent.
func (s *Store) SetOrderStatus(id int64, status domain.OrderStatus) error {
	switch status {
	case domain.OrderStatusPaid:
		s.mu.Lock()
		o, err := s.findOrder(id)
		pending := err == nil && o.Status == domain.OrderStatusPending
		s.mu.Unlock()
		if pending {
			return s.MarkPaid(id)
		}
	case domain.OrderStatusCancelled:
		return s.CancelOrder(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.findOrder(id)
	if err != nil {
		return err
	}
	if o.Status == domain.OrderStatusCancelled {
		return apperrors.Conflict(fmt.Sprintf("order %d is cancelled", id))
	}
	if status == domain.OrderStatusPending && o.Status != domain.OrderStatusPending {
		return apperrors.Conflict("an order cannot go back to pending")
	}
	o.Status = status
	return nil
}

// AddAdmin creates a back-office account.
func (s *Store) AddAdmin(username, password string) (*domain.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if strings.EqualFold(a.Username, username) {
			return nil, apperrors.AlreadyExists("admin", "username", username)
		}
	}
	a := &adminAccount{Admin: domain.Admin{ID: s.nextAdminID, Username: username}, hash: hash}
	s.nextAdminID++
	s.admins = append(s.admins, a)
	out := a.Admin
	return &out, nil
}

// VerifyAdmin checks a username and password.
func (s *Store) VerifyAdmin(username, password string) (*domain.Admin, error) {
	s.mu.Lock()
	var found *adminAccount
	for _, a := range s.admins {
		if a.Username == username {
			found = a
			break
		}
	}
	s.mu.Unlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.hash, []byte(password)) != nil {
		return nil, apperrors.Unauthorized("Invalid username or password")
	}
	out := found.Admin
	return &out, nil
}

// HasAdmin reports whether username still has an account.
func (s *Store) HasAdmin(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Username == username {
			return true
		}
	}
	return false
}

// Admins lists back-office accounts.
func (s *Store) Admins() []domain.Admin {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Admin, 0, len(s.admins))
	for _, a := range s.admins {
		out = append(out, a.Admin)
	}
	return out
}

// DeleteAdmin removes an account. Admins cannot delete themselves, so at
// least one account always remains.
func (s *Store) DeleteAdmin(id int64, caller string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.admins {
		if a.ID != id {
			continue
		}
		if a.Username == caller {
			return apperrors.Conflict("you cannot delete your own account")
		}
		s.admins = append(s.admins[:i], s.admins[i+1:]...)
		return nil
	}
	return apperrors.NotFound("admin", fmt.Sprint(id))
}

// Provider failures use the identity provider's message codes.
var (
	errInvalidPassword = apperrors.Unauthorized("INVALID_PASSWORD")
	errInvalidCode     = apperrors.InvalidInput("INVALID_CODE")
	errSessionExpired  = apperrors.InvalidInput("SESSION_EXPIRED")
	errInvalidRefresh  = apperrors.Unauthorized("INVALID_REFRESH_TOKEN")
)

func memberUID(kind, value string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("altair:"+kind+":"+strings.ToLower(value))).String()
}

func (s *Store) issueRefresh(m *member) {
	if m.refresh != "" {
		delete(s.refreshTokens, m.refresh)
	}
	m.refresh = uuid.NewString()
	s.refreshTokens[m.refresh] = m.uid
}

// SignInEmail signs a member in. The first sign-in for an email registers it.
func (s *Store) SignInEmail(email, password string) (*member, error) {
	uid := memberUID("email", email)

	s.mu.Lock()
	m, ok := s.members[uid]
	s.mu.Unlock()

	if ok {
		if bcrypt.CompareHashAndPassword(m.hash, []byte(password)) != nil {
			return nil, errInvalidPassword
		}
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		m = &member{uid: uid, email: strings.ToLower(email), hash: hash}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.members[uid]; ok {
		m = existing
	} else {
		s.members[uid] = m
	}
	s.issueRefresh(m)
	out := *m
	return &out, nil
}

// StartPhone opens a phone verification and returns its session info.
func (s *Store) StartPhone(phone string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := uuid.NewString()
	s.phoneSessions[info] = phone
	return info
}

// VerifyPhone completes a phone verification when code matches want.
func (s *Store) VerifyPhone(info, code, want string) (*member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	phone, ok := s.phoneSessions[info]
	if !ok {
		return nil, errSessionExpired
	}
	if code != want {
		return nil, errInvalidCode
	}
	delete(s.phoneSessions, info)

	uid := memberUID("phone", phone)
	m, ok := s.members[uid]
	if !ok {
		m = &member{uid: uid, phone: phone}
		s.members[uid] = m
	}
	s.issueRefresh(m)
	out := *m
	return &out, nil
}

// Refresh rotates a refresh token.
func (s *Store) Refresh(token string) (*member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.refreshTokens[token]
	if !ok {
		return nil, errInvalidRefresh
	}
	m := s.members[uid]
	s.issueRefresh(m)
	out := *m
	return &out, nil
}

// IsMember reports whether uid belongs to a signed-up member.
func (s *Store) IsMember(uid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[uid]
	return ok
}
