package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"solemate-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory database shared by the fake repositories.
type memStore struct {
	mu sync.Mutex

	users     map[string]domain.User
	addresses map[string]domain.Address
	products  map[string]domain.Product
	variants  map[string]domain.Variant
	invLogs   []domain.InventoryLog
	offers    map[string]domain.Offer
	coupons   map[string]domain.Coupon
	usages    map[string]int
	carts     map[string][]cartRow
	orders    map[string]domain.Order
	history   []domain.OrderHistory
	ledger    []domain.WalletTransaction
	seq       int
}

type cartRow struct {
	VariantID string
	Quantity  int
	CreatedAt time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]domain.User{},
		addresses: map[string]domain.Address{},
		products:  map[string]domain.Product{},
		variants:  map[string]domain.Variant{},
		offers:    map[string]domain.Offer{},
		coupons:   map[string]domain.Coupon{},
		usages:    map[string]int{},
		carts:     map[string][]cartRow{},
		orders:    map[string]domain.Order{},
	}
}

func cloneOrder(o domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(o.Items))
	for i, item := range o.Items {
		if item.Return != nil {
			r := *item.Return
			item.Return = &r
		}
		items[i] = item
	}
	o.Items = items
	if o.CouponID != nil {
		id := *o.CouponID
		o.CouponID = &id
	}
	return o
}

// snapshot returns a deep copy used to roll back a failed fake transaction.
func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := newMemStore()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.variants {
		c.variants[k] = v
	}
	for k, v := range s.offers {
		c.offers[k] = v
	}
	for k, v := range s.coupons {
		c.coupons[k] = v
	}
	for k, v := range s.usages {
		c.usages[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = append([]cartRow(nil), v...)
	}
	for k, v := range s.orders {
		c.orders[k] = cloneOrder(v)
	}
	c.invLogs = append([]domain.InventoryLog(nil), s.invLogs...)
	c.history = append([]domain.OrderHistory(nil), s.history...)
	c.ledger = append([]domain.WalletTransaction(nil), s.ledger...)
	c.seq = s.seq
	return c
}

func (s *memStore) restore(c *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.addresses, s.products, s.variants = c.users, c.addresses, c.products, c.variants
	s.offers, s.coupons, s.usages, s.carts, s.orders = c.offers, c.coupons, c.usages, c.carts, c.orders
	s.invLogs, s.history, s.ledger, s.seq = c.invLogs, c.history, c.ledger, c.seq
}

func (s *memStore) nextID() string {
	s.seq++
	return uuid.NewString()
}

// --- transaction manager ---

type fakeTxKey struct{}

type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	snap := m.store.snapshot()
	if err := fn(context.WithValue(ctx, fakeTxKey{}, true)); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// --- products ---

type fakeProductRepo struct{ s *memStore }

func (r *fakeProductRepo) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) GetVariantByID(_ context.Context, id string) (*domain.Variant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.variants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, variantID string, delta int, reason, referenceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.variants[variantID]
	if !ok {
		return domain.ErrNotFound
	}
	if v.Stock+delta < 0 {
		return domain.ErrInsufficientStock
	}
	v.Stock += delta
	r.s.variants[variantID] = v
	r.s.invLogs = append(r.s.invLogs, domain.InventoryLog{
		ID: int64(len(r.s.invLogs) + 1), VariantID: variantID, ChangeAmount: delta,
		Reason: reason, ReferenceID: referenceID, CreatedAt: time.Now(),
	})
	return nil
}

func (r *fakeProductRepo) GetInventoryLogs(_ context.Context, variantID string, limit, offset int) ([]domain.InventoryLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.InventoryLog
	for _, l := range r.s.invLogs {
		if l.VariantID == variantID {
			out = append(out, l)
		}
	}
	return out, nil
}

// --- users ---

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetAddress(_ context.Context, userID, addressID string) (*domain.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.addresses[addressID]
	if !ok || a.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *fakeUserRepo) GetAddresses(_ context.Context, userID string) ([]domain.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Address
	for _, a := range r.s.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- offers ---

type fakeOfferRepo struct{ s *memStore }

func (r *fakeOfferRepo) Create(_ context.Context, o *domain.Offer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = r.s.nextID()
	o.CreatedAt = time.Now()
	r.s.offers[o.ID] = *o
	return nil
}

func (r *fakeOfferRepo) Update(_ context.Context, o *domain.Offer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.offers[o.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.offers[o.ID] = *o
	return nil
}

func (r *fakeOfferRepo) GetByID(_ context.Context, id string) (*domain.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.offers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (r *fakeOfferRepo) List(_ context.Context, limit, offset int) ([]domain.Offer, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Offer
	for _, o := range r.s.offers {
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOfferRepo) ListEffective(_ context.Context, now time.Time) ([]domain.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Offer
	for _, o := range r.s.offers {
		if o.IsEffective(now) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOfferRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.offers, id)
	return nil
}

// --- coupons ---

type fakeCouponRepo struct{ s *memStore }

func usageKey(couponID, userID string) string { return couponID + "|" + userID }

// codeTaken mirrors the unique index on coupons.code. Callers hold r.s.mu.
func (r *fakeCouponRepo) codeTaken(code, exceptID string) bool {
	for id, c := range r.s.coupons {
		if c.Code == code && id != exceptID {
			return true
		}
	}
	return false
}

func (r *fakeCouponRepo) CreateCoupon(_ context.Context, c *domain.Coupon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.codeTaken(c.Code, "") {
		return domain.ErrDuplicate
	}
	c.ID = r.s.nextID()
	c.CreatedAt = time.Now()
	r.s.coupons[c.ID] = *c
	return nil
}

func (r *fakeCouponRepo) GetCouponByCode(_ context.Context, code string) (*domain.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.coupons {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeCouponRepo) GetCouponByID(_ context.Context, id string) (*domain.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.coupons[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCouponRepo) ListCoupons(_ context.Context, limit, offset int) ([]domain.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Coupon
	for _, c := range r.s.coupons {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCouponRepo) CountCoupons(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.coupons)), nil
}

func (r *fakeCouponRepo) UpdateCoupon(_ context.Context, c *domain.Coupon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.codeTaken(c.Code, c.ID) {
		return domain.ErrDuplicate
	}
	r.s.coupons[c.ID] = *c
	return nil
}

func (r *fakeCouponRepo) DeleteCoupon(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.coupons, id)
	return nil
}

func (r *fakeCouponRepo) GetUsageCount(_ context.Context, couponID, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.usages[usageKey(couponID, userID)], nil
}

func (r *fakeCouponRepo) ListUsages(_ context.Context, couponID string) ([]domain.CouponUsage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.CouponUsage
	for k, n := range r.s.usages {
		var cid, uid string
		for i := range k {
			if k[i] == '|' {
				cid, uid = k[:i], k[i+1:]
				break
			}
		}
		if cid == couponID {
			out = append(out, domain.CouponUsage{UserID: uid, Count: n})
		}
	}
	return out, nil
}

func (r *fakeCouponRepo) IncrementUsage(_ context.Context, couponID, userID string, limit int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := usageKey(couponID, userID)
	if limit > 0 && r.s.usages[key] >= limit {
		return domain.ErrCouponUsageExceeded
	}
	r.s.usages[key]++
	return nil
}

// --- cart ---

type fakeCartRepo struct{ s *memStore }

func (r *fakeCartRepo) GetCartItems(_ context.Context, userID string) ([]domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.CartItem
	for _, row := range r.s.carts[userID] {
		v := r.s.variants[row.VariantID]
		out = append(out, domain.CartItem{
			ID:        row.VariantID,
			UserID:    userID,
			VariantID: row.VariantID,
			Quantity:  row.Quantity,
			Variant:   v,
			Product:   r.s.products[v.ProductID],
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *fakeCartRepo) UpsertCartItem(_ context.Context, userID, variantID string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := r.s.carts[userID]
	for i := range rows {
		if rows[i].VariantID == variantID {
			rows[i].Quantity = quantity
			return nil
		}
	}
	r.s.carts[userID] = append(rows, cartRow{VariantID: variantID, Quantity: quantity, CreatedAt: time.Now()})
	return nil
}

func (r *fakeCartRepo) RemoveCartItem(_ context.Context, userID, variantID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := r.s.carts[userID]
	out := rows[:0:0]
	for _, row := range rows {
		if row.VariantID != variantID {
			out = append(out, row)
		}
	}
	r.s.carts[userID] = out
	return nil
}

func (r *fakeCartRepo) ClearCart(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.carts, userID)
	return nil
}

// --- orders ---

type fakeOrderRepo struct {
	s *memStore
	// beforeUpdate runs inside UpdateOrder before the version check; tests use it to simulate a concurrent writer.
	beforeUpdate func(id string)
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = r.s.nextID()
	o.Version = 1
	for i := range o.Items {
		o.Items[i].ID = r.s.nextID()
		o.Items[i].OrderID = o.ID
	}
	r.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := cloneOrder(o)
	return &c, nil
}

func (r *fakeOrderRepo) GetByUserID(_ context.Context, userID string) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeOrderRepo) GetAll(_ context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Order
	for _, o := range r.s.orders {
		if filter.Status != "" && string(o.Status) != filter.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) UpdateOrder(_ context.Context, o *domain.Order) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate(o.ID)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != o.Version {
		return domain.ErrVersionConflict
	}
	o.Version++
	r.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *fakeOrderRepo) CreateOrderHistory(_ context.Context, h *domain.OrderHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h.ID = r.s.nextID()
	r.s.history = append(r.s.history, *h)
	return nil
}

func (r *fakeOrderRepo) GetOrderHistory(_ context.Context, orderID string) ([]domain.OrderHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.OrderHistory
	for _, h := range r.s.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

// --- wallet ---

type fakeWalletRepo struct{ s *memStore }

func (r *fakeWalletRepo) AppendTransaction(_ context.Context, t *domain.WalletTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.nextID()
	t.CreatedAt = time.Now()
	r.s.ledger = append(r.s.ledger, *t)
	return nil
}

func (r *fakeWalletRepo) AdjustBalance(_ context.Context, userID string, delta decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	next := u.WalletBalance.Add(delta)
	if next.IsNegative() {
		return domain.ErrInsufficientBalance
	}
	u.WalletBalance = next
	r.s.users[userID] = u
	return nil
}

func (r *fakeWalletRepo) GetBalance(_ context.Context, userID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	return u.WalletBalance, nil
}

func (r *fakeWalletRepo) SetBalance(_ context.Context, userID string, balance decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.WalletBalance = balance
	r.s.users[userID] = u
	return nil
}

func (r *fakeWalletRepo) SumLedger(_ context.Context, userID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, t := range r.s.ledger {
		if t.UserID == userID {
			sum = sum.Add(t.Signed())
		}
	}
	return sum, nil
}

func (r *fakeWalletRepo) ListTransactions(_ context.Context, userID string, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.WalletTransaction
	for _, t := range r.s.ledger {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

// --- session store ---

type fakeSessions struct {
	mu      sync.Mutex
	pending map[string]domain.PendingCoupon
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{pending: map[string]domain.PendingCoupon{}}
}

func (f *fakeSessions) GetPendingCoupon(_ context.Context, userID string) (*domain.PendingCoupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pending[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeSessions) SetPendingCoupon(_ context.Context, userID string, c domain.PendingCoupon) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[userID] = c
	return nil
}

func (f *fakeSessions) ClearPendingCoupon(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, userID)
	return nil
}

// --- payment gateway ---

type fakeGateway struct {
	calls []int64
	err   error
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (*domain.ProviderOrder, error) {
	g.calls = append(g.calls, amountMinor)
	if g.err != nil {
		return nil, g.err
	}
	return &domain.ProviderOrder{
		ID:          fmt.Sprintf("order_prov_%d", len(g.calls)),
		AmountMinor: amountMinor,
		Currency:    currency,
		Receipt:     receipt,
		Status:      "created",
	}, nil
}

// --- fixture ---

const testSecret = "rzp_test_secret"

type fixture struct {
	store    *memStore
	orders   *fakeOrderRepo
	gateway  *fakeGateway
	sessions *fakeSessions

	pricing  *PricingUsecase
	coupons  *CouponUsecase
	offers   *OfferUsecase
	wallet   *WalletUsecase
	orderUC  *OrderUsecase
	payments *PaymentUsecase
	now      time.Time
}

func newFixture() *fixture {
	s := newMemStore()
	f := &fixture{
		store:    s,
		orders:   &fakeOrderRepo{s: s},
		gateway:  &fakeGateway{},
		sessions: newFakeSessions(),
		now:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	tx := &fakeTxManager{store: s}
	clock := func() time.Time { return f.now }

	f.pricing = NewPricingUsecase(&fakeCartRepo{s: s}, &fakeOfferRepo{s: s}, DefaultPricingRules())
	f.pricing.now = clock
	f.coupons = NewCouponUsecase(&fakeCouponRepo{s: s}, f.pricing, f.sessions)
	f.coupons.now = clock
	f.offers = NewOfferUsecase(&fakeOfferRepo{s: s})
	f.wallet = NewWalletUsecase(&fakeWalletRepo{s: s}, tx)
	f.orderUC = NewOrderUsecase(OrderUsecaseDeps{
		OrderRepo:   f.orders,
		CartRepo:    &fakeCartRepo{s: s},
		ProductRepo: &fakeProductRepo{s: s},
		UserRepo:    &fakeUserRepo{s: s},
		CouponRepo:  &fakeCouponRepo{s: s},
		TxManager:   tx,
		Pricing:     f.pricing,
		Coupons:     f.coupons,
		Wallet:      f.wallet,
		Gateway:     f.gateway,
	})
	f.orderUC.now = clock
	f.payments = NewPaymentUsecase(f.orderUC, f.gateway, testSecret)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) addUser(id string, balance string) {
	f.store.users[id] = domain.User{ID: id, Role: domain.RoleCustomer, WalletBalance: dec(balance)}
	f.store.addresses["addr-"+id] = domain.Address{
		ID: "addr-" + id, UserID: id, FullName: "Test Customer", AddressLine: "12 Main Road",
		City: "Pune", State: "MH", PostalCode: "411001", Country: "IN",
	}
}

// addProduct registers a product with one variant and returns the variant id.
func (f *fixture) addProduct(id, categoryID, price string, stock int) string {
	f.store.products[id] = domain.Product{ID: id, Name: "Shoe " + id, CategoryID: categoryID, Price: dec(price), IsActive: true}
	variantID := "var-" + id
	f.store.variants[variantID] = domain.Variant{ID: variantID, ProductID: id, Size: "9", Color: "black", Stock: stock}
	return variantID
}

func (f *fixture) addToCart(userID, variantID string, qty int) {
	f.store.carts[userID] = append(f.store.carts[userID], cartRow{VariantID: variantID, Quantity: qty, CreatedAt: f.now})
}

func (f *fixture) addOffer(pct int, productIDs, categoryIDs []string) {
	id := uuid.NewString()
	f.store.offers[id] = domain.Offer{
		ID: id, Name: fmt.Sprintf("%d%% off", pct), DiscountPercentage: pct,
		ProductIDs: productIDs, CategoryIDs: categoryIDs, IsActive: true,
		ValidFrom: f.now.Add(-24 * time.Hour), ValidTo: f.now.Add(24 * time.Hour),
	}
}

func (f *fixture) addCoupon(c domain.Coupon) domain.Coupon {
	c.ID = uuid.NewString()
	if c.ValidFrom.IsZero() {
		c.ValidFrom = f.now.Add(-24 * time.Hour)
	}
	if c.ValidTo.IsZero() {
		c.ValidTo = f.now.Add(24 * time.Hour)
	}
	c.IsActive = true
	f.store.coupons[c.ID] = c
	return c
}

func (f *fixture) stock(variantID string) int {
	return f.store.variants[variantID].Stock
}

func (f *fixture) balance(userID string) decimal.Decimal {
	return f.store.users[userID].WalletBalance
}

func (f *fixture) ledgerSum(userID string) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range f.store.ledger {
		if t.UserID == userID {
			sum = sum.Add(t.Signed())
		}
	}
	return sum
}

func (f *fixture) storedOrder(id string) domain.Order {
	return f.store.orders[id]
}
