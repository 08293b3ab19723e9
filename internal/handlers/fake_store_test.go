package handlers_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/01moynul/ecommerce-api/internal/apperr"
	"github.com/01moynul/ecommerce-api/internal/models"
)

type cartKey struct {
	username  string
	productID int64
}

// memStore is an in-memory Store with the same error kinds as the MySQL one.
type memStore struct {
	mu         sync.Mutex
	users      map[string]models.User
	products   map[int64]models.Product
	carts      map[cartKey]int
	orders     map[int64]models.OrderDetail
	nextUser   int64
	nextProd   int64
	nextOrder  int64
	now        time.Time
	getProduct int
	// onGetProduct runs inside GetProduct after the row is read, with mu held.
	onGetProduct func()
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]models.User{},
		products: map[int64]models.Product{},
		carts:    map[cartKey]int{},
		orders:   map[int64]models.OrderDetail{},
		now:      time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
}

var (
	memUserNotFound    = apperr.ErrNotFound.With("User not found", nil)
	memProductNotFound = apperr.ErrNotFound.With("Product not found", nil)
)

func (m *memStore) CreateUser(_ context.Context, username, hash string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; ok {
		return models.User{}, apperr.ErrConflict.With("Username already taken", nil)
	}
	m.nextUser++
	u := models.User{ID: m.nextUser, Username: username, PasswordHash: hash}
	m.users[username] = u
	return u, nil
}

func (m *memStore) GetUser(_ context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return models.User{}, memUserNotFound
	}
	return u, nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, memUserNotFound
}

func (m *memStore) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []models.User{}
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *memStore) UpdateUser(_ context.Context, username string, patch models.UserPatch) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return models.User{}, memUserNotFound
	}
	merged := patch.ApplyTo(u)
	if merged.Username != username {
		if _, taken := m.users[merged.Username]; taken {
			return models.User{}, apperr.ErrConflict.With("Username already taken", nil)
		}
		delete(m.users, username)
	}
	m.users[merged.Username] = merged
	return merged, nil
}

func (m *memStore) DeleteUser(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; !ok {
		return memUserNotFound
	}
	delete(m.users, username)
	for k := range m.carts {
		if k.username == username {
			delete(m.carts, k)
		}
	}
	for id, o := range m.orders {
		if o.Username == username {
			delete(m.orders, id)
		}
	}
	return nil
}

func (m *memStore) CreateProduct(_ context.Context, in models.ProductInput) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextProd++
	p := in.Product()
	p.ID = m.nextProd
	m.products[p.ID] = p
	return p, nil
}

func (m *memStore) GetProduct(_ context.Context, id int64) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getProduct++
	p, ok := m.products[id]
	if !ok {
		return models.Product{}, memProductNotFound
	}
	if m.onGetProduct != nil {
		m.onGetProduct()
	}
	return p, nil
}

func (m *memStore) ListProducts(context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	products := []models.Product{}
	for _, p := range m.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (m *memStore) UpdateProduct(_ context.Context, id int64, patch models.ProductPatch) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return models.Product{}, memProductNotFound
	}
	merged := patch.ApplyTo(p)
	m.products[id] = merged
	return merged, nil
}

func (m *memStore) DeleteProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return memProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) AddCartItem(_ context.Context, username string, productID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; !ok {
		return memUserNotFound
	}
	if _, ok := m.products[productID]; !ok {
		return memProductNotFound
	}
	key := cartKey{username, productID}
	if _, ok := m.carts[key]; ok {
		return apperr.ErrDuplicateItem
	}
	m.carts[key] = quantity
	return nil
}

func (m *memStore) GetCart(_ context.Context, username string) (models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var lines []models.CartLine
	for _, k := range m.cartKeys(username) {
		p, ok := m.products[k.productID]
		if !ok {
			continue
		}
		lines = append(lines, models.CartLine{
			ProductID: p.ID, Name: p.Name, Description: p.Description, Price: p.Price, Quantity: m.carts[k],
		})
	}
	if len(lines) == 0 {
		return models.Cart{}, apperr.ErrNotFound.With("Cart not found", nil)
	}
	return models.NewCart(username, lines), nil
}

func (m *memStore) UpdateCartItem(_ context.Context, username string, productID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := cartKey{username, productID}
	if _, ok := m.carts[key]; !ok {
		return apperr.ErrNotFound.With("Item not found in cart", nil)
	}
	m.carts[key] = quantity
	return nil
}

func (m *memStore) RemoveCartItem(_ context.Context, username string, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := cartKey{username, productID}
	if _, ok := m.carts[key]; !ok {
		return apperr.ErrNotFound.With("Item not found in cart", nil)
	}
	delete(m.carts, key)
	return nil
}

func (m *memStore) ClearCart(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.cartKeys(username) {
		delete(m.carts, k)
	}
	return nil
}

func (m *memStore) PlaceOrder(_ context.Context, username string) (models.OrderDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := m.cartKeys(username)
	if len(keys) == 0 {
		return models.OrderDetail{}, apperr.ErrEmptyOrInvalidCart
	}
	items := make([]models.OrderItem, 0, len(keys))
	for _, k := range keys {
		p, ok := m.products[k.productID]
		if !ok {
			return models.OrderDetail{}, apperr.ErrEmptyOrInvalidCart
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID, Name: p.Name, Description: p.Description, UnitPrice: p.Price, Quantity: m.carts[k],
		})
	}
	m.nextOrder++
	m.now = m.now.Add(time.Second)
	detail := models.NewOrderDetail(models.Order{ID: m.nextOrder, Username: username, DatePlaced: m.now}, items)
	m.orders[detail.OrderID] = detail
	for _, k := range keys {
		delete(m.carts, k)
	}
	return detail, nil
}

func (m *memStore) GetOrder(_ context.Context, username string, orderID int64) (models.OrderDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Username != username {
		return models.OrderDetail{}, apperr.ErrNotFound.With("Order not found", nil)
	}
	return o, nil
}

func (m *memStore) ListUserOrders(_ context.Context, username string) ([]models.Order, error) {
	return m.listOrders(func(o models.OrderDetail) bool { return o.Username == username }), nil
}

func (m *memStore) ListOrders(context.Context) ([]models.Order, error) {
	return m.listOrders(func(models.OrderDetail) bool { return true }), nil
}

func (m *memStore) DeleteUserOrders(_ context.Context, username string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, o := range m.orders {
		if o.Username == username {
			delete(m.orders, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteOrder(_ context.Context, username string, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Username != username {
		return apperr.ErrNotFound.With("Order not found", nil)
	}
	delete(m.orders, orderID)
	return nil
}

func (m *memStore) listOrders(keep func(models.OrderDetail) bool) []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := []models.Order{}
	for _, o := range m.orders {
		if keep(o) {
			orders = append(orders, o.Header())
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders
}

// cartKeys returns the user's cart keys ordered by product id. Callers hold mu.
func (m *memStore) cartKeys(username string) []cartKey {
	var keys []cartKey
	for k := range m.carts {
		if k.username == username {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].productID < keys[j].productID })
	return keys
}
