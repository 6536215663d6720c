package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Rohit1034/HrudaySparshi/models"
	"github.com/Rohit1034/HrudaySparshi/notification"
	"github.com/Rohit1034/HrudaySparshi/repository"

	"github.com/google/uuid"
)

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]models.Order
	createErr error
	// raceTo, when set, is written before the conditional update runs.
	raceTo models.OrderStatus
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]models.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) FindByUserID(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeOrderRepo) FindByStatus(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.OrderStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.raceTo != "" {
		o.Status = r.raceTo
	}
	if o.Status != from {
		r.orders[id] = o
		return repository.ErrStatusConflict
	}
	o.Status = to
	o.UpdatedAt = at
	r.orders[id] = o
	return nil
}

func (r *fakeOrderRepo) StatusSummary(_ context.Context) ([]models.OrderStatusSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byStatus := map[models.OrderStatus]*models.OrderStatusSummary{}
	for _, o := range r.orders {
		row, ok := byStatus[o.Status]
		if !ok {
			row = &models.OrderStatusSummary{Status: o.Status}
			byStatus[o.Status] = row
		}
		row.Count++
		row.Revenue += o.TotalAmount
	}
	out := make([]models.OrderStatusSummary, 0, len(byStatus))
	for _, row := range byStatus {
		out = append(out, *row)
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
	err   error
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) UpsertProfile(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	existing, ok := r.users[user.ID]
	if !ok {
		existing = models.User{ID: user.ID, Role: models.RoleCustomer, CreatedAt: user.UpdatedAt}
	}
	existing.FullName = user.FullName
	existing.Email = user.Email
	existing.PhoneNumber = user.PhoneNumber
	existing.Address = user.Address
	existing.UpdatedAt = user.UpdatedAt
	r.users[user.ID] = existing
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]models.Product
	listErr  error
	lists    int
	finds    int
}

func newFakeProductRepo(products ...models.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]models.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) List(_ context.Context, category string) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Product
	for _, p := range r.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, id string, update models.ProductUpdate, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	update.Apply(&p)
	p.UpdatedAt = at
	r.products[id] = p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []notification.Job
	err  error
}

func (q *fakeQueue) Enqueue(jobs ...notification.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, jobs...)
	return q.err
}

func (q *fakeQueue) all() []notification.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]notification.Job(nil), q.jobs...)
}

type fakeClearer struct {
	mu      sync.Mutex
	cleared []string
}

func (c *fakeClearer) ClearIfActive(_ context.Context, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared = append(c.cleared, userID)
}

type publishedEvent struct {
	topic     string
	eventType string
	body      []byte
}

type fakeSNS struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, topicArn, eventType string, message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{topic: topicArn, eventType: eventType, body: message})
	return f.err
}

func (f *fakeSNS) published() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedEvent(nil), f.events...)
}
