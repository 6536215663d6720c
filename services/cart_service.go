package services

import (
	"context"
	"errors"

	"github.com/Rohit1034/HrudaySparshi/cartsync"
	apperrors "github.com/Rohit1034/HrudaySparshi/common/errors"
	"github.com/Rohit1034/HrudaySparshi/models"
)

// CartSessions hands out per-user cart sessions.
type CartSessions interface {
	Session(ctx context.Context, userID string) (*cartsync.Session, error)
	End(userID string)
}

// ProductReader looks up catalog entries for cart snapshots.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

type CartView struct {
	Items     []models.CartItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"itemCount"`
}

type CartService struct {
	sessions CartSessions
	products ProductReader
}

func NewCartService(sessions CartSessions, products ProductReader) *CartService {
	return &CartService{sessions: sessions, products: products}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	session, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	return view(session), nil
}

// AddItem snapshots the product from the catalog and adds one unit of it.
func (s *CartService) AddItem(ctx context.Context, userID, productID string) (*CartView, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Availability {
		return nil, apperrors.InvalidArgument("Product is not available")
	}
	item := models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
	}
	return s.apply(ctx, userID, func(cs *cartsync.Session) error { return cs.Add(item) })
}

func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	return s.apply(ctx, userID, func(cs *cartsync.Session) error { return cs.SetQuantity(productID, quantity) })
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*CartView, error) {
	return s.apply(ctx, userID, func(cs *cartsync.Session) error { return cs.Remove(productID) })
}

func (s *CartService) Clear(ctx context.Context, userID string) (*CartView, error) {
	return s.apply(ctx, userID, func(cs *cartsync.Session) error { return cs.Clear() })
}

// EndSession is logout: memory is dropped, the stored cart is kept.
func (s *CartService) EndSession(userID string) {
	s.sessions.End(userID)
}

// apply runs fn on the user's session. A session retired between lookup
// and mutation is replaced once.
func (s *CartService) apply(ctx context.Context, userID string, fn func(*cartsync.Session) error) (*CartView, error) {
	for attempt := 0; attempt < 2; attempt++ {
		session, err := s.session(ctx, userID)
		if err != nil {
			return nil, err
		}
		err = fn(session)
		if err == nil {
			return view(session), nil
		}
		if !errors.Is(err, cartsync.ErrInactive) {
			return nil, apperrors.Internal("Failed to update cart", err)
		}
	}
	return nil, apperrors.Unavailable("Cart session unavailable, please retry", cartsync.ErrInactive)
}

func (s *CartService) session(ctx context.Context, userID string) (*cartsync.Session, error) {
	session, err := s.sessions.Session(ctx, userID)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, apperrors.Unavailable("Cart is loading, please retry", err)
	}
	return nil, apperrors.Unavailable("Cart session unavailable, please retry", err)
}

func view(session *cartsync.Session) *CartView {
	items := session.Items()
	v := &CartView{Items: items}
	for _, item := range items {
		v.Total += item.Price * float64(item.Quantity)
		v.ItemCount += item.Quantity
	}
	v.Total = models.RoundCurrency(v.Total)
	return v
}
