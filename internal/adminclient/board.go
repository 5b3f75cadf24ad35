package adminclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/tahcohcat/healplay/internal/models"
)

// Notifier shows transient messages (toasts).
type Notifier interface {
	Notify(msg string)
}

// Confirmer asks the admin a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// FileReader loads a local file picked for upload.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

type osFiles struct{}

func (osFiles) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// API is the subset of Client the board drives.
type API interface {
	ListOrders(ctx context.Context) ([]models.GoodieOrder, error)
	ListGoodies(ctx context.Context) ([]models.Goodie, error)
	CreateGoodie(ctx context.Context, req models.CreateGoodieRequest) (*models.Goodie, error)
	DeleteGoodie(ctx context.Context, id string) error
	SetOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.GoodieOrder, error)
}

// FieldErrors maps form fields to inline messages.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return strings.Join(parts, "; ")
}

// GoodieDraft is the create form.
type GoodieDraft struct {
	Title       string
	Coins       int
	Description string
	ImageURL    string
}

// DefaultMinImageBytes is the smallest image AttachImage accepts.
const DefaultMinImageBytes = 5 * 1024 * 1024

// Board is the admin's cached view of orders and goodies. REST results and
// push events may arrive on different goroutines.
type Board struct {
	api       API
	notifier  Notifier
	confirmer Confirmer
	files     FileReader
	scroll    *ScrollLock
	minImage  int64

	mu      sync.Mutex
	orders  []models.GoodieOrder
	goodies []models.Goodie
	loading int
	pending []models.Event
}

type BoardOption func(*Board)

func WithFileReader(f FileReader) BoardOption {
	return func(b *Board) { b.files = f }
}

func WithScrollLock(l *ScrollLock) BoardOption {
	return func(b *Board) { b.scroll = l }
}

// WithMinImageBytes overrides DefaultMinImageBytes (goodies.min_image_bytes).
func WithMinImageBytes(n int64) BoardOption {
	return func(b *Board) { b.minImage = n }
}

func NewBoard(api API, notifier Notifier, confirmer Confirmer, opts ...BoardOption) *Board {
	b := &Board{
		api:       api,
		notifier:  notifier,
		confirmer: confirmer,
		files:     osFiles{},
		scroll:    NewScrollLock(nil),
		minImage:  DefaultMinImageBytes,
		orders:    []models.GoodieOrder{},
		goodies:   []models.Goodie{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Board) Orders() []models.GoodieOrder {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.GoodieOrder(nil), b.orders...)
}

func (b *Board) Goodies() []models.Goodie {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Goodie(nil), b.goodies...)
}

func (b *Board) ScrollLock() *ScrollLock {
	return b.scroll
}

func (b *Board) notify(err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		b.notifier.Notify(apiErr.Message)
		return
	}
	b.notifier.Notify(err.Error())
}

// Load fetches both lists. A failed fetch is reported through the notifier
// and keeps whatever that list already held. Push events applied while the
// fetch is in flight are replayed on top of the fetched snapshot.
func (b *Board) Load(ctx context.Context) {
	b.mu.Lock()
	b.loading++
	b.mu.Unlock()

	orders, ordersErr := b.api.ListOrders(ctx)
	if ordersErr != nil {
		b.notify(ordersErr)
	}
	goodies, goodiesErr := b.api.ListGoodies(ctx)
	if goodiesErr != nil {
		b.notify(goodiesErr)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if ordersErr == nil {
		if orders == nil {
			orders = []models.GoodieOrder{}
		}
		for _, ev := range b.pending {
			orders, _, _ = applyEvent(orders, nil, ev)
		}
		b.orders = orders
	}
	if goodiesErr == nil {
		if goodies == nil {
			goodies = []models.Goodie{}
		}
		for _, ev := range b.pending {
			_, goodies, _ = applyEvent(nil, goodies, ev)
		}
		b.goodies = goodies
	}
	b.loading--
	if b.loading == 0 {
		b.pending = nil
	}
}

// ValidateDraft reports every invalid field at once.
func ValidateDraft(d GoodieDraft) FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(d.Title) == "" {
		fe["title"] = "Title is required"
	}
	if d.Coins <= 0 {
		fe["coins"] = "Coins must be greater than 0"
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// SubmitGoodie validates d and, only when valid, creates the goodie. The
// returned error is FieldErrors for invalid input; server failures are also
// sent to the notifier.
func (b *Board) SubmitGoodie(ctx context.Context, d GoodieDraft) (*models.Goodie, error) {
	if fe := ValidateDraft(d); fe != nil {
		return nil, fe
	}

	g, err := b.api.CreateGoodie(ctx, models.CreateGoodieRequest{
		Title:       strings.TrimSpace(d.Title),
		Coins:       d.Coins,
		Description: strings.TrimSpace(d.Description),
		ImageURL:    d.ImageURL,
	})
	if err != nil {
		b.notify(err)
		return nil, err
	}

	b.commit(models.EventCatalogNew, g)
	return g, nil
}

// AttachImage reads path into d.ImageURL as a data URL. Files smaller than
// the configured minimum are rejected. Problems come back as a FieldErrors
// entry on "image".
func (b *Board) AttachImage(d *GoodieDraft, path string) error {
	data, err := b.files.ReadFile(path)
	if err != nil {
		return FieldErrors{"image": "Could not read the selected file"}
	}
	if int64(len(data)) < b.minImage {
		return FieldErrors{"image": fmt.Sprintf("Image must be at least %d MB", b.minImage/(1024*1024))}
	}
	mime := http.DetectContentType(data)
	d.ImageURL = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	return nil
}

// DeleteGoodie asks for confirmation and only then deletes. It reports
// whether the goodie was deleted.
func (b *Board) DeleteGoodie(ctx context.Context, id string) (bool, error) {
	title := id
	b.mu.Lock()
	for _, g := range b.goodies {
		if g.ID == id {
			title = g.Title
			break
		}
	}
	b.mu.Unlock()

	release := b.scroll.Acquire()
	ok, err := b.confirmer.Confirm(ctx, fmt.Sprintf("Delete %q from the catalog?", title))
	release()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := b.api.DeleteGoodie(ctx, id); err != nil {
		b.notify(err)
		return false, err
	}

	b.commit(models.EventCatalogDelete, models.DeletedRef{ID: id})
	return true, nil
}

// UpdateOrderStatus sets the status and replaces the cached order with the
// server's copy.
func (b *Board) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.GoodieOrder, error) {
	if !status.Valid() {
		return nil, FieldErrors{"status": fmt.Sprintf("Status must be %q or %q", models.OrderRequested, models.OrderDelivered)}
	}

	order, err := b.api.SetOrderStatus(ctx, id, status)
	if err != nil {
		b.notify(err)
		return nil, err
	}

	b.commit(models.EventOrderUpdate, order)
	return order, nil
}

// Apply merges a push event into the cache. Unknown events are ignored.
func (b *Board) Apply(ev models.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	orders, goodies, err := applyEvent(b.orders, b.goodies, ev)
	if err != nil {
		return err
	}
	b.orders, b.goodies = orders, goodies
	if b.loading > 0 {
		b.pending = append(b.pending, ev)
	}
	return nil
}

// commit merges a server response into the cache the same way a push
// event for it would be.
func (b *Board) commit(name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	b.Apply(models.Event{Name: name, Data: data})
}

// applyEvent returns the lists with ev merged in.
func applyEvent(orders []models.GoodieOrder, goodies []models.Goodie, ev models.Event) ([]models.GoodieOrder, []models.Goodie, error) {
	switch ev.Name {
	case models.EventOrderNew, models.EventOrderUpdate:
		var o models.GoodieOrder
		if err := json.Unmarshal(ev.Data, &o); err != nil {
			return orders, goodies, fmt.Errorf("bad %s payload: %w", ev.Name, err)
		}
		if ev.Name == models.EventOrderNew {
			orders = MergeOrder(orders, o)
		} else {
			orders = UpdateOrder(orders, o)
		}
	case models.EventCatalogNew:
		var g models.Goodie
		if err := json.Unmarshal(ev.Data, &g); err != nil {
			return orders, goodies, fmt.Errorf("bad %s payload: %w", ev.Name, err)
		}
		goodies = MergeGoodie(goodies, g)
	case models.EventCatalogDelete:
		var ref models.DeletedRef
		if err := json.Unmarshal(ev.Data, &ref); err != nil {
			return orders, goodies, fmt.Errorf("bad %s payload: %w", ev.Name, err)
		}
		goodies = RemoveGoodie(goodies, ref.ID)
	}
	return orders, goodies, nil
}
