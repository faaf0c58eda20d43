package store

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vyrodovalexey/items-api/internal/model"
)

// Operation names used as metric labels.
const (
	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Operation results used as metric labels.
const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultInvalid  = "invalid"
	resultError    = "error"
)

// InstrumentedStore wraps a Store and records Prometheus metrics for every call.
type InstrumentedStore struct {
	next       Store
	operations *prometheus.CounterVec
	stored     prometheus.Gauge
}

// NewInstrumentedStore wraps next and registers its collectors with reg.
func NewInstrumentedStore(next Store, reg prometheus.Registerer) *InstrumentedStore {
	factory := promauto.With(reg)

	s := &InstrumentedStore{
		next: next,
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "items_operations_total",
				Help: "Total number of item store operations",
			},
			[]string{"operation", "result"},
		),
		stored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "items_stored",
				Help: "Number of items currently held by the store",
			},
		),
	}

	if counter, ok := next.(interface{ Len() int }); ok {
		s.stored.Set(float64(counter.Len()))
	} else if items, err := next.List(context.Background()); err == nil {
		s.stored.Set(float64(len(items)))
	}

	return s
}

// List returns all items in creation order.
func (s *InstrumentedStore) List(ctx context.Context) ([]model.Item, error) {
	items, err := s.next.List(ctx)
	s.observe(opList, err)
	return items, err
}

// Get retrieves an item by its ID.
func (s *InstrumentedStore) Get(ctx context.Context, id int64) (*model.Item, error) {
	item, err := s.next.Get(ctx, id)
	s.observe(opGet, err)
	return item, err
}

// Create stores a new item.
func (s *InstrumentedStore) Create(ctx context.Context, input *model.CreateItemInput) (*model.Item, error) {
	item, err := s.next.Create(ctx, input)
	s.observe(opCreate, err)
	if err == nil {
		s.stored.Inc()
	}
	return item, err
}

// Update modifies an existing item.
func (s *InstrumentedStore) Update(
	ctx context.Context,
	id int64,
	input *model.UpdateItemInput,
) (*model.Item, error) {
	item, err := s.next.Update(ctx, id, input)
	s.observe(opUpdate, err)
	return item, err
}

// Delete removes an item.
func (s *InstrumentedStore) Delete(ctx context.Context, id int64) error {
	err := s.next.Delete(ctx, id)
	s.observe(opDelete, err)
	if err == nil {
		s.stored.Dec()
	}
	return err
}

func (s *InstrumentedStore) observe(operation string, err error) {
	s.operations.WithLabelValues(operation, resultOf(err)).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidID):
		return resultNotFound
	case errors.Is(err, model.ErrValidation):
		return resultInvalid
	default:
		return resultError
	}
}
