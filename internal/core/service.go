package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"corridorcore/internal/infra/persistence/memory"
	"corridorcore/pkg/domain"
)

// Entity labels used by ErrNotFound.
const (
	EntityLayer  = "layer"
	EntityWidget = "widget"
)

// ErrNotFound reports a missing stored entity.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// Service exposes higher-level transactional operations over stored feature
// layers, the widget catalog, and derived corridor profiles.
type Service struct {
	store   domain.PersistentStore
	metrics MetricsRecorder
	now     func() time.Time

	mu      sync.RWMutex
	widgets map[string]StatDefinition
	order   []string
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithMetricsRecorder attaches a metrics recorder observing service operations.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = rec }
}

// WithClock overrides the service time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a service backed by the supplied store. The default
// widget catalog is pre-registered; additional widgets may be added with
// RegisterWidget.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		now:     time.Now,
		widgets: make(map[string]StatDefinition),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, def := range DefaultWidgets() {
		if err := s.RegisterWidget(def); err != nil {
			panic(fmt.Sprintf("default widget catalog: %v", err))
		}
	}
	return s
}

// NewInMemoryService creates a service over an in-memory store guarded by the
// default rules engine.
func NewInMemoryService(opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(NewDefaultRulesEngine()), opts...)
}

// Store returns the underlying persistent store.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// PutLayer inserts or replaces a stored layer.
func (s *Service) PutLayer(ctx context.Context, layer domain.Layer) (domain.Result, error) {
	start := s.now()
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.PutLayer(layer)
		return err
	})
	s.observe(ctx, "put_layer", err, start)
	return res, err
}

// Layer returns the stored layer with the given name.
func (s *Service) Layer(name string) (domain.Layer, error) {
	layer, ok := s.store.GetLayer(name)
	if !ok {
		return domain.Layer{}, ErrNotFound{Entity: EntityLayer, ID: name}
	}
	return layer, nil
}

// ListLayers returns all stored layers sorted by name.
func (s *Service) ListLayers() []domain.Layer {
	return s.store.ListLayers()
}

// DeleteLayer removes a stored layer.
func (s *Service) DeleteLayer(ctx context.Context, name string) (domain.Result, error) {
	start := s.now()
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteLayer(name)
	})
	s.observe(ctx, "delete_layer", err, start)
	return res, err
}

// RegisterWidget adds a stat widget definition to the catalog. Definitions are
// returned by Widgets in registration order.
func (s *Service) RegisterWidget(def StatDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("widget id is required")
	}
	if def.Field == "" {
		return fmt.Errorf("widget %s: field is required", def.ID)
	}
	if def.SourceID == "" {
		return fmt.Errorf("widget %s: source id is required", def.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.widgets[def.ID]; exists {
		return fmt.Errorf("widget %s already registered", def.ID)
	}
	s.widgets[def.ID] = def
	s.order = append(s.order, def.ID)
	return nil
}

// Widgets returns the registered widget definitions in registration order.
func (s *Service) Widgets() []StatDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StatDefinition, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.widgets[id])
	}
	return out
}

// Widget returns the definition registered under id.
func (s *Service) Widget(id string) (StatDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.widgets[id]
	return def, ok
}

// EvaluateWidget computes the display value for the widget identified by id
// against the supplied selection. A nil or empty selection aggregates the full
// reference layer; a missing reference layer yields the widget's error display
// rather than an error.
func (s *Service) EvaluateWidget(ctx context.Context, id string, selected []domain.Feature) (WidgetValue, error) {
	def, ok := s.Widget(id)
	if !ok {
		return WidgetValue{}, ErrNotFound{Entity: EntityWidget, ID: id}
	}
	start := s.now()
	var ref *domain.Layer
	if layer, found := s.store.GetLayer(def.FullSourceID()); found {
		ref = &layer
	}
	value := EvaluateStat(def, domain.SelectionContext{
		SourceID:  def.SourceID,
		Selected:  selected,
		Reference: ref,
	})
	s.observe(ctx, "evaluate_widget", nil, start)
	return value, nil
}

// EvaluateAllWidgets computes every registered widget against the same
// selection, keyed by widget id.
func (s *Service) EvaluateAllWidgets(ctx context.Context, selected []domain.Feature) map[string]WidgetValue {
	out := make(map[string]WidgetValue)
	for _, def := range s.Widgets() {
		value, err := s.EvaluateWidget(ctx, def.ID, selected)
		if err != nil {
			continue
		}
		out[def.ID] = value
	}
	return out
}

// BuildProfiles derives one corridor profile feature per highway from the
// named segment and project layers and stores the result under
// ProfilesLayerName. The project layer is optional; when absent the project
// metrics are zero-filled.
func (s *Service) BuildProfiles(ctx context.Context, segmentLayer, projectLayer string) (domain.Layer, domain.Result, error) {
	start := s.now()
	segments, ok := s.store.GetLayer(segmentLayer)
	if !ok {
		err := ErrNotFound{Entity: EntityLayer, ID: segmentLayer}
		s.observe(ctx, "build_profiles", err, start)
		return domain.Layer{}, domain.Result{}, err
	}
	var projects domain.Layer
	if projectLayer != "" {
		projects, ok = s.store.GetLayer(projectLayer)
		if !ok {
			err := ErrNotFound{Entity: EntityLayer, ID: projectLayer}
			s.observe(ctx, "build_profiles", err, start)
			return domain.Layer{}, domain.Result{}, err
		}
	}
	profiles := BuildCorridorProfiles(segments, projects)
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.PutLayer(profiles)
		return err
	})
	s.observe(ctx, "build_profiles", err, start)
	if err != nil {
		return domain.Layer{}, res, err
	}
	return profiles, res, nil
}

// ValidationReport builds a report over the stored corridor profile layer,
// one row per corridor plus a summary row.
func (s *Service) ValidationReport(ctx context.Context) (Report, error) {
	start := s.now()
	profiles, ok := s.store.GetLayer(ProfilesLayerName)
	if !ok {
		err := ErrNotFound{Entity: EntityLayer, ID: ProfilesLayerName}
		s.observe(ctx, "validation_report", err, start)
		return Report{}, err
	}
	report := BuildValidationReport(profiles, s.now().UTC())
	s.observe(ctx, "validation_report", nil, start)
	return report, nil
}

func (s *Service) observe(ctx context.Context, operation string, err error, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.Observe(ctx, operation, err == nil, s.now().Sub(start))
}
