package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	"github.com/tair/repair-manager/internal/pricing/domain"
	"github.com/tair/repair-manager/pkg/apperror"
	"github.com/tair/repair-manager/pkg/cache"
	"github.com/tair/repair-manager/pkg/logger"
	"github.com/tair/repair-manager/pkg/metrics"
	"github.com/tair/repair-manager/pkg/validation"
)

// CachePrefix namespaces pricing candidates in Redis. Each item has one key,
// pricing:<type>:<id>, holding every record for the item.
const CachePrefix = "pricing"

// PricingInput is the writable part of a CatalogPricing. The item may be given
// as item_id or as the foreign key matching item_type; the other keys are ignored.
type PricingInput struct {
	ID                 uint             `json:"id,omitempty"`
	ItemType           string           `json:"item_type"`
	ItemID             uint             `json:"item_id"`
	DeviceID           *uint            `json:"device_id"`
	PartID             *uint            `json:"part_id"`
	ServiceID          *uint            `json:"service_id"`
	BasePrice          decimal.Decimal  `json:"base_price"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount"`
	DiscountPercentage *int             `json:"discount_percentage" validate:"omitempty,gte=0,lte=100"`
	EffectiveDate      *time.Time       `json:"effective_date"`
	ExpirationDate     *time.Time       `json:"expiration_date"`
}

type Service struct {
	repo    domain.Repository
	items   catalog.Checker
	cache   *cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewService(repo domain.Repository, items catalog.Checker, c *cache.Cache, ttl time.Duration, m *metrics.Metrics) *Service {
	return &Service{repo: repo, items: items, cache: c, ttl: ttl, metrics: m}
}

// Resolve returns the price of the item in effect at asOf, or now when asOf is nil.
func (s *Service) Resolve(ctx context.Context, rawType string, itemID uint, asOf *time.Time) (*domain.CatalogPricing, error) {
	itemType, err := domain.ParseItemType(rawType)
	if err != nil {
		return nil, err
	}
	at := time.Now().UTC()
	if asOf != nil {
		at = asOf.UTC()
	}

	candidates, err := s.candidates(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}
	best, ok := domain.SelectEffective(candidates, at)
	if !ok {
		return nil, apperror.NewNotFound("pricing for "+string(itemType), itemID)
	}
	return best, nil
}

// candidates loads every record for the item, from Redis when cached.
func (s *Service) candidates(ctx context.Context, itemType domain.ItemType, itemID uint) ([]domain.CatalogPricing, error) {
	key := s.cache.Key(itemType, itemID)
	if s.cache.Enabled() {
		var cached []domain.CatalogPricing
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		switch {
		case err != nil:
			s.metrics.CacheLookup("error")
			logger.Warn(ctx).Err(err).Str("key", key).Msg("pricing cache read failed")
		case hit:
			s.metrics.CacheLookup("hit")
			return cached, nil
		default:
			s.metrics.CacheLookup("miss")
		}
	}

	candidates, err := s.repo.ForItem(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []domain.CatalogPricing{}
	}
	if err := s.cache.SetJSON(ctx, key, candidates, s.ttl); err != nil {
		logger.Warn(ctx).Err(err).Str("key", key).Msg("pricing cache write failed")
	}
	return candidates, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*domain.CatalogPricing, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all pricing, filtered by item type when rawType is not empty.
func (s *Service) List(ctx context.Context, rawType string) ([]domain.CatalogPricing, error) {
	var itemType domain.ItemType
	if rawType != "" {
		t, err := domain.ParseItemType(rawType)
		if err != nil {
			return nil, err
		}
		itemType = t
	}
	items, err := s.repo.List(ctx, itemType)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.CatalogPricing{}
	}
	return items, nil
}

func (s *Service) Create(ctx context.Context, in PricingInput) (*domain.CatalogPricing, error) {
	p, err := s.fromInput(ctx, 0, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, p)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id uint, in PricingInput) (*domain.CatalogPricing, error) {
	if in.ID != 0 && in.ID != id {
		return nil, apperror.NewValidation(apperror.KindIdentifierMismatch, "id", "body id does not match path id")
	}
	p, err := s.fromInput(ctx, id, in)
	if err != nil {
		return nil, err
	}
	previous, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	found, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NewNotFound("catalog pricing", id)
	}
	s.invalidate(ctx, previous, p)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	previous, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NewNotFound("catalog pricing", id)
	}
	s.invalidate(ctx, previous)
	return nil
}

// invalidate drops the candidate keys of every item the records point at.
// An update that moves a record to another item clears both.
func (s *Service) invalidate(ctx context.Context, records ...*domain.CatalogPricing) {
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, s.cache.Key(r.ItemType, r.ItemID()))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn(ctx).Err(err).Strs("keys", keys).Msg("pricing cache invalidation failed")
	}
}

func (s *Service) fromInput(ctx context.Context, id uint, in PricingInput) (*domain.CatalogPricing, error) {
	itemType, err := domain.ParseItemType(in.ItemType)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.BasePrice.IsNegative() {
		return nil, apperror.NewValidation(apperror.KindInvalidInput, "base_price", "must not be negative")
	}
	if in.DiscountAmount != nil && in.DiscountAmount.IsNegative() {
		return nil, apperror.NewValidation(apperror.KindInvalidInput, "discount_amount", "must not be negative")
	}
	if in.DiscountAmount != nil && in.DiscountPercentage != nil {
		return nil, apperror.NewValidation(apperror.KindConflictingDiscount, "discount_amount", "set either discount_amount or discount_percentage, not both")
	}

	effective := time.Now().UTC()
	if in.EffectiveDate != nil {
		effective = in.EffectiveDate.UTC()
	}
	var expiration *time.Time
	if in.ExpirationDate != nil {
		e := in.ExpirationDate.UTC()
		if effective.After(e) {
			return nil, apperror.NewValidation(apperror.KindInvalidDateRange, "expiration_date", "must not be before effective_date")
		}
		expiration = &e
	}

	itemID := in.itemID(itemType)
	if err := s.checkItem(ctx, itemType, itemID); err != nil {
		return nil, err
	}

	p := &domain.CatalogPricing{
		ID:                 id,
		BasePrice:          in.BasePrice,
		DiscountAmount:     in.DiscountAmount,
		DiscountPercentage: in.DiscountPercentage,
		EffectiveDate:      effective,
		ExpirationDate:     expiration,
	}
	p.SetItem(itemType, itemID)
	p.Refresh()
	return p, nil
}

func (in PricingInput) itemID(t domain.ItemType) uint {
	if in.ItemID != 0 {
		return in.ItemID
	}
	fk := map[domain.ItemType]*uint{
		domain.ItemDevice:  in.DeviceID,
		domain.ItemPart:    in.PartID,
		domain.ItemService: in.ServiceID,
	}[t]
	if fk == nil {
		return 0
	}
	return *fk
}

func (s *Service) checkItem(ctx context.Context, itemType domain.ItemType, itemID uint) error {
	if itemID == 0 {
		return apperror.NewValidation(apperror.KindInvalidInput, "item_id", "is required")
	}
	exists := map[domain.ItemType]func(context.Context, uint) (bool, error){
		domain.ItemDevice:  s.items.DeviceExists,
		domain.ItemPart:    s.items.PartExists,
		domain.ItemService: s.items.ServiceExists,
	}[itemType]
	ok, err := exists(ctx, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewValidation(apperror.KindItemNotFound, "item_id", "the specified "+string(itemType)+" does not exist")
	}
	return nil
}
