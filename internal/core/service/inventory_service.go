package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/example/inventory-api/internal/core/domain"
	"github.com/example/inventory-api/internal/port"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrNameTaken    = errors.New("item with this name already exists")
)

const (
	itemCacheTTL   = 15 * time.Minute
	itemKeyPrefix  = "inventory_"
	priceMaxDigits = 10
)

// maxPrice is the smallest value DECIMAL(10,2) cannot hold.
var maxPrice = decimal.New(1, priceMaxDigits-2)

// ItemInput carries the client-supplied fields for create and update.
// Description is a pointer so a missing field can be told apart from an
// empty one.
type ItemInput struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Quantity    *int            `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Validate checks the input against the item rules. Returns a
// validation.Errors map keyed by field name.
func (in ItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Description, validation.NotNil),
		validation.Field(&in.Price, validation.By(validatePrice)),
	)
}

func validatePrice(value any) error {
	price, ok := value.(decimal.Decimal)
	if !ok || !price.IsPositive() {
		return errors.New("must be greater than 0")
	}
	if price.Exponent() < -2 {
		return errors.New("must have no more than 2 decimal places")
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("must have no more than %d digits in total", priceMaxDigits)
	}
	return nil
}

// InventoryService implements the item CRUD operations with a
// write-through Redis side-cache. The store is always authoritative;
// cache failures degrade to store-only behavior.
type InventoryService struct {
	items port.ItemRepository
	cache port.CacheRepository
}

func NewInventoryService(items port.ItemRepository, cache port.CacheRepository) *InventoryService {
	return &InventoryService{items: items, cache: cache}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("%s%d", itemKeyPrefix, id)
}

// Create validates and persists a new item, then caches it. The name
// pre-check is a fast path only; the store's unique constraint decides
// races, so a duplicate-key error from the insert maps to the same
// ErrNameTaken.
func (s *InventoryService) Create(ctx context.Context, in ItemInput) (*domain.InventoryItem, error) {
	exists, err := s.items.ExistsByName(ctx, in.Name)
	if err != nil {
		return nil, fmt.Errorf("check item name: %w", err)
	}
	if exists {
		return nil, ErrNameTaken
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &domain.InventoryItem{
		Name:        in.Name,
		Description: *in.Description,
		Quantity:    in.Quantity,
		Price:       in.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.items.Create(ctx, item); err != nil {
		if errors.Is(err, port.ErrDuplicateName) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.cacheItem(ctx, item)
	return item, nil
}

// Retrieve returns the item with the given ID, consulting the cache
// first. The second return value reports whether the cache served the
// response; on a miss the loaded item is cached before returning.
func (s *InventoryService) Retrieve(ctx context.Context, id int64) (*domain.InventoryItem, bool, error) {
	var cached domain.InventoryItem
	hit, err := s.cache.Get(ctx, cacheKey(id), &cached)
	if err != nil {
		log.Warn().Err(err).Int64("item_id", id).Msg("cache get failed, falling back to store")
	} else if hit {
		return &cached, true, nil
	}

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return nil, false, ErrItemNotFound
	}

	s.cacheItem(ctx, item)
	return item, false, nil
}

// Update replaces all mutable fields of an existing item, refreshes
// updated_at and overwrites the cache entry.
func (s *InventoryService) Update(ctx context.Context, id int64, in ItemInput) (*domain.InventoryItem, error) {
	existing, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if existing == nil {
		return nil, ErrItemNotFound
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	item := &domain.InventoryItem{
		ID:          id,
		Name:        in.Name,
		Description: *in.Description,
		Quantity:    in.Quantity,
		Price:       in.Price,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.items.Update(ctx, item); err != nil {
		if errors.Is(err, port.ErrDuplicateName) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.cacheItem(ctx, item)
	return item, nil
}

// Delete removes the item from the store and drops its cache entry so
// a deleted item can never be resurrected from cache.
func (s *InventoryService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.items.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if !deleted {
		return ErrItemNotFound
	}

	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		log.Warn().Err(err).Int64("item_id", id).Msg("cache delete failed")
	}
	return nil
}

// cacheItem writes the item through to the cache. Best effort: the TTL
// bounds any staleness a missed write could cause.
func (s *InventoryService) cacheItem(ctx context.Context, item *domain.InventoryItem) {
	if err := s.cache.Set(ctx, cacheKey(item.ID), item, itemCacheTTL); err != nil {
		log.Warn().Err(err).Int64("item_id", item.ID).Msg("cache set failed")
	}
}
