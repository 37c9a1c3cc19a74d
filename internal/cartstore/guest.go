package cartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/localstore"
)

// Guest keeps each guest cart as a JSON list under one storage key. Every
// mutation is a read-modify-write through Storage.Update, so concurrent adds
// merge even when several API instances share the backend.
type Guest struct {
	storage localstore.Storage
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

func NewGuest(storage localstore.Storage, logger *zap.Logger) *Guest {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guest{
		storage: storage,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

func storageKey(ownerID string) string { return "guest-cart:" + ownerID }

func (g *Guest) Lines(ctx context.Context, ownerID string) ([]domain.CartLine, error) {
	return g.load(ctx, ownerID)
}

func (g *Guest) Add(ctx context.Context, ownerID string, req AddRequest) (domain.CartLine, error) {
	var line domain.CartLine
	err := g.update(ctx, ownerID, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		var merged []domain.CartLine
		merged, line = Merge(lines, req, g.newID, g.now().UTC())
		return merged, nil
	})
	if err != nil {
		return domain.CartLine{}, err
	}
	return line, nil
}

func (g *Guest) SetQuantity(ctx context.Context, ownerID, lineID string, quantity int) error {
	return g.update(ctx, ownerID, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		for i := range lines {
			if lines[i].ID == lineID {
				lines[i].Quantity = quantity
				return lines, nil
			}
		}
		return nil, domain.ErrNotFound
	})
}

func (g *Guest) Remove(ctx context.Context, ownerID, lineID string) error {
	return g.update(ctx, ownerID, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		for i := range lines {
			if lines[i].ID == lineID {
				return append(lines[:i], lines[i+1:]...), nil
			}
		}
		return nil, domain.ErrNotFound
	})
}

// update decodes the stored cart, applies fn and writes the result back as one
// atomic step. fn may be retried.
func (g *Guest) update(ctx context.Context, ownerID string, fn func([]domain.CartLine) ([]domain.CartLine, error)) error {
	return g.storage.Update(ctx, storageKey(ownerID), func(raw []byte) ([]byte, error) {
		lines, err := g.decode(ownerID, raw)
		if err != nil {
			return nil, err
		}
		next, err := fn(lines)
		if err != nil {
			return nil, err
		}
		out, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("encode guest cart: %w", err)
		}
		return out, nil
	})
}

func (g *Guest) load(ctx context.Context, ownerID string) ([]domain.CartLine, error) {
	raw, err := g.storage.Load(ctx, storageKey(ownerID))
	if err != nil {
		return nil, err
	}
	return g.decode(ownerID, raw)
}

func (g *Guest) decode(ownerID string, raw []byte) ([]domain.CartLine, error) {
	lines := []domain.CartLine{}
	if len(raw) == 0 {
		return lines, nil
	}
	if err := json.Unmarshal(raw, &lines); err != nil {
		g.logger.Warn("guest cart: decode", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, fmt.Errorf("decode guest cart: %w", err)
	}
	return lines, nil
}
