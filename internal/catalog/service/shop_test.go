package service

import (
	"context"
	"encoding/json"
	"testing"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/mutation"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/internal/catalog/store/db"
	"github.com/abgdnv/observatory/pkg/messaging"
	"github.com/abgdnv/observatory/pkg/messaging/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Shops(t *testing.T) {
	ctx := context.Background()
	current := &db.Shop{ID: 2, Name: "Corner", Address: "Main 1", Lat: 10, Lng: 20, Tags: []string{"open"}}
	shopStore := &mockShopStore{
		shop: current,
		page: &query.Page[db.Shop]{Start: 0, Count: 20, Total: 1, Items: []db.Shop{*current}},
	}
	publisher := &mockPublisher{}
	s := NewShopService(shopStore, publisher, discardLogger)

	// list
	page, err := s.List(ctx, query.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Shops, 1)
	assert.Equal(t, "Corner", page.Shops[0].Name)

	// create
	lat, lng := 1.5, 2.5
	created, err := s.Create(ctx, mutation.ShopReplace{Name: "New", Lat: &lat, Lng: &lng})
	require.NoError(t, err)
	assert.Equal(t, &ShopDto{ID: 1, Name: "New", Lat: 1.5, Lng: 2.5, Tags: []string{}}, created)

	// replace resets address and tags
	replaced, err := s.Replace(ctx, 2, mutation.ShopReplace{Name: "Corner", Lat: &lat, Lng: &lng})
	require.NoError(t, err)
	assert.Empty(t, replaced.Address)
	assert.Empty(t, replaced.Tags)

	// merge keeps them
	patch, err := mutation.NewShopPatch(map[string]json.RawMessage{"lat": json.RawMessage(`45`)})
	require.NoError(t, err)
	merged, err := s.Merge(ctx, 2, patch)
	require.NoError(t, err)
	assert.Equal(t, &ShopDto{ID: 2, Name: "Corner", Address: "Main 1", Lat: 45, Lng: 20, Tags: []string{"open"}}, merged)

	// merge with an out of range latitude fails validation
	bad, err := mutation.NewShopPatch(map[string]json.RawMessage{"lat": json.RawMessage(`99`)})
	require.NoError(t, err)
	_, err = s.Merge(ctx, 2, bad)
	vErr, ok := catalogerrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, vErr.Fields, "lat")

	// withdraw
	require.NoError(t, s.Withdraw(ctx, robot, 2))
	require.Len(t, publisher.events, 1)
	event := publisher.events[0].(events.EntityWithdrawnEvent)
	assert.Equal(t, events.KindShop, event.Kind)
	assert.Equal(t, messaging.ShopsWithdrawnSubject, event.Subject())

	shopStore.error = catalogerrors.ErrShopNotFound
	assert.ErrorIs(t, s.Withdraw(ctx, robot, 2), catalogerrors.ErrShopNotFound)
	_, err = s.FindByID(ctx, 2)
	assert.ErrorIs(t, err, catalogerrors.ErrShopNotFound)
	assert.Len(t, publisher.events, 1)
}
