package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itinera/itinera/model/trip"
	"github.com/itinera/itinera/service/dao"
)

func TestService_SaveLoad(t *testing.T) {
	ctx := context.Background()
	service := New()

	session := trip.NewSession("s-1", "traveler")
	assert.NoError(t, service.Save(ctx, session))

	loaded, err := service.Load(ctx, "s-1")
	assert.NoError(t, err)
	assert.Equal(t, "traveler", loaded.OwnerID)

	_, err = service.Load(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
