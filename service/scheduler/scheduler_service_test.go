package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"addonhub-service/service/cms"
	"addonhub-service/service/models"
	"addonhub-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerService_PurgeExpired(t *testing.T) {
	testDB := testutil.NewTestDB()
	defer testDB.Close()
	ctx := context.Background()

	schemas := cms.NewSchemaService(testDB.DB, nil)
	data := cms.NewDataService(testDB.DB, nil)

	ttl := int64(60)
	expiring, err := schemas.CreateSchema(ctx, cms.CreateSchemaRequest{AddonID: 1, Name: "events", DisplayName: "Events", TTL: &ttl})
	require.NoError(t, err)
	keeping, err := schemas.CreateSchema(ctx, cms.CreateSchemaRequest{AddonID: 1, Name: "orders", DisplayName: "Orders"})
	require.NoError(t, err)

	factory := testutil.NewTestDataFactory(testDB.DB)
	factory.CreateRow(expiring, nil)
	factory.CreateRow(expiring, nil)
	factory.CreateRow(keeping, nil)

	s := NewSchedulerService(schemas, data, "")

	purged, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	purged, err = s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	remaining, err := data.CountByAddon(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)
}

type stubSource struct {
	schemas []models.SchemaModel
	err     error
}

func (s stubSource) ListTTLSchemas(context.Context) ([]models.SchemaModel, error) {
	return s.schemas, s.err
}

type stubPurger struct {
	calls map[int64]time.Time
}

func (p *stubPurger) PurgeExpired(_ context.Context, schema *models.SchemaModel, before time.Time) (int64, error) {
	if schema.ID == 2 {
		return 0, errors.New("boom")
	}
	p.calls[schema.ID] = before
	return 5, nil
}

func TestSchedulerService_单表失败不影响其他表(t *testing.T) {
	ttl := int64(30)
	source := stubSource{schemas: []models.SchemaModel{{ID: 1, TTL: &ttl}, {ID: 2, TTL: &ttl}, {ID: 3, TTL: &ttl}, {ID: 4}}}
	purger := &stubPurger{calls: map[int64]time.Time{}}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	s := NewSchedulerService(source, purger, "")
	s.now = func() time.Time { return now }

	purged, err := s.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), purged)
	assert.Equal(t, map[int64]time.Time{1: now.Add(-30 * time.Second), 3: now.Add(-30 * time.Second)}, purger.calls)

	_, err = NewSchedulerService(stubSource{err: errors.New("db down")}, purger, "").PurgeExpired(context.Background())
	assert.Error(t, err)
}

func TestSchedulerService_StartStop(t *testing.T) {
	s := NewSchedulerService(stubSource{}, &stubPurger{calls: map[int64]time.Time{}}, "*/1 * * * * *")
	require.NoError(t, s.Start())
	s.Stop()

	bad := NewSchedulerService(stubSource{}, &stubPurger{}, "not a cron")
	assert.Error(t, bad.Start())
}
