package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makna-id/makna-api/internal/domain"
	"github.com/makna-id/makna-api/internal/service"
)

func TestBadgeService_ListByUser(t *testing.T) {
	store := newMockStore()
	store.badges.listByUser = func(_ context.Context, userID uuid.UUID) ([]domain.AwardedBadge, error) {
		assert.Equal(t, testUserID, userID)
		return []domain.AwardedBadge{
			{
				UserID:   userID,
				TripID:   testTripID,
				EarnedAt: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
				Badge:    &domain.Badge{Title: "Penjelajah Borobudur"},
			},
		}, nil
	}

	svc := service.NewBadgeService(store)
	awards, err := svc.ListByUser(context.Background(), testUserID)

	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.Equal(t, "Penjelajah Borobudur", awards[0].Badge.Title)
}

func TestBadgeService_ListByUser_EmptyIsNotNil(t *testing.T) {
	store := newMockStore()
	store.badges.listByUser = func(context.Context, uuid.UUID) ([]domain.AwardedBadge, error) {
		return nil, nil
	}

	svc := service.NewBadgeService(store)
	awards, err := svc.ListByUser(context.Background(), testUserID)

	require.NoError(t, err)
	assert.NotNil(t, awards)
	assert.Empty(t, awards)
}

func TestExportService_Export(t *testing.T) {
	store := newMockStore()
	store.exports.rows = func(context.Context, uuid.UUID) ([]domain.ExportRow, error) {
		return []domain.ExportRow{
			{TripID: testTripID.String(), SiteName: "Candi Borobudur", TripStatus: "completed", BuildingName: "Stupa Induk"},
		}, nil
	}

	svc := service.NewExportService(store)
	rows, err := svc.Export(context.Background(), testUserID)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Candi Borobudur", rows[0].SiteName)
}

func TestExportService_Export_EmptyIsNotNil(t *testing.T) {
	store := newMockStore()
	store.exports.rows = func(context.Context, uuid.UUID) ([]domain.ExportRow, error) {
		return nil, nil
	}

	svc := service.NewExportService(store)
	rows, err := svc.Export(context.Background(), testUserID)

	require.NoError(t, err)
	assert.NotNil(t, rows)
}
