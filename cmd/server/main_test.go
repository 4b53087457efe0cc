package main

import (
	"testing"
	"time"

	"github.com/motoshop/backend/internal/domain/collections"
	"github.com/motoshop/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
)

func TestCollectionsSettings(t *testing.T) {
	t.Run("zero values keep defaults", func(t *testing.T) {
		s := collectionsSettings(config.CollectionsConfig{})

		assert.Equal(t, collections.DefaultUpcomingHorizonDays, s.HorizonDays)
		assert.Equal(t, collections.DefaultHighRiskThreshold, s.HighRiskThreshold)
		assert.False(t, s.LateFee.Enabled())
	})

	t.Run("configured values win", func(t *testing.T) {
		s := collectionsSettings(config.CollectionsConfig{
			UpcomingHorizonDays: 5,
			HighRiskThreshold:   3,
			HighRiskDaysOverdue: 60,
			LateFeeDailyRate:    0.001,
			LateFeeGraceDays:    3,
			SummaryCacheTTL:     30 * time.Second,
			TopAtRiskDefault:    15,
		})

		assert.Equal(t, 5, s.HorizonDays)
		assert.Equal(t, 3, s.HighRiskThreshold)
		assert.Equal(t, 60, s.HighRiskDaysOverdue)
		assert.True(t, s.LateFee.Enabled())
		assert.Equal(t, "0.001", s.LateFee.DailyRate.String())
		assert.Equal(t, 30*time.Second, s.SummaryTTL)
		assert.Equal(t, 15, s.TopAtRiskDefault)
	})
}
