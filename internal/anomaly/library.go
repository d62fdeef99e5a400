package anomaly

import (
	"context"
	"fmt"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/internal/domain/service"
	"FinSight/pkg/logger"
)

// Seeder loads the curated pattern and anomaly corpora into the vector
// index. Seeding is idempotent: the index upserts by id.
type Seeder struct {
	index    repository.VectorIndex
	embedder service.Embedder
	log      *logger.Logger
}

// NewSeeder creates a corpus seeder.
func NewSeeder(index repository.VectorIndex, embedder service.Embedder, log *logger.Logger) *Seeder {
	return &Seeder{index: index, embedder: embedder, log: log}
}

// Seed loads both libraries.
func (s *Seeder) Seed(ctx context.Context) error {
	if err := s.seedCollection(ctx, repository.CollectionPatterns, PatternLibrary()); err != nil {
		return fmt.Errorf("seed patterns: %w", err)
	}
	if err := s.seedCollection(ctx, repository.CollectionAnomalies, AnomalyLibrary()); err != nil {
		return fmt.Errorf("seed anomalies: %w", err)
	}
	return nil
}

func (s *Seeder) seedCollection(ctx context.Context, col repository.Collection, recs []models.LibraryRecord) error {
	for _, rec := range recs {
		vec, err := s.embedder.Embed(ctx, rec.Description)
		if err != nil {
			return fmt.Errorf("embed %s: %w", rec.ID, err)
		}
		if err := s.index.Add(ctx, col, rec, vec); err != nil {
			return fmt.Errorf("add %s: %w", rec.ID, err)
		}
	}
	s.log.Info("seeded vector collection",
		logger.String("collection", string(col)),
		logger.Int("records", len(recs)))
	return nil
}

// PatternLibrary is the curated set of common market patterns.
func PatternLibrary() []models.LibraryRecord {
	return []models.LibraryRecord{
		{
			ID:          "golden_cross",
			Description: "Short-term moving average crosses above long-term moving average, indicating bullish momentum",
			Metadata:    map[string]string{"pattern_type": "technical_signal", "signal_type": "bullish", "reliability": "medium"},
		},
		{
			ID:          "death_cross",
			Description: "Short-term moving average crosses below long-term moving average, indicating bearish momentum",
			Metadata:    map[string]string{"pattern_type": "technical_signal", "signal_type": "bearish", "reliability": "medium"},
		},
		{
			ID:          "high_volume_breakout",
			Description: "Price breaks through resistance level with volume 3x higher than average",
			Metadata:    map[string]string{"pattern_type": "price_pattern", "signal_type": "bullish", "reliability": "high"},
		},
		{
			ID:          "volume_climax",
			Description: "Extreme volume spike followed by price reversal, often marks trend exhaustion",
			Metadata:    map[string]string{"pattern_type": "price_pattern", "signal_type": "reversal", "reliability": "high"},
		},
		{
			ID:          "divergence_rsi",
			Description: "RSI makes higher lows while price makes lower lows, suggesting potential reversal",
			Metadata:    map[string]string{"pattern_type": "technical_signal", "signal_type": "bullish", "reliability": "medium"},
		},
		{
			ID:          "volatility_spike",
			Description: "Volatility increases by more than 200% from average, indicating market uncertainty",
			Metadata:    map[string]string{"pattern_type": "volatility_pattern", "signal_type": "neutral", "reliability": "high"},
		},
		{
			ID:          "mean_reversion",
			Description: "Asset price deviates significantly from average and shows signs of returning",
			Metadata:    map[string]string{"pattern_type": "statistical_pattern", "signal_type": "neutral", "reliability": "medium"},
		},
		{
			ID:          "momentum_acceleration",
			Description: "Rate of price change is increasing, indicating strengthening trend",
			Metadata:    map[string]string{"pattern_type": "momentum_pattern", "signal_type": "continuation", "reliability": "medium"},
		},
	}
}

// AnomalyLibrary is the curated set of historical market anomalies.
func AnomalyLibrary() []models.LibraryRecord {
	return []models.LibraryRecord{
		{
			ID:          "flash_crash_2010",
			Description: "Sudden market drop of over 9% within minutes followed by rapid recovery, caused by algorithmic trading",
			Metadata:    map[string]string{"severity": "critical", "date": "2010-05-06", "asset_type": "stock", "cause": "algorithmic"},
		},
		{
			ID:          "black_monday_1987",
			Description: "Global stock market crash with 22% single-day decline, largest one-day percentage decline in history",
			Metadata:    map[string]string{"severity": "critical", "date": "1987-10-19", "asset_type": "stock", "cause": "panic_selling"},
		},
		{
			ID:          "crypto_crash_2022",
			Description: "Cryptocurrency market loses over 60% of value amid rising interest rates and regulatory concerns",
			Metadata:    map[string]string{"severity": "high", "date": "2022-05-01", "asset_type": "crypto", "cause": "macro_conditions"},
		},
		{
			ID:          "swiss_franc_shock",
			Description: "Swiss National Bank removes currency cap causing 30% franc appreciation in minutes",
			Metadata:    map[string]string{"severity": "high", "date": "2015-01-15", "asset_type": "forex", "cause": "policy_change"},
		},
		{
			ID:          "gamestop_squeeze",
			Description: "Retail-driven short squeeze causes stock to surge 1500% in two weeks",
			Metadata:    map[string]string{"severity": "medium", "date": "2021-01-28", "asset_type": "stock", "cause": "short_squeeze"},
		},
		{
			ID:          "circuit_breaker_2020",
			Description: "Multiple trading halts triggered as market drops amid COVID-19 pandemic fears",
			Metadata:    map[string]string{"severity": "high", "date": "2020-03-16", "asset_type": "stock", "cause": "pandemic"},
		},
	}
}
