package services

import (
	"time"

	"github.com/bobby-s-dev/farmlens/internal/models"
	"github.com/shopspring/decimal"
)

var kgPerTon = decimal.NewFromInt(1000)

func utcDate(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// HarvestPredictions is the fixed demo table shown on the dashboard.
func HarvestPredictions() []models.HarvestPrediction {
	return []models.HarvestPrediction{
		{Crop: "Cabai Rawit", Plot: "Rooftop A", PlantedAt: utcDate(2026, 7, 1), HarvestAt: utcDate(2026, 10, 28), EstimatedTons: 0.12, PricePerKg: 45000, Reliability: 87},
		{Crop: "Tomat Cherry", Plot: "Greenhouse 1", PlantedAt: utcDate(2026, 7, 20), HarvestAt: utcDate(2026, 10, 30), EstimatedTons: 0.2, PricePerKg: 18000, Reliability: 82},
		{Crop: "Selada Hidroponik", Plot: "Rak NFT 2", PlantedAt: utcDate(2026, 9, 25), HarvestAt: utcDate(2026, 11, 5), EstimatedTons: 0.08, PricePerKg: 30000, Reliability: 93},
		{Crop: "Kangkung", Plot: "Bedengan B", PlantedAt: utcDate(2026, 10, 1), HarvestAt: utcDate(2026, 10, 26), EstimatedTons: 0.15, PricePerKg: 9000, Reliability: 90},
	}
}

// SummarizeHarvest totals volume and revenue (tons x price per kg x 1000)
// and averages reliability.
func SummarizeHarvest(preds []models.HarvestPrediction) models.HarvestSummary {
	summary := models.HarvestSummary{TotalRevenue: decimal.Zero}
	if len(preds) == 0 {
		return summary
	}

	tons := decimal.Zero
	var reliability float64
	for _, p := range preds {
		volume := decimal.NewFromFloat(p.EstimatedTons)
		tons = tons.Add(volume)
		summary.TotalRevenue = summary.TotalRevenue.Add(
			volume.Mul(decimal.NewFromFloat(p.PricePerKg)).Mul(kgPerTon))
		reliability += p.Reliability
	}

	summary.TotalTons = tons.InexactFloat64()
	summary.AverageReliability = roundTo(reliability/float64(len(preds)), 1)
	return summary
}
