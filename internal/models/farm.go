package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type JournalEntry struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

type JournalMonthGroup struct {
	Key     string         `json:"key"`
	Label   string         `json:"label"`
	Entries []JournalEntry `json:"entries"`
}

type MarketplaceProfile struct {
	OwnerID   string    `json:"ownerId"`
	ShopName  string    `json:"shopName"`
	Province  string    `json:"province,omitempty"`
	City      string    `json:"city,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type HarvestPrediction struct {
	Crop          string    `json:"crop"`
	Plot          string    `json:"plot"`
	PlantedAt     time.Time `json:"plantedAt"`
	HarvestAt     time.Time `json:"harvestAt"`
	EstimatedTons float64   `json:"estimatedTons"`
	PricePerKg    float64   `json:"pricePerKg"`
	Reliability   float64   `json:"reliability"`
}

type HarvestSummary struct {
	TotalTons          float64         `json:"totalTons"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	AverageReliability float64         `json:"averageReliability"`
}

type DiseaseResult struct {
	Disease         string    `json:"disease"`
	ScientificName  string    `json:"scientificName"`
	Confidence      float64   `json:"confidence"`
	Severity        RiskLevel `json:"severity"`
	Symptoms        []string  `json:"symptoms"`
	Recommendations []string  `json:"recommendations"`
	AnalyzedAt      time.Time `json:"analyzedAt"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
