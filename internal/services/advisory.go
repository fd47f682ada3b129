package services

import (
	"strings"

	"github.com/bobby-s-dev/farmlens/internal/models"
)

const rainSeasonThresholdMm = 5.0

// ClassifySeason returns rain when the mean daily precipitation reaches
// 5 mm. An empty forecast counts as dry.
func ClassifySeason(days []models.ForecastDay) models.Season {
	if len(days) == 0 {
		return models.SeasonDry
	}

	var total float64
	for _, day := range days {
		total += day.RainMm
	}
	if total/float64(len(days)) >= rainSeasonThresholdMm {
		return models.SeasonRain
	}
	return models.SeasonDry
}

const (
	msgDangerHeat  = "Suhu sangat panas. Siram tanaman pagi dan sore, pasang paranet, dan hindari memupuk siang hari."
	msgDangerStorm = "Cuaca ekstrem: hujan lebat atau angin kencang. Perkuat ajir, tutup bedengan, dan pastikan saluran air lancar."
	msgCaution     = "Waspada: cuaca cukup panas atau hujan sedang. Pantau kelembapan tanah dan kondisi daun."
	msgSafe        = "Cuaca aman untuk aktivitas bertani. Lanjutkan perawatan rutin."
)

// AssessRisk classifies a single day into a risk tier.
func AssessRisk(day models.ForecastDay) models.WeatherRisk {
	switch {
	case day.TempC >= 35:
		return models.WeatherRisk{Tier: models.TierDanger, Cause: models.CauseHeat, Message: msgDangerHeat}
	case day.RainMm >= 20 || day.WindKmh >= 25:
		return models.WeatherRisk{Tier: models.TierDanger, Cause: models.CauseStorm, Message: msgDangerStorm}
	case day.TempC >= 32 || day.RainMm >= 10:
		return models.WeatherRisk{Tier: models.TierCaution, Message: msgCaution}
	default:
		return models.WeatherRisk{Tier: models.TierSafe, Message: msgSafe}
	}
}

type pestEntry struct {
	risk          models.PestRisk
	cropSensitive bool
}

var pestTable = map[models.Season][]pestEntry{
	models.SeasonRain: {
		{risk: models.PestRisk{
			Name: "Antraknosa (Patek)", Icon: "🍂", Risk: models.RiskMedium,
			Advice: "Buang buah yang busuk, jaga jarak tanam, dan semprot fungisida berbahan aktif mankozeb bila gejala meluas.",
		}, cropSensitive: true},
		{risk: models.PestRisk{
			Name: "Siput dan Bekicot", Icon: "🐌", Risk: models.RiskMedium,
			Advice: "Pungut secara manual pada malam hari dan taburkan abu sekam di sekitar tanaman.",
		}},
		{risk: models.PestRisk{
			Name: "Busuk Akar", Icon: "🦠", Risk: models.RiskHigh,
			Advice: "Pastikan pot dan bedengan tidak tergenang. Tambahkan Trichoderma pada media tanam.",
		}},
	},
	models.SeasonDry: {
		{risk: models.PestRisk{
			Name: "Thrips", Icon: "🦟", Risk: models.RiskMedium,
			Advice: "Pasang perangkap lengket biru dan semprot air sabun atau ekstrak nimba setiap 3 hari.",
		}, cropSensitive: true},
		{risk: models.PestRisk{
			Name: "Kutu Daun", Icon: "🐛", Risk: models.RiskMedium,
			Advice: "Semprot larutan bawang putih dan periksa bagian bawah daun secara rutin.",
		}},
		{risk: models.PestRisk{
			Name: "Tungau Merah", Icon: "🕷️", Risk: models.RiskLow,
			Advice: "Jaga kelembapan dengan penyiraman daun di pagi hari.",
		}},
	},
}

// IsChili reports whether crop names chili.
func IsChili(crop string) bool {
	switch strings.ToLower(strings.TrimSpace(crop)) {
	case "chili", "cabai", "cabe":
		return true
	}
	return false
}

func escalate(level models.RiskLevel) models.RiskLevel {
	switch level {
	case models.RiskLow:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

// PestRisks looks up the static pest list for season. Chili escalates the
// crop-sensitive pest by one tier.
func PestRisks(season models.Season, crop string) []models.PestRisk {
	entries := pestTable[season]
	chili := IsChili(crop)

	risks := make([]models.PestRisk, 0, len(entries))
	for _, entry := range entries {
		risk := entry.risk
		if chili && entry.cropSensitive {
			risk.Risk = escalate(risk.Risk)
		}
		risks = append(risks, risk)
	}
	return risks
}

type Advisory struct {
	Crop   string               `json:"crop"`
	Days   []models.ForecastDay `json:"days"`
	Season models.Season        `json:"season"`
	Today  *models.WeatherRisk  `json:"today,omitempty"`
	Pests  []models.PestRisk    `json:"pests"`
}

// BuildAdvisory derives the dashboard advisory from a BMKG payload.
func BuildAdvisory(payload *models.BMKGForecast, crop string) Advisory {
	days := DailyForecast(payload)
	season := ClassifySeason(days)

	advisory := Advisory{
		Crop:   crop,
		Days:   days,
		Season: season,
		Pests:  PestRisks(season, crop),
	}
	if len(days) > 0 {
		risk := AssessRisk(days[0])
		advisory.Today = &risk
	}
	return advisory
}
