package services

import (
	"math"
	"sort"

	"github.com/bobby-s-dev/farmlens/internal/models"
)

const forecastDays = 7

// BMKG weather codes, see https://data.bmkg.go.id/prakiraan-cuaca/
var conditionByCode = map[int]models.Condition{
	0:  models.ConditionClear, // Cerah
	1:  models.ConditionClear, // Cerah Berawan
	60: models.ConditionRain,  // Hujan Ringan
	61: models.ConditionRain,  // Hujan Sedang
	63: models.ConditionRain,  // Hujan Lebat
	80: models.ConditionRain,  // Hujan Lokal
	95: models.ConditionStorm, // Hujan Petir
	97: models.ConditionStorm, // Hujan Petir
}

var conditionSeverity = map[models.Condition]int{
	models.ConditionClear:  0,
	models.ConditionCloudy: 1,
	models.ConditionRain:   2,
	models.ConditionStorm:  3,
}

func ConditionForCode(code int) models.Condition {
	if condition, ok := conditionByCode[code]; ok {
		return condition
	}
	return models.ConditionCloudy
}

type dayAccumulator struct {
	date      string
	slots     int
	temp      float64
	humidity  float64
	rain      float64
	wind      float64
	condition models.Condition
}

func (a *dayAccumulator) add(r models.BMKGReading) {
	a.slots++
	a.temp += r.Temperature
	a.humidity += r.Humidity
	a.rain += r.Precipitation
	if r.WindSpeed > a.wind {
		a.wind = r.WindSpeed
	}

	condition := ConditionForCode(r.Weather)
	if a.slots == 1 || conditionSeverity[condition] > conditionSeverity[a.condition] {
		a.condition = condition
	}
}

func (a *dayAccumulator) day() models.ForecastDay {
	n := float64(a.slots)
	return models.ForecastDay{
		Date:      a.date,
		RainMm:    roundTo(a.rain, 1),
		TempC:     roundTo(a.temp/n, 1),
		Humidity:  roundTo(a.humidity/n, 1),
		WindKmh:   math.Round(a.wind),
		Condition: a.condition,
	}
}

// DailyForecast flattens every forecast slot of the payload, aggregates the
// slots per local calendar day and returns the first seven days in
// chronological order.
func DailyForecast(payload *models.BMKGForecast) []models.ForecastDay {
	if payload == nil {
		return nil
	}

	byDate := make(map[string]*dayAccumulator)
	for _, record := range payload.Data {
		for _, slots := range record.Cuaca {
			for _, reading := range slots {
				if len(reading.LocalDatetime) < 10 {
					continue
				}
				date := reading.LocalDatetime[:10]
				acc, ok := byDate[date]
				if !ok {
					acc = &dayAccumulator{date: date}
					byDate[date] = acc
				}
				acc.add(reading)
			}
		}
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	// ISO dates sort lexically
	sort.Strings(dates)
	if len(dates) > forecastDays {
		dates = dates[:forecastDays]
	}

	days := make([]models.ForecastDay, 0, len(dates))
	for _, date := range dates {
		days = append(days, byDate[date].day())
	}
	return days
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
