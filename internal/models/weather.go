package models

// BMKGForecast is the payload of the public BMKG forecast endpoint.
// Only the fields used for derivation are decoded; the proxy relays the raw
// body untouched.
type BMKGForecast struct {
	Lokasi BMKGLocation     `json:"lokasi"`
	Data   []BMKGAreaRecord `json:"data"`
}

type BMKGLocation struct {
	Adm1      string  `json:"adm1"`
	Adm2      string  `json:"adm2"`
	Adm3      string  `json:"adm3"`
	Adm4      string  `json:"adm4"`
	Provinsi  string  `json:"provinsi"`
	Kotkab    string  `json:"kotkab"`
	Kecamatan string  `json:"kecamatan"`
	Desa      string  `json:"desa"`
	Lon       float64 `json:"lon"`
	Lat       float64 `json:"lat"`
	Timezone  string  `json:"timezone"`
}

// BMKGAreaRecord holds the forecast slots for one location, grouped by BMKG
// into several sub-arrays (one per forecast day as issued upstream).
type BMKGAreaRecord struct {
	Lokasi BMKGLocation    `json:"lokasi"`
	Cuaca  [][]BMKGReading `json:"cuaca"`
}

type BMKGReading struct {
	LocalDatetime string  `json:"local_datetime"`
	UTCDatetime   string  `json:"utc_datetime"`
	Temperature   float64 `json:"t"`
	Humidity      float64 `json:"hu"`
	Precipitation float64 `json:"tp"`
	WindSpeed     float64 `json:"ws"`
	WindDirection string  `json:"wd"`
	CloudCover    float64 `json:"tcc"`
	Weather       int     `json:"weather"`
	WeatherDesc   string  `json:"weather_desc"`
	WeatherDescEn string  `json:"weather_desc_en"`
	Image         string  `json:"image"`
}

type Condition string

const (
	ConditionClear  Condition = "clear"
	ConditionCloudy Condition = "cloudy"
	ConditionRain   Condition = "rain"
	ConditionStorm  Condition = "storm"
)

// ForecastDay is one calendar day aggregated from several BMKG slots.
type ForecastDay struct {
	Date      string    `json:"date"`
	RainMm    float64   `json:"rainMm"`
	TempC     float64   `json:"tempC"`
	Humidity  float64   `json:"humidity"`
	WindKmh   float64   `json:"windKmh"`
	Condition Condition `json:"condition"`
}

type Season string

const (
	SeasonRain Season = "rain"
	SeasonDry  Season = "dry"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type PestRisk struct {
	Name   string    `json:"name"`
	Icon   string    `json:"icon"`
	Risk   RiskLevel `json:"risk"`
	Advice string    `json:"advice"`
}

type RiskTier string

const (
	TierSafe    RiskTier = "safe"
	TierCaution RiskTier = "caution"
	TierDanger  RiskTier = "danger"
)

type RiskCause string

const (
	CauseNone  RiskCause = ""
	CauseHeat  RiskCause = "heat"
	CauseStorm RiskCause = "storm"
)

// WeatherRisk is the advisory for a single day.
type WeatherRisk struct {
	Tier    RiskTier  `json:"tier"`
	Cause   RiskCause `json:"cause,omitempty"`
	Message string    `json:"message"`
}
