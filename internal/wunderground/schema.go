package wunderground

import "pwsarchive/internal/obs"

// Column names the source returns for personal weather stations. The
// fetcher never assumes them; they matter to downstream resampling and
// charting.
const (
	ColTemperature    = "TemperatureF"
	ColDewpoint       = "DewpointF"
	ColPressure       = "PressureIn"
	ColWindDirection  = "WindDirectionDegrees"
	ColWindSpeed      = "WindSpeedMPH"
	ColWindGust       = "WindSpeedGustMPH"
	ColHumidity       = "Humidity"
	ColHourlyPrecip   = "HourlyPrecipIn"
	ColDailyRain      = "dailyrainin"
	ColSolarRadiation = "SolarRadiationWatts/m^2"
)

// HourlyAggregation maps columns to their hourly resampling methods:
// point samples average, within-period accumulators keep their last
// reading, gusts keep the maximum. Columns not listed keep the first
// sample of the hour.
func HourlyAggregation() map[string]obs.Agg {
	return map[string]obs.Agg{
		ColDewpoint:      obs.AggMean,
		ColHumidity:      obs.AggMean,
		ColPressure:      obs.AggMean,
		ColTemperature:   obs.AggMean,
		ColWindDirection: obs.AggMean,
		ColWindSpeed:     obs.AggMean,
		ColHourlyPrecip:  obs.AggLast,
		ColDailyRain:     obs.AggLast,
		ColWindGust:      obs.AggMax,
	}
}
