package models

import "time"

// Indicators is the bundle computed from the tail of a candle series.
// Values are not clamped.
type Indicators struct {
	SMAFast           float64   `json:"sma_fast"`
	SMASlow           float64   `json:"sma_slow"`
	RSI               float64   `json:"rsi"`
	MACD              float64   `json:"macd"`
	BollingerPosition float64   `json:"bollinger_position"`
	VolumeRatio       float64   `json:"volume_ratio"`
	CurrentPrice      float64   `json:"current_price"`
	Timestamp         time.Time `json:"timestamp"`
}
