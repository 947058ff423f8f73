package models

// SetEndpointRequest switches the active exchange endpoint by name.
type SetEndpointRequest struct {
	Name string `json:"name" validate:"required"`
}

// SetSymbolRequest switches the polled symbol.
type SetSymbolRequest struct {
	Symbol string `json:"symbol" validate:"required,min=2,max=20,alphanum"`
}

// UpdateSettingsRequest is a partial settings update; nil fields keep their value.
type UpdateSettingsRequest struct {
	Aggressiveness  *float64 `json:"aggressiveness" validate:"omitempty,gte=0.1,lte=1"`
	CommissionPct   *float64 `json:"commission_pct" validate:"omitempty,gte=0.01,lte=1"`
	MinProfitPct    *float64 `json:"min_profit_pct" validate:"omitempty,gte=0.05,lte=2"`
	ShowPredictions *bool    `json:"show_predictions"`
	ChartType       *string  `json:"chart_type" validate:"omitempty,oneof=candles line"`
}

// Apply merges the non-nil fields into s.
func (r *UpdateSettingsRequest) Apply(s Settings) Settings {
	if r.Aggressiveness != nil {
		s.Aggressiveness = *r.Aggressiveness
	}
	if r.CommissionPct != nil {
		s.CommissionPct = *r.CommissionPct
	}
	if r.MinProfitPct != nil {
		s.MinProfitPct = *r.MinProfitPct
	}
	if r.ShowPredictions != nil {
		s.ShowPredictions = *r.ShowPredictions
	}
	if r.ChartType != nil {
		s.ChartType = ChartType(*r.ChartType)
	}
	return s
}

// SignalsQuery filters the signal history listing.
type SignalsQuery struct {
	Limit int    `query:"limit" default:"50" validate:"gte=1,lte=1000"`
	Since string `query:"since"`
}

// SnapshotQuery selects a cached snapshot.
type SnapshotQuery struct {
	Symbol string `query:"symbol" validate:"omitempty,alphanum"`
}
