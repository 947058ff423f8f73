package console

import (
	"ScalpSignal/internal/domain/models"
	domrepo "ScalpSignal/internal/domain/repository"
	"ScalpSignal/pkg/logger"
)

// Presenter writes events to the process logger for headless runs.
type Presenter struct {
	log *logger.Logger
}

var _ domrepo.Presenter = (*Presenter)(nil)

func NewPresenter(log *logger.Logger) *Presenter {
	return &Presenter{log: log.With(logger.String("component", "console"))}
}

func (p *Presenter) Handle(ev models.Event) {
	switch ev.Kind {
	case models.EventLog:
		if ev.Log == nil {
			return
		}
		f := logger.String("category", string(ev.Log.Category))
		switch ev.Log.Category {
		case models.LogError:
			p.log.Error(ev.Log.Message, f)
		case models.LogWarning:
			p.log.Warn(ev.Log.Message, f)
		default:
			p.log.Info(ev.Log.Message, f)
		}
	case models.EventFrame:
		fr := ev.Frame
		if fr == nil || fr.Indicators == nil {
			return
		}
		fields := []logger.Field{
			logger.String("symbol", fr.Symbol),
			logger.Float64("price", fr.Indicators.CurrentPrice),
			logger.Float64("rsi", fr.Indicators.RSI),
			logger.Float64("macd", fr.Indicators.MACD),
			logger.Float64("bb_position", fr.Indicators.BollingerPosition),
			logger.Float64("volume_ratio", fr.Indicators.VolumeRatio),
			logger.Float64("confidence", fr.Confidence),
		}
		if fr.Signal != nil {
			fields = append(fields, logger.String("signal", string(*fr.Signal)))
		}
		if n := len(fr.FuturePrices); n > 0 {
			fields = append(fields, logger.Float64("forecast", fr.FuturePrices[n-1]))
		}
		p.log.Debug("cycle", fields...)
	case models.EventStats:
		if s := ev.Stats; s != nil {
			p.log.Debug("stats",
				logger.Int("signals", s.TotalSignals),
				logger.Int("buy", s.BuyCount),
				logger.Int("sell", s.SellCount),
				logger.Bool("model_trained", s.ModelTrained),
				logger.Int64("latency_ms", s.LatencyMs),
				logger.String("endpoint", s.EndpointName),
			)
		}
	}
}
