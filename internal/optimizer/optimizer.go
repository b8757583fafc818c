package optimizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/c-bata/goptuna"
	"github.com/c-bata/goptuna/tpe"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trend-trader/internal/backtest"
	"github.com/yourusername/trend-trader/internal/config"
	"github.com/yourusername/trend-trader/internal/indicator"
	"github.com/yourusername/trend-trader/internal/metrics"
	"github.com/yourusername/trend-trader/internal/models"
	"github.com/yourusername/trend-trader/internal/strategy"
)

const studyName = "sma-cross-search"

// Optimizer runs a TPE parameter search over prefetched bar histories.
// Histories are fetched once up front so trials never touch the network.
type Optimizer struct {
	cfg       config.OptimizerConfig
	base      backtest.Config
	minATR    float64
	histories map[string][]models.Bar
	logger    *logrus.Logger
}

// Result is the outcome of a completed search.
type Result struct {
	BestParams Params  `json:"best_params"`
	BestScore  float64 `json:"best_score"`
	Trials     int     `json:"trials"`
}

// NewOptimizer creates an optimizer over the given symbol histories. The
// base config supplies the balance and cost settings shared by every trial.
func NewOptimizer(cfg config.OptimizerConfig, base backtest.Config, minATR float64, histories map[string][]models.Bar, logger *logrus.Logger) (*Optimizer, error) {
	if len(histories) == 0 {
		return nil, fmt.Errorf("at least one symbol history is required")
	}
	for symbol, bars := range histories {
		if len(bars) == 0 {
			return nil, fmt.Errorf("history for %s is empty", symbol)
		}
	}

	return &Optimizer{
		cfg:       cfg,
		base:      base,
		minATR:    minATR,
		histories: histories,
		logger:    logger,
	}, nil
}

// Optimize runs the study and persists the best parameter vector to the
// configured output path.
func (o *Optimizer) Optimize(ctx context.Context) (*Result, error) {
	study, err := goptuna.CreateStudy(
		studyName,
		goptuna.StudyOptionDirection(goptuna.StudyDirectionMaximize),
		goptuna.StudyOptionSampler(tpe.NewSampler()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create study: %w", err)
	}
	study.WithContext(ctx)

	o.logger.WithFields(logrus.Fields{
		"trials":  o.cfg.Trials,
		"symbols": len(o.histories),
	}).Info("Starting parameter search")

	if err := study.Optimize(o.objective, o.cfg.Trials); err != nil {
		return nil, fmt.Errorf("study failed: %w", err)
	}

	bestScore, err := study.GetBestValue()
	if err != nil {
		return nil, fmt.Errorf("failed to get best value: %w", err)
	}
	rawParams, err := study.GetBestParams()
	if err != nil {
		return nil, fmt.Errorf("failed to get best parameters: %w", err)
	}
	best, err := paramsFromStudy(rawParams)
	if err != nil {
		return nil, err
	}

	metrics.UpdateBestScore(bestScore)
	o.logger.WithFields(logrus.Fields{
		"short_sma":      best.ShortSMA,
		"long_sma":       best.LongSMA,
		"atr_period":     best.ATRPeriod,
		"risk_per_trade": best.RiskPerTrade,
		"score":          bestScore,
	}).Info("Parameter search complete")

	if o.cfg.OutputPath != "" {
		if err := best.Save(o.cfg.OutputPath); err != nil {
			return nil, err
		}
	}

	return &Result{
		BestParams: best,
		BestScore:  bestScore,
		Trials:     o.cfg.Trials,
	}, nil
}

// objective scores one candidate parameter vector.
func (o *Optimizer) objective(trial goptuna.Trial) (float64, error) {
	b := o.cfg.Bounds

	shortSMA, err := trial.SuggestInt(paramShortSMA, b.ShortSMAMin, b.ShortSMAMax)
	if err != nil {
		return 0, err
	}
	longSMA, err := trial.SuggestInt(paramLongSMA, b.LongSMAMin, b.LongSMAMax)
	if err != nil {
		return 0, err
	}
	atrPeriod, err := trial.SuggestInt(paramATRPeriod, b.ATRPeriodMin, b.ATRPeriodMax)
	if err != nil {
		return 0, err
	}
	risk, err := trial.SuggestFloat(paramRiskPerTrade, b.RiskPerTradeMin, b.RiskPerTradeMax)
	if err != nil {
		return 0, err
	}

	candidate := Params{
		ShortSMA:     shortSMA,
		LongSMA:      longSMA,
		ATRPeriod:    atrPeriod,
		RiskPerTrade: risk,
	}

	score := o.Score(candidate)
	metrics.RecordOptimizerTrial()

	o.logger.WithFields(logrus.Fields{
		"short_sma":      shortSMA,
		"long_sma":       longSMA,
		"atr_period":     atrPeriod,
		"risk_per_trade": risk,
		"score":          score,
	}).Debug("Trial evaluated")

	return score, nil
}

// Score evaluates a parameter vector by running a backtest per symbol and
// averaging the resulting Sharpe ratios. Symbols whose run fails (for
// example from insufficient history for the candidate windows) or whose
// equity curve carries the sentinel Sharpe are skipped; when every symbol
// is skipped the sentinel score is returned so the trial ranks below any
// scoreable candidate.
func (o *Optimizer) Score(p Params) float64 {
	engineCfg := o.base
	engineCfg.Indicators = indicator.Params{
		ShortWindow: p.ShortSMA,
		LongWindow:  p.LongSMA,
		ATRWindow:   p.ATRPeriod,
	}

	type symbolScore struct {
		sharpe float64
		ok     bool
	}

	scores := make([]symbolScore, 0, len(o.histories))
	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := o.cfg.Workers
	if workers <= 0 {
		workers = len(o.histories)
	}
	sem := make(chan struct{}, workers)

	for symbol, history := range o.histories {
		wg.Add(1)
		go func(symbol string, history []models.Bar) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			policy := strategy.NewSMACross(p.RiskPerTrade)
			policy.MinATR = o.minATR

			engine, err := backtest.NewEngine(engineCfg, policy, o.logger)
			if err != nil {
				mu.Lock()
				scores = append(scores, symbolScore{})
				mu.Unlock()
				return
			}

			result, err := engine.Run(symbol, history)
			if err != nil {
				o.logger.WithFields(logrus.Fields{
					"symbol": symbol,
					"error":  err,
				}).Debug("Symbol skipped in trial")
				mu.Lock()
				scores = append(scores, symbolScore{})
				mu.Unlock()
				return
			}

			// A zero-variance equity curve scores the sentinel; it
			// counts as skipped, exactly like a failed run.
			if result.Summary.SharpeRatio == backtest.SentinelScore {
				o.logger.WithField("symbol", symbol).Debug("Symbol skipped in trial")
				mu.Lock()
				scores = append(scores, symbolScore{})
				mu.Unlock()
				return
			}

			mu.Lock()
			scores = append(scores, symbolScore{sharpe: result.Summary.SharpeRatio, ok: true})
			mu.Unlock()
		}(symbol, history)
	}
	wg.Wait()

	var sum float64
	var n int
	for _, s := range scores {
		if s.ok {
			sum += s.sharpe
			n++
		}
	}
	if n == 0 {
		return backtest.SentinelScore
	}
	return sum / float64(n)
}
