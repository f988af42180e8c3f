// Package worker implements the buffered worker pool that turns ingested
// battles into stored feature rows. It decouples HTTP ingestion from
// extraction and storage, providing:
// - Load shedding when the queue is full
// - Batched extraction so the Pokedex is built once per batch
// - Graceful shutdown with flush guarantees
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/showdown-ml/battle-features/internal/logic"
	"github.com/showdown-ml/battle-features/internal/models"
)

// Prometheus metrics
var (
	battlesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "battle_features_battles_ingested_total",
		Help: "Total number of battles accepted into the queue",
	})

	battlesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "battle_features_battles_processed_total",
		Help: "Total number of battles whose features were stored",
	})

	battlesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "battle_features_battles_failed_total",
		Help: "Total number of battles in batches that failed processing",
	})

	batchesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "battle_features_batches_total",
		Help: "Batches handled by the worker pool, by outcome",
	}, []string{"outcome"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "battle_features_worker_queue_depth",
		Help: "Current depth of the worker queue",
	})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "battle_features_batch_duration_seconds",
		Help:    "Duration of extraction and storage of one batch",
		Buckets: prometheus.DefBuckets,
	})

	battlesLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "battle_features_battles_load_shed_total",
		Help: "Total number of battles dropped because the queue was full",
	})

	duplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "battle_features_duplicates_skipped_total",
		Help: "Total number of ingested battles skipped as already known",
	})
)

// Job represents a unit of work for the worker pool
type Job struct {
	Battle     models.Battle
	ReceivedAt time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	BatchTimeout  time.Duration
	// ExpectedBattles sizes the dedupe filter.
	ExpectedBattles uint

	Features logic.FeatureService
	Options  logic.GenerateOptions
	Store    logic.FeatureStore
	Cache    logic.FeatureCache
	CacheTTL time.Duration
	Runs     logic.RunRegistry // optional
	Logger   *zap.Logger
}

// Pool manages a pool of workers for async feature extraction
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	seenMu sync.Mutex
	seen   *bloom.BloomFilter
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 30 * time.Second
	}
	if cfg.ExpectedBattles == 0 {
		cfg.ExpectedBattles = 500000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
		seen:     bloom.NewWithEstimates(cfg.ExpectedBattles, 0.001),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop gracefully shuts down the worker pool. Queued battles are flushed
// before Stop returns.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	close(p.jobQueue)
	p.wg.Wait()
	p.cancel()
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds a battle to the queue. It never blocks: a full queue sheds
// the battle and returns false.
func (p *Pool) Enqueue(b models.Battle) bool {
	job := Job{Battle: b, ReceivedAt: time.Now()}

	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue battle (pool stopped)", "error", r)
		}
	}()

	select {
	case <-p.ctx.Done():
		p.logger.Warn("Worker pool context canceled, dropping battle")
		battlesLoadShed.Inc()
		return false
	default:
	}

	select {
	case p.jobQueue <- job:
		battlesIngested.Inc()
		return true
	default:
		battlesLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// Deduplicate drops battles already ingested. The bloom filter answers for
// battles seen by this process; its hits are confirmed against the cache
// so a false positive never loses a battle. Repeated ids inside one call
// are dropped too. Returned battles are marked as seen.
func (p *Pool) Deduplicate(ctx context.Context, battles []models.Battle) ([]models.Battle, int, error) {
	var maybe []string
	batch := make(map[string]bool, len(battles))
	for _, b := range battles {
		if batch[b.BattleID] {
			continue
		}
		batch[b.BattleID] = true
		if p.hasSeen(b.BattleID) {
			maybe = append(maybe, b.BattleID)
		}
	}

	known := map[string]bool{}
	if len(maybe) > 0 && p.config.Cache != nil {
		var err error
		known, err = p.config.Cache.Known(ctx, maybe)
		if err != nil {
			return nil, 0, fmt.Errorf("check known battles: %w", err)
		}
	}

	fresh := make([]models.Battle, 0, len(battles))
	taken := make(map[string]bool, len(battles))
	for _, b := range battles {
		if known[b.BattleID] || taken[b.BattleID] {
			continue
		}
		taken[b.BattleID] = true
		p.markSeen(b.BattleID)
		fresh = append(fresh, b)
	}

	dups := len(battles) - len(fresh)
	if dups > 0 {
		duplicatesSkipped.Add(float64(dups))
	}
	return fresh, dups, nil
}

// Bloom filter helpers with mutex protection
func (p *Pool) hasSeen(id string) bool {
	p.seenMu.Lock()
	defer p.seenMu.Unlock()
	return p.seen.TestString(id)
}

func (p *Pool) markSeen(id string) {
	p.seenMu.Lock()
	defer p.seenMu.Unlock()
	p.seen.AddString(id)
}

// worker processes jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			battlesFailed.Add(float64(len(batch)))
			batchesProcessed.WithLabelValues("failed").Inc()
		} else {
			p.logger.Infow("Batch processed", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			battlesProcessed.Add(float64(len(batch)))
			batchesProcessed.WithLabelValues("ok").Inc()
		}
		batchDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// processBatch extracts the features of a batch, stores them in ClickHouse
// and then refreshes the cache.
func (p *Pool) processBatch(batch []Job) error {
	if len(batch) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.config.BatchTimeout)
	defer cancel()

	battles := make([]models.Battle, len(batch))
	for i, job := range batch {
		battles[i] = job.Battle
	}

	start := time.Now()
	table, err := p.config.Features.Generate(ctx, battles, p.config.Options)
	if err != nil {
		return fmt.Errorf("generate features: %w", err)
	}

	runID := uuid.NewString()
	if err := p.config.Store.SaveTable(ctx, runID, table); err != nil {
		return fmt.Errorf("store features: %w", err)
	}

	// The cache and the run registry are best effort once rows are stored.
	if p.config.Cache != nil {
		if err := p.config.Cache.Put(ctx, table, p.config.CacheTTL); err != nil {
			p.logger.Warnw("Failed to cache features", "run", runID, "error", err)
		}
	}
	if p.config.Runs != nil {
		opts := p.config.Options
		run := &models.FeatureRun{
			ID:          runID,
			Set:         string(opts.Set),
			Test:        opts.FlagTest,
			Difference:  opts.Difference,
			DivideTurns: opts.DivideTurns,
			OneHot:      opts.OneHot,
			Battles:     len(table.Rows),
			Columns:     len(table.Columns),
			Duration:    time.Since(start),
			CreatedAt:   time.Now().UTC(),
		}
		if err := p.config.Runs.Record(ctx, run); err != nil {
			p.logger.Warnw("Failed to record run", "run", runID, "error", err)
		}
	}
	return nil
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
