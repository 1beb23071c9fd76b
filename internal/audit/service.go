package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tuncerburak97/iskele/internal/metrics"
)

const batchLimit = 100

var errBufferFull = errors.New("audit buffer full")

// Service buffers audit entries and persists them in batches from a pool
// of worker goroutines, keeping persistence off the request path.
type Service struct {
	repo          Repository
	entries       chan *Entry
	workerCount   int
	flushInterval time.Duration
	wg            sync.WaitGroup
	done          chan struct{}
	closeOnce     sync.Once
	logger        zerolog.Logger
	metrics       *metrics.MetricsCollector
}

func NewService(repo Repository, logger zerolog.Logger, m *metrics.MetricsCollector, workerCount, bufferSize int, flushInterval time.Duration) *Service {
	if workerCount <= 0 {
		workerCount = 1
	}
	if bufferSize <= 0 {
		bufferSize = batchLimit
	}
	if flushInterval <= 0 {
		flushInterval = 100 * time.Millisecond
	}

	s := &Service{
		repo:          repo,
		entries:       make(chan *Entry, bufferSize),
		workerCount:   workerCount,
		flushInterval: flushInterval,
		done:          make(chan struct{}),
		logger:        logger,
		metrics:       m,
	}

	s.startWorkers()
	return s
}

func (s *Service) startWorkers() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.processEntries()
	}

	go s.monitorBuffer()
}

// Record queues an entry for persistence. A full buffer drops the entry
// rather than blocking the request.
func (s *Service) Record(entry *Entry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	select {
	case s.entries <- entry:
	default:
		s.logger.Warn().
			Str("request_id", entry.RequestID).
			Str("stage", entry.Stage).
			Msg("Audit buffer full, dropping entry")
		if s.metrics != nil {
			s.metrics.LogError("audit_buffer_full", errBufferFull)
		}
	}
}

func (s *Service) processEntries() {
	defer s.wg.Done()

	ctx := context.Background()
	batch := make([]*Entry, 0, batchLimit)
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case entry := <-s.entries:
					batch = append(batch, entry)
					if len(batch) >= batchLimit {
						s.saveBatch(ctx, batch)
						batch = batch[:0]
					}
				default:
					if len(batch) > 0 {
						s.saveBatch(ctx, batch)
					}
					return
				}
			}
		case entry := <-s.entries:
			batch = append(batch, entry)
			if len(batch) >= batchLimit {
				s.saveBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.saveBatch(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *Service) saveBatch(ctx context.Context, batch []*Entry) {
	start := time.Now()

	if err := s.repo.SaveEntries(ctx, batch); err != nil {
		s.logger.Error().
			Err(err).
			Int("batch_size", len(batch)).
			Msg("Failed to save audit batch")
		if s.metrics != nil {
			s.metrics.LogError("audit_batch_save", err)
		}
		return
	}

	if s.metrics != nil {
		s.metrics.ObserveBatchSave("audit", time.Since(start), len(batch))
	}
}

func (s *Service) monitorBuffer() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.metrics != nil {
				s.metrics.ObserveQueueSize("audit", float64(len(s.entries)))
			}
		}
	}
}

// Shutdown stops the workers after flushing queued entries and closes the
// repository.
func (s *Service) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()

	if err := s.repo.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to close audit repository")
	}
}
