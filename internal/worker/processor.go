// Package worker runs combo detection for jobs taken from the queue.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/suykerbuyk/combo-finder/internal/combo"
	"github.com/suykerbuyk/combo-finder/internal/discover"
	"github.com/suykerbuyk/combo-finder/internal/finder"
	"github.com/suykerbuyk/combo-finder/internal/logging"
)

// JobPayload is one replay to scan.
type JobPayload struct {
	JobID string `json:"job_id"`
	Path  string `json:"path"`
}

// ComboSink persists the combos of one job, replacing earlier results for
// the same job.
type ComboSink interface {
	Write(ctx context.Context, jobID uuid.UUID, configKey string, combos []combo.Combo) error
}

// Enqueuer accepts raw job payloads.
type Enqueuer interface {
	Enqueue(ctx context.Context, payloads ...[]byte) error
}

// Processor handles scan jobs from the queue.
type Processor struct {
	ctx       context.Context
	finder    *finder.Finder
	sink      ComboSink
	configKey string
}

// NewProcessor creates a processor scanning with cfg and writing to sink.
func NewProcessor(ctx context.Context, cfg combo.Config, sink ComboSink) *Processor {
	return &Processor{
		ctx:       ctx,
		finder:    finder.New(cfg, finder.WithLogger(logging.Logger())),
		sink:      sink,
		configKey: cfg.Key(),
	}
}

// Handle processes a single job. Returned errors make the queue retry the
// job; a replay that no longer exists is dropped.
func (p *Processor) Handle(payload []byte) error {
	logger := logging.Logger()
	startTime := time.Now()

	var job JobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("unmarshal job payload: %w", err)
	}

	jobID, err := uuid.Parse(job.JobID)
	if err != nil {
		return fmt.Errorf("parse job_id: %w", err)
	}

	if _, err := os.Stat(job.Path); errors.Is(err, os.ErrNotExist) {
		logger.Warnf("job %s: replay %s not found, skipping", jobID, job.Path)
		return nil
	}

	combos, err := p.finder.File(job.Path)
	if err != nil {
		return fmt.Errorf("scan %s: %w", job.Path, err)
	}

	if err := p.sink.Write(p.ctx, jobID, p.configKey, combos); err != nil {
		return fmt.Errorf("write combos: %w", err)
	}

	logger.Infof("job %s: %d combos in %s (%v)", jobID, len(combos), job.Path, time.Since(startTime))
	return nil
}

// EnqueuePath queues one job per replay under root and returns the count.
func EnqueuePath(ctx context.Context, q Enqueuer, root string) (int, error) {
	files, err := discover.Discover(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", finder.ErrPathNotFound, root)
		}
		return 0, err
	}

	payloads := make([][]byte, 0, len(files))
	for _, f := range files {
		data, err := json.Marshal(JobPayload{JobID: uuid.NewString(), Path: f.Path})
		if err != nil {
			return 0, fmt.Errorf("marshal job: %w", err)
		}
		payloads = append(payloads, data)
	}

	if err := q.Enqueue(ctx, payloads...); err != nil {
		return 0, err
	}
	return len(payloads), nil
}
