package jobs

import (
	"context"

	"github.com/wonny/swing/pkg/logger"
)

// TextfileWriter is implemented by metrics.Recorder
type TextfileWriter interface {
	WriteTextfile(path string) error
}

// MetricsTextfileJob flushes run metrics to a node_exporter textfile
type MetricsTextfileJob struct {
	metrics TextfileWriter
	path    string
	logger  *logger.Logger
}

// NewMetricsTextfileJob creates a new metrics textfile job
func NewMetricsTextfileJob(m TextfileWriter, path string, log *logger.Logger) *MetricsTextfileJob {
	return &MetricsTextfileJob{
		metrics: m,
		path:    path,
		logger:  log,
	}
}

// Name returns the job name
func (j *MetricsTextfileJob) Name() string {
	return "metrics_textfile"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *MetricsTextfileJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run writes the textfile
func (j *MetricsTextfileJob) Run(ctx context.Context) error {
	if err := j.metrics.WriteTextfile(j.path); err != nil {
		return err
	}
	j.logger.WithField("path", j.path).Debug("Metrics textfile written")
	return nil
}
