// Package archiver implements the optional, best-effort connection
// snapshot archiver: a robfig/cron/v3 job that uploads the current
// connection table to S3 on a schedule, grounded on the teacher's
// scheduler.Scheduler (trader-go/internal/scheduler) Job interface. It
// sits off the hot path entirely; a failed upload is logged and skipped,
// never retried inline.
package archiver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/tradecopy-relay/internal/registry"
)

// Uploader is the subset of manager.Uploader the archiver depends on, so
// tests can substitute a fake without talking to S3.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Archiver periodically snapshots the connection registry to a bucket.
type Archiver struct {
	Registry *registry.Registry
	Uploader Uploader
	Bucket   string
	KeyFunc  func(time.Time) string
	cron     *cron.Cron
	log      zerolog.Logger
}

// New builds an Archiver with KeyFunc set to defaultKeyFunc, a
// "snapshots/2006/01/02/150405.json" layout.
func New(reg *registry.Registry, uploader Uploader, bucket string, log zerolog.Logger) *Archiver {
	return &Archiver{
		Registry: reg,
		Uploader: uploader,
		Bucket:   bucket,
		KeyFunc:  defaultKeyFunc,
		cron:     cron.New(cron.WithSeconds()),
		log:      log.With().Str("component", "archiver").Logger(),
	}
}

func defaultKeyFunc(t time.Time) string {
	return "snapshots/" + t.UTC().Format("2006/01/02/150405") + ".json"
}

// Schedule registers the archive job on schedule (cron.WithSeconds
// syntax, e.g. "0 */15 * * * *" for every 15 minutes) and starts the
// underlying cron runner.
func (a *Archiver) Schedule(ctx context.Context, schedule string) error {
	_, err := a.cron.AddFunc(schedule, func() {
		if err := a.archiveOnce(ctx); err != nil {
			a.log.Warn().Err(err).Msg("archive run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("archiver: schedule: %w", err)
	}
	a.cron.Start()
	return nil
}

// Stop drains any in-flight run and stops the scheduler.
func (a *Archiver) Stop() {
	ctx := a.cron.Stop()
	<-ctx.Done()
}

func (a *Archiver) archiveOnce(ctx context.Context) error {
	conns := a.Registry.GetAll()
	data, err := json.Marshal(conns)
	if err != nil {
		return fmt.Errorf("archiver: marshal snapshot: %w", err)
	}

	key := a.KeyFunc(time.Now())
	_, err = a.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: &a.Bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("archiver: upload: %w", err)
	}
	a.log.Info().Str("key", key).Int("connections", len(conns)).Msg("snapshot archived")
	return nil
}
