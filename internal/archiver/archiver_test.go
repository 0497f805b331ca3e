package archiver

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tradecopy-relay/internal/domain"
	"github.com/aristath/tradecopy-relay/internal/registry"
)

type fakeUploader struct {
	calls int
	key   string
}

func (f *fakeUploader) Upload(_ context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.calls++
	f.key = *input.Key
	return &manager.UploadOutput{}, nil
}

func TestArchiveOnce_UploadsSnapshot(t *testing.T) {
	reg := registry.New()
	reg.Register(registry.RegisterInput{Account: "M1", Role: domain.RoleMaster})

	up := &fakeUploader{}
	a := New(reg, up, "test-bucket", zerolog.Nop())
	a.KeyFunc = func(time.Time) string { return "fixed-key.json" }

	require.NoError(t, a.archiveOnce(context.Background()))
	assert.Equal(t, 1, up.calls)
	assert.Equal(t, "fixed-key.json", up.key)
}

func TestDefaultKeyFunc_HasJSONExtension(t *testing.T) {
	key := defaultKeyFunc(time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "snapshots/2026/07/30/100000.json", key)
}
