package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    map[string][]byte
	types   map[string]string
	deletes []string
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage_UploadReportsProgress(t *testing.T) {
	fake := &fakeS3{puts: map[string][]byte{}, types: map[string]string{}}
	st := newS3Storage(fake, "attachments", "https://cdn.example.com/")

	payload := strings.Repeat("x", 10_000)
	var last int64
	key, err := st.Upload(context.Background(), "/jobs/j1/f1-a.pdf", bytes.NewReader([]byte(payload)), int64(len(payload)), "application/pdf",
		func(sent int64) { last = sent })
	require.NoError(t, err)

	assert.Equal(t, "jobs/j1/f1-a.pdf", key)
	assert.Equal(t, int64(len(payload)), last)
	assert.Equal(t, payload, string(fake.puts[key]))
	assert.Equal(t, "application/pdf", fake.types[key])
	assert.Equal(t, "https://cdn.example.com/jobs/j1/f1-a.pdf", st.PublicURL(key))

	require.NoError(t, st.Delete(context.Background(), key))
	assert.Equal(t, []string{key}, fake.deletes)
}

func TestS3Storage_ErrorsMapToUnavailable(t *testing.T) {
	fake := &fakeS3{err: errors.New("connection refused")}
	st := newS3Storage(fake, "attachments", "https://cdn.example.com")

	_, err := st.Upload(context.Background(), "a", bytes.NewReader([]byte("a")), 1, "", nil)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.ErrorIs(t, st.Delete(context.Background(), "a"), domain.ErrUnavailable)
}

func TestProgressReader_SeekResetsCount(t *testing.T) {
	var seen []int64
	pr := &progressReader{r: bytes.NewReader([]byte("abcdef")), progress: func(n int64) { seen = append(seen, n) }}
	buf := make([]byte, 4)
	_, _ = pr.Read(buf)
	_, err := pr.Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, _ = io.ReadAll(pr)
	assert.Equal(t, int64(4), seen[0])
	assert.Equal(t, int64(6), seen[len(seen)-1])
}
