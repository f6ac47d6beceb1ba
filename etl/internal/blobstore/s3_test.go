package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryline-systems/sentryline-etl/common/logging"
)

type fakeObject struct {
	data     []byte
	modified time.Time
}

// fakeS3 is an in-memory API implementation.
type fakeS3 struct {
	objects map[string]fakeObject
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Key)] = fakeObject{data: data, modified: time.Now()}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	obj, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: %s", aws.ToString(params.Key))
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentLength: aws.Int64(int64(len(obj.data))),
	}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(params.Prefix)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	contents := make([]types.Object, 0, len(keys))
	for _, key := range keys {
		obj := f.objects[key]
		contents = append(contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(obj.data))),
			LastModified: aws.Time(obj.modified),
		})
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func (f *fakeS3) add(key string, data []byte, modified time.Time) {
	f.objects[key] = fakeObject{data: data, modified: modified}
}

func testStore(api API) *Store {
	return NewWithAPI(api, "test-bucket", logging.New(logging.ParseLevel("error"), "text"))
}

func TestPutGetJSON_RoundTrip(t *testing.T) {
	store := testStore(newFakeS3())
	ctx := context.Background()

	in := map[string]any{"event_id": "evt_1", "severity": "high"}
	require.NoError(t, store.PutJSON(ctx, "raw/b1/events.json", in))

	var out map[string]any
	require.NoError(t, store.GetJSON(ctx, "raw/b1/events.json", &out))
	assert.Equal(t, "evt_1", out["event_id"])
	assert.Equal(t, "high", out["severity"])
}

func TestGetJSON_MissingKey(t *testing.T) {
	store := testStore(newFakeS3())

	var out map[string]any
	err := store.GetJSON(context.Background(), "raw/missing.json", &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download")
}

func TestList_FiltersGhostFiles(t *testing.T) {
	api := newFakeS3()
	now := time.Now()
	api.add("raw/b1/", nil, now)
	api.add("raw/b1/empty.json", []byte{}, now)
	api.add("raw/b1/tiny.json", []byte("{}"), now)
	api.add("raw/b1/events.json", []byte(`[{"event_id":"evt_1"}]`), now)

	objects, err := testStore(api).List(context.Background(), "raw/b1/")

	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "raw/b1/events.json", objects[0].Key)
}

func TestNewest_PicksLatestObject(t *testing.T) {
	api := newFakeS3()
	base := time.Date(2025, 11, 14, 12, 0, 0, 0, time.UTC)
	api.add("raw/b1/first.json", []byte(`{"n":1}`), base)
	api.add("raw/b1/second.json", []byte(`{"n":2}`), base.Add(time.Minute))
	api.add("raw/b1/third.json", []byte(`{"n":3}`), base.Add(30*time.Second))

	newest, err := testStore(api).Newest(context.Background(), "raw/b1/")

	require.NoError(t, err)
	assert.Equal(t, "raw/b1/second.json", newest.Key)
}

func TestNewest_EmptyPrefix(t *testing.T) {
	_, err := testStore(newFakeS3()).Newest(context.Background(), "raw/none/")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoObjects)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{Region: "us-east-1", Bucket: "b"}
	assert.NoError(t, cfg.Validate())

	assert.Error(t, (&Config{Bucket: "b"}).Validate())
	assert.Error(t, (&Config{Region: "us-east-1"}).Validate())
}
