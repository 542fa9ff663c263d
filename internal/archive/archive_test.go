package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts []*s3.PutObjectInput
	data [][]byte
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.data = append(f.data, b)
	return &s3.PutObjectOutput{}, nil
}

func withFakeS3(t *testing.T, fake *fakeS3) *s3.Options {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	var captured s3.Options
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(&captured)
		}
		return fake
	}
	return &captured
}

func TestCompress_RoundTrip(t *testing.T) {
	body := []byte(strings.Repeat(`{"user_id":"u1"}`, 50))
	c, err := Compress(body)
	require.NoError(t, err)
	assert.Less(t, len(c), len(body))

	got, err := Decompress(bytes.NewReader(c))
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	got := ObjectKey(time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC), id)
	assert.Equal(t, "rejected/2026/03/07/6ba7b810-9dad-11d1-80b4-00c04fd430c8.json.br", got)
}

func TestNewS3Archive_RequiresBucket(t *testing.T) {
	_, err := NewS3Archive(context.Background(), S3Options{})
	require.Error(t, err)
}

func TestNewS3Archive_LoadError(t *testing.T) {
	withFakeS3(t, &fakeS3{})
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	_, err := NewS3Archive(context.Background(), S3Options{Bucket: "b"})
	require.ErrorContains(t, err, "no config")
}

func TestS3Archive_Put(t *testing.T) {
	fake := &fakeS3{}
	opts := withFakeS3(t, fake)

	a, err := NewS3Archive(context.Background(), S3Options{
		Bucket:          "rejects",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:4566",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	a.newID = func() uuid.UUID { return id }

	key, err := a.Put(context.Background(), Rejected{
		MessageID:  "m-1",
		Body:       `{"user_id":"u1"}`,
		Reason:     "missing properties: 'ip'",
		ReceivedAt: time.Date(2026, 10, 19, 1, 2, 3, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "rejected/2026/10/19/"+id.String()+".json.br", key)

	require.Len(t, fake.puts, 1)
	in := fake.puts[0]
	assert.Equal(t, "rejects", aws.ToString(in.Bucket))
	assert.Equal(t, "br", aws.ToString(in.ContentEncoding))
	assert.Equal(t, "m-1", in.Metadata["message-id"])
	assert.Equal(t, "missing properties: 'ip'", in.Metadata["reason"])

	body, err := Decompress(bytes.NewReader(fake.data[0]))
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u1"}`, string(body))
}

func TestS3Archive_PutError(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	withFakeS3(t, fake)

	a, err := NewS3Archive(context.Background(), S3Options{Bucket: "b"})
	require.NoError(t, err)

	_, err = a.Put(context.Background(), Rejected{Body: "{}"})
	require.ErrorContains(t, err, "access denied")
}

func TestNop(t *testing.T) {
	key, err := Nop{}.Put(context.Background(), Rejected{Body: "x"})
	require.NoError(t, err)
	assert.Empty(t, key)
}
