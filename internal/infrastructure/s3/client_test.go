package s3infra

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	key, contentType, body string
	putErr                 error
	ttl                    time.Duration
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, _ := io.ReadAll(in.Body)
	f.key, f.contentType, f.body = *in.Key, *in.ContentType, string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.ttl = opts.Expires
	return &v4.PresignedHTTPRequest{URL: "https://" + *in.Bucket + ".s3.test/" + *in.Key}, nil
}

func TestStore_UploadAndPresign(t *testing.T) {
	fake := &fakeS3{}
	s := &Store{client: fake, presigner: fake, bucket: "exports"}

	require.NoError(t, s.Upload(context.Background(), "u1/history.csv", strings.NewReader("a,b\n"), "text/csv"))
	assert.Equal(t, "u1/history.csv", fake.key)
	assert.Equal(t, "text/csv", fake.contentType)
	assert.Equal(t, "a,b\n", fake.body)

	url, err := s.PresignedURL(context.Background(), "u1/history.csv", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://exports.s3.test/u1/history.csv", url)
	assert.Equal(t, 15*time.Minute, fake.ttl)
}

func TestStore_UploadError(t *testing.T) {
	fake := &fakeS3{putErr: errors.New("access denied")}
	s := &Store{client: fake, presigner: fake, bucket: "exports"}

	err := s.Upload(context.Background(), "k", strings.NewReader(""), "text/csv")
	assert.ErrorContains(t, err, "s3 put object")
}
