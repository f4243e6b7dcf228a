package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	s3manageriface.UploaderAPI
	input *s3manager.UploadInput
	body  string
	err   error
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, input *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	f.input = input
	data, _ := io.ReadAll(input.Body)
	f.body = string(data)
	if f.err != nil {
		return nil, f.err
	}
	return &s3manager.UploadOutput{Location: "https://bucket.s3.amazonaws.com/" + aws.StringValue(input.Key)}, nil
}

func TestS3ImageStore_Upload(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("public base url", func(t *testing.T) {
		up := &fakeUploader{}
		store := NewS3ImageStoreWithUploader(up, "greez-images", "https://cdn.greez.test/", newQuietLogger(ctrl))

		url, err := store.Upload(context.Background(), "products/p-1/a.png", "image/png", strings.NewReader("png-bytes"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.greez.test/products/p-1/a.png", url)
		assert.Equal(t, "greez-images", aws.StringValue(up.input.Bucket))
		assert.Equal(t, "image/png", aws.StringValue(up.input.ContentType))
		assert.Equal(t, "png-bytes", up.body)
	})

	t.Run("falls back to the upload location", func(t *testing.T) {
		store := NewS3ImageStoreWithUploader(&fakeUploader{}, "greez-images", "", newQuietLogger(ctrl))

		url, err := store.Upload(context.Background(), "products/p-1/a.png", "image/png", strings.NewReader("x"))
		require.NoError(t, err)
		assert.Equal(t, "https://bucket.s3.amazonaws.com/products/p-1/a.png", url)
	})

	t.Run("upload failure", func(t *testing.T) {
		store := NewS3ImageStoreWithUploader(&fakeUploader{err: errors.New("access denied")}, "greez-images", "", newQuietLogger(ctrl))

		_, err := store.Upload(context.Background(), "k", "image/png", strings.NewReader("x"))
		assert.ErrorContains(t, err, "access denied")
	})
}

func TestNewS3ImageStore(t *testing.T) {
	store, err := NewS3ImageStore(S3ImageStoreConfig{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		Bucket:          "greez-images",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		ForcePathStyle:  true,
	})
	require.NoError(t, err)
	assert.NotNil(t, store.uploader)
}
