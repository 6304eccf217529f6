package storage

import (
	"alcyxob/boxing-app/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.test", PublicBaseURL(config.S3Config{PublicBaseURL: "https://cdn.test/"}))
	assert.Equal(t, "http://minio:9000/media", PublicBaseURL(config.S3Config{Endpoint: "http://minio:9000/", BucketName: "media"}))
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com", PublicBaseURL(config.S3Config{BucketName: "media", Region: "eu-west-1"}))
}
