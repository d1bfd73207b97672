//go:build integration

package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"

	"deedgate/internal/sentinel"
)

type MinIOSuite struct {
	suite.Suite
	container *tcminio.MinioContainer
	archive   *MinIO
}

func TestMinIOSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MinIOSuite))
}

func (s *MinIOSuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcminio.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		tcminio.WithUsername("deedgate"),
		tcminio.WithPassword("deedgate-secret"),
	)
	s.Require().NoError(err)
	s.container = container

	endpoint, err := container.ConnectionString(ctx)
	s.Require().NoError(err)

	a, err := NewMinIO(ctx, MinIOConfig{
		Endpoint:  endpoint,
		AccessKey: "deedgate",
		SecretKey: "deedgate-secret",
		Bucket:    "deeds-test",
	}, nil)
	s.Require().NoError(err)
	s.archive = a
}

func (s *MinIOSuite) TearDownSuite() {
	if s.container != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.container.Terminate(ctx)
	}
}

func (s *MinIOSuite) TestPutGetExists() {
	ctx := context.Background()

	ok, err := s.archive.Exists(ctx, hash)
	s.Require().NoError(err)
	s.False(ok)

	_, err = s.archive.Get(ctx, hash)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.archive.Put(ctx, Document{ContentHash: hash, ContentType: "application/pdf", Data: []byte("%PDF-1.7")}))

	doc, err := s.archive.Get(ctx, hash)
	s.Require().NoError(err)
	s.Equal([]byte("%PDF-1.7"), doc.Data)
	s.Equal("application/pdf", doc.ContentType)

	ok, err = s.archive.Exists(ctx, hash)
	s.Require().NoError(err)
	s.True(ok)
	s.NoError(s.archive.Health(ctx))
}

func (s *MinIOSuite) TestBucketIsCreatedOnce() {
	_, err := NewMinIO(context.Background(), MinIOConfig{
		Endpoint:  s.archive.client.EndpointURL().Host,
		AccessKey: "deedgate",
		SecretKey: "deedgate-secret",
		Bucket:    "deeds-test",
	}, nil)
	s.NoError(err)
}
