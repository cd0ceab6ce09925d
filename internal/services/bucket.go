package services

import (
  "context"
  "fmt"
  "io"
  "os"
  "time"

  "cloud.google.com/go/storage"
  "google.golang.org/api/option"

  "github.com/wavelength-chat/wavelength-backend/internal/logger"
)

type BucketService interface {
  UploadFile(ctx context.Context, key string, r io.Reader) error
  GetPublicURL(key string) string
}

type gcsBucketService struct {
  log           *logger.Logger
  client        *storage.Client
  bucketName    string
}

// NewBucketService returns (nil, nil) when GCS_BUCKET_NAME is unset; callers
// treat a nil bucket as "store images inline".
func NewBucketService(log *logger.Logger) (BucketService, error) {
  serviceLog := log.With("service", "BucketService")
  bucketName := os.Getenv("GCS_BUCKET_NAME")
  if bucketName == "" {
    serviceLog.Info("GCS_BUCKET_NAME not set; generated images will be returned as data URIs")
    return nil, nil
  }

  ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
  defer cancel()

  var opts []option.ClientOption
  if credsFile := os.Getenv("GCS_CREDENTIALS_FILE"); credsFile != "" {
    opts = append(opts, option.WithCredentialsFile(credsFile))
  }
  client, err := storage.NewClient(ctx, opts...)
  if err != nil {
    return nil, fmt.Errorf("failed to create GCS client: %w", err)
  }
  serviceLog.Info("GCS bucket service ready", "bucket", bucketName)
  return &gcsBucketService{
    log:         serviceLog,
    client:      client,
    bucketName:  bucketName,
  }, nil
}

func (bs *gcsBucketService) UploadFile(ctx context.Context, key string, r io.Reader) error {
  w := bs.client.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
  w.ContentType = "image/png"
  if _, err := io.Copy(w, r); err != nil {
    _ = w.Close()
    return fmt.Errorf("failed to write object %s: %w", key, err)
  }
  if err := w.Close(); err != nil {
    return fmt.Errorf("failed to finalize object %s: %w", key, err)
  }
  return nil
}

func (bs *gcsBucketService) GetPublicURL(key string) string {
  return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key)
}
