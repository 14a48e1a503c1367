// Package storage is the S3 side of the atlas export.
//
// NewClient returns a *minio.Client behind the Client interface, so the
// export can run against AWS S3 or a MinIO container and be tested with
// mocks.Client. EnsureBucket creates the configured bucket on first use.
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err == nil {
//		err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
//	}
package storage
