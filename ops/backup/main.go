package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/mholt/archives"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const archivePrefix = "raffled-backup-"

type backupConfig struct {
	datadir string
	region  string
	bucket  string
	retain  int
}

func loadConfig() (*backupConfig, error) {
	viper.SetEnvPrefix("RAFFLE_BACKUP")
	viper.AutomaticEnv()
	viper.SetDefault("RETAIN", 7)

	cfg := &backupConfig{
		datadir: viper.GetString("DATADIR"),
		region:  viper.GetString("AWS_REGION"),
		bucket:  viper.GetString("BUCKET"),
		retain:  viper.GetInt("RETAIN"),
	}
	if cfg.datadir == "" {
		return nil, fmt.Errorf("missing datadir")
	}
	if cfg.region == "" {
		return nil, fmt.Errorf("missing aws region")
	}
	if cfg.bucket == "" {
		return nil, fmt.Errorf("missing bucket name")
	}
	if cfg.retain < 0 {
		return nil, fmt.Errorf("invalid retain, must not be negative")
	}
	return cfg, nil
}

// main archives the raffled datadir (badger or sqlite stores) and uploads it
// to s3, keeping only the most recent backups.
func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	ctx := context.Background()
	archiveName := fmt.Sprintf(
		"%s%s.tar.gz", archivePrefix, time.Now().UTC().Format("2006-01-02-15-04-05"),
	)
	archivePath := filepath.Join(os.TempDir(), archiveName)
	defer os.Remove(archivePath)

	if err := archiveDatadir(ctx, cfg.datadir, archivePath); err != nil {
		log.WithError(err).Fatal("failed to archive datadir")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.region))
	if err != nil {
		log.WithError(err).Fatal("failed to load aws config")
	}
	client := s3.NewFromConfig(awsCfg)

	if err := ensureBucket(ctx, client, cfg.bucket, cfg.region); err != nil {
		log.WithError(err).Fatal("failed to prepare bucket")
	}
	if err := upload(ctx, client, cfg.bucket, archiveName, archivePath); err != nil {
		log.WithError(err).Fatal("failed to upload backup")
	}
	log.Infof("uploaded backup to s3://%s/%s", cfg.bucket, archiveName)

	if cfg.retain > 0 {
		if err := prune(ctx, client, cfg.bucket, cfg.retain); err != nil {
			log.WithError(err).Warn("failed to prune old backups")
		}
	}
}

func archiveDatadir(ctx context.Context, datadir, archivePath string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer out.Close()

	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		datadir: "",
	})
	if err != nil {
		return fmt.Errorf("failed to read datadir: %w", err)
	}

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}
	return format.Archive(ctx, out, files)
}

func ensureBucket(ctx context.Context, client *s3.Client, bucket, region string) error {
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	}); err == nil {
		return nil
	}

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
		CreateBucketConfiguration: &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		},
	}); err != nil {
		return err
	}
	log.Infof("created bucket %s", bucket)

	if _, err := client.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
		Bucket: aws.String(bucket),
		VersioningConfiguration: &types.VersioningConfiguration{
			Status: types.BucketVersioningStatusEnabled,
		},
	}); err != nil {
		log.WithError(err).Warn("failed to enable bucket versioning")
	}
	return nil
}

func upload(ctx context.Context, client *s3.Client, bucket, key, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = manager.NewUploader(client).Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	return err
}

// prune deletes all but the most recent backups. Archive names embed a
// sortable timestamp.
func prune(ctx context.Context, client *s3.Client, bucket string, retain int) error {
	keys := make([]string, 0)
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(archivePrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, obj := range page.Contents {
			if key := aws.ToString(obj.Key); strings.HasSuffix(key, ".tar.gz") {
				keys = append(keys, key)
			}
		}
	}
	if len(keys) <= retain {
		return nil
	}

	sort.Strings(keys)
	stale := keys[:len(keys)-retain]
	objects := make([]types.ObjectIdentifier, 0, len(stale))
	for _, key := range stale {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	if _, err := client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{Objects: objects},
	}); err != nil {
		return err
	}
	log.Infof("pruned %d old backups", len(stale))
	return nil
}
