package drive

import (
	"bytes"
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"rollbook/internal/backup"
	"rollbook/internal/config"
)

// S3Drive stores backups in an S3 bucket. Folders are modeled as key
// prefixes: a folder ID is the full prefix ending in "/", created with a
// zero-byte marker object, and file IDs are full object keys.
//
// Every operation degrades to a zero value on failure. The underlying error
// goes to the logger so the caller never has to unwind a failed sync.
type S3Drive struct {
	cfg    config.DriveConfig
	logger backup.Logger

	mu          sync.Mutex
	initialized bool
	initOK      bool
	signedIn    bool
	client      *s3.Client
	uploader    *manager.Uploader
	downloader  *manager.Downloader
}

// NewS3Drive creates an S3 drive from config. The session is not established
// until Initialize and SignIn are called.
func NewS3Drive(cfg config.DriveConfig, logger backup.Logger) *S3Drive {
	if logger == nil {
		logger = backup.NewNopLogger()
	}
	return &S3Drive{cfg: cfg, logger: logger}
}

// Initialize loads AWS configuration and builds the client. It is safe to
// call more than once; later calls return the first result.
func (d *S3Drive) Initialize(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initializeLocked(ctx)
}

func (d *S3Drive) initializeLocked(ctx context.Context) bool {
	if d.initialized {
		return d.initOK
	}
	d.initialized = true

	opts := []func(*awsconfig.LoadOptions) error{}
	if d.cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(d.cfg.S3Region))
	}
	if d.cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(d.cfg.S3AccessKeyID, d.cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		d.logger.Error("failed to load aws config", "error", err)
		return false
	}

	d.client = s3.NewFromConfig(awsCfg)
	d.uploader = manager.NewUploader(d.client)
	d.downloader = manager.NewDownloader(d.client)
	d.initOK = true
	return true
}

// SignIn verifies that the configured bucket is reachable with the current
// credentials.
func (d *S3Drive) SignIn(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.signInLocked(ctx)
}

func (d *S3Drive) signInLocked(ctx context.Context) bool {
	if d.signedIn {
		return true
	}
	if !d.initializeLocked(ctx) {
		return false
	}

	_, err := d.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(d.cfg.S3Bucket),
	})
	if err != nil {
		d.logger.Warn("bucket not reachable", "bucket", d.cfg.S3Bucket, "error", err)
		return false
	}

	d.signedIn = true
	return true
}

func (d *S3Drive) SignOut(context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.signedIn = false
}

func (d *S3Drive) IsSignedIn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.signedIn
}

func (d *S3Drive) AccountInfo() *backup.AccountInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.signedIn {
		return nil
	}
	return &backup.AccountInfo{
		ID:   d.cfg.S3Bucket,
		Name: "s3://" + d.cfg.S3Bucket + "/" + d.rootPrefix(),
	}
}

// ensureSession attempts an implicit sign-in so that data operations work
// without an explicit SignIn call, matching the other backends.
func (d *S3Drive) ensureSession(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.signInLocked(ctx)
}

// rootPrefix is the key prefix under which all folders live. Empty when no
// prefix is configured.
func (d *S3Drive) rootPrefix() string {
	if d.cfg.S3Prefix == "" {
		return ""
	}
	return strings.TrimSuffix(d.cfg.S3Prefix, "/") + "/"
}

func (d *S3Drive) CreateFolder(ctx context.Context, name, parentID string) string {
	if !d.ensureSession(ctx) {
		return ""
	}

	parent := parentID
	if parent == "" {
		parent = d.rootPrefix()
	}
	folderID := parent + name + "/"

	// Zero-byte marker object so the folder exists even while empty.
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(d.cfg.S3Bucket),
		Key:    aws.String(folderID),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		d.logger.Warn("failed to create folder", "folder", folderID, "error", err)
		return ""
	}
	return folderID
}

func (d *S3Drive) FindFolderByName(ctx context.Context, name string) string {
	if !d.ensureSession(ctx) {
		return ""
	}

	folderID := d.rootPrefix() + name + "/"
	out, err := d.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(d.cfg.S3Bucket),
		Prefix:  aws.String(folderID),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		d.logger.Warn("failed to look up folder", "folder", folderID, "error", err)
		return ""
	}
	if len(out.Contents) == 0 {
		return ""
	}
	return folderID
}

func (d *S3Drive) UploadFile(ctx context.Context, name string, content []byte, folderID string) string {
	if !d.ensureSession(ctx) {
		return ""
	}

	key := folderID + name
	if !d.putObject(ctx, key, content) {
		return ""
	}
	return key
}

func (d *S3Drive) UpdateFile(ctx context.Context, fileID string, content []byte) bool {
	if !d.ensureSession(ctx) {
		return false
	}
	return d.putObject(ctx, fileID, content)
}

func (d *S3Drive) putObject(ctx context.Context, key string, content []byte) bool {
	_, err := d.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		d.logger.Warn("failed to upload object", "key", key, "error", err)
		return false
	}
	return true
}

func (d *S3Drive) ListFiles(ctx context.Context, folderID, namePrefix string) []backup.DriveFile {
	if !d.ensureSession(ctx) {
		return nil
	}

	var out []backup.DriveFile
	paginator := s3.NewListObjectsV2Paginator(d.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(d.cfg.S3Bucket),
		Prefix: aws.String(folderID + namePrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			d.logger.Warn("failed to list objects", "folder", folderID, "error", err)
			return nil
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				// folder marker
				continue
			}
			modified := aws.ToTime(obj.LastModified)
			out = append(out, backup.DriveFile{
				ID:           key,
				Name:         path.Base(key),
				MimeType:     "application/json",
				CreatedTime:  modified,
				ModifiedTime: modified,
				Size:         aws.ToInt64(obj.Size),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ModifiedTime.Equal(out[j].ModifiedTime) {
			return out[i].ModifiedTime.After(out[j].ModifiedTime)
		}
		return out[i].Name > out[j].Name
	})
	return out
}

func (d *S3Drive) DownloadFile(ctx context.Context, fileID string) []byte {
	if !d.ensureSession(ctx) {
		return nil
	}

	buf := manager.NewWriteAtBuffer(nil)
	_, err := d.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(d.cfg.S3Bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		d.logger.Warn("failed to download object", "key", fileID, "error", err)
		return nil
	}
	return buf.Bytes()
}

func (d *S3Drive) DeleteFile(ctx context.Context, fileID string) bool {
	if !d.ensureSession(ctx) {
		return false
	}

	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.cfg.S3Bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		d.logger.Warn("failed to delete object", "key", fileID, "error", err)
		return false
	}
	return true
}

func (d *S3Drive) FindFileByName(ctx context.Context, name, folderID string) *backup.DriveFile {
	if !d.ensureSession(ctx) {
		return nil
	}

	key := folderID + name
	head, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.cfg.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		// Not found is the common case here, not worth logging.
		return nil
	}

	modified := aws.ToTime(head.LastModified)
	return &backup.DriveFile{
		ID:           key,
		Name:         name,
		MimeType:     aws.ToString(head.ContentType),
		CreatedTime:  modified,
		ModifiedTime: modified,
		Size:         aws.ToInt64(head.ContentLength),
	}
}

// Compile-time check that S3Drive implements backup.Drive
var _ backup.Drive = (*S3Drive)(nil)
