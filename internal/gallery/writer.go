// Package gallery persists archived media and the records describing it.
package gallery

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/familyplate/recipebox/internal/media"
	"github.com/familyplate/recipebox/pkg/logging"
)

const storagePrefix = "gallery/"

// S3API is the subset of the S3 client used by Writer.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	PutObjectAcl(ctx context.Context, params *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error)
}

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// ArchiveError wraps any blob-store or document-store failure during
// archival. There is no partial-success signaling and no rollback of an
// already-uploaded blob when a later step fails.
type ArchiveError struct {
	Step string
	Err  error
}

func (e *ArchiveError) Error() string { return fmt.Sprintf("gallery: %s: %v", e.Step, e.Err) }

func (e *ArchiveError) Unwrap() error { return e.Err }

// Submission carries fetched media plus its metadata into the archive.
type Submission struct {
	Bytes       []byte
	ContentType string
	Caption     string
	Contributor string
}

// WriterConfig holds the dependencies of a Writer.
type WriterConfig struct {
	S3            S3API
	DB            dynamoAPI
	Bucket        string
	GalleryTable  string
	HistoryTable  string
	PublicBaseURL string
	Now           func() time.Time
	Logger        *logging.Logger
}

// Writer uploads media to S3 and records a GalleryItem plus a HistoryEntry
// in DynamoDB.
type Writer struct {
	s3Client      S3API
	db            dynamoAPI
	bucket        string
	galleryTable  string
	historyTable  string
	publicBaseURL string
	now           func() time.Time
	logger        *logging.Logger
}

// NewWriter builds a Writer backed by the provided clients.
func NewWriter(cfg WriterConfig) *Writer {
	if cfg.S3 == nil {
		panic("gallery: s3 client cannot be nil")
	}
	if cfg.DB == nil {
		panic("gallery: dynamodb client cannot be nil")
	}
	if cfg.Bucket == "" {
		panic("gallery: bucket cannot be empty")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{
		s3Client:      cfg.S3,
		db:            cfg.DB,
		bucket:        cfg.Bucket,
		galleryTable:  cfg.GalleryTable,
		historyTable:  cfg.HistoryTable,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		now:           now,
		logger:        logger,
	}
}

// Archive uploads the media, makes it publicly readable, and writes the
// GalleryItem followed by its HistoryEntry. The two document writes are
// independent and non-transactional; the HistoryEntry is only attempted once
// the GalleryItem write succeeded.
func (w *Writer) Archive(ctx context.Context, sub Submission) (*GalleryItem, error) {
	createdAt := w.now().UTC()
	key := fmt.Sprintf("%s%d.%s", storagePrefix, createdAt.UnixMilli(), media.Extension(sub.ContentType))

	_, err := w.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(sub.Bytes),
		ContentType: aws.String(sub.ContentType),
	})
	if err != nil {
		return nil, &ArchiveError{Step: "upload media", Err: err}
	}

	_, err = w.s3Client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(key),
		ACL:    s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return nil, &ArchiveError{Step: "make media public", Err: err}
	}

	item := &GalleryItem{
		ID:          fmt.Sprintf("g%d", w.now().UnixMilli()),
		Type:        media.TypeFor(sub.ContentType),
		URL:         fmt.Sprintf("%s/%s/%s", w.publicBaseURL, w.bucket, key),
		Caption:     sub.Caption,
		Contributor: sub.Contributor,
		CreatedAt:   createdAt,
	}
	if err := w.putRecord(ctx, w.galleryTable, item); err != nil {
		return nil, &ArchiveError{Step: "write gallery item", Err: err}
	}

	entry := &HistoryEntry{
		ID:          fmt.Sprintf("h%d", w.now().UnixMilli()),
		Contributor: sub.Contributor,
		Action:      "added",
		Type:        "gallery",
		ItemName:    itemName(sub.Caption, key),
		Timestamp:   w.now().UTC(),
	}
	if err := w.putRecord(ctx, w.historyTable, entry); err != nil {
		return nil, &ArchiveError{Step: "write history entry", Err: err}
	}

	w.logger.Info("archived media submission",
		"gallery_id", item.ID,
		"history_id", entry.ID,
		"key", key,
		"type", item.Type,
		"contributor", item.Contributor,
		"bytes", len(sub.Bytes),
	)
	return item, nil
}

func (w *Writer) putRecord(ctx context.Context, table string, record any) error {
	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = w.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	})
	return err
}

func itemName(caption, key string) string {
	if caption != "" {
		return caption
	}
	return path.Base(key)
}
