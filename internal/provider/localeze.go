package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ignite/citation-engine/internal/domain"
)

// s3FeedAPI is the subset of the S3 client the Localeze adapter uses.
// Narrowed for testability.
type s3FeedAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// LocalezeAdapter submits listings to the Localeze aggregator via its bulk
// feed drop: each listing is one JSON object in an S3 bucket Localeze
// ingests nightly. The feed object key doubles as the external ID, so
// duplicate detection is a HeadObject on the derived key.
type LocalezeAdapter struct {
	bucket string
	prefix string
	client s3FeedAPI
}

// NewLocalezeAdapter creates the adapter. Initializes the S3 client when
// credentials are provided, mirroring how the other adapters defer their
// configured check to IsConfigured.
func NewLocalezeAdapter(accessKey, secretKey, region, bucket string) *LocalezeAdapter {
	if region == "" {
		region = "us-east-1"
	}

	a := &LocalezeAdapter{bucket: bucket, prefix: "feeds"}
	if accessKey != "" && secretKey != "" && bucket != "" {
		cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		)
		if err != nil {
			log.Printf("[Localeze] Warning: failed to initialize AWS config: %v", err)
		} else {
			a.client = s3.NewFromConfig(cfg)
		}
	}
	return a
}

// NewLocalezeAdapterWithClient wires an explicit S3 API, used by tests.
func NewLocalezeAdapterWithClient(client s3FeedAPI, bucket string) *LocalezeAdapter {
	return &LocalezeAdapter{bucket: bucket, prefix: "feeds", client: client}
}

// Slug returns the catalog slug.
func (a *LocalezeAdapter) Slug() string { return "localeze" }

// IsConfigured reports whether the S3 client initialized with a bucket.
func (a *LocalezeAdapter) IsConfigured() bool { return a.client != nil && a.bucket != "" }

// Submit writes the listing feed object. An existing object under the same
// derived key counts as a duplicate match: the feed has already been
// dropped for this business and Localeze will pick up changes via Update.
func (a *LocalezeAdapter) Submit(ctx context.Context, loc *domain.NormalizedLocation) (*SubmitResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Localeze feed bucket not configured")
	}

	key := a.feedKey(loc)
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		log.Printf("[Localeze] Feed object already present for %q (%s)", loc.BusinessName, key)
		return &SubmitResult{
			Success:    true,
			ExternalID: key,
			Matched:    true,
			Message:    "feed object already present",
			Metadata:   map[string]string{"matched": "true"},
		}, nil
	}
	if !isS3NotFound(err) {
		return &SubmitResult{Success: false, Err: fmt.Sprintf("Localeze feed check failed: %v", err)}, nil
	}

	if err := a.putFeed(ctx, key, loc); err != nil {
		return &SubmitResult{Success: false, Err: err.Error()}, nil
	}
	log.Printf("[Localeze] Dropped feed object %s for %q", key, loc.BusinessName)
	return &SubmitResult{Success: true, ExternalID: key, Message: "feed object written"}, nil
}

// Update rewrites the feed object under the existing key.
func (a *LocalezeAdapter) Update(ctx context.Context, externalID string, loc *domain.NormalizedLocation) (*UpdateResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Localeze feed bucket not configured")
	}
	if err := a.putFeed(ctx, externalID, loc); err != nil {
		return &UpdateResult{Success: false, Err: err.Error()}, nil
	}
	return &UpdateResult{Success: true, Message: "feed object rewritten"}, nil
}

// Verify checks the feed object still exists. Localeze exposes no
// downstream listing status, so presence of the feed is the best signal.
func (a *LocalezeAdapter) Verify(ctx context.Context, externalID string) (*VerifyResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Localeze feed bucket not configured")
	}

	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(externalID),
	})
	if isS3NotFound(err) {
		return &VerifyResult{Success: true, Status: StatusNotFound}, nil
	}
	if err != nil {
		return &VerifyResult{Success: false, Status: StatusError, Message: fmt.Sprintf("Localeze feed check failed: %v", err)}, nil
	}

	res := &VerifyResult{Success: true, Status: StatusVerified}
	if out.LastModified != nil {
		res.LastUpdated = out.LastModified.UTC().Format("2006-01-02T15:04:05Z")
	}
	return res, nil
}

// Delete removes the feed object; Localeze drops the listing from its
// distribution on the next ingest.
func (a *LocalezeAdapter) Delete(ctx context.Context, externalID string) (*DeleteResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Localeze feed bucket not configured")
	}

	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(externalID),
	})
	if err != nil {
		return &DeleteResult{Success: false, Err: fmt.Sprintf("Localeze feed delete failed: %v", err)}, nil
	}
	return &DeleteResult{Success: true, Message: "feed object removed"}, nil
}

func (a *LocalezeAdapter) putFeed(ctx context.Context, key string, loc *domain.NormalizedLocation) error {
	data, err := json.MarshalIndent(loc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("Localeze feed write failed: %v", err)
	}
	return nil
}

var feedKeyRe = regexp.MustCompile(`[^a-z0-9]+`)

// feedKey derives a deterministic object key from business name and city so
// re-submissions of the same listing land on the same object.
func (a *LocalezeAdapter) feedKey(loc *domain.NormalizedLocation) string {
	slugify := func(s string) string {
		return strings.Trim(feedKeyRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
	}
	return fmt.Sprintf("%s/%s-%s.json", a.prefix, slugify(loc.BusinessName), slugify(loc.City))
}

// isS3NotFound reports whether err is the S3 missing-object case (NotFound
// from HeadObject, NoSuchKey elsewhere).
func isS3NotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}
