package provider

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/ignite/citation-engine/internal/domain"
)

// fakeS3 is an in-memory s3FeedAPI.
type fakeS3 struct {
	objects  map[string][]byte
	modified map[string]time.Time
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects:  make(map[string][]byte),
		modified: make(map[string]time.Time),
	}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, _ := io.ReadAll(in.Body)
	f.objects[*in.Key] = data
	f.modified[*in.Key] = time.Now()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{LastModified: aws.Time(f.modified[*in.Key])}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestLocalezeSubmitWritesFeed(t *testing.T) {
	store := newFakeS3()
	a := NewLocalezeAdapterWithClient(store, "feed-bucket")

	res, err := a.Submit(context.Background(), testYextLocation())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !res.Success || res.Matched {
		t.Fatalf("result = %+v, want fresh feed write", res)
	}
	if res.ExternalID != "feeds/acme-plumbing-austin.json" {
		t.Errorf("ExternalID = %q, want deterministic slug key", res.ExternalID)
	}

	var feed domain.NormalizedLocation
	if err := json.Unmarshal(store.objects[res.ExternalID], &feed); err != nil {
		t.Fatalf("feed object not valid JSON: %v", err)
	}
	if feed.BusinessName != "Acme Plumbing" || feed.Phone != "+15125550100" {
		t.Errorf("feed content = %+v", feed)
	}
}

func TestLocalezeSubmitDetectsExistingFeed(t *testing.T) {
	store := newFakeS3()
	a := NewLocalezeAdapterWithClient(store, "feed-bucket")

	if _, err := a.Submit(context.Background(), testYextLocation()); err != nil {
		t.Fatalf("first Submit error: %v", err)
	}
	res, err := a.Submit(context.Background(), testYextLocation())
	if err != nil {
		t.Fatalf("second Submit error: %v", err)
	}
	if !res.Matched {
		t.Errorf("result = %+v, want matched on the existing feed key", res)
	}
}

func TestLocalezeVerify(t *testing.T) {
	store := newFakeS3()
	a := NewLocalezeAdapterWithClient(store, "feed-bucket")

	sub, _ := a.Submit(context.Background(), testYextLocation())

	res, err := a.Verify(context.Background(), sub.ExternalID)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if res.Status != StatusVerified || res.LastUpdated == "" {
		t.Errorf("result = %+v, want verified with timestamp", res)
	}

	missing, err := a.Verify(context.Background(), "feeds/never-written.json")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !missing.Success || missing.Status != StatusNotFound {
		t.Errorf("result = %+v, want clean not_found for missing feed", missing)
	}
}

func TestLocalezeDeleteRemovesFeed(t *testing.T) {
	store := newFakeS3()
	a := NewLocalezeAdapterWithClient(store, "feed-bucket")

	sub, _ := a.Submit(context.Background(), testYextLocation())
	res, err := a.Delete(context.Background(), sub.ExternalID)
	if err != nil || !res.Success {
		t.Fatalf("Delete = (%+v, %v)", res, err)
	}

	check, _ := a.Verify(context.Background(), sub.ExternalID)
	if check.Status != StatusNotFound {
		t.Errorf("post-delete verify = %+v, want not_found", check)
	}
}

func TestLocalezeNotConfigured(t *testing.T) {
	a := NewLocalezeAdapter("", "", "", "")
	if a.IsConfigured() {
		t.Error("adapter with no credentials should not report configured")
	}
	if _, err := a.Submit(context.Background(), testYextLocation()); err == nil {
		t.Error("Submit without a bucket should error")
	}
}
