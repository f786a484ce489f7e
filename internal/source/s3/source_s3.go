// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"time"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	awsx "github.com/tfctl/ncdiff/internal/aws"
)

// API is the part of the S3 client a snapshot source uses.
type API interface {
	GetObject(ctx context.Context, params *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	s3v2.ListObjectVersionsAPIClient
}

// SourceS3 is a snapshot stored as an S3 object. An empty VersionID reads the
// current version.
type SourceS3 struct {
	Bucket    string
	Key       string
	VersionID string

	Region   string
	Profile  string
	Endpoint string

	client API
}

// Version is one stored version of the snapshot object.
type Version struct {
	ID           string
	LastModified time.Time
	Size         int64
	Latest       bool
}

// Load returns the raw snapshot. Versioned reads are served from and written
// to the local cache.
func (src *SourceS3) Load(ctx context.Context) ([]byte, error) {
	if err := PurgeCache(); err != nil {
		log.WithError(err).Warn("failed to purge cache")
	}

	if entry, ok := CacheReader(src); ok {
		return entry.Data, nil
	}

	svc, err := src.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	input := &s3v2.GetObjectInput{
		Bucket: awsv2.String(src.Bucket),
		Key:    awsv2.String(src.Key),
	}
	if src.VersionID != "" {
		input.VersionId = awsv2.String(src.VersionID)
	}

	result, err := svc.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get S3 object: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}
	log.Debugf("read %s: bytes=%d", src, len(data))

	if err := CacheWriter(src, data); err != nil {
		log.WithError(err).Error("error writing to cache")
	}
	return data, nil
}

// Versions lists the live versions of the object, newest first. Versions
// older than the most recent delete marker are dropped, as are other keys
// sharing the prefix.
func (src *SourceS3) Versions(ctx context.Context) ([]Version, error) {
	svc, err := src.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	paginator := s3v2.NewListObjectVersionsPaginator(svc, &s3v2.ListObjectVersionsInput{
		Bucket: awsv2.String(src.Bucket),
		Prefix: awsv2.String(src.Key),
	})

	var allDeleteMarkers []types.DeleteMarkerEntry
	var allVersions []types.ObjectVersion
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list object versions: %w", err)
		}
		allDeleteMarkers = append(allDeleteMarkers, page.DeleteMarkers...)
		allVersions = append(allVersions, page.Versions...)
	}

	var mostRecentDelete time.Time
	for _, d := range allDeleteMarkers {
		if d.Key == nil || *d.Key != src.Key {
			continue
		}
		if d.LastModified != nil && d.LastModified.After(mostRecentDelete) {
			mostRecentDelete = *d.LastModified
		}
	}

	var versions []Version
	for _, v := range allVersions {
		if v.Key == nil || *v.Key != src.Key {
			if v.Key != nil {
				log.Debugf("skipping %s", *v.Key)
			}
			continue
		}
		if v.VersionId == nil || v.LastModified == nil {
			continue
		}
		if v.LastModified.Before(mostRecentDelete) {
			continue
		}
		versions = append(versions, Version{
			ID:           *v.VersionId,
			LastModified: *v.LastModified,
			Size:         awsv2.ToInt64(v.Size),
			Latest:       awsv2.ToBool(v.IsLatest),
		})
	}

	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].LastModified.After(versions[j].LastModified)
	})
	log.Debugf("%s: versions=%d", src, len(versions))
	return versions, nil
}

// WithVersion returns a copy of src pinned to version id.
func (src *SourceS3) WithVersion(id string) *SourceS3 {
	c := *src
	c.VersionID = id
	return &c
}

func (src *SourceS3) String() string {
	u := url.URL{Scheme: "s3", Host: src.Bucket, Path: "/" + src.Key}
	if src.VersionID != "" {
		u.RawQuery = url.Values{"versionId": {src.VersionID}}.Encode()
	}
	return u.String()
}

func (src *SourceS3) Type() string {
	return "s3"
}

func (src *SourceS3) s3Client(ctx context.Context) (API, error) {
	if src.client != nil {
		return src.client, nil
	}

	var cfgOpts []awsx.Option
	if src.Region != "" {
		cfgOpts = append(cfgOpts, awsx.WithRegion(src.Region))
	}
	if src.Profile != "" {
		cfgOpts = append(cfgOpts, awsx.WithProfile(src.Profile))
	}
	cfg, err := awsx.LoadAWSConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	src.client = awsx.NewS3(cfg, awsx.WithEndpoint(src.Endpoint))
	return src.client, nil
}
