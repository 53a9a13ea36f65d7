// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Options configures the S3 backend.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string // MinIO or another S3-compatible endpoint
	AccessKey string
	SecretKey string
	PublicURL string // overrides the generated object URL prefix
}

// S3 stores files in a bucket.
type S3 struct {
	client    s3iface.S3API
	bucket    string
	publicURL string
}

// NewS3 creates an S3 client. A custom endpoint switches to path-style
// addressing as MinIO requires.
func NewS3(opts S3Options) (*S3, error) {
	awsConfig := &aws.Config{
		Region: aws.String(opts.Region),
	}
	if opts.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, "")
	}
	if opts.Endpoint != "" {
		awsConfig.Endpoint = aws.String(opts.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		if strings.HasPrefix(opts.Endpoint, "http://") {
			awsConfig.DisableSSL = aws.Bool(true)
		}
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("creating AWS session: %w", err)
	}

	return newS3WithClient(s3.New(sess), opts), nil
}

func newS3WithClient(client s3iface.S3API, opts S3Options) *S3 {
	publicURL := opts.PublicURL
	if publicURL == "" {
		publicURL = defaultPublicURL(opts)
	}
	return &S3{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// defaultPublicURL builds the object URL prefix for AWS or a path-style endpoint.
func defaultPublicURL(opts S3Options) string {
	if opts.Endpoint != "" {
		return strings.TrimSuffix(opts.Endpoint, "/") + "/" + opts.Bucket
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, region)
}

// Save uploads data under key.
func (s *S3) Save(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading %s to s3: %w", key, err)
	}
	return nil
}

// Delete removes key. S3 reports success for missing keys.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s from s3: %w", key, err)
	}
	return nil
}

// List returns every object whose key starts with prefix.
func (s *S3) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:     aws.StringValue(obj.Key),
				ModTime: aws.TimeValue(obj.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("listing s3 prefix %s: %w", prefix, err)
	}
	return objects, nil
}

// URL returns the public URL of key.
func (s *S3) URL(key string) string {
	return s.publicURL + "/" + strings.TrimPrefix(key, "/")
}

var _ Storage = (*S3)(nil)
