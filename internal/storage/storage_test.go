// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysOf(objects []Object) []string {
	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	sort.Strings(keys)
	return keys
}

func TestLocal_SaveListDelete(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, MediaURLPrefix)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Save(ctx, "blogicum_images/a.jpg", []byte("a"), "image/jpeg"))
	require.NoError(t, l.Save(ctx, "blogicum_images/b.png", []byte("b"), "image/png"))

	data, err := os.ReadFile(filepath.Join(root, "blogicum_images", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	objects, err := l.List(ctx, "blogicum_images")
	require.NoError(t, err)
	assert.Equal(t, []string{"blogicum_images/a.jpg", "blogicum_images/b.png"}, keysOf(objects))

	require.NoError(t, l.Delete(ctx, "blogicum_images/a.jpg"))
	require.NoError(t, l.Delete(ctx, "blogicum_images/a.jpg"), "deleting twice is fine")

	objects, err = l.List(ctx, "blogicum_images")
	require.NoError(t, err)
	assert.Equal(t, []string{"blogicum_images/b.png"}, keysOf(objects))

	assert.Equal(t, "/media/blogicum_images/b.png", l.URL("blogicum_images/b.png"))
}

func TestLocal_ListMissingPrefix(t *testing.T) {
	l, err := NewLocal(t.TempDir(), MediaURLPrefix)
	require.NoError(t, err)

	objects, err := l.List(context.Background(), "blogicum_images")
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestLocal_ListModTime(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, MediaURLPrefix)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Save(ctx, "blogicum_images/old.jpg", []byte("o"), "image/jpeg"))
	old := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(root, "blogicum_images", "old.jpg"), old, old))

	objects, err := l.List(ctx, "blogicum_images")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.True(t, objects[0].ModTime.Equal(old), "ModTime = %v", objects[0].ModTime)
}

func TestLocal_RejectsTraversal(t *testing.T) {
	l, err := NewLocal(t.TempDir(), MediaURLPrefix)
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, l.Save(ctx, "../escape.jpg", []byte("x"), "image/jpeg"))
	assert.Error(t, l.Delete(ctx, "../../etc/passwd"))
}

// fakeS3 records objects in memory.
type fakeS3 struct {
	s3iface.S3API
	objects  map[string][]byte
	types    map[string]string
	modified map[string]time.Time
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}, modified: map[string]time.Time{}}
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Key)] = data
	f.types[aws.StringValue(in.Key)] = aws.StringValue(in.ContentType)
	f.modified[aws.StringValue(in.Key)] = time.Now()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2PagesWithContext(_ aws.Context, in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, _ ...request.Option) error {
	page := &s3.ListObjectsV2Output{}
	for k := range f.objects {
		if strings.HasPrefix(k, aws.StringValue(in.Prefix)) {
			page.Contents = append(page.Contents, &s3.Object{Key: aws.String(k), LastModified: aws.Time(f.modified[k])})
		}
	}
	fn(page, true)
	return nil
}

func TestS3_SaveListDelete(t *testing.T) {
	fake := newFakeS3()
	s := newS3WithClient(fake, S3Options{Bucket: "images", Region: "eu-west-1"})
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "blogicum_images/a.jpg", []byte("a"), "image/jpeg"))
	assert.Equal(t, "image/jpeg", fake.types["blogicum_images/a.jpg"])

	objects, err := s.List(ctx, "blogicum_images/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "blogicum_images/a.jpg", objects[0].Key)
	assert.WithinDuration(t, time.Now(), objects[0].ModTime, time.Minute)

	require.NoError(t, s.Delete(ctx, "blogicum_images/a.jpg"))
	assert.Empty(t, fake.objects)
}

func TestS3_URL(t *testing.T) {
	tests := []struct {
		name string
		opts S3Options
		want string
	}{
		{"aws", S3Options{Bucket: "images", Region: "eu-west-1"}, "https://images.s3.eu-west-1.amazonaws.com/blogicum_images/a.jpg"},
		{"aws default region", S3Options{Bucket: "images"}, "https://images.s3.us-east-1.amazonaws.com/blogicum_images/a.jpg"},
		{"minio", S3Options{Bucket: "images", Endpoint: "http://localhost:9000/"}, "http://localhost:9000/images/blogicum_images/a.jpg"},
		{"public url", S3Options{Bucket: "images", PublicURL: "https://cdn.example.com/"}, "https://cdn.example.com/blogicum_images/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newS3WithClient(newFakeS3(), tt.opts)
			assert.Equal(t, tt.want, s.URL("blogicum_images/a.jpg"))
		})
	}
}
