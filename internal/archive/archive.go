// Package archive keeps a copy of every exported file.
package archive

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Archiver stores an export under a unique name derived from name and
// returns where it went.
type Archiver interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Local writes exports to a directory.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("archive dir %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Local{dir: abs}, nil
}

func (l *Local) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	path := filepath.Join(l.dir, uniqueName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archive %s: %w", path, err)
	}
	return path, nil
}

// S3 uploads exports to a bucket under the exports/ prefix.
type S3 struct {
	svc    *s3.S3
	bucket string
	region string
}

// NewS3 uses the default AWS credential chain.
func NewS3(region, bucket string) (*S3, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return &S3{svc: s3.New(sess), bucket: bucket, region: region}, nil
}

func (s *S3) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := "exports/" + uniqueName(name)
	_, err := s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to s3: %w", key, err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// uniqueName keeps the base of name and adds a random suffix before the
// extension, so exports written in the same second do not collide.
func uniqueName(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	suffix := strconv.FormatInt(time.Now().UnixNano(), 36)
	var b [4]byte
	if _, err := rand.Read(b[:]); err == nil {
		suffix = hex.EncodeToString(b[:])
	}
	return strings.TrimSuffix(base, ext) + "-" + suffix + ext
}
