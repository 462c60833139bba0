// internal/media/source.go
// Loading upload bytes from local files or S3 objects

package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sacavia/sacavia-go/internal/multipart"
)

// MaxFileSize caps what a source will read into memory for one upload.
const MaxFileSize = 50 << 20

// Source loads the bytes behind a media reference.
type Source interface {
	Open(ctx context.Context, ref string) (multipart.File, error)
}

// FileSource reads local paths.
type FileSource struct{}

func (FileSource) Open(ctx context.Context, ref string) (multipart.File, error) {
	f, err := os.Open(ref)
	if err != nil {
		return multipart.File{}, fmt.Errorf("failed to open %s: %w", ref, err)
	}
	defer f.Close()

	data, err := readLimited(f)
	if err != nil {
		return multipart.File{}, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return multipart.File{
		Filename: filepath.Base(ref),
		MimeType: detectMime(ref, data),
		Data:     data,
	}, nil
}

// S3Source reads s3://bucket/key references.
type S3Source struct {
	client s3iface.S3API
}

func NewS3Source(client s3iface.S3API) *S3Source {
	return &S3Source{client: client}
}

// NewS3SourceForRegion builds the S3 client from the default AWS credential chain.
func NewS3SourceForRegion(region string) (*S3Source, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3Source(s3.New(sess)), nil
}

func (s *S3Source) Open(ctx context.Context, ref string) (multipart.File, error) {
	bucket, key, err := ParseS3Ref(ref)
	if err != nil {
		return multipart.File{}, err
	}

	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return multipart.File{}, fmt.Errorf("failed to fetch %s: %w", ref, err)
	}
	defer out.Body.Close()

	data, err := readLimited(out.Body)
	if err != nil {
		return multipart.File{}, fmt.Errorf("failed to read %s: %w", ref, err)
	}

	mimeType := aws.StringValue(out.ContentType)
	if mimeType == "" || mimeType == "binary/octet-stream" {
		mimeType = detectMime(key, data)
	}
	return multipart.File{
		Filename: filepath.Base(key),
		MimeType: mimeType,
		Data:     data,
	}, nil
}

// ParseS3Ref splits s3://bucket/key.
func ParseS3Ref(ref string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(ref, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 reference: %q", ref)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 reference needs bucket and key: %q", ref)
	}
	return bucket, key, nil
}

// Resolver dispatches s3:// references to S3 and everything else to the local disk.
type Resolver struct {
	Files Source
	S3    Source // nil disables s3:// references
}

func (r Resolver) Open(ctx context.Context, ref string) (multipart.File, error) {
	if strings.HasPrefix(ref, "s3://") {
		if r.S3 == nil {
			return multipart.File{}, fmt.Errorf("s3 references are not configured: %q", ref)
		}
		return r.S3.Open(ctx, ref)
	}
	files := r.Files
	if files == nil {
		files = FileSource{}
	}
	return files.Open(ctx, ref)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("file exceeds %d bytes", MaxFileSize)
	}
	return data, nil
}

func detectMime(name string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
