package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/multipart"
	"github.com/sacavia/sacavia-go/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	gotKey  string
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	f.gotKey = aws.StringValue(in.Bucket) + "/" + aws.StringValue(in.Key)
	data, ok := f.objects[f.gotKey]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: aws.String("binary/octet-stream"),
	}, nil
}

func TestParseS3Ref(t *testing.T) {
	bucket, key, err := ParseS3Ref("s3://media/users/u1/a.png")
	require.NoError(t, err)
	assert.Equal(t, "media", bucket)
	assert.Equal(t, "users/u1/a.png", key)

	for _, bad := range []string{"media/a.png", "s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, _, err := ParseS3Ref(bad)
		assert.Error(t, err, bad)
	}
}

func TestS3SourceOpen(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{"media/photos/a.png": []byte("png-bytes")}}
	src := NewS3Source(fake)

	f, err := src.Open(context.Background(), "s3://media/photos/a.png")
	require.NoError(t, err)
	assert.Equal(t, "media/photos/a.png", fake.gotKey)
	assert.Equal(t, "a.png", f.Filename)
	assert.Equal(t, "image/png", f.MimeType)
	assert.Equal(t, []byte("png-bytes"), f.Data)

	_, err = src.Open(context.Background(), "s3://media/missing.png")
	require.Error(t, err)
}

func TestResolver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o644))

	r := Resolver{}
	f, err := r.Open(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", f.Filename)
	assert.Equal(t, "image/jpeg", f.MimeType)

	_, err = r.Open(context.Background(), "s3://bucket/key.jpg")
	require.Error(t, err)

	r.S3 = NewS3Source(&fakeS3{objects: map[string][]byte{"bucket/key.jpg": []byte("x")}})
	_, err = r.Open(context.Background(), "s3://bucket/key.jpg")
	require.NoError(t, err)
}

func TestTracker(t *testing.T) {
	var tr Tracker
	doneA := tr.Begin()
	doneB := tr.Begin()
	assert.Equal(t, 2, tr.Pending())

	doneA(nil)
	doneA(nil)
	assert.Equal(t, 1, tr.Pending())

	doneB(errors.New("timeout"))
	assert.Equal(t, 0, tr.Pending())
	assert.Len(t, tr.Failures(), 1)
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestUploadImageAuthModes(t *testing.T) {
	var gotAuth, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/mobile/upload/image", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary=Boundary-"))
		gotAuth = r.Header.Get("Authorization")
		gotCookie = ""
		if c, err := r.Cookie(apiclient.CookieName); err == nil {
			gotCookie = c.Value
		}
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "storefront", r.FormValue("alt"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "front.jpg", header.Filename)
		w.Write([]byte(`{"success":true,"data":{"id":"m1","url":"https://cdn/m1.jpg"}}`))
	}))
	t.Cleanup(srv.Close)

	sess := session.New(nil, "k", nil)
	require.NoError(t, sess.SetToken(context.Background(), "tok"))
	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL, Session: sess})
	require.NoError(t, err)
	svc := NewService(client, nil, nil)

	file := multipart.File{Filename: "front.png", MimeType: "image/png", Data: testPNG(t)}

	up, err := svc.UploadImage(context.Background(), file, "storefront", apiclient.AuthNone)
	require.NoError(t, err)
	assert.Equal(t, &Uploaded{ID: "m1", URL: "https://cdn/m1.jpg"}, up)
	assert.Equal(t, "tok", gotCookie)
	assert.Empty(t, gotAuth)

	var tr Tracker
	_, err = svc.UploadTracked(context.Background(), &tr, file, "storefront", apiclient.AuthBearer)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Empty(t, gotCookie)
	assert.Zero(t, tr.Pending())
}

func TestUploadImageRejectsEmpty(t *testing.T) {
	client, err := apiclient.New(apiclient.Options{BaseURL: "https://sacavia.com"})
	require.NoError(t, err)
	_, err = NewService(client, nil, nil).UploadImage(context.Background(), multipart.File{}, "", apiclient.AuthCookie)
	require.ErrorIs(t, err, apiclient.ErrValidation)
}
