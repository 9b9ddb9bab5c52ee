package storage

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var fixedNow = func() time.Time { return time.Date(2026, 1, 13, 15, 4, 5, 0, time.UTC) }

func TestObjectName(t *testing.T) {
	tests := []struct {
		contentType string
		wantSuffix  string
	}{
		{"image/png", ".png"},
		{"", ".png"},
		{"image/jpeg", ".jpg"},
		{"image/webp", ".webp"},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			name := ObjectName(Object{Data: []byte("x"), ContentType: tt.contentType}, fixedNow())
			if !strings.HasPrefix(name, "20260113_150405_") || !strings.HasSuffix(name, tt.wantSuffix) {
				t.Errorf("ObjectName() = %q", name)
			}
			if !ValidName.MatchString(name) {
				t.Errorf("ObjectName() = %q does not match ValidName", name)
			}
		})
	}
}

func TestInline_Publish(t *testing.T) {
	got, err := Inline{}.Publish(context.Background(), Object{Data: []byte("abc"), ContentType: "image/jpeg"})
	if err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if got != "data:image/jpeg;base64,YWJj" {
		t.Errorf("Publish() = %q", got)
	}

	if _, err := (Inline{}).Publish(context.Background(), Object{}); err == nil {
		t.Error("Publish() with empty data error = nil")
	}
}

func TestLocal_Publish(t *testing.T) {
	dir := t.TempDir()
	l := &Local{Dir: dir, BaseURL: "http://localhost:8080", Now: fixedNow}

	u, err := l.Publish(context.Background(), Object{Data: []byte("png-bytes"), ContentType: "image/png"})
	if err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if !strings.HasPrefix(u, "http://localhost:8080/images/20260113_150405_") {
		t.Fatalf("Publish() URL = %q", u)
	}

	name := u[strings.LastIndex(u, "/")+1:]
	p, err := l.Path(name)
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	data, err := os.ReadFile(p)
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("stored file = %q, %v", data, err)
	}
	if filepath.Dir(p) != dir {
		t.Errorf("Path() dir = %q, want %q", filepath.Dir(p), dir)
	}
}

func TestLocal_PathRejectsTraversal(t *testing.T) {
	l := &Local{Dir: t.TempDir()}
	for _, name := range []string{"../secret.png", "a/b.png", "", "noext"} {
		if _, err := l.Path(name); err == nil {
			t.Errorf("Path(%q) error = nil", name)
		}
	}
}

type fakeWriter struct {
	path, contentType string
	data              []byte
}

func (w *fakeWriter) Write(_ context.Context, path string, r io.Reader, contentType string) error {
	w.path, w.contentType = path, contentType
	w.data, _ = io.ReadAll(r)
	return nil
}

type fakeSigner struct{ method string }

func (s *fakeSigner) GenerateSignedURL(_ context.Context, path, method string, _ time.Duration) (string, error) {
	s.method = method
	return "https://signed.example/" + strings.TrimPrefix(path, "gs://") + "?sig=1", nil
}

func TestGCS_Publish(t *testing.T) {
	w := &fakeWriter{}
	s := &fakeSigner{}
	g := &GCS{
		Writer:    w,
		Signer:    s,
		ObjectURL: func(name string) string { return "gs://bucket/output/images/" + name },
		Expiry:    time.Minute,
		Now:       fixedNow,
	}

	u, err := g.Publish(context.Background(), Object{Data: []byte("img"), ContentType: "image/png"})
	if err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if !strings.HasPrefix(w.path, "gs://bucket/output/images/20260113_150405_") || string(w.data) != "img" {
		t.Errorf("written path=%q data=%q", w.path, w.data)
	}
	if s.method != http.MethodGet {
		t.Errorf("signed method = %q", s.method)
	}
	if !strings.HasPrefix(u, "https://signed.example/bucket/output/images/") {
		t.Errorf("Publish() = %q", u)
	}
}

type fakeS3 struct{ input *s3.PutObjectInput }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	return &s3.PutObjectOutput{}, nil
}

func TestS3_Publish(t *testing.T) {
	client := &fakeS3{}
	u := &S3{Client: client, Bucket: "b", Prefix: "output/images", PublicBaseURL: "https://cdn.example", Now: fixedNow}

	got, err := u.Publish(context.Background(), Object{Data: []byte("img"), ContentType: "image/png"})
	if err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if *client.input.Bucket != "b" || !strings.HasPrefix(*client.input.Key, "output/images/20260113_150405_") {
		t.Errorf("PutObject input bucket=%q key=%q", *client.input.Bucket, *client.input.Key)
	}
	if got != "https://cdn.example/"+*client.input.Key {
		t.Errorf("Publish() = %q", got)
	}
}
