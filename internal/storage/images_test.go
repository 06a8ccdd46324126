package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func testStore(mock *mockS3Client) *ImageStore {
	s := NewImageStore(Config{
		Endpoint:  "https://s3.example.com",
		Bucket:    "kokebok",
		AccessKey: "key",
		SecretKey: "secret",
	})
	s.client = mock
	return s
}

func TestUploadAndDelete(t *testing.T) {
	mock := newMockS3()
	s := testStore(mock)

	url, err := s.Upload(context.Background(), "dinner.JPG", "image/jpeg", strings.NewReader("imagedata"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(url, "/recipe-images/") {
		t.Errorf("url = %q, want a recipe-images key", url)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Errorf("url = %q, want lower-cased .jpg extension", url)
	}
	if len(mock.objects) != 1 {
		t.Fatalf("expected 1 stored object, got %d", len(mock.objects))
	}

	if err := s.Delete(context.Background(), url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(mock.objects) != 0 {
		t.Errorf("expected object removed, %d left", len(mock.objects))
	}
}

func TestDeleteIgnoresForeignURLs(t *testing.T) {
	mock := newMockS3()
	s := testStore(mock)

	if err := s.Delete(context.Background(), "https://elsewhere.example.com/cat.png"); err != nil {
		t.Fatalf("delete foreign url: %v", err)
	}
}

func TestDisabledStore(t *testing.T) {
	s := NewImageStore(Config{})
	if s.Enabled() {
		t.Fatal("store without credentials must be disabled")
	}

	_, err := s.Upload(context.Background(), "x.png", "image/png", strings.NewReader("x"))
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("upload err = %v, want ErrDisabled", err)
	}
	if err := s.Delete(context.Background(), "whatever"); !errors.Is(err, ErrDisabled) {
		t.Errorf("delete err = %v, want ErrDisabled", err)
	}
}
