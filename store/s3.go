package store

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	raven "github.com/getsentry/raven-go"
)

// An S3 store keeps bundles in an AWS S3 bucket, one object per key.
// To keep bundles under a key namespace inside a shared bucket, wrap
// the store with NewWithPrefix. Do not change Bucket concurrently with
// calls using the structure.
type S3 struct {
	svc    *s3.S3
	Bucket string
}

var _ Store = &S3{}

// NewS3 creates a new S3 store using the given bucket. The
// authorization method and credentials in the session are used for all
// accesses.
func NewS3(bucket string, awsSession *session.Session) *S3 {
	return &S3{
		Bucket: bucket,
		svc:    s3.New(awsSession),
	}
}

// List returns a list of all the keys in this store.
func (s *S3) List() <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		input := &s3.ListObjectsV2Input{
			Bucket: aws.String(s.Bucket),
		}
		err := s.svc.ListObjectsV2Pages(input,
			func(page *s3.ListObjectsV2Output, lastpage bool) bool {
				for _, item := range page.Contents {
					out <- *item.Key
				}
				return !lastpage
			})
		if err != nil {
			log.Println("S3 List:", s.Bucket, err)
			raven.CaptureError(err, map[string]string{"Bucket": s.Bucket})
		}
	}()
	return out
}

// ListPrefix returns the keys in this store that have the given prefix.
func (s *S3) ListPrefix(prefix string) ([]string, error) {
	var result []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(prefix),
	}
	err := s.svc.ListObjectsV2Pages(input,
		func(page *s3.ListObjectsV2Output, lastpage bool) bool {
			for _, item := range page.Contents {
				result = append(result, *item.Key)
			}
			return !lastpage
		})
	if err != nil {
		log.Println("S3 ListPrefix:", prefix, err)
		raven.CaptureError(err, map[string]string{"Bucket": s.Bucket, "Pattern": prefix})
	}
	return result, err
}

// Open returns a ReadAtCloser for the content of the given key. Each
// ReadAt call turns into one ranged GET against S3; zip readers issue
// few, large reads, so no caching layer is kept in front of it.
func (s *S3) Open(key string) (ReadAtCloser, int64, error) {
	size, err := s.stat(key)
	if err != nil {
		return nil, 0, err
	}
	return &s3ReadAtCloser{
		svc:    s.svc,
		bucket: s.Bucket,
		key:    key,
		size:   size,
	}, size, nil
}

// Create returns a WriteCloser to upload content to the given key. The
// content is buffered in memory and uploaded in a single PutObject when
// the writer is closed. Bundles are assembled in memory anyway, so the
// extra copy is acceptable and keeps the upload atomic.
func (s *S3) Create(key string) (io.WriteCloser, error) {
	_, err := s.stat(key)
	if err == nil {
		return nil, ErrKeyExists
	}
	if err != ErrNotFound {
		return nil, err
	}
	return &s3WriteCloser{
		svc:    s.svc,
		bucket: s.Bucket,
		key:    key,
	}, nil
}

// Delete removes the given key from the store. It is not an error to
// delete something that doesn't exist.
func (s *S3) Delete(key string) error {
	_, err := s.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Println("S3 Delete:", key, err)
		raven.CaptureError(err, map[string]string{"Bucket": s.Bucket, "Key": key})
	}
	return err
}

// stat does a HEAD request for the key and returns the object's size.
// A missing object is reported as ErrNotFound.
func (s *S3) stat(key string) (int64, error) {
	info, err := s.svc.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.RequestFailure); ok && aerr.StatusCode() == 404 {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return *info.ContentLength, nil
}

type s3ReadAtCloser struct {
	svc    *s3.S3
	bucket string
	key    string
	size   int64
}

func (r *s3ReadAtCloser) ReadAt(p []byte, off int64) (int, error) {
	if off >= r.size {
		return 0, io.EOF
	}
	end := off + int64(len(p)) - 1
	if end >= r.size {
		end = r.size - 1
	}
	out, err := r.svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		log.Println("S3 ReadAt:", r.key, err)
		raven.CaptureError(err, map[string]string{"Bucket": r.bucket, "Key": r.key})
		return 0, err
	}
	defer out.Body.Close()
	n, err := io.ReadFull(out.Body, p[:end-off+1])
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	if err == nil && end == r.size-1 && int64(n) < int64(len(p)) {
		err = io.EOF
	}
	return n, err
}

func (r *s3ReadAtCloser) Close() error {
	return nil
}

type s3WriteCloser struct {
	svc    *s3.S3
	bucket string
	key    string
	buf    bytes.Buffer
}

func (w *s3WriteCloser) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *s3WriteCloser) Close() error {
	_, err := w.svc.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buf.Bytes()),
	})
	if err != nil {
		log.Println("S3 Upload:", w.key, err)
		raven.CaptureError(err, map[string]string{"Bucket": w.bucket, "Key": w.key})
	}
	return err
}
