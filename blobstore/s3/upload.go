package s3

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrAborted is what Close reports for an aborted upload.
var ErrAborted = errors.New("s3: upload aborted")

// UploadConfig tunes the transfer manager behind Create.
type UploadConfig struct {
	// PartSize is the multipart chunk size. Export files are written in one
	// pass, so larger parts mean fewer requests.
	PartSize int64
	// Concurrency bounds in-flight part uploads.
	Concurrency int
	// EnableChecksum asks S3 to verify a CRC32C per part.
	EnableChecksum bool
	// LeavePartsOnError keeps the parts of a failed multipart upload
	// instead of aborting it.
	LeavePartsOnError bool
}

// DefaultUploadConfig uses 8 MiB parts, five concurrent parts and CRC32C.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{PartSize: 8 << 20, Concurrency: 5, EnableChecksum: true}
}

func (c UploadConfig) uploader(client manager.UploadAPIClient) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		if c.PartSize > 0 {
			u.PartSize = c.PartSize
		}
		if c.Concurrency > 0 {
			u.Concurrency = c.Concurrency
		}
		u.LeavePartsOnError = c.LeavePartsOnError
	})
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// crc32cBase64 encodes the CRC32C of data the way S3 expects it in
// x-amz-checksum-crc32c: big-endian, base64.
func crc32cBase64(data []byte) string {
	sum := binary.BigEndian.AppendUint32(nil, crc32.Checksum(data, castagnoli))
	return base64.StdEncoding.EncodeToString(sum)
}

// pipeUpload feeds writes through an io.Pipe into an Upload running in its
// own goroutine.
type pipeUpload struct {
	pw     *io.PipeWriter
	result chan error
	once   sync.Once
	err    error
}

func startUpload(ctx context.Context, uploader *manager.Uploader, in *s3.PutObjectInput) *pipeUpload {
	pr, pw := io.Pipe()
	in.Body = pr
	u := &pipeUpload{pw: pw, result: make(chan error, 1)}
	go func() {
		_, err := uploader.Upload(ctx, in)
		_ = pr.CloseWithError(err)
		u.result <- err
	}()
	return u
}

// Write blocks until the uploader consumes p. Writes after Close or Abort
// fail with io.ErrClosedPipe.
func (u *pipeUpload) Write(p []byte) (int, error) {
	return u.pw.Write(p)
}

// Sync does nothing; parts are only durable once Close completes the upload.
func (u *pipeUpload) Sync() error { return nil }

// finish ends the body exactly once. A nil cause completes the upload.
func (u *pipeUpload) finish(cause error) error {
	u.once.Do(func() {
		if cause == nil {
			_ = u.pw.Close()
			u.err = <-u.result
			return
		}
		_ = u.pw.CloseWithError(cause)
		<-u.result
		u.err = cause
	})
	return u.err
}

// Close waits for the upload and returns its error.
func (u *pipeUpload) Close() error {
	return u.finish(nil)
}

// Abort fails the body so the uploader cancels any multipart upload it
// started. It is a no-op after Close.
func (u *pipeUpload) Abort() error {
	u.finish(ErrAborted)
	return nil
}
