package minio

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/errors"
	"github.com/jmgilman/go/docdir/internal/errs"
	"github.com/jmgilman/go/docdir/store/minio/internal/pathutil"
)

// mtimeKey is the user metadata key holding the modification time.
const mtimeKey = "Mtime"

// Store implements core.Store for MinIO/S3-compatible storage.
type Store struct {
	client          *minio.Client
	bucket          string
	prefix          string // Optional prefix for all keys
	statConcurrency int    // Max concurrent StatObject calls per query
}

// New creates a MinIO-backed store.
// Returns error if configuration is invalid or the client cannot be built.
// No request is made; use EnsureBucket to verify connectivity.
func New(cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, errs.Invalid(fmt.Errorf("invalid config: %w", err))
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, errs.Invalid(fmt.Errorf("failed to create minio client: %w", err))
		}
	}

	statConcurrency := cfg.StatConcurrency
	if statConcurrency == 0 {
		statConcurrency = DefaultStatConcurrency
	}

	return &Store{
		client:          client,
		bucket:          cfg.Bucket,
		prefix:          pathutil.NormalizePrefix(cfg.Prefix),
		statConcurrency: statConcurrency,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return translate("check bucket", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return translate("create bucket", err)
	}
	return nil
}

// translate converts MinIO errors to docdir errors.
func translate(msg string, err error) error {
	errResp := minio.ToErrorResponse(err)

	switch errResp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return errs.NotFound(msg + ": " + errResp.Message)
	case "AccessDenied":
		return errors.WithClassification(
			errs.Store(msg, fmt.Errorf("%w: %w", fs.ErrPermission, err)),
			errors.ClassificationPermanent,
		)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && !netErr.Timeout() {
		return errs.Unavailable(msg, err)
	}
	return errs.Store(msg, err)
}

// recordFromInfo returns a record holding the object's modification time:
// the Mtime metadata, or the server time for objects written by other tools.
func recordFromInfo(info minio.ObjectInfo) core.FileRecord {
	rec := core.FileRecord{LastModified: core.TruncateTime(info.LastModified)}
	for k, v := range info.UserMetadata {
		if !strings.EqualFold(k, mtimeKey) {
			continue
		}
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			rec.LastModified = core.TimeFromMillis(ms)
		}
	}
	return rec
}

// statRecord builds the record for key.
func (s *Store) statRecord(ctx context.Context, ns core.Namespace, key string) (*core.FileRecord, error) {
	nsPrefix := pathutil.NamespacePrefix(s.prefix, ns.Category, ns.Version)
	name, ok := pathutil.FileName(nsPrefix, key)
	if !ok {
		return nil, errs.NotFound(fmt.Sprintf("key %q is not a file of %s", key, ns))
	}

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, translate("stat "+key, err)
	}

	rec := recordFromInfo(info)
	rec.ID = key
	rec.Category = ns.Category
	rec.Version = ns.Version
	rec.Name = name
	rec.Length = info.Size
	return &rec, nil
}

// Query returns the records matching f.
//
// A name filter costs one StatObject. A namespace query lists the namespace
// prefix and stats each object with bounded parallelism to read its Mtime.
func (s *Store) Query(ctx context.Context, f core.Filter) ([]*core.FileRecord, error) {
	if f.HasName {
		key := pathutil.ObjectKey(s.prefix, f.Category, f.Version, f.Name)
		rec, err := s.statRecord(ctx, f.Namespace, key)
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []*core.FileRecord{rec}, nil
	}

	nsPrefix := pathutil.NamespacePrefix(s.prefix, f.Category, f.Version)
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for object := range s.client.ListObjects(listCtx, s.bucket, minio.ListObjectsOptions{
		Prefix:    nsPrefix,
		Recursive: false,
	}) {
		if object.Err != nil {
			return nil, translate("list "+nsPrefix, object.Err)
		}
		// Common prefixes of nested keys end with "/" and are not files.
		if _, ok := pathutil.FileName(nsPrefix, object.Key); ok {
			keys = append(keys, object.Key)
		}
	}

	recs := make([]*core.FileRecord, len(keys))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.statConcurrency)
	for i, key := range keys {
		eg.Go(func() error {
			rec, err := s.statRecord(egCtx, f.Namespace, key)
			if stderrors.Is(err, fs.ErrNotExist) {
				// Removed between list and stat.
				return nil
			}
			if err != nil {
				return err
			}
			recs[i] = rec
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := recs[:0]
	for _, rec := range recs {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Put uploads content as the object for (category, version, name),
// replacing any existing object.
func (s *Store) Put(ctx context.Context, rec core.FileRecord, content []byte) (*core.FileRecord, error) {
	if err := rec.Namespace().Validate(); err != nil {
		return nil, errs.Invalid(err)
	}
	if err := core.ValidateName(rec.Name); err != nil {
		return nil, errs.Invalid(err)
	}

	rec.ID = pathutil.ObjectKey(s.prefix, rec.Category, rec.Version, rec.Name)
	rec.Length = int64(len(content))
	rec.LastModified = core.TruncateTime(rec.LastModified)

	_, err := s.client.PutObject(ctx, s.bucket, rec.ID, bytes.NewReader(content), rec.Length, minio.PutObjectOptions{
		ContentType:  "application/octet-stream",
		UserMetadata: map[string]string{mtimeKey: strconv.FormatInt(rec.LastModified.UnixMilli(), 10)},
	})
	if err != nil {
		return nil, translate("put "+rec.ID, err)
	}
	return rec.Clone(), nil
}

// Delete removes rec's object. S3 deletes are idempotent, so the object is
// stat'd first to report a missing record.
func (s *Store) Delete(ctx context.Context, rec *core.FileRecord) error {
	if _, err := s.client.StatObject(ctx, s.bucket, rec.ID, minio.StatObjectOptions{}); err != nil {
		return translate("stat "+rec.ID, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, rec.ID, minio.RemoveObjectOptions{}); err != nil {
		return translate("remove "+rec.ID, err)
	}
	return nil
}

// Update persists rec's Name and LastModified.
//
// The object is copied to the key of rec.Name with replaced metadata; a
// touch copies the object onto itself. After a rename the old object is
// removed and rec.ID is set to the new key. Like the rename of a single
// file, this is not atomic: if the remove fails both objects exist.
func (s *Store) Update(ctx context.Context, rec *core.FileRecord) error {
	newKey := pathutil.ObjectKey(s.prefix, rec.Category, rec.Version, rec.Name)
	mtime := strconv.FormatInt(core.TruncateTime(rec.LastModified).UnixMilli(), 10)

	src := minio.CopySrcOptions{
		Bucket: s.bucket,
		Object: rec.ID,
	}
	dst := minio.CopyDestOptions{
		Bucket:          s.bucket,
		Object:          newKey,
		ReplaceMetadata: true,
		UserMetadata:    map[string]string{mtimeKey: mtime},
	}

	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return translate("copy "+rec.ID, err)
	}

	if newKey != rec.ID {
		if err := s.client.RemoveObject(ctx, s.bucket, rec.ID, minio.RemoveObjectOptions{}); err != nil {
			return translate("remove "+rec.ID, err)
		}
		rec.ID = newKey
	}
	return nil
}

// ReadContent reads len(p) bytes at off with one ranged GetObject.
func (s *Store) ReadContent(ctx context.Context, rec *core.FileRecord, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errs.Invalid(fmt.Errorf("negative offset %d", off))
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= rec.Length {
		// A range starting at or past the end is unsatisfiable; check the
		// object still exists so deleted records are reported.
		if _, err := s.client.StatObject(ctx, s.bucket, rec.ID, minio.StatObjectOptions{}); err != nil {
			return 0, translate("stat "+rec.ID, err)
		}
		return 0, io.EOF
	}

	want := p
	if remaining := rec.Length - off; int64(len(want)) > remaining {
		want = p[:remaining]
	}

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, off+int64(len(want))-1); err != nil {
		return 0, errs.Invalid(err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, rec.ID, opts)
	if err != nil {
		return 0, translate("get "+rec.ID, err)
	}
	defer func() {
		_ = obj.Close()
	}()

	n, err := io.ReadFull(obj, want)
	switch {
	case err == nil || stderrors.Is(err, io.ErrUnexpectedEOF) || stderrors.Is(err, io.EOF):
		if n < len(p) {
			return n, io.EOF
		}
		return n, nil
	default:
		return n, translate("read "+rec.ID, err)
	}
}

// Compile-time interface check.
var _ core.Store = (*Store)(nil)
