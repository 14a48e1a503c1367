package export

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"map-atlas/core/mapdata"
	"map-atlas/core/raster"
	"map-atlas/core/reconcile"
	"map-atlas/core/source"
	"map-atlas/core/storage"
	"map-atlas/core/store"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Prefix is the top-level folder of every export in the bucket.
const Prefix = "atlas"

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,62}$`)

// ValidName reports whether name can be used as an export folder.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// StorageResult lists what an export wrote and pruned. Objects whose
// content already matched are counted in Unchanged and not uploaded again.
type StorageResult struct {
	Seq       int64    `json:"seq"`
	Bucket    string   `json:"bucket"`
	Prefix    string   `json:"prefix"`
	Objects   []string `json:"objects"`
	Uploaded  []string `json:"uploaded"`
	Removed   []string `json:"removed"`
	Unchanged int      `json:"unchanged"`
}

// object is one file of an export.
type object struct {
	key         string
	contentType string
	data        []byte
	// etag is the hex MD5 of data, which is what the server reports for a
	// single part upload.
	etag string
}

func newObject(key, contentType string, data []byte) object {
	sum := md5.Sum(data)
	return object{key: key, contentType: contentType, data: data, etag: hex.EncodeToString(sum[:])}
}

// Manifest describes an export and is written next to it.
type Manifest struct {
	Seq        int64             `json:"seq"`
	Roots      []source.Root     `json:"roots"`
	Tables     mapdata.Summary   `json:"tables"`
	Views      []string          `json:"views"`
	ViewErrors map[string]string `json:"view_errors,omitempty"`
}

// objects renders the snapshot into the files of an export under prefix.
func objects(snap *store.Snapshot, prefix string) ([]object, error) {
	var out []object

	manifest := Manifest{Seq: snap.Seq, Roots: snap.Roots, Tables: snap.Model.Summary()}
	for _, v := range raster.Views() {
		img, ok := snap.Views[v]
		if !ok {
			if err, failed := snap.ViewErrors[v]; failed {
				if manifest.ViewErrors == nil {
					manifest.ViewErrors = make(map[string]string)
				}
				manifest.ViewErrors[string(v)] = err.Error()
			}
			continue
		}
		var buf bytes.Buffer
		if err := raster.Encode(&buf, img, raster.FormatPNG); err != nil {
			return nil, fmt.Errorf("encode %s view: %w", v, err)
		}
		manifest.Views = append(manifest.Views, string(v))
		out = append(out, newObject(path.Join(prefix, "views", string(v)+".png"), raster.FormatPNG.ContentType(), buf.Bytes()))
	}

	rows := BuildRows(snap.Model, snap.Localise)
	tables := []struct {
		name string
		v    any
	}{
		{"manifest", manifest},
		{"provinces", rows.Provinces},
		{"states", rows.States},
		{"regions", rows.Regions},
		{"countries", rows.Countries},
		{"adjacencies", snap.Model.Adjacencies},
		{"issues", snap.Report.Issues()},
	}
	for _, t := range tables {
		data, err := json.Marshal(t.v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t.name, err)
		}
		out = append(out, newObject(path.Join(prefix, t.name+".json"), "application/json", data))
	}
	return out, nil
}

// storedObject is an object as listed from the bucket.
type storedObject struct {
	key  string
	etag string
}

// storageAdapter reconciles the objects of an export with what the bucket
// holds under its prefix.
type storageAdapter struct {
	client  storage.Client
	bucket  string
	prefix  string
	objects []object
	logger  *zap.Logger
}

func (a *storageAdapter) Name() string { return "storage" }

func (a *storageAdapter) LoadWant(context.Context) (map[string]reconcile.Item, error) {
	out := make(map[string]reconcile.Item, len(a.objects))
	for _, o := range a.objects {
		out[o.key] = o
	}
	return out, nil
}

func (a *storageAdapter) LoadHave(ctx context.Context) (map[string]reconcile.Item, error) {
	out := make(map[string]reconcile.Item)
	for info := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: a.prefix + "/", Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", a.prefix, info.Err)
		}
		out[info.Key] = storedObject{key: info.Key, etag: strings.Trim(info.ETag, `"`)}
	}
	return out, nil
}

func (a *storageAdapter) ResolveName(want, have reconcile.Item) string {
	if o, ok := want.(object); ok {
		return path.Base(o.key)
	}
	return path.Base(have.(storedObject).key)
}

func (a *storageAdapter) CompareFields(want, have reconcile.Item) []string {
	w, h := want.(object), have.(storedObject)
	if w.etag != h.etag {
		return []string{fmt.Sprintf("etag: want=%s have=%s", w.etag, h.etag)}
	}
	return nil
}

// Put uploads items in key order.
func (a *storageAdapter) Put(ctx context.Context, items map[string]reconcile.Item) error {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		o := items[k].(object)
		_, err := a.client.PutObject(ctx, a.bucket, o.key, bytes.NewReader(o.data), int64(len(o.data)),
			minio.PutObjectOptions{ContentType: o.contentType})
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", o.key, err)
		}
	}
	return nil
}

// Delete removes keys in one batch. Every failure is logged; the first one
// is returned.
func (a *storageAdapter) Delete(ctx context.Context, keys []string) error {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)

	var errs []error
	for rerr := range a.client.RemoveObjects(ctx, a.bucket, ch, minio.RemoveObjectsOptions{}) {
		a.logger.Warn("Failed to remove stale export object", zap.String("key", rerr.ObjectName), zap.Error(rerr.Err))
		errs = append(errs, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
	}
	return errors.Join(errs...)
}

// storageSpec builds the reconciliation of snap against atlas/<name>/.
func (s *Service) storageSpec(snap *store.Snapshot, name string, ttl time.Duration) (*reconcile.Spec, error) {
	prefix := path.Join(Prefix, name)
	objs, err := objects(snap, prefix)
	if err != nil {
		return nil, err
	}
	return &reconcile.Spec{
		Adapter:  &storageAdapter{client: s.client, bucket: s.bucket, prefix: prefix, objects: objs, logger: s.logger},
		Scope:    fmt.Sprintf("seq=%d|%s", snap.Seq, prefix),
		Cache:    s.cache,
		CacheTTL: ttl,
	}, nil
}

// toStorage uploads new and changed objects, then removes objects an older
// export left under the same prefix.
func (s *Service) toStorage(ctx context.Context, snap *store.Snapshot, name string) (*StorageResult, error) {
	if err := storage.EnsureBucket(ctx, s.client, s.bucket, s.region); err != nil {
		return nil, err
	}
	spec, err := s.storageSpec(snap, name, 0)
	if err != nil {
		return nil, err
	}
	opts := reconcile.Options{DoSync: true, DoPurge: true}
	plan, err := reconcile.BuildPlan(ctx, spec, opts)
	if err != nil {
		return nil, err
	}

	res := &StorageResult{
		Seq:       snap.Seq,
		Bucket:    s.bucket,
		Prefix:    path.Join(Prefix, name) + "/",
		Objects:   []string{},
		Uploaded:  []string{},
		Removed:   []string{},
		Unchanged: plan.Summary.InSync,
	}
	for _, o := range spec.Adapter.(*storageAdapter).objects {
		res.Objects = append(res.Objects, o.key)
	}
	for _, a := range plan.Actions {
		if a.Type == reconcile.ActionDelete {
			res.Removed = append(res.Removed, a.Key)
		} else {
			res.Uploaded = append(res.Uploaded, a.Key)
		}
	}

	if _, err := reconcile.ApplyPlan(ctx, spec, plan, opts); err != nil {
		return nil, err
	}
	return res, nil
}
