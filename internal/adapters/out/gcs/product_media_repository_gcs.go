// internal/adapters/out/gcs/product_media_repository_gcs.go
package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/disintegration/imaging"
	"google.golang.org/api/iterator"
)

// ProductMediaRepositoryGCS stores product images in a single public bucket.
//
// Layout:
//   - original : products/{productId}/{fileName}
//   - thumbnail: products/{productId}/thumb_{fileName} (JPEG, fitted to 480px)
//
// Public access assumes the bucket grants "allUsers: Storage Object Viewer"
// with uniform bucket-level access, so no per-object ACL work is needed.
type ProductMediaRepositoryGCS struct {
	Client *storage.Client
	Bucket string
	// Optional: if empty, uses https://storage.googleapis.com
	PublicBaseURL string
}

const thumbnailMaxEdge = 480

func NewProductMediaRepositoryGCS(client *storage.Client, bucket string) *ProductMediaRepositoryGCS {
	return &ProductMediaRepositoryGCS{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: "https://storage.googleapis.com",
	}
}

// UploadResult carries the public URLs of a stored image pair.
type UploadResult struct {
	ObjectPath   string
	URL          string
	ThumbnailURL string
}

func (r *ProductMediaRepositoryGCS) bucketHandle() (*storage.BucketHandle, string, error) {
	if r == nil || r.Client == nil {
		return nil, "", errors.New("product_media_repository_gcs: storage client is nil")
	}
	b := strings.TrimSpace(r.Bucket)
	if b == "" {
		return nil, "", errors.New("product_media_repository_gcs: bucket is empty")
	}
	return r.Client.Bucket(b), b, nil
}

func mediaObjectPath(productID, fileName string) (string, error) {
	p := strings.TrimSpace(productID)
	f := strings.TrimLeft(strings.TrimSpace(fileName), "/")
	if p == "" || f == "" {
		return "", fmt.Errorf("product_media_repository_gcs: invalid productID or fileName: %q, %q", productID, fileName)
	}
	if strings.Contains(f, "..") {
		return "", fmt.Errorf("product_media_repository_gcs: fileName must not contain '..': %q", fileName)
	}
	return "products/" + p + "/" + f, nil
}

func (r *ProductMediaRepositoryGCS) publicURL(bucket, objectPath string) string {
	base := strings.TrimRight(strings.TrimSpace(r.PublicBaseURL), "/")
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return base + "/" + bucket + "/" + objectPath
}

// Upload stores the original image and a fitted JPEG thumbnail next to it.
// A payload that does not decode as an image is stored as-is with no
// thumbnail; the storefront then falls back to the original URL.
func (r *ProductMediaRepositoryGCS) Upload(
	ctx context.Context,
	productID string,
	fileName string,
	contentType string,
	body io.Reader,
) (UploadResult, error) {
	bh, bucket, err := r.bucketHandle()
	if err != nil {
		return UploadResult{}, err
	}
	objPath, err := mediaObjectPath(productID, fileName)
	if err != nil {
		return UploadResult{}, err
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("product_media_repository_gcs: read body: %w", err)
	}
	if len(raw) == 0 {
		return UploadResult{}, errors.New("product_media_repository_gcs: empty body")
	}

	if err := writeObject(ctx, bh, objPath, contentType, raw); err != nil {
		return UploadResult{}, fmt.Errorf("product_media_repository_gcs: upload %s: %w", objPath, err)
	}

	res := UploadResult{
		ObjectPath: objPath,
		URL:        r.publicURL(bucket, objPath),
	}

	thumb, thumbPath, err := buildThumbnail(objPath, raw)
	if err != nil {
		// Not an image (or undecodable). Keep the original only.
		return res, nil
	}
	if err := writeObject(ctx, bh, thumbPath, "image/jpeg", thumb); err != nil {
		return UploadResult{}, fmt.Errorf("product_media_repository_gcs: upload %s: %w", thumbPath, err)
	}
	res.ThumbnailURL = r.publicURL(bucket, thumbPath)
	return res, nil
}

// Delete removes the original and its thumbnail. Missing objects are not
// errors.
func (r *ProductMediaRepositoryGCS) Delete(ctx context.Context, productID, fileName string) error {
	bh, _, err := r.bucketHandle()
	if err != nil {
		return err
	}
	objPath, err := mediaObjectPath(productID, fileName)
	if err != nil {
		return err
	}
	for _, p := range []string{objPath, thumbPathFor(objPath)} {
		if err := bh.Object(p).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("product_media_repository_gcs: delete %s: %w", p, err)
		}
	}
	return nil
}

// ListURLs lists public URLs of all originals under the product's prefix,
// skipping thumbnails.
func (r *ProductMediaRepositoryGCS) ListURLs(ctx context.Context, productID string) ([]string, error) {
	bh, bucket, err := r.bucketHandle()
	if err != nil {
		return nil, err
	}
	p := strings.TrimSpace(productID)
	if p == "" {
		return nil, errors.New("product_media_repository_gcs: productID is empty")
	}
	prefix := "products/" + p + "/"

	it := bh.Objects(ctx, &storage.Query{Prefix: prefix})
	var urls []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("product_media_repository_gcs: list %s: %w", prefix, err)
		}
		name := strings.TrimPrefix(attrs.Name, prefix)
		if strings.HasPrefix(name, "thumb_") || name == ".keep" {
			continue
		}
		urls = append(urls, r.publicURL(bucket, attrs.Name))
	}
	return urls, nil
}

func writeObject(ctx context.Context, bh *storage.BucketHandle, objPath, contentType string, data []byte) error {
	w := bh.Object(objPath).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	w.CacheControl = "public, max-age=3600"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func thumbPathFor(objPath string) string {
	dir, file := objPath, ""
	if i := strings.LastIndex(objPath, "/"); i >= 0 {
		dir, file = objPath[:i], objPath[i+1:]
	} else {
		dir, file = "", objPath
	}
	if dir == "" {
		return "thumb_" + file
	}
	return dir + "/thumb_" + file
}

// buildThumbnail decodes the payload and re-encodes a fitted JPEG.
func buildThumbnail(objPath string, raw []byte) ([]byte, string, error) {
	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}
	var thumb image.Image = imaging.Fit(src, thumbnailMaxEdge, thumbnailMaxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), thumbPathFor(objPath), nil
}
