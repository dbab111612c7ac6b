package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"google.golang.org/api/option"
)

// Uploader is the object-storage slice the image upload path needs. Two
// backends exist: Cloudflare R2 over the S3 API (the default) and GCS;
// STORAGE_BACKEND picks one.
type Uploader interface {
	Put(ctx context.Context, objectName, contentType string, body io.Reader) error
	PublicURL(objectName string) string
}

func NewUploader(ctx context.Context) (Uploader, error) {
	if strings.EqualFold(os.Getenv("STORAGE_BACKEND"), "gcs") {
		return newGCSUploader(ctx)
	}
	return newR2Uploader(ctx)
}

// R2Uploader wraps the S3 client + bucket name for Cloudflare R2.
type R2Uploader struct {
	client       *s3.Client
	bucket       string
	publicDomain string
}

func newR2Uploader(ctx context.Context) (*R2Uploader, error) {
	bucket := os.Getenv("R2_BUCKET")
	accessKey := os.Getenv("R2_ACCESS_KEY_ID")
	secretKey := os.Getenv("R2_SECRET_ACCESS_KEY")
	endpoint := os.Getenv("R2_ENDPOINT") // https://<account-id>.r2.cloudflarestorage.com

	if bucket == "" || accessKey == "" || secretKey == "" || endpoint == "" {
		return nil, fmt.Errorf("missing R2 env vars (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true // required for R2
	})

	return &R2Uploader{
		client:       client,
		bucket:       bucket,
		publicDomain: strings.TrimRight(os.Getenv("R2_PUBLIC_DOMAIN"), "/"),
	}, nil
}

func (u *R2Uploader) Put(ctx context.Context, objectName, contentType string, body io.Reader) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(objectName),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectName, err)
	}
	return nil
}

// PublicURL builds the public URL for a stored object. Set R2_PUBLIC_DOMAIN
// to your custom domain or r2.dev URL, e.g. "https://files.yourdomain.com".
func (u *R2Uploader) PublicURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", u.publicDomain, u.bucket, objectName)
}

// GCSUploader is the pre-migration Google Cloud Storage backend, kept live
// behind STORAGE_BACKEND=gcs.
type GCSUploader struct {
	client *gcstorage.Client
	bucket string
}

func newGCSUploader(ctx context.Context) (*GCSUploader, error) {
	bucket := os.Getenv("GCS_BUCKET")
	credentialsPath := os.Getenv("CREDENTIALS_FILE_LOCATION")
	if bucket == "" {
		return nil, fmt.Errorf("missing GCS_BUCKET env var")
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	client, err := gcstorage.NewClient(ctx,
		option.WithAuthCredentialsFile(option.ServiceAccount, filepath.Join(wd, credentialsPath)))
	if err != nil {
		return nil, err
	}
	return &GCSUploader{client: client, bucket: bucket}, nil
}

func (u *GCSUploader) Put(ctx context.Context, objectName, contentType string, body io.Reader) error {
	w := u.client.Bucket(u.bucket).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload close: %w", err)
	}
	return nil
}

func (u *GCSUploader) PublicURL(objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, objectName)
}

// UploadProductImages streams one to four validated image files to the backend and
// returns their public URLs.
func UploadProductImages(
	ctx context.Context,
	up Uploader,
	v *FileValidator,
	productID string,
	files []*multipart.FileHeader,
) ([]string, error) {

	if len(files) < 1 || len(files) > 4 {
		return nil, fmt.Errorf("images must be 1 to 4")
	}

	urls := make([]string, 0, len(files))

	for _, fh := range files {
		ct, err := v.ValidateFile(fh)
		if err != nil {
			return nil, err
		}

		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if ext == "" {
			ext = ".bin"
		}
		objectName := fmt.Sprintf("products/%s/%d%s", productID, time.Now().UnixNano(), ext)

		if ct == "" {
			ct = mime.TypeByExtension(ext)
		}
		if ct == "" {
			ct = "application/octet-stream"
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		err = up.Put(ctx, objectName, ct, f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}

		urls = append(urls, up.PublicURL(objectName))
	}

	return urls, nil
}

type FileValidator struct {
	allowedExt  map[string]bool
	allowedMime map[string]bool
	maxSize     int64
}

func NewImageValidator() *FileValidator {
	allowedExt := map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
	}
	allowedMime := map[string]bool{
		"image/jpeg": true, "image/png": true, "image/webp": true,
	}

	sizeMB := 5
	if v := os.Getenv("MAX_UPLOAD_SIZE_MB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			sizeMB = parsed
		}
	}

	return &FileValidator{
		allowedExt:  allowedExt,
		allowedMime: allowedMime,
		maxSize:     int64(sizeMB) << 20,
	}
}

func (v *FileValidator) ValidateFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > v.maxSize {
		return "", fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !v.allowedExt[ext] {
		return "", fmt.Errorf("invalid file extension")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	if _, err = file.Read(buffer); err != nil {
		return "", fmt.Errorf("failed to read file header")
	}
	if _, err = file.Seek(0, 0); err != nil {
		return "", fmt.Errorf("failed to reset file reader")
	}

	detectedMime := strings.ToLower(http.DetectContentType(buffer))
	if !v.allowedMime[detectedMime] {
		return "", fmt.Errorf("invalid file type")
	}

	return detectedMime, nil
}
