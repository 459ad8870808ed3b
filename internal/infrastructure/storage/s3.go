// Package storage es el adaptador de almacenamiento de objetos compatible con S3 para adjuntos.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/domain"
)

var _ ports.FileStorage = (*S3Storage)(nil)

// Config del bucket. Endpoint se define para backends compatibles con S3 (MinIO, R2, Supabase).
type Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	UsePathStyle  bool
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage guarda los objetos tal cual; nunca inspecciona el contenido.
type S3Storage struct {
	client    objectAPI
	bucket    string
	publicURL string
}

// NewS3Storage construye el cliente con credenciales estáticas si se dan, o con la cadena por defecto.
func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	publicURL := cfg.PublicBaseURL
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
		}
	}
	return newS3Storage(client, cfg.Bucket, publicURL), nil
}

func newS3Storage(client objectAPI, bucket, publicURL string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Upload sube el objeto a path e informa los bytes a medida que el SDK los lee.
func (s *S3Storage) Upload(ctx context.Context, path string, body io.ReadSeeker, size int64, contentType string, progress ports.ProgressFunc) (string, error) {
	key := strings.TrimLeft(path, "/")
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          &progressReader{r: body, progress: progress},
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("%w: put object %s: %v", domain.ErrUnavailable, key, err)
	}
	return key, nil
}

// PublicURL es donde los clientes descargan el objeto.
func (s *S3Storage) PublicURL(storedPath string) string {
	return s.publicURL + "/" + strings.TrimLeft(storedPath, "/")
}

// Delete elimina el objeto. En S3 borrar una clave inexistente no es error.
func (s *S3Storage) Delete(ctx context.Context, storedPath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimLeft(storedPath, "/")),
	})
	if err != nil {
		return fmt.Errorf("%w: delete object %s: %v", domain.ErrUnavailable, storedPath, err)
	}
	return nil
}

// progressReader cuenta los bytes leídos. El SDK puede rebobinar el cuerpo para firmar o reintentar,
// así que un seek reinicia la cuenta al nuevo offset.
type progressReader struct {
	r        io.ReadSeeker
	read     int64
	progress ports.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.progress != nil {
			p.progress(p.read)
		}
	}
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.r.Seek(offset, whence)
	if err == nil {
		p.read = pos
	}
	return pos, err
}
