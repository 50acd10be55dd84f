// Package upload provides signed URLs for uploading property photos
// directly to R2. The resulting public URL is what callers put in a
// property's image_url field.
package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Allowed MIME types for property photos.
const (
	MIMEImageJPEG = "image/jpeg"
	MIMEImagePNG  = "image/png"
	MIMEImageWebP = "image/webp"
)

// Validation errors
var (
	ErrUnsupportedType   = errors.New("unsupported content type")
	ErrFileTooLarge      = errors.New("file size exceeds maximum allowed")
	ErrInvalidPropertyID = errors.New("invalid property ID")
)

// AllowedMIMETypes maps allowed MIME types to their file extensions.
var AllowedMIMETypes = map[string]string{
	MIMEImageJPEG: ".jpg",
	MIMEImagePNG:  ".png",
	MIMEImageWebP: ".webp",
}

// SignedURLRequest represents a request for a signed upload URL.
type SignedURLRequest struct {
	ContentType string  // MIME type of the photo
	SizeBytes   int64   // Size of the photo in bytes
	PropertyID  *string // Optional property ID; if nil, uses "unassigned"
}

// SignedURLResponse represents the response containing the signed URL and metadata.
type SignedURLResponse struct {
	URL       string    `json:"url"`        // Pre-signed PUT URL
	Key       string    `json:"key"`        // Object key in R2
	PublicURL string    `json:"public_url"` // URL to store as the property's image_url
	ExpiresAt time.Time `json:"expires_at"` // URL expiration time
}

// Service generates signed URLs for R2 photo uploads.
type Service struct {
	presignClient *s3.PresignClient
	bucketName    string
	publicBaseURL string
	maxSizeBytes  int64
	urlExpiry     time.Duration
	timeNow       func() time.Time // For testability
}

// ServiceConfig holds configuration for the upload service.
type ServiceConfig struct {
	BucketName       string
	AccessKeyID      string
	SecretAccessKey  string
	Endpoint         string
	PublicBaseURL    string
	MaxSizeMB        int
	URLExpiryMinutes int // Default: 5 minutes
}

// NewService creates a new upload service with the given configuration.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("access key ID is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("secret access key is required")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 15
	}
	if cfg.URLExpiryMinutes <= 0 {
		cfg.URLExpiryMinutes = 5
	}

	// R2 wants auto region and path-style addressing.
	s3Client := s3.New(s3.Options{
		Region: "auto",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true,
	})

	return &Service{
		presignClient: s3.NewPresignClient(s3Client),
		bucketName:    cfg.BucketName,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxSizeBytes:  int64(cfg.MaxSizeMB) * 1024 * 1024,
		urlExpiry:     time.Duration(cfg.URLExpiryMinutes) * time.Minute,
		timeNow:       time.Now,
	}, nil
}

// ValidateContentType checks if the content type is allowed.
func ValidateContentType(contentType string) error {
	if _, ok := AllowedMIMETypes[contentType]; !ok {
		return ErrUnsupportedType
	}
	return nil
}

// ValidateFileSize checks if the file size is within limits.
func (s *Service) ValidateFileSize(sizeBytes int64) error {
	if sizeBytes > s.maxSizeBytes {
		return ErrFileTooLarge
	}
	if sizeBytes <= 0 {
		return errors.New("file size must be positive")
	}
	return nil
}

// GenerateObjectKey creates a unique object key for the upload.
// Pattern: properties/{propertyID or unassigned}/uuid.ext
func GenerateObjectKey(contentType string, propertyID *string) (string, error) {
	ext, ok := AllowedMIMETypes[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	prefix := "unassigned"
	if propertyID != nil && *propertyID != "" {
		sanitized := sanitizePathComponent(*propertyID)
		if sanitized == "" {
			return "", ErrInvalidPropertyID
		}
		prefix = sanitized
	}

	return fmt.Sprintf("properties/%s/%s%s", prefix, uuid.New().String(), ext), nil
}

// sanitizePathComponent removes potentially dangerous characters from path components.
func sanitizePathComponent(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// GenerateSignedURL generates a pre-signed PUT URL for direct upload to R2.
func (s *Service) GenerateSignedURL(ctx context.Context, req SignedURLRequest) (*SignedURLResponse, error) {
	if err := ValidateContentType(req.ContentType); err != nil {
		return nil, err
	}
	if err := s.ValidateFileSize(req.SizeBytes); err != nil {
		return nil, err
	}
	key, err := GenerateObjectKey(req.ContentType, req.PropertyID)
	if err != nil {
		return nil, err
	}

	putObjectInput := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		ContentType:   aws.String(req.ContentType),
		ContentLength: aws.Int64(req.SizeBytes),
	}

	presignedReq, err := s.presignClient.PresignPutObject(ctx, putObjectInput, func(opts *s3.PresignOptions) {
		opts.Expires = s.urlExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign request: %w", err)
	}

	publicURL := ""
	if s.publicBaseURL != "" {
		publicURL = s.publicBaseURL + "/" + key
	}

	return &SignedURLResponse{
		URL:       presignedReq.URL,
		Key:       key,
		PublicURL: publicURL,
		ExpiresAt: s.timeNow().Add(s.urlExpiry),
	}, nil
}
