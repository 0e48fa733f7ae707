package utils

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	appconfig "waste-hunt-api/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Evidence stores tip evidence in a Cloudflare R2 bucket.
type R2Evidence struct {
	Client     *s3.Client
	Bucket     string
	CDNBaseURL string
}

func NewR2Evidence(ctx context.Context, ev appconfig.Evidence) (*R2Evidence, error) {
	endpoint := ev.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", ev.AccountID)
	}
	cdnBaseURL := ev.CDNBaseURL
	if cdnBaseURL == "" {
		cdnBaseURL = endpoint + "/" + ev.Bucket
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithHTTPClient(HTTPClient),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			ev.AccessKeyID, ev.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return &R2Evidence{
		Client:     client,
		Bucket:     ev.Bucket,
		CDNBaseURL: strings.TrimRight(cdnBaseURL, "/"),
	}, nil
}

// Save uploads the file under key and returns its public URL.
func (r *R2Evidence) Save(ctx context.Context, fileHeader *multipart.FileHeader, key string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket:        aws.String(r.Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(fileHeader.Size),
	}
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if _, err := r.Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", r.CDNBaseURL, key), nil
}
