package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"beleidsgraaf/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func NewS3Client(ctx context.Context) *s3.Client {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client
}

// Archive keeps the raw upstream payload of every imported item, so a
// dispute about what the source actually said can be settled without
// the source.
type Archive struct {
	client *s3.Client
	bucket string
}

func NewArchive(client *s3.Client) *Archive {
	return &Archive{
		client: client,
		bucket: util.GetEnvString("AWS_BUCKET", "beleidsgraaf"),
	}
}

func (a *Archive) key(itemType, zaakID string) string {
	return fmt.Sprintf("imports/%s/%s.json", itemType, zaakID)
}

// PutRawItem stores the payload as JSON under imports/<type>/<zaak_id>.
func (a *Archive) PutRawItem(ctx context.Context, itemType, zaakID string, payload any) error {
	if a.client == nil {
		return fmt.Errorf("no s3 client configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal raw item: %w", err)
	}
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.key(itemType, zaakID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload raw item to S3: %v", err)
	}
	return nil
}

// GetRawItem returns the archived payload for an item.
func (a *Archive) GetRawItem(ctx context.Context, itemType, zaakID string) ([]byte, error) {
	if a.client == nil {
		return nil, fmt.Errorf("no s3 client configured")
	}
	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(itemType, zaakID)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get raw item from S3: %v", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return nil, fmt.Errorf("failed to read raw item contents: %v", err)
	}
	return buf.Bytes(), nil
}
