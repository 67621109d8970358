// Package scenefetch downloads Landsat Collection 2 band files from the
// public usgs-landsat S3 bucket into the original dataset directory. Keys
// are filtered through the filename decoder so only well-formed band files
// of the configured bands land on disk.
package scenefetch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client the fetcher needs. Satisfied by
// *s3.Client and by test fakes.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client provides S3 operations against the Landsat archive bucket.
type Client struct {
	api           S3API
	requesterPays bool
}

// NewClient creates a client using the default AWS configuration chain.
// The usgs-landsat bucket is requester-pays, so requesterPays should be
// true unless pointing at a mirror.
func NewClient(ctx context.Context, requesterPays bool) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Client{
		api:           s3.NewFromConfig(cfg),
		requesterPays: requesterPays,
	}, nil
}

// NewClientWithAPI creates a client around an existing S3 API implementation.
func NewClientWithAPI(api S3API, requesterPays bool) *Client {
	return &Client{api: api, requesterPays: requesterPays}
}

func (c *Client) requestPayer() types.RequestPayer {
	if c.requesterPays {
		return types.RequestPayerRequester
	}
	return ""
}

// ListKeys returns all object keys under the given prefix.
func (c *Client) ListKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	var continuation *string

	for {
		out, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuation,
			RequestPayer:      c.requestPayer(),
		})
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
		}

		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		continuation = out.NextContinuationToken
	}

	return keys, nil
}

// Download streams an object to the writer and returns the byte count.
func (c *Client) Download(ctx context.Context, bucket, key string, w io.Writer) (int64, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		RequestPayer: c.requestPayer(),
	})
	if err != nil {
		return 0, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	n, err := io.Copy(w, out.Body)
	if err != nil {
		return n, fmt.Errorf("stream s3://%s/%s: %w", bucket, key, err)
	}
	return n, nil
}

// DownloadToFile downloads an object to destPath via a temp file in the
// same directory, so partial downloads never shadow complete ones.
func (c *Client) DownloadToFile(ctx context.Context, bucket, key, destPath string) (int64, error) {
	tmp, err := os.CreateTemp("", "scenefetch-*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := c.Download(ctx, bucket, key, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("move download to %s: %w", destPath, err)
	}
	return n, nil
}
