// Package s3store implements store.Client against an S3-compatible bucket.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	pkgerrors "github.com/pkg/errors"

	"github.com/nimbusdepot/gatesftp/internal/store"
)

// Option configures a new Client.
type Option struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	Secret    string
}

// Client is a store.Client backed by AWS S3 (or an S3-compatible
// endpoint, via Option.Endpoint).
type Client struct {
	s3       *s3.Client
	uploader *manager.Uploader
	bucket   string
}

// New builds a Client from opt. When opt.Endpoint is empty the AWS default
// endpoint resolution for opt.Region is used; otherwise requests are routed
// to the given endpoint, e.g. for a self-hosted or emulated bucket service.
func New(opt Option) (*Client, error) {
	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(opt.AccessKey, opt.Secret, ""))
	conf := aws.Config{
		Credentials: creds,
		Region:      opt.Region,
	}
	if opt.Endpoint != "" {
		conf.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               opt.Endpoint,
				SigningRegion:     opt.Region,
				HostnameImmutable: true,
			}, nil
		})
	}

	cli := s3.NewFromConfig(conf)
	return &Client{
		s3:       cli,
		uploader: manager.NewUploader(cli),
		bucket:   opt.Bucket,
	}, nil
}

func (c *Client) Get(ctx context.Context, key string, rangeStart, rangeEnd int64) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}
	if rangeStart > 0 || rangeEnd >= 0 {
		if rangeEnd >= 0 {
			input.Range = aws.String(fmt.Sprintf("bytes=%d-%d", rangeStart, rangeEnd))
		} else {
			input.Range = aws.String(fmt.Sprintf("bytes=%d-", rangeStart))
		}
	}
	out, err := c.s3.GetObject(ctx, input)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, pkgerrors.Wrapf(err, "get object %q", key)
	}
	return out.Body, nil
}

// Put uses the managed uploader so large buffers are split into multipart
// uploads transparently; the caller still sees a single synchronous call.
func (c *Client) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return pkgerrors.Wrapf(err, "put object %q", key)
	}
	return nil
}

func (c *Client) Head(ctx context.Context, key string) (bool, int64, error) {
	out, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, 0, nil
		}
		return false, 0, pkgerrors.Wrapf(err, "head object %q", key)
	}
	size := int64(0)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return true, size, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return pkgerrors.Wrapf(err, "delete object %q", key)
	}
	return nil
}

func (c *Client) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := c.s3.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(c.bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(c.bucket + "/" + srcKey),
	})
	if err != nil {
		return pkgerrors.Wrapf(err, "copy object %q -> %q", srcKey, dstKey)
	}
	return nil
}

func (c *Client) List(ctx context.Context, prefix string) ([]store.ObjectSummary, error) {
	var out []store.ObjectSummary
	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "list objects with prefix %q", prefix)
		}
		for _, obj := range page.Contents {
			summary := store.ObjectSummary{Key: aws.ToString(obj.Key)}
			if obj.Size != nil {
				summary.Size = *obj.Size
			}
			if obj.LastModified != nil {
				summary.LastModified = *obj.LastModified
			}
			out = append(out, summary)
		}
	}
	return out, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	return errors.As(err, &nf)
}
