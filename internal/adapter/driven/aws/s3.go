package aws

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObject grava um relatório no bucket usando a sessão da conta atual.
func (r *Repository) PutObject(ctx context.Context, bucket, key, contentType string, body []byte) error {
	self := r.self()
	client, err := r.getServiceClient(ctx, self.ID, self.Region, "s3")
	if err != nil {
		return err
	}
	_, err = client.(*s3.Client).PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return classify(self.ID, "PutObject", err)
	}
	return nil
}
