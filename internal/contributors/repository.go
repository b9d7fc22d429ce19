// Package contributors resolves sender phone numbers to display names.
package contributors

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrNotFound indicates no contributor matches the queried phone number.
var ErrNotFound = errors.New("contributors: not found")

type dynamoAPI interface {
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Repository reads the contributor directory from DynamoDB.
type Repository struct {
	client     dynamoAPI
	table      string
	phoneIndex string
}

// NewRepository builds a read-only directory backed by the provided client.
func NewRepository(client dynamoAPI, table, phoneIndex string) *Repository {
	if client == nil {
		panic("contributors: dynamodb client cannot be nil")
	}
	if table == "" {
		panic("contributors: table name cannot be empty")
	}
	return &Repository{
		client:     client,
		table:      table,
		phoneIndex: phoneIndex,
	}
}

// FindByPhone queries the phone index for an exact match.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*Contributor, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(r.phoneIndex),
		KeyConditionExpression: aws.String("phone = :phone"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":phone": &types.AttributeValueMemberS{Value: phone},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("contributors: query by phone: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}

	var c Contributor
	if err := attributevalue.UnmarshalMap(out.Items[0], &c); err != nil {
		return nil, fmt.Errorf("contributors: decode contributor: %w", err)
	}
	return &c, nil
}
