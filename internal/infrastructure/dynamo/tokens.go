package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-api/internal/domain"
)

// TokenRepo manages ephemeral single-use tokens (email verification,
// password reset). PK: token. A GSI on (account_id, purpose) lets issuance
// supersede the account's prior token of the same purpose.
type TokenRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTokenRepo(client *dynamodb.Client, tableName string) *TokenRepo {
	return &TokenRepo{client: client, tableName: tableName}
}

func (r *TokenRepo) Put(ctx context.Context, t *domain.EphemeralToken) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Consume atomically deletes the token and returns the stored record. The
// conditional delete-with-return is a single DynamoDB operation, so a token
// can be consumed at most once even under concurrent attempts. The purpose
// condition keeps a wrong-purpose presentation from destroying a live token:
// absent and wrong-purpose both fail the condition with no state change and
// collapse to domain.ErrInvalidToken. Expiry is the caller's check on the
// returned record.
func (r *TokenRepo) Consume(ctx context.Context, token, purpose string) (*domain.EphemeralToken, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("token", token),
		ConditionExpression: aws.String("purpose = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: purpose},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, fmt.Errorf("token rejected: %w", domain.ErrInvalidToken)
		}
		return nil, err
	}
	if len(out.Attributes) == 0 {
		return nil, fmt.Errorf("token not found: %w", domain.ErrInvalidToken)
	}
	var t domain.EphemeralToken
	if err := attributevalue.UnmarshalMap(out.Attributes, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteByAccountPurpose removes any live token the account holds for the
// given purpose. Called before issuing a replacement.
func (r *TokenRepo) DeleteByAccountPurpose(ctx context.Context, accountID, purpose string) error {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("account_id-purpose-index"),
		KeyConditionExpression: aws.String("account_id = :a AND purpose = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: accountID},
			":p": &types.AttributeValueMemberS{Value: purpose},
		},
	})
	if err != nil {
		return err
	}
	var firstErr error
	for _, item := range out.Items {
		tok, ok := item["token"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       strKey("token", tok.Value),
		}); err != nil {
			slog.Warn("failed to delete superseded token", "account_id", accountID, "purpose", purpose, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
