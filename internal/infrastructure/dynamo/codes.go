package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-api/internal/domain"
)

const codeType = "otp"

// CodeRepo manages one-time second-factor codes.
// PK: account_id, SK: type. The single-active invariant holds structurally:
// a Put on the same key replaces the previous code, and ConsumeIfMatch is a
// conditional delete, so replace and validate-consume serialize at the
// storage layer without any per-account lock.
type CodeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCodeRepo(client *dynamodb.Client, tableName string) *CodeRepo {
	return &CodeRepo{client: client, tableName: tableName}
}

// Put stores the code, replacing any live code for the same account.
func (r *CodeRepo) Put(ctx context.Context, c *domain.OneTimeCode) error {
	c.Type = codeType
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ConsumeIfMatch atomically deletes the account's code iff it equals supplied
// and has not expired. Absent, mismatched and expired all fail the condition
// and collapse to domain.ErrInvalidCode; on failure nothing changes, so the
// code can still be consumed by a later correct attempt.
func (r *CodeRepo) ConsumeIfMatch(ctx context.Context, accountID, supplied string, now int64) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 compositeKey("account_id", accountID, "type", codeType),
		ConditionExpression: aws.String("code = :c AND expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":   &types.AttributeValueMemberS{Value: supplied},
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("code rejected: %w", domain.ErrInvalidCode)
		}
		return err
	}
	return nil
}

// Delete removes the account's code unconditionally.
func (r *CodeRepo) Delete(ctx context.Context, accountID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("account_id", accountID, "type", codeType),
	})
	return err
}
